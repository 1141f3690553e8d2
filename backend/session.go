// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"fmt"
	"os"
)

const sessionFile = "session.json"

// Session is the public copy of the authenticated account. Its absence
// means logged out.
type Session struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Points      int    `json:"points"`
	CreatedAt   string `json:"createdAt"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
}

func (a *Account) session() *Session {
	return &Session{
		ID:          a.ID,
		Username:    a.Username,
		Role:        a.Role,
		Points:      a.Points,
		CreatedAt:   a.CreatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}

// Logout clears the session unconditionally.
func (as *AccountStore) Logout() error {
	as.mu.Lock()
	defer as.mu.Unlock()
	// Overwrite with an absent marker; c2FmZQ/storage has no delete, so an
	// explicit null document stands in for "logged out".
	if err := as.storage.SaveDataFile(sessionFile, (*Session)(nil)); err != nil {
		return fmt.Errorf("SaveDataFile: %w", err)
	}
	return nil
}

// CurrentSession returns the session document, or nil when logged out.
func (as *AccountStore) CurrentSession() (*Session, error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	var s *Session
	if err := as.storage.ReadDataFile(sessionFile, &s); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	return s, nil
}
