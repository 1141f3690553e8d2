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
	"log"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/c2FmZQ/storage"
	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	minUsernameLen = 3
	minPasswordLen = 6

	accountsFile = "accounts.json"
)

// Account is a persisted identity record. The password is stored as-is;
// the scheme is a demonstration, not a security control, and matches what
// the frontend writes to local storage.
type Account struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Points      int    `json:"points"`
	CreatedAt   string `json:"createdAt"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
}

// AccountStore persists the account list and the session pointer as two
// JSON documents. Every operation is a whole-document read-modify-write
// under one mutex, so account and session mutations are never observable
// out of sync.
type AccountStore struct {
	storage *storage.Storage
	now     func() time.Time

	mu sync.Mutex
}

// NewAccountStore creates an AccountStore and seeds the default admin
// account (admin/admin) if the store is empty.
func NewAccountStore(s *storage.Storage) *AccountStore {
	as := &AccountStore{
		storage: s,
		now:     time.Now,
	}
	if err := as.seed(); err != nil {
		log.Printf("AccountStore seed: %v", err)
	}
	return as
}

func (as *AccountStore) load() ([]*Account, error) {
	var accounts []*Account
	if err := as.storage.ReadDataFile(accountsFile, &accounts); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	return accounts, nil
}

func (as *AccountStore) save(accounts []*Account) error {
	if err := as.storage.SaveDataFile(accountsFile, accounts); err != nil {
		return fmt.Errorf("SaveDataFile: %w", err)
	}
	return nil
}

func (as *AccountStore) seed() error {
	as.mu.Lock()
	defer as.mu.Unlock()

	accounts, err := as.load()
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil
	}
	admin := &Account{
		ID:        uuid.NewString(),
		Username:  "admin",
		Password:  "admin",
		Role:      RoleAdmin,
		Points:    0,
		CreatedAt: as.now().UTC().Format(time.RFC3339),
	}
	return as.save([]*Account{admin})
}

// Register creates a user-role account with zero points. It does not log
// the new account in; the caller logs in separately.
func (as *AccountStore) Register(username, password, confirm string) (*Account, error) {
	if username == "" || password == "" || confirm == "" {
		return nil, validationError(MsgRegisterEmpty)
	}
	if password != confirm {
		return nil, validationError(MsgPasswordMismatch)
	}
	// Character counts, not bytes. The UI counts characters and most
	// usernames are CJK.
	if utf8.RuneCountInString(username) < minUsernameLen {
		return nil, validationError(MsgUsernameTooShort)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, validationError(MsgPasswordTooShort)
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	accounts, err := as.load()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Username == username {
			return nil, conflictError(MsgUsernameTaken)
		}
	}
	account := &Account{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  password,
		Role:      RoleUser,
		Points:    0,
		CreatedAt: as.now().UTC().Format(time.RFC3339),
	}
	if err := as.save(append(accounts, account)); err != nil {
		return nil, err
	}
	return account, nil
}

// Login matches username+password exactly, updates lastLoginAt and writes
// the session document. The same message covers unknown usernames and bad
// passwords.
func (as *AccountStore) Login(username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, validationError(MsgLoginEmpty)
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	accounts, err := as.load()
	if err != nil {
		return nil, err
	}
	var match *Account
	for _, a := range accounts {
		if a.Username == username && a.Password == password {
			match = a
			break
		}
	}
	if match == nil {
		return nil, authError(MsgLoginFailed)
	}
	match.LastLoginAt = as.now().UTC().Format(time.RFC3339)
	if err := as.save(accounts); err != nil {
		return nil, err
	}
	session := match.session()
	if err := as.storage.SaveDataFile(sessionFile, session); err != nil {
		return nil, fmt.Errorf("SaveDataFile: %w", err)
	}
	return session, nil
}

// AssignPoints adds amount to the target account's balance. Assignment is
// additive across calls, never a set. If the target is the logged-in
// session, the session document is refreshed in the same critical section.
func (as *AccountStore) AssignPoints(targetID string, amount int) (*Account, error) {
	if targetID == "" {
		return nil, validationError(MsgSelectUser)
	}
	if amount < 1 {
		return nil, validationError(MsgInvalidPointAmount)
	}

	as.mu.Lock()
	defer as.mu.Unlock()
	return as.addPointsLocked(targetID, amount)
}

// addPointsLocked adjusts points by delta (may be negative) and keeps the
// session mirror in sync. The caller holds as.mu. Points never go negative.
func (as *AccountStore) addPointsLocked(targetID string, delta int) (*Account, error) {
	accounts, err := as.load()
	if err != nil {
		return nil, err
	}
	var target *Account
	for _, a := range accounts {
		if a.ID == targetID {
			target = a
			break
		}
	}
	if target == nil {
		return nil, validationError(MsgUserNotFound)
	}
	if target.Points+delta < 0 {
		return nil, &FarmError{Kind: KindInsufficientFunds, Message: MsgNotEnoughPoints}
	}
	target.Points += delta
	if err := as.save(accounts); err != nil {
		return nil, err
	}

	var session *Session
	if err := as.storage.ReadDataFile(sessionFile, &session); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	if session != nil && session.ID == target.ID {
		if err := as.storage.SaveDataFile(sessionFile, target.session()); err != nil {
			return nil, fmt.Errorf("SaveDataFile: %w", err)
		}
	}
	return target, nil
}

// GetByID returns the account with the given id, or nil.
func (as *AccountStore) GetByID(id string) (*Account, error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	accounts, err := as.load()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

// GetByUsername returns the account with the given username (exact,
// case-sensitive match), or nil.
func (as *AccountStore) GetByUsername(username string) (*Account, error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	accounts, err := as.load()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

// RegularUsers lists the user-role accounts, excluding the admin. This is
// the admin page's assignable target list.
func (as *AccountStore) RegularUsers() ([]*Account, error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	accounts, err := as.load()
	if err != nil {
		return nil, err
	}
	users := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Role == RoleUser {
			users = append(users, a)
		}
	}
	return users, nil
}

// All returns every account in insertion order.
func (as *AccountStore) All() ([]*Account, error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.load()
}
