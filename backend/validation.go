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
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Snapshot mirrors the three browser storage documents: the account list,
// the session pointer and the per-user game states. The e2e harness reads
// them out of the browser and submits them for invariant checking.
type Snapshot struct {
	Accounts  []*Account            `json:"accounts"`
	Session   *Session              `json:"session"`
	GameState map[string]*GameState `json:"gameState"`
}

// ValidateSnapshot checks the cross-document invariants the application
// maintains. now is the observation time used for timer checks.
func ValidateSnapshot(s *Snapshot, now time.Time) error {
	if s == nil {
		return fmt.Errorf("null snapshot")
	}
	seenNames := make(map[string]bool)
	accountByID := make(map[string]*Account)
	admins := 0
	for i, a := range s.Accounts {
		if a == nil {
			return fmt.Errorf("accounts[%d]: null record", i)
		}
		if a.ID == "" {
			return fmt.Errorf("accounts[%d]: missing id", i)
		}
		if accountByID[a.ID] != nil {
			return fmt.Errorf("accounts[%d]: duplicate id %s", i, a.ID)
		}
		accountByID[a.ID] = a
		if utf8.RuneCountInString(a.Username) < minUsernameLen {
			return fmt.Errorf("account %s: username %q too short", a.ID, a.Username)
		}
		if seenNames[a.Username] {
			return fmt.Errorf("account %s: duplicate username %q", a.ID, a.Username)
		}
		seenNames[a.Username] = true
		switch a.Role {
		case RoleAdmin:
			admins++
		case RoleUser:
		default:
			return fmt.Errorf("account %s: unknown role %q", a.ID, a.Role)
		}
		if a.Points < 0 {
			return fmt.Errorf("account %s: negative points %d", a.ID, a.Points)
		}
	}
	if len(s.Accounts) > 0 && admins != 1 {
		return fmt.Errorf("expected exactly 1 admin account, found %d", admins)
	}

	if s.Session != nil {
		a := accountByID[s.Session.ID]
		if a == nil {
			return fmt.Errorf("session points at unknown account %s", s.Session.ID)
		}
		if s.Session.Username != a.Username || s.Session.Role != a.Role {
			return fmt.Errorf("session for %s does not match the stored account", s.Session.ID)
		}
	}

	for userID, gs := range s.GameState {
		if gs == nil {
			return fmt.Errorf("gameState[%s]: null record", userID)
		}
		if accountByID[userID] == nil {
			return fmt.Errorf("gameState[%s]: unknown account", userID)
		}
		if gs.Grass < 0 {
			return fmt.Errorf("gameState[%s]: negative grass %d", userID, gs.Grass)
		}
		if len(gs.Cattle) != CattleCount {
			return fmt.Errorf("gameState[%s]: expected %d cattle, found %d", userID, CattleCount, len(gs.Cattle))
		}
		seenCattle := make(map[int]bool)
		for _, c := range gs.Cattle {
			if c == nil {
				return fmt.Errorf("gameState[%s]: null cattle record", userID)
			}
			if c.ID < 1 || c.ID > CattleCount || seenCattle[c.ID] {
				return fmt.Errorf("gameState[%s]: bad cattle id %d", userID, c.ID)
			}
			seenCattle[c.ID] = true
			if c.Hunger < 0 || c.Hunger > MaxHunger {
				return fmt.Errorf("gameState[%s]: cattle %d hunger %d out of range", userID, c.ID, c.Hunger)
			}
			if c.TimerEndTime != 0 {
				if c.Hunger != MaxHunger {
					return fmt.Errorf("gameState[%s]: cattle %d has a countdown at hunger %d", userID, c.ID, c.Hunger)
				}
				// A past end time is legal until the next poll observes it,
				// but it never points further out than a fresh countdown.
				if c.TimerEndTime > now.Add(FullDuration).UnixMilli()+1000 {
					return fmt.Errorf("gameState[%s]: cattle %d countdown ends too far out", userID, c.ID)
				}
			}
		}
	}
	return nil
}

// ValidateSnapshotJSON parses and validates a snapshot document.
func ValidateSnapshotJSON(data []byte, now time.Time) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	if err := ValidateSnapshot(&s, now); err != nil {
		return nil, err
	}
	return &s, nil
}
