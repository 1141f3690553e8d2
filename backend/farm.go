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
	"sync"
	"time"
)

// Farm ties the account and game-state stores together for the economy
// operations. A single mutex serializes compound operations so a purchase
// is never observed with points deducted but grass missing.
type Farm struct {
	Accounts *AccountStore
	Games    *GameStateStore

	now func() time.Time
	mu  sync.Mutex
}

// NewFarm creates a Farm over the two stores.
func NewFarm(accounts *AccountStore, games *GameStateStore) *Farm {
	return &Farm{
		Accounts: accounts,
		Games:    games,
		now:      time.Now,
	}
}

// BuyGrass trades points for grass 1:1. Fails without touching either
// document when the balance is too low.
func (f *Farm) BuyGrass(userID string, amount int) (*GameState, error) {
	if amount <= 0 {
		return nil, validationError(MsgInvalidGrassAmount)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	account, err := f.Accounts.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, validationError(MsgUserNotFound)
	}
	if account.Points < amount {
		return nil, &FarmError{Kind: KindInsufficientFunds, Message: MsgNotEnoughPoints}
	}

	f.Accounts.mu.Lock()
	_, err = f.Accounts.addPointsLocked(userID, -amount)
	f.Accounts.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return f.Games.Update(userID, func(gs *GameState) error {
		gs.Grass += amount
		return nil
	})
}

// FeedCattle consumes one grass unit and raises the animal's feed level by
// FeedIncrement, clamped at MaxHunger. Reaching exactly MaxHunger arms the
// 60-second countdown.
func (f *Farm) FeedCattle(userID string, cattleID int) (*GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	return f.Games.Update(userID, func(gs *GameState) error {
		var target *Cattle
		for _, c := range gs.Cattle {
			if c.ID == cattleID {
				target = c
				break
			}
		}
		if target == nil {
			return validationError(MsgCattleNotFound)
		}
		applyExpiry(target, now)
		if gs.Grass < 1 {
			return &FarmError{Kind: KindInsufficientResource, Message: MsgNotEnoughGrass}
		}
		if target.Hunger >= MaxHunger {
			return validationError(MsgCattleFull)
		}
		gs.Grass--
		target.Hunger += FeedIncrement
		if target.Hunger > MaxHunger {
			target.Hunger = MaxHunger
		}
		if target.Hunger == MaxHunger {
			armTimer(target, now)
		}
		return nil
	})
}

// Poll applies lazy timer expiry for the user and returns the refreshed
// state. Called both on demand and from the 1 Hz refresh path.
func (f *Farm) Poll(userID string) (*GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	return f.Games.Update(userID, func(gs *GameState) error {
		for _, c := range gs.Cattle {
			applyExpiry(c, now)
		}
		return nil
	})
}

// Remaining reports the countdown seconds for one animal, NoTimer when
// idle. Expiry is applied first, so a stale full animal reads as reset.
func (f *Farm) Remaining(userID string, cattleID int) (int, error) {
	state, err := f.Poll(userID)
	if err != nil {
		return NoTimer, err
	}
	for _, c := range state.Cattle {
		if c.ID == cattleID {
			return remainingSeconds(c, f.now()), nil
		}
	}
	return NoTimer, validationError(MsgCattleNotFound)
}
