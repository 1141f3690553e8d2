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
	"sync"

	"github.com/c2FmZQ/storage"
)

const (
	gameStateFile = "gamestate.json"

	// CattleCount is the fixed herd size per user.
	CattleCount = 3

	// MaxHunger is the feed-level ceiling; reaching it arms the timer.
	MaxHunger = 100

	// FeedIncrement is the hunger gained per grass unit.
	FeedIncrement = 10
)

// Cattle is one animal's state. TimerEndTime is unix milliseconds and is
// non-zero iff hunger is at MaxHunger and the countdown has not expired.
type Cattle struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Hunger       int    `json:"hunger"`
	TimerEndTime int64  `json:"timerEndTime,omitempty"`
}

// GameState is one user's farm: grass stock plus a fixed herd.
type GameState struct {
	UserID string    `json:"userId"`
	Grass  int       `json:"grass"`
	Cattle []*Cattle `json:"cattle"`
}

func newGameState(userID string) *GameState {
	gs := &GameState{UserID: userID}
	for i := 1; i <= CattleCount; i++ {
		gs.Cattle = append(gs.Cattle, &Cattle{
			ID:   i,
			Name: fmt.Sprintf("乳牛 #%d", i),
		})
	}
	return gs
}

// normalize backfills missing cattle so older documents keep working.
func (gs *GameState) normalize() {
	for i := len(gs.Cattle); i < CattleCount; i++ {
		gs.Cattle = append(gs.Cattle, &Cattle{
			ID:   i + 1,
			Name: fmt.Sprintf("乳牛 #%d", i+1),
		})
	}
}

// GameStateStore persists every user's game state as one JSON document
// keyed by account id. Whole-document read-modify-write under one mutex.
type GameStateStore struct {
	storage *storage.Storage

	mu sync.Mutex
}

// NewGameStateStore creates a GameStateStore.
func NewGameStateStore(s *storage.Storage) *GameStateStore {
	return &GameStateStore{storage: s}
}

func (gss *GameStateStore) load() (map[string]*GameState, error) {
	states := make(map[string]*GameState)
	if err := gss.storage.ReadDataFile(gameStateFile, &states); err != nil {
		if os.IsNotExist(err) {
			return states, nil
		}
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	return states, nil
}

func (gss *GameStateStore) save(states map[string]*GameState) error {
	if err := gss.storage.SaveDataFile(gameStateFile, states); err != nil {
		return fmt.Errorf("SaveDataFile: %w", err)
	}
	return nil
}

// Get returns the user's game state, creating it lazily on first access.
// Game states are never deleted.
func (gss *GameStateStore) Get(userID string) (*GameState, error) {
	gss.mu.Lock()
	defer gss.mu.Unlock()

	states, err := gss.load()
	if err != nil {
		return nil, err
	}
	state, ok := states[userID]
	if !ok {
		state = newGameState(userID)
		states[userID] = state
		if err := gss.save(states); err != nil {
			return nil, err
		}
		return state, nil
	}
	state.normalize()
	return state, nil
}

// All returns every user's game state keyed by account id.
func (gss *GameStateStore) All() (map[string]*GameState, error) {
	gss.mu.Lock()
	defer gss.mu.Unlock()
	states, err := gss.load()
	if err != nil {
		return nil, err
	}
	for _, s := range states {
		s.normalize()
	}
	return states, nil
}

// Update applies fn to the user's game state as a single atomic
// read-modify-write. If fn returns an error nothing is persisted.
func (gss *GameStateStore) Update(userID string, fn func(*GameState) error) (*GameState, error) {
	gss.mu.Lock()
	defer gss.mu.Unlock()

	states, err := gss.load()
	if err != nil {
		return nil, err
	}
	state, ok := states[userID]
	if !ok {
		state = newGameState(userID)
		states[userID] = state
	}
	state.normalize()
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := gss.save(states); err != nil {
		return nil, err
	}
	return state, nil
}
