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
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/c2FmZQ/storage"
)

// ReplayOp is one scripted operation. Op selects the operation; the other
// fields apply depending on Op.
type ReplayOp struct {
	Op string `json:"op"`

	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Confirm  string `json:"confirm,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	CattleID int    `json:"cattleId,omitempty"`
	EndTime  int64  `json:"endTime,omitempty"`
}

// ReplayResult is the outcome of one operation. Message carries the user
// visible message a browser would display, for both successes and failures.
type ReplayResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// ReplayResponse is the full replay outcome: per-op results plus the final
// state in the same shape the browser persists.
type ReplayResponse struct {
	Results  []ReplayResult `json:"results"`
	Snapshot *Snapshot      `json:"snapshot"`
}

// replaySession runs a script against a fresh model instance backed by a
// scratch directory. Replays are deterministic apart from generated ids and
// timestamps.
type replaySession struct {
	accounts *AccountStore
	games    *GameStateStore
	farm     *Farm
}

func (rs *replaySession) apply(op ReplayOp) ReplayResult {
	fail := func(err error) ReplayResult {
		var fe *FarmError
		if errors.As(err, &fe) {
			return ReplayResult{Message: fe.Message}
		}
		return ReplayResult{Message: err.Error()}
	}
	currentUser := func() (string, error) {
		s, err := rs.accounts.CurrentSession()
		if err != nil {
			return "", err
		}
		if s == nil {
			return "", fmt.Errorf("no active session")
		}
		return s.ID, nil
	}

	switch op.Op {
	case "register":
		if _, err := rs.accounts.Register(op.Username, op.Password, op.Confirm); err != nil {
			return fail(err)
		}
		return ReplayResult{OK: true, Message: MsgRegisterOK}
	case "login":
		if _, err := rs.accounts.Login(op.Username, op.Password); err != nil {
			return fail(err)
		}
		return ReplayResult{OK: true, Message: MsgLoginOK}
	case "logout":
		if err := rs.accounts.Logout(); err != nil {
			return fail(err)
		}
		return ReplayResult{OK: true}
	case "assignPoints":
		target, err := rs.accounts.GetByUsername(op.Username)
		if err != nil {
			return fail(err)
		}
		targetID := ""
		if target != nil {
			targetID = target.ID
		}
		if _, err := rs.accounts.AssignPoints(targetID, op.Amount); err != nil {
			return fail(err)
		}
		return ReplayResult{OK: true}
	case "buyGrass":
		userID, err := currentUser()
		if err != nil {
			return fail(err)
		}
		if _, err := rs.farm.BuyGrass(userID, op.Amount); err != nil {
			return fail(err)
		}
		return ReplayResult{OK: true}
	case "feedCattle":
		userID, err := currentUser()
		if err != nil {
			return fail(err)
		}
		if _, err := rs.farm.FeedCattle(userID, op.CattleID); err != nil {
			return fail(err)
		}
		return ReplayResult{OK: true}
	case "poll":
		userID, err := currentUser()
		if err != nil {
			return fail(err)
		}
		if _, err := rs.farm.Poll(userID); err != nil {
			return fail(err)
		}
		return ReplayResult{OK: true}
	case "setCattleTimerEnd":
		// Test hook: fabricate a countdown end so expiry paths can be
		// exercised without waiting out the full duration.
		userID, err := currentUser()
		if err != nil {
			return fail(err)
		}
		_, err = rs.games.Update(userID, func(gs *GameState) error {
			for _, c := range gs.Cattle {
				if c.ID == op.CattleID {
					c.TimerEndTime = op.EndTime
					return nil
				}
			}
			return validationError(MsgCattleNotFound)
		})
		if err != nil {
			return fail(err)
		}
		return ReplayResult{OK: true}
	default:
		return ReplayResult{Message: fmt.Sprintf("unknown op %q", op.Op)}
	}
}

func (rs *replaySession) snapshot() (*Snapshot, error) {
	accounts, err := rs.accounts.All()
	if err != nil {
		return nil, err
	}
	session, err := rs.accounts.CurrentSession()
	if err != nil {
		return nil, err
	}
	states, err := rs.games.All()
	if err != nil {
		return nil, err
	}
	return &Snapshot{Accounts: accounts, Session: session, GameState: states}, nil
}

// replayHandler runs a scripted op sequence against a fresh model and
// returns the per-op outcomes and the final state.
func replayHandler(opts Options, debugf func(string, ...any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Ops []ReplayOp `json:"ops"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1048576)).Decode(&req); err != nil {
			http.Error(w, "Bad Request: Malformed JSON", http.StatusBadRequest)
			return
		}

		os.MkdirAll(opts.DataDir, 0755)
		dir, err := os.MkdirTemp(opts.DataDir, "replay-*")
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer os.RemoveAll(dir)

		s := storage.New(dir, nil)
		accounts := NewAccountStore(s)
		games := NewGameStateStore(s)
		rs := &replaySession{
			accounts: accounts,
			games:    games,
			farm:     NewFarm(accounts, games),
		}

		resp := ReplayResponse{Results: make([]ReplayResult, 0, len(req.Ops))}
		for i, op := range req.Ops {
			res := rs.apply(op)
			debugf("replay op %d (%s): ok=%v msg=%q", i, op.Op, res.OK, res.Message)
			resp.Results = append(resp.Results, res)
		}
		snapshot, err := rs.snapshot()
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		resp.Snapshot = snapshot

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
