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

package e2e

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/ttbt-io/cattlefarm/backend"
)

// apiURL rewrites the browser-facing URL so the test process can reach the
// same server directly.
func apiURL(baseURL, path string) string {
	return strings.Replace(baseURL, "devtest.local", "localhost", 1) + path
}

func apiClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		Timeout: 10 * time.Second,
	}
}

// fetchBrowserSnapshot reads the three storage documents out of the browser
// in the shape the validation API expects.
func fetchBrowserSnapshot(ctx context.Context) (*backend.Snapshot, error) {
	var snapshot backend.Snapshot
	err := chromedp.Run(ctx, chromedp.Evaluate(`
		({
			accounts: JSON.parse(localStorage.getItem('farmAccounts') || '[]'),
			session: JSON.parse(localStorage.getItem('farmSession') || 'null'),
			gameState: JSON.parse(localStorage.getItem('farmGameState') || '{}'),
		})
	`, &snapshot))
	if err != nil {
		return nil, fmt.Errorf("failed to read storage snapshot: %w", err)
	}
	return &snapshot, nil
}

// ValidateBrowserState submits the browser's storage documents to the
// validation API and fails the test if any invariant is broken.
func ValidateBrowserState(t *testing.T, ctx context.Context, baseURL string) {
	t.Helper()

	snapshot, err := fetchBrowserSnapshot(ctx)
	if err != nil {
		t.Fatalf("ValidateBrowserState: %v", err)
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("ValidateBrowserState: marshal: %v", err)
	}

	resp, err := apiClient().Post(apiURL(baseURL, "/api/validate/state"), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("ValidateBrowserState: POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ValidateBrowserState: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("ValidateBrowserState: decode: %v", err)
	}
	if !result.Valid {
		t.Errorf("Stored state violates an invariant: %s", result.Error)
	}
}

// ReplayOps runs a scripted op sequence against the server-side model and
// returns the per-op outcomes and final state.
func ReplayOps(t *testing.T, baseURL string, ops []backend.ReplayOp) *backend.ReplayResponse {
	t.Helper()

	body, err := json.Marshal(map[string]any{"ops": ops})
	if err != nil {
		t.Fatalf("ReplayOps: marshal: %v", err)
	}
	resp, err := apiClient().Post(apiURL(baseURL, "/api/replay"), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("ReplayOps: POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ReplayOps: unexpected status %d", resp.StatusCode)
	}

	var replay backend.ReplayResponse
	if err := json.NewDecoder(resp.Body).Decode(&replay); err != nil {
		t.Fatalf("ReplayOps: decode: %v", err)
	}
	return &replay
}

// CompareWithReplay replays ops against the server-side model and diffs the
// resulting state against what the browser persisted. Generated ids and
// timestamps differ between the two runs, so both snapshots are normalized
// before comparing.
func CompareWithReplay(t *testing.T, ctx context.Context, baseURL string, ops []backend.ReplayOp) {
	t.Helper()

	browser, err := fetchBrowserSnapshot(ctx)
	if err != nil {
		t.Fatalf("CompareWithReplay: %v", err)
	}
	replay := ReplayOps(t, baseURL, ops)

	expected := normalizedJSON(t, replay.Snapshot)
	actual := normalizedJSON(t, browser)
	if expected != actual {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expected),
			B:        difflib.SplitLines(actual),
			FromFile: "Model",
			ToFile:   "Browser",
			Context:  3,
		})
		t.Errorf("Browser state diverges from the model:\n%s", diff)
	}
}

// normalizedJSON renders a snapshot with generated ids replaced by stable
// placeholders, timestamps blanked and countdown end times reduced to a
// set/unset flag.
func normalizedJSON(t *testing.T, s *backend.Snapshot) string {
	t.Helper()

	ids := make(map[string]string)
	rewrite := func(id string) string {
		if id == "" {
			return ""
		}
		if _, ok := ids[id]; !ok {
			ids[id] = fmt.Sprintf("account-%d", len(ids)+1)
		}
		return ids[id]
	}
	ts := func(v string) string {
		if v == "" {
			return ""
		}
		return "<time>"
	}

	norm := backend.Snapshot{GameState: make(map[string]*backend.GameState)}
	for _, a := range s.Accounts {
		norm.Accounts = append(norm.Accounts, &backend.Account{
			ID:          rewrite(a.ID),
			Username:    a.Username,
			Password:    a.Password,
			Role:        a.Role,
			Points:      a.Points,
			CreatedAt:   ts(a.CreatedAt),
			LastLoginAt: ts(a.LastLoginAt),
		})
	}
	if s.Session != nil {
		norm.Session = &backend.Session{
			ID:          rewrite(s.Session.ID),
			Username:    s.Session.Username,
			Role:        s.Session.Role,
			Points:      s.Session.Points,
			CreatedAt:   ts(s.Session.CreatedAt),
			LastLoginAt: ts(s.Session.LastLoginAt),
		}
	}
	for userID, gs := range s.GameState {
		ngs := &backend.GameState{UserID: rewrite(gs.UserID), Grass: gs.Grass}
		for _, c := range gs.Cattle {
			end := int64(0)
			if c.TimerEndTime > 0 {
				end = 1
			}
			ngs.Cattle = append(ngs.Cattle, &backend.Cattle{
				ID:           c.ID,
				Name:         c.Name,
				Hunger:       c.Hunger,
				TimerEndTime: end,
			})
		}
		norm.GameState[rewrite(userID)] = ngs
	}

	out, err := json.MarshalIndent(&norm, "", "  ")
	if err != nil {
		t.Fatalf("normalizedJSON: %v", err)
	}
	return string(out)
}
