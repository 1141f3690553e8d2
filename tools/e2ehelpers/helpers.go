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

// Package e2ehelpers contains chromedp actions shared by the e2e test suite
// and the screenshots tool. The selectors here are the UI contract of the
// frontend package.
package e2ehelpers

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// StoredAccount mirrors the account records the frontend writes to the
// farmAccounts local storage key.
type StoredAccount struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Points      int    `json:"points"`
	CreatedAt   string `json:"createdAt"`
	LastLoginAt string `json:"lastLoginAt"`
}

// StoredSession mirrors the farmSession document.
type StoredSession struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Points      int    `json:"points"`
	CreatedAt   string `json:"createdAt"`
	LastLoginAt string `json:"lastLoginAt"`
}

// StoredCattle mirrors one herd entry in the farmGameState document.
type StoredCattle struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Hunger       int    `json:"hunger"`
	TimerEndTime int64  `json:"timerEndTime"`
}

// StoredGameState mirrors one user's entry in the farmGameState document.
type StoredGameState struct {
	UserID string         `json:"userId"`
	Grass  int            `json:"grass"`
	Cattle []StoredCattle `json:"cattle"`
}

// CaptureScreenshot captures a screenshot and saves it to the specified filename.
func CaptureScreenshot(ctx context.Context, filename string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for screenshot: %w", err)
	}

	if err := os.WriteFile(filename, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	log.Printf("Saved screenshot to %s", filename)
	return nil
}

func DisableCSSAnimations() chromedp.ActionFunc {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.Evaluate(`
                        const style = document.createElement('style');
                        style.innerHTML = '*{-webkit-transition-duration:0s!important;transition-duration:0s!important;-webkit-animation-duration:0s!important;animation-duration:0s!important;}';
                        document.head.appendChild(style);
                `, nil).Do(ctx)
	})
}

// GenerateUsername returns a unique username for test accounts.
func GenerateUsername() string {
	return fmt.Sprintf("testuser_%d_%d", time.Now().UnixMilli(), rand.Intn(1000))
}

// --- Navigation & Auth ---

// ClearState wipes local storage and reloads, landing on the login form.
func ClearState(ctx context.Context, baseURL string) error {
	return chromedp.Run(ctx,
		chromedp.Navigate(baseURL+"/"),
		chromedp.Evaluate(`localStorage.clear()`, nil),
		chromedp.Reload(),
		chromedp.WaitVisible(`#auth-page.active`, chromedp.ByQuery),
	)
}

// ExpectAuthPage waits for the auth page to be the active view.
func ExpectAuthPage(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.WaitVisible(`#auth-page.active`, chromedp.ByQuery))
}

// ExpectAdminPage waits for the admin page to be the active view.
func ExpectAdminPage(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.WaitVisible(`#admin-page.active`, chromedp.ByQuery))
}

// ExpectUserPage waits for the user page to be the active view.
func ExpectUserPage(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.WaitVisible(`#user-page.active`, chromedp.ByQuery))
}

// Register fills and submits the registration form. It does not wait for
// the redirect back to the login form; use ExpectMessage or WaitVisible on
// #login-form.active for that.
func Register(ctx context.Context, username, password, passwordConfirm string) error {
	return chromedp.Run(ctx,
		chromedp.WaitVisible(`#show-register`, chromedp.ByQuery),
		chromedp.Click(`#show-register`, chromedp.ByQuery),
		chromedp.WaitVisible(`#register-form.active`, chromedp.ByQuery),
		chromedp.SetValue(`#register-username`, username, chromedp.ByQuery),
		chromedp.SetValue(`#register-password`, password, chromedp.ByQuery),
		chromedp.SetValue(`#register-password-confirm`, passwordConfirm, chromedp.ByQuery),
		chromedp.Click(`#register-form button[type="submit"]`, chromedp.ByQuery),
	)
}

// RegisterAndReturn registers and waits for the automatic switch back to
// the login form with the username prefilled.
func RegisterAndReturn(ctx context.Context, username, password string) error {
	if err := Register(ctx, username, password, password); err != nil {
		return err
	}
	return chromedp.Run(ctx,
		chromedp.WaitVisible(`#login-form.active`, chromedp.ByQuery),
	)
}

// Login fills and submits the login form. The caller asserts the outcome
// with ExpectUserPage, ExpectAdminPage or ExpectMessage.
func Login(ctx context.Context, username, password string) error {
	return chromedp.Run(ctx,
		chromedp.WaitVisible(`#login-form.active`, chromedp.ByQuery),
		chromedp.SetValue(`#login-username`, username, chromedp.ByQuery),
		chromedp.SetValue(`#login-password`, password, chromedp.ByQuery),
		chromedp.Click(`#loginForm button[type="submit"]`, chromedp.ByQuery),
	)
}

// Logout clicks whichever logout button belongs to the current page and
// waits for the auth page.
func Logout(ctx context.Context) error {
	return chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.Evaluate(`
				(() => {
					const admin = document.getElementById('admin-logout');
					const user = document.getElementById('user-logout');
					if (admin && admin.offsetParent !== null) { admin.click(); return; }
					if (user && user.offsetParent !== null) { user.click(); return; }
					throw new Error('no visible logout button');
				})()
			`, nil).Do(ctx)
		}),
		chromedp.WaitVisible(`#auth-page.active`, chromedp.ByQuery),
	)
}

// ExpectMessage waits for a message element to show text of the given kind.
// kind is "error" or "success"; empty matches either.
func ExpectMessage(ctx context.Context, selector, text, kind string) error {
	cls := "message"
	if kind != "" {
		cls = "message " + kind
	}
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		var last string
		for {
			select {
			case <-ticker.C:
				var got struct {
					Text  string `json:"text"`
					Class string `json:"class"`
				}
				err := chromedp.Evaluate(fmt.Sprintf(`
					(() => {
						const el = document.querySelector('%s');
						if (!el) return { text: '', class: '' };
						return { text: el.textContent, class: el.className };
					})()
				`, selector), &got).Do(ctx)
				if err != nil {
					return err
				}
				last = got.Text
				if strings.Contains(got.Text, text) && (kind == "" || got.Class == cls) {
					return nil
				}
			case <-timeoutCtx.Done():
				return fmt.Errorf("timeout waiting for %s to show %q (last: %q)", selector, text, last)
			}
		}
	}))
}

// --- Admin page ---

// AssignPoints selects the target user by username and submits the assign
// points form.
func AssignPoints(ctx context.Context, username string, amount int) error {
	return chromedp.Run(ctx,
		chromedp.WaitVisible(`#assignPointsForm`, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var found bool
			err := chromedp.Evaluate(fmt.Sprintf(`
				(() => {
					const sel = document.getElementById('target-user');
					for (const opt of sel.options) {
						if (opt.textContent.startsWith('%s ')) {
							sel.value = opt.value;
							sel.dispatchEvent(new Event('change', { bubbles: true }));
							return true;
						}
					}
					return false;
				})()
			`, username), &found).Do(ctx)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("user %q not found in target select", username)
			}
			return nil
		}),
		chromedp.SetValue(`#points-amount`, fmt.Sprintf("%d", amount), chromedp.ByQuery),
		chromedp.Click(`#assignPointsForm button[type="submit"]`, chromedp.ByQuery),
	)
}

// --- User page / game ---

// ShowStatusView switches the user page to the status view.
func ShowStatusView(ctx context.Context) error {
	return chromedp.Run(ctx,
		chromedp.Click(`#user-status-btn`, chromedp.ByQuery),
		WaitUntilHidden(`#game-view`),
		chromedp.WaitVisible(`#status-view`, chromedp.ByQuery),
	)
}

// BackToGame switches the user page back to the game view.
func BackToGame(ctx context.Context) error {
	return chromedp.Run(ctx,
		chromedp.Click(`#back-to-game-btn`, chromedp.ByQuery),
		WaitUntilHidden(`#status-view`),
		chromedp.WaitVisible(`#game-view`, chromedp.ByQuery),
	)
}

// BuyGrass fills the grass amount and clicks the buy button.
func BuyGrass(ctx context.Context, amount int) error {
	return chromedp.Run(ctx,
		chromedp.WaitVisible(`#buy-grass-btn`, chromedp.ByQuery),
		chromedp.SetValue(`#grass-amount`, fmt.Sprintf("%d", amount), chromedp.ByQuery),
		chromedp.Click(`#buy-grass-btn`, chromedp.ByQuery),
	)
}

// FeedCattle clicks the cattle card.
func FeedCattle(ctx context.Context, cattleID int) error {
	return chromedp.Run(ctx,
		chromedp.Click(fmt.Sprintf(`#cattle-%d`, cattleID), chromedp.ByQuery),
	)
}

// CattleDisplay reads the rendered hunger and timer text for one animal.
func CattleDisplay(ctx context.Context, cattleID int) (hunger, timer string, err error) {
	err = chromedp.Run(ctx,
		chromedp.Text(fmt.Sprintf(`#cattle-%d-hunger`, cattleID), &hunger, chromedp.ByQuery),
		chromedp.Text(fmt.Sprintf(`#cattle-%d-timer`, cattleID), &timer, chromedp.ByQuery),
	)
	return strings.TrimSpace(hunger), strings.TrimSpace(timer), err
}

// SetCattleTimerEnd fabricates a countdown end time for the current user's
// animal, so expiry can be tested without waiting out the full duration.
func SetCattleTimerEnd(ctx context.Context, cattleID int, endTime time.Time) error {
	var ok bool
	err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const session = JSON.parse(localStorage.getItem('farmSession') || 'null');
			const states = JSON.parse(localStorage.getItem('farmGameState') || '{}');
			if (!session || !states[session.id]) return false;
			const cattle = states[session.id].cattle.find(c => c.id === %d);
			if (!cattle) return false;
			cattle.timerEndTime = %d;
			localStorage.setItem('farmGameState', JSON.stringify(states));
			return true;
		})()
	`, cattleID, endTime.UnixMilli()), &ok))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no stored game state for cattle %d", cattleID)
	}
	return nil
}

// SetAccountPoints overwrites the points balance of the current user, the
// way a test fixture seeds an account without going through the admin UI.
func SetAccountPoints(ctx context.Context, points int) error {
	var ok bool
	err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const session = JSON.parse(localStorage.getItem('farmSession') || 'null');
			const accounts = JSON.parse(localStorage.getItem('farmAccounts') || '[]');
			if (!session) return false;
			const account = accounts.find(a => a.id === session.id);
			if (!account) return false;
			account.points = %d;
			session.points = %d;
			localStorage.setItem('farmAccounts', JSON.stringify(accounts));
			localStorage.setItem('farmSession', JSON.stringify(session));
			return true;
		})()
	`, points, points), &ok))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no logged-in account to set points on")
	}
	return nil
}

// --- Stored state ---

// GetStoredAccounts reads the farmAccounts document.
func GetStoredAccounts(ctx context.Context) ([]StoredAccount, error) {
	var accounts []StoredAccount
	err := chromedp.Run(ctx, chromedp.Evaluate(
		`JSON.parse(localStorage.getItem('farmAccounts') || '[]')`, &accounts))
	return accounts, err
}

// GetCurrentSession reads the farmSession document; nil when logged out.
func GetCurrentSession(ctx context.Context) (*StoredSession, error) {
	var session *StoredSession
	err := chromedp.Run(ctx, chromedp.Evaluate(
		`JSON.parse(localStorage.getItem('farmSession') || 'null')`, &session))
	return session, err
}

// GetGameState reads one user's entry from the farmGameState document;
// nil when the user has no game state yet.
func GetGameState(ctx context.Context, userID string) (*StoredGameState, error) {
	var state *StoredGameState
	err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(
		`(JSON.parse(localStorage.getItem('farmGameState') || '{}')[%q] || null)`, userID), &state))
	return state, err
}

// --- Internal helpers ---

// WaitUntilHidden waits until the element is hidden (display: none) or removed.
func WaitUntilHidden(selector string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			timeout := time.After(10 * time.Second)
			for {
				select {
				case <-ctx.Done():
					return fmt.Errorf("context cancelled while waiting for %s to have display: none", selector)
				case <-ticker.C:
					var elementExists bool
					err := chromedp.Evaluate(fmt.Sprintf(`document.querySelector('%s') !== null`, selector), &elementExists).Do(ctx)
					if err != nil {
						if strings.Contains(err.Error(), "node for selector") {
							return nil
						}
						return fmt.Errorf("error checking existence of %s: %w", selector, err)
					}
					if !elementExists {
						return nil
					}

					var display string
					err = chromedp.Evaluate(fmt.Sprintf(`window.getComputedStyle(document.querySelector('%s')).display`, selector), &display).Do(ctx)
					if err != nil {
						return fmt.Errorf("error getting display style for %s: %w", selector, err)
					}
					if display == "none" {
						return nil
					}
				case <-timeout:
					return fmt.Errorf("timeout waiting for %s to have display: none (current display: visible)", selector)
				}
			}
		}),
	}
}
