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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

func TestRegisterSuccess(t *testing.T) {
	if *withChromeDP == "" {
		t.Skip("--with-chromedp not set")
	}

	baseURL := startTestServer(t)
	ctx := newBrowserContext(t, 60*time.Second)

	username := GenerateUsername()
	var prefill string

	runStep(t, ctx, "Register a new account",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := ClearState(ctx, baseURL); err != nil {
				return err
			}
			if err := Register(ctx, username, "password123", "password123"); err != nil {
				return err
			}
			return ExpectMessage(ctx, "#auth-message", "註冊成功，即將跳轉到登入頁面", "success")
		}),
	)

	runStep(t, ctx, "Auto-switch back to login with the username prefilled",
		chromedp.WaitVisible(`#login-form.active`, chromedp.ByQuery),
		chromedp.Value(`#login-username`, &prefill, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if prefill != username {
				return fmt.Errorf("expected prefilled username %q, got %q", username, prefill)
			}
			return nil
		}),
	)

	runStep(t, ctx, "New account starts with zero points",
		chromedp.ActionFunc(func(ctx context.Context) error {
			accounts, err := GetStoredAccounts(ctx)
			if err != nil {
				return err
			}
			for _, a := range accounts {
				if a.Username == username {
					if a.Role != "user" || a.Points != 0 {
						return fmt.Errorf("unexpected new account: %+v", a)
					}
					return nil
				}
			}
			return fmt.Errorf("account %q not stored", username)
		}),
	)

	ValidateBrowserState(t, ctx, baseURL)
}

func TestRegisterValidation(t *testing.T) {
	if *withChromeDP == "" {
		t.Skip("--with-chromedp not set")
	}

	baseURL := startTestServer(t)
	ctx := newBrowserContext(t, 60*time.Second)

	runStep(t, ctx, "Fresh state",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return ClearState(ctx, baseURL)
		}),
	)

	cases := []struct {
		name     string
		username string
		password string
		confirm  string
		wantMsg  string
	}{
		{"empty fields", "", "", "", "請填寫所有欄位"},
		{"password mismatch", GenerateUsername(), "password123", "password456", "兩次輸入的密碼不一致"},
		{"short username", "ab", "password123", "password123", "帳號長度至少需要 3 個字元"},
		{"short password", GenerateUsername(), "12345", "12345", "密碼長度至少需要 6 個字元"},
		{"duplicate username", "admin", "password123", "password123", "此帳號已被註冊"},
	}
	for _, tc := range cases {
		runStep(t, ctx, fmt.Sprintf("Reject %s", tc.name),
			chromedp.ActionFunc(func(ctx context.Context) error {
				if err := Register(ctx, tc.username, tc.password, tc.confirm); err != nil {
					return err
				}
				if err := ExpectMessage(ctx, "#auth-message", tc.wantMsg, "error"); err != nil {
					return err
				}
				// The rejected form stays up; go back to the login form
				// so the next case starts from a known state.
				return chromedp.Run(ctx,
					chromedp.Click(`#show-login`, chromedp.ByQuery),
					chromedp.WaitVisible(`#login-form.active`, chromedp.ByQuery),
				)
			}),
		)
	}

	runStep(t, ctx, "Only the seeded admin account exists",
		chromedp.ActionFunc(func(ctx context.Context) error {
			accounts, err := GetStoredAccounts(ctx)
			if err != nil {
				return err
			}
			if len(accounts) != 1 || accounts[0].Username != "admin" {
				return fmt.Errorf("unexpected accounts after rejected registrations: %+v", accounts)
			}
			return nil
		}),
	)
}

func TestRegisterMismatchBeforeLengthChecks(t *testing.T) {
	if *withChromeDP == "" {
		t.Skip("--with-chromedp not set")
	}

	baseURL := startTestServer(t)
	ctx := newBrowserContext(t, 60*time.Second)

	// A short username with mismatched passwords reports the mismatch first.
	runStep(t, ctx, "Mismatch wins over the length checks",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := ClearState(ctx, baseURL); err != nil {
				return err
			}
			if err := Register(ctx, "ab", "12345", "54321"); err != nil {
				return err
			}
			return ExpectMessage(ctx, "#auth-message", "兩次輸入的密碼不一致", "error")
		}),
	)
}
