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
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

func TestAdminEmptyUserList(t *testing.T) {
	if *withChromeDP == "" {
		t.Skip("--with-chromedp not set")
	}

	baseURL := startTestServer(t)
	ctx := newBrowserContext(t, 60*time.Second)

	var noUsersText string

	runStep(t, ctx, "Login as admin with no registered users",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := ClearState(ctx, baseURL); err != nil {
				return err
			}
			if err := Login(ctx, "admin", "admin"); err != nil {
				return err
			}
			return ExpectAdminPage(ctx)
		}),
	)

	runStep(t, ctx, "Empty state placeholder is shown",
		chromedp.Text(`#users-list .no-users`, &noUsersText, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if noUsersText != "目前沒有一般使用者" {
				return fmt.Errorf("unexpected empty state text: %q", noUsersText)
			}
			return nil
		}),
	)

	runStep(t, ctx, "Assigning with no selectable user fails",
		chromedp.SetValue(`#points-amount`, "10", chromedp.ByQuery),
		chromedp.Click(`#assignPointsForm button[type="submit"]`, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return ExpectMessage(ctx, "#admin-message", "請選擇使用者", "error")
		}),
	)
}

func TestAdminAssignPoints(t *testing.T) {
	if *withChromeDP == "" {
		t.Skip("--with-chromedp not set")
	}

	baseURL := startTestServer(t)
	ctx := newBrowserContext(t, 60*time.Second)

	username := GenerateUsername()
	var tableHTML string
	var optionText string

	runStep(t, ctx, "Register a user and login as admin",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := ClearState(ctx, baseURL); err != nil {
				return err
			}
			if err := RegisterAndReturn(ctx, username, "password123"); err != nil {
				return err
			}
			if err := Login(ctx, "admin", "admin"); err != nil {
				return err
			}
			return ExpectAdminPage(ctx)
		}),
	)

	runStep(t, ctx, "User appears in the list and the target select",
		chromedp.OuterHTML(`#users-list`, &tableHTML, chromedp.ByQuery),
		chromedp.Text(`#target-user option:nth-child(2)`, &optionText, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if !strings.Contains(tableHTML, "users-table") || !strings.Contains(tableHTML, username) {
				return fmt.Errorf("users table missing %q: %s", username, tableHTML)
			}
			if optionText != fmt.Sprintf("%s (目前點數: 0)", username) {
				return fmt.Errorf("unexpected target option text: %q", optionText)
			}
			return nil
		}),
	)

	runStep(t, ctx, "Assign 100 points",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := AssignPoints(ctx, username, 100); err != nil {
				return err
			}
			return ExpectMessage(ctx, "#admin-message",
				fmt.Sprintf("成功為 %s 增加 100 點數", username), "success")
		}),
	)

	runStep(t, ctx, "Assign 50 more; assignment is additive",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := AssignPoints(ctx, username, 50); err != nil {
				return err
			}
			if err := ExpectMessage(ctx, "#admin-message",
				fmt.Sprintf("成功為 %s 增加 50 點數", username), "success"); err != nil {
				return err
			}
			accounts, err := GetStoredAccounts(ctx)
			if err != nil {
				return err
			}
			for _, a := range accounts {
				if a.Username == username {
					if a.Points != 150 {
						return fmt.Errorf("expected 150 points, got %d", a.Points)
					}
					return nil
				}
			}
			return fmt.Errorf("account %q not found", username)
		}),
	)

	runStep(t, ctx, "List refreshes with the new balance",
		chromedp.Text(`#target-user option:nth-child(2)`, &optionText, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if optionText != fmt.Sprintf("%s (目前點數: 150)", username) {
				return fmt.Errorf("target option not refreshed: %q", optionText)
			}
			return nil
		}),
	)

	ValidateBrowserState(t, ctx, baseURL)
}

func TestAdminAssignPointsValidation(t *testing.T) {
	if *withChromeDP == "" {
		t.Skip("--with-chromedp not set")
	}

	baseURL := startTestServer(t)
	ctx := newBrowserContext(t, 60*time.Second)

	username := GenerateUsername()

	runStep(t, ctx, "Setup: one user, admin logged in",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := ClearState(ctx, baseURL); err != nil {
				return err
			}
			if err := RegisterAndReturn(ctx, username, "password123"); err != nil {
				return err
			}
			if err := Login(ctx, "admin", "admin"); err != nil {
				return err
			}
			return ExpectAdminPage(ctx)
		}),
	)

	runStep(t, ctx, "Submitting without a target is rejected",
		chromedp.SetValue(`#points-amount`, "10", chromedp.ByQuery),
		chromedp.Click(`#assignPointsForm button[type="submit"]`, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return ExpectMessage(ctx, "#admin-message", "請選擇使用者", "error")
		}),
	)

	runStep(t, ctx, "Zero amount is rejected",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := AssignPoints(ctx, username, 0); err != nil {
				return err
			}
			return ExpectMessage(ctx, "#admin-message", "請輸入有效的點數數量", "error")
		}),
	)

	runStep(t, ctx, "Negative amount is rejected",
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := AssignPoints(ctx, username, -5); err != nil {
				return err
			}
			return ExpectMessage(ctx, "#admin-message", "請輸入有效的點數數量", "error")
		}),
	)

	runStep(t, ctx, "Balance is untouched",
		chromedp.ActionFunc(func(ctx context.Context) error {
			accounts, err := GetStoredAccounts(ctx)
			if err != nil {
				return err
			}
			for _, a := range accounts {
				if a.Username == username && a.Points != 0 {
					return fmt.Errorf("points changed by rejected assignments: %d", a.Points)
				}
			}
			return nil
		}),
	)
}
