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
	"github.com/ttbt-io/cattlefarm/tools/e2ehelpers"
)

// The shared helpers live in tools/e2ehelpers so the screenshots tool can use
// them too. These aliases keep the test bodies short.
var (
	CaptureScreenshot    = e2ehelpers.CaptureScreenshot
	DisableCSSAnimations = e2ehelpers.DisableCSSAnimations
	GenerateUsername     = e2ehelpers.GenerateUsername
	ClearState           = e2ehelpers.ClearState
	ExpectAuthPage       = e2ehelpers.ExpectAuthPage
	ExpectAdminPage      = e2ehelpers.ExpectAdminPage
	ExpectUserPage       = e2ehelpers.ExpectUserPage
	Register             = e2ehelpers.Register
	RegisterAndReturn    = e2ehelpers.RegisterAndReturn
	Login                = e2ehelpers.Login
	Logout               = e2ehelpers.Logout
	ExpectMessage        = e2ehelpers.ExpectMessage
	AssignPoints         = e2ehelpers.AssignPoints
	ShowStatusView       = e2ehelpers.ShowStatusView
	BackToGame           = e2ehelpers.BackToGame
	BuyGrass             = e2ehelpers.BuyGrass
	FeedCattle           = e2ehelpers.FeedCattle
	CattleDisplay        = e2ehelpers.CattleDisplay
	SetCattleTimerEnd    = e2ehelpers.SetCattleTimerEnd
	SetAccountPoints     = e2ehelpers.SetAccountPoints
	GetStoredAccounts    = e2ehelpers.GetStoredAccounts
	GetCurrentSession    = e2ehelpers.GetCurrentSession
	GetGameState         = e2ehelpers.GetGameState
	WaitUntilHidden      = e2ehelpers.WaitUntilHidden
)
