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

// The view controller is an exclusive-choice state machine kept separate
// from rendering so it can be tested without a browser. The frontend
// mirrors these transitions with CSS class toggles.

// Page is the top-level view.
type Page string

const (
	PageAuth  Page = "auth"
	PageAdmin Page = "admin"
	PageUser  Page = "user"
)

// AuthForm is the nested exclusive pair inside PageAuth.
type AuthForm string

const (
	AuthFormLogin    AuthForm = "login"
	AuthFormRegister AuthForm = "register"
)

// UserView is the nested exclusive pair inside PageUser.
type UserView string

const (
	UserViewGame   UserView = "game"
	UserViewStatus UserView = "status"
)

// ViewState is the full view-controller state. Exactly one page is
// active; within auth and user exactly one nested view is active.
type ViewState struct {
	Page     Page
	AuthForm AuthForm
	UserView UserView

	// PrefillUsername carries the just-registered username back to the
	// login form.
	PrefillUsername string
}

// ViewEvent is a discrete user action or operation outcome driving a
// transition.
type ViewEvent struct {
	Kind ViewEventKind

	// Role applies to EventLoginSucceeded.
	Role string
	// Username applies to EventRegisterSucceeded.
	Username string
}

type ViewEventKind string

const (
	EventLoginSucceeded    ViewEventKind = "login_succeeded"
	EventLoggedOut         ViewEventKind = "logged_out"
	EventShowRegister      ViewEventKind = "show_register"
	EventShowLogin         ViewEventKind = "show_login"
	EventRegisterSucceeded ViewEventKind = "register_succeeded"
	EventShowStatus        ViewEventKind = "show_status"
	EventBackToGame        ViewEventKind = "back_to_game"
)

// InitialView is the state before any session exists: auth page, login
// form.
func InitialView() ViewState {
	return ViewState{Page: PageAuth, AuthForm: AuthFormLogin, UserView: UserViewGame}
}

// ViewForSession selects the view for an existing session, as on page
// reload: admin role lands on the admin page, user role on the user page
// with the game view; no session falls back to the auth page.
func ViewForSession(s *Session) ViewState {
	if s == nil {
		return InitialView()
	}
	v := InitialView()
	if s.Role == RoleAdmin {
		v.Page = PageAdmin
	} else {
		v.Page = PageUser
	}
	return v
}

// Transition is the pure transition function. Events that do not apply to
// the current state leave it unchanged.
func Transition(v ViewState, ev ViewEvent) ViewState {
	switch ev.Kind {
	case EventLoginSucceeded:
		if ev.Role == RoleAdmin {
			v.Page = PageAdmin
		} else {
			v.Page = PageUser
			v.UserView = UserViewGame
		}
		v.PrefillUsername = ""
	case EventLoggedOut:
		v = InitialView()
	case EventShowRegister:
		if v.Page == PageAuth {
			v.AuthForm = AuthFormRegister
		}
	case EventShowLogin:
		if v.Page == PageAuth {
			v.AuthForm = AuthFormLogin
		}
	case EventRegisterSucceeded:
		if v.Page == PageAuth {
			v.AuthForm = AuthFormLogin
			v.PrefillUsername = ev.Username
		}
	case EventShowStatus:
		if v.Page == PageUser {
			v.UserView = UserViewStatus
		}
	case EventBackToGame:
		if v.Page == PageUser {
			v.UserView = UserViewGame
		}
	}
	return v
}
