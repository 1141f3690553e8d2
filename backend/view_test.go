package backend

import "testing"

func TestInitialView(t *testing.T) {
	v := InitialView()
	if v.Page != PageAuth || v.AuthForm != AuthFormLogin || v.UserView != UserViewGame {
		t.Errorf("Unexpected initial view: %+v", v)
	}
}

func TestViewForSession(t *testing.T) {
	if v := ViewForSession(nil); v.Page != PageAuth {
		t.Errorf("No session should land on the auth page, got %+v", v)
	}
	if v := ViewForSession(&Session{Role: RoleAdmin}); v.Page != PageAdmin {
		t.Errorf("Admin session should land on the admin page, got %+v", v)
	}
	v := ViewForSession(&Session{Role: RoleUser})
	if v.Page != PageUser || v.UserView != UserViewGame {
		t.Errorf("User session should land on the game view, got %+v", v)
	}
}

func TestTransition(t *testing.T) {
	cases := []struct {
		name  string
		start ViewState
		ev    ViewEvent
		want  ViewState
	}{
		{
			"show register",
			InitialView(),
			ViewEvent{Kind: EventShowRegister},
			ViewState{Page: PageAuth, AuthForm: AuthFormRegister, UserView: UserViewGame},
		},
		{
			"show login",
			ViewState{Page: PageAuth, AuthForm: AuthFormRegister, UserView: UserViewGame},
			ViewEvent{Kind: EventShowLogin},
			InitialView(),
		},
		{
			"register success returns to login with prefill",
			ViewState{Page: PageAuth, AuthForm: AuthFormRegister, UserView: UserViewGame},
			ViewEvent{Kind: EventRegisterSucceeded, Username: "alice"},
			ViewState{Page: PageAuth, AuthForm: AuthFormLogin, UserView: UserViewGame, PrefillUsername: "alice"},
		},
		{
			"admin login",
			InitialView(),
			ViewEvent{Kind: EventLoginSucceeded, Role: RoleAdmin},
			ViewState{Page: PageAdmin, AuthForm: AuthFormLogin, UserView: UserViewGame},
		},
		{
			"user login clears the prefill",
			ViewState{Page: PageAuth, AuthForm: AuthFormLogin, UserView: UserViewGame, PrefillUsername: "alice"},
			ViewEvent{Kind: EventLoginSucceeded, Role: RoleUser},
			ViewState{Page: PageUser, AuthForm: AuthFormLogin, UserView: UserViewGame},
		},
		{
			"status view",
			ViewState{Page: PageUser, AuthForm: AuthFormLogin, UserView: UserViewGame},
			ViewEvent{Kind: EventShowStatus},
			ViewState{Page: PageUser, AuthForm: AuthFormLogin, UserView: UserViewStatus},
		},
		{
			"back to game",
			ViewState{Page: PageUser, AuthForm: AuthFormLogin, UserView: UserViewStatus},
			ViewEvent{Kind: EventBackToGame},
			ViewState{Page: PageUser, AuthForm: AuthFormLogin, UserView: UserViewGame},
		},
		{
			"logout from admin",
			ViewState{Page: PageAdmin, AuthForm: AuthFormLogin, UserView: UserViewGame},
			ViewEvent{Kind: EventLoggedOut},
			InitialView(),
		},
		{
			"logout resets the status view",
			ViewState{Page: PageUser, AuthForm: AuthFormLogin, UserView: UserViewStatus},
			ViewEvent{Kind: EventLoggedOut},
			InitialView(),
		},
		{
			"status event ignored outside the user page",
			ViewState{Page: PageAdmin, AuthForm: AuthFormLogin, UserView: UserViewGame},
			ViewEvent{Kind: EventShowStatus},
			ViewState{Page: PageAdmin, AuthForm: AuthFormLogin, UserView: UserViewGame},
		},
		{
			"register event ignored outside the auth page",
			ViewState{Page: PageUser, AuthForm: AuthFormLogin, UserView: UserViewGame},
			ViewEvent{Kind: EventShowRegister},
			ViewState{Page: PageUser, AuthForm: AuthFormLogin, UserView: UserViewGame},
		},
	}
	for _, tc := range cases {
		if got := Transition(tc.start, tc.ev); got != tc.want {
			t.Errorf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}
