package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/infrastructure/session"
)

type stubAuthAPI struct {
	calls []string

	loginFn    func(email, password string) (*ports.APIResponse, error)
	signupFn   func(name, email, password string) (*ports.APIResponse, error)
	whoAmIFn   func(token string) (*ports.APIResponse, error)
	userByIDFn func(token, id string) (*ports.APIResponse, error)
	profileFn  func(token string) (*ports.APIResponse, error)
	recoveryFn func(step string) (*ports.APIResponse, error)
}

func (s *stubAuthAPI) record(call string) { s.calls = append(s.calls, call) }

func (s *stubAuthAPI) Login(_ context.Context, email, password string) (*ports.APIResponse, error) {
	s.record("login")
	return s.loginFn(email, password)
}

func (s *stubAuthAPI) Signup(_ context.Context, name, email, password string) (*ports.APIResponse, error) {
	s.record("signup")
	return s.signupFn(name, email, password)
}

func (s *stubAuthAPI) Logout(_ context.Context, _ string) (*ports.APIResponse, error) {
	s.record("logout")
	return nil, errors.New("logout endpoint unavailable")
}

func (s *stubAuthAPI) WhoAmI(_ context.Context, token string) (*ports.APIResponse, error) {
	s.record("who-am-i")
	if s.whoAmIFn == nil {
		return nil, fmt.Errorf("unexpected who-am-i: %w", domain.ErrNetwork)
	}
	return s.whoAmIFn(token)
}

func (s *stubAuthAPI) UserByID(_ context.Context, token, id string) (*ports.APIResponse, error) {
	s.record("user/" + id)
	if s.userByIDFn == nil {
		return nil, fmt.Errorf("unexpected user lookup: %w", domain.ErrNetwork)
	}
	return s.userByIDFn(token, id)
}

func (s *stubAuthAPI) Profile(_ context.Context, token string) (*ports.APIResponse, error) {
	s.record("profile")
	return s.profileFn(token)
}

func (s *stubAuthAPI) ForgotPassword(_ context.Context, email string) (*ports.APIResponse, error) {
	s.record("forgot:" + email)
	return s.recoveryFn("forgot")
}

func (s *stubAuthAPI) VerifyOTP(_ context.Context, email, otp string) (*ports.APIResponse, error) {
	s.record("verify:" + email + ":" + otp)
	return s.recoveryFn("verify")
}

func (s *stubAuthAPI) ResetPassword(_ context.Context, email, otp, _ string) (*ports.APIResponse, error) {
	s.record("reset:" + email + ":" + otp)
	return s.recoveryFn("reset")
}

func (s *stubAuthAPI) SendEmail(_ context.Context, _ ports.EmailMessage) (*ports.APIResponse, error) {
	s.record("email")
	return &ports.APIResponse{Status: http.StatusOK, Body: map[string]any{}}, nil
}

// fakeSession is an in-memory SessionStore with a switchable active flag.
type fakeSession struct {
	token   string
	active  bool
	user    *domain.User
	cleared int
}

func (f *fakeSession) Persist(_ context.Context, token string) error {
	f.token = token
	f.active = true
	f.user = nil
	return nil
}

func (f *fakeSession) IsActive(_ context.Context) bool { return f.active && f.token != "" }

func (f *fakeSession) Clear(_ context.Context) error {
	f.token, f.active, f.user = "", false, nil
	f.cleared++
	return nil
}

func (f *fakeSession) PeekToken(_ context.Context) (string, bool) { return f.token, f.token != "" }

func (f *fakeSession) CacheUser(_ context.Context, user *domain.User) error {
	f.user = user
	return nil
}

func (f *fakeSession) CachedUser(_ context.Context) (*domain.User, bool) {
	return f.user, f.user != nil
}

func respond(status int, body map[string]any) (*ports.APIResponse, error) {
	if body == nil {
		body = map[string]any{}
	}
	return &ports.APIResponse{Status: status, Body: body}, nil
}

func newGateway(api *stubAuthAPI, session *fakeSession) *AuthGateway {
	return NewAuthGateway(api, session, zerolog.Nop())
}

func TestAuthGateway_Login_NormalizesEmail(t *testing.T) {
	var seen []string
	api := &stubAuthAPI{
		loginFn: func(email, password string) (*ports.APIResponse, error) {
			seen = append(seen, email+"|"+password)
			return respond(http.StatusUnauthorized, map[string]any{"message": "nope"})
		},
	}
	gw := newGateway(api, &fakeSession{})

	gw.Login(context.Background(), domain.Credentials{Email: "  A@B.com ", Password: " Pass "})
	gw.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: " Pass "})

	if len(seen) != 2 || seen[0] != seen[1] {
		t.Fatalf("expected identical request bodies, got %v", seen)
	}
	if seen[0] != "a@b.com| Pass " {
		t.Fatalf("password must not be altered, got %q", seen[0])
	}
}

func TestAuthGateway_Login_TokenOnlyRunsEnrichmentChain(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{"token": "t"})
		},
		whoAmIFn: func(token string) (*ports.APIResponse, error) {
			if token != "t" {
				t.Fatalf("who-am-i must use the persisted token, got %q", token)
			}
			return respond(http.StatusOK, map[string]any{"id": "u1"})
		},
		userByIDFn: func(token, id string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{"user": map[string]any{
				"id":               id,
				"name":             "Ada",
				"email":            "ada@example.com",
				"roles":            []any{"client"},
				"onboarding_stage": "team_creation_step2",
			}})
		},
	}
	session := &fakeSession{}
	gw := newGateway(api, session)

	res := gw.Login(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "pw"})
	if !res.Success || res.Token != "t" {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := []string{"login", "who-am-i", "user/u1"}
	if fmt.Sprint(api.calls) != fmt.Sprint(want) {
		t.Fatalf("expected calls %v, got %v", want, api.calls)
	}
	if session.token != "t" {
		t.Fatalf("token not persisted")
	}
	if session.user == nil || session.user.OnboardingStage != "team_creation_step2" {
		t.Fatalf("enriched user not cached: %+v", session.user)
	}
	if got := Decide(res.User); got != domain.TargetOnboarding {
		t.Fatalf("expected onboarding, got %s", got)
	}
}

func TestAuthGateway_Login_UserWithIDSkipsWhoAmI(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{
				"accessToken": "t",
				"user":        map[string]any{"id": 42.0, "email": "x@y.com"},
			})
		},
		userByIDFn: func(_, id string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{
				"id": id, "email": "x@y.com", "roles": "member",
			})
		},
	}
	gw := newGateway(api, &fakeSession{})

	res := gw.Login(context.Background(), domain.Credentials{Email: "x@y.com", Password: "pw"})
	if fmt.Sprint(api.calls) != "[login user/42]" {
		t.Fatalf("unexpected calls: %v", api.calls)
	}
	if !res.User.Roles.Has("member") {
		t.Fatalf("detail response must replace the user: %+v", res.User)
	}
	if Decide(res.User) != domain.TargetDashboard {
		t.Fatalf("member should land on dashboard")
	}
}

func TestAuthGateway_Login_EnrichmentFailuresReturnPartialUser(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{
				"jwt":  "t",
				"user": map[string]any{"name": "No Id", "email": "n@i.com"},
			})
		},
		whoAmIFn: func(string) (*ports.APIResponse, error) {
			return respond(http.StatusInternalServerError, nil)
		},
	}
	gw := newGateway(api, &fakeSession{})

	res := gw.Login(context.Background(), domain.Credentials{Email: "n@i.com", Password: "pw"})
	if !res.Success {
		t.Fatalf("enrichment failure must not fail login: %+v", res)
	}
	if res.User == nil || res.User.Name != "No Id" {
		t.Fatalf("expected partial user, got %+v", res.User)
	}
	if Decide(res.User) != domain.TargetRoleSelection {
		t.Fatalf("partial user without roles should go to role selection")
	}
}

func TestAuthGateway_Login_DetailFailureKeepsPartialUser(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{"token": "t"})
		},
		whoAmIFn: func(string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{"user": map[string]any{"id": "u9"}})
		},
		userByIDFn: func(_, _ string) (*ports.APIResponse, error) {
			return nil, fmt.Errorf("dial: %w", domain.ErrNetwork)
		},
	}
	gw := newGateway(api, &fakeSession{})

	res := gw.Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "pw"})
	if !res.Success || res.User != nil {
		t.Fatalf("expected success with no user, got %+v", res)
	}
	if fmt.Sprint(api.calls) != "[login who-am-i user/u9]" {
		t.Fatalf("unexpected calls: %v", api.calls)
	}
}

// signedInAsAlice returns a real session store already holding alice's
// session and cached profile.
func signedInAsAlice(t *testing.T) *session.Store {
	t.Helper()
	ctx := context.Background()
	store := session.NewStore(session.NewMemoryKV(), session.Options{Logger: zerolog.Nop()})
	if err := store.Persist(ctx, "alice-token"); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	alice := &domain.User{ID: "a", Email: "alice@x.com", Roles: domain.NewRoleSet("client")}
	if err := store.CacheUser(ctx, alice); err != nil {
		t.Fatalf("CacheUser: %v", err)
	}
	return store
}

func TestAuthGateway_Login_UserWithoutTokenIgnoresPreviousSession(t *testing.T) {
	ctx := context.Background()
	store := signedInAsAlice(t)
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{"user": map[string]any{"email": "bob@x.com"}})
		},
		whoAmIFn: func(token string) (*ports.APIResponse, error) {
			t.Fatalf("who-am-i called with token %q from another session", token)
			return nil, nil
		},
	}
	gw := NewAuthGateway(api, store, zerolog.Nop())

	res := gw.Login(ctx, domain.Credentials{Email: "bob@x.com", Password: "pw"})
	if !res.Success || res.User == nil || res.User.Email != "bob@x.com" {
		t.Fatalf("expected bob's user, got %+v", res)
	}
	if fmt.Sprint(api.calls) != "[login]" {
		t.Fatalf("unexpected calls: %v", api.calls)
	}
	if _, ok := store.PeekToken(ctx); ok {
		t.Fatalf("previous session token must not survive bob's login")
	}
	if u, ok := store.CachedUser(ctx); ok {
		t.Fatalf("previous cached user must not survive bob's login: %+v", u)
	}
}

func TestAuthGateway_Login_NewTokenDropsPreviousCachedUser(t *testing.T) {
	ctx := context.Background()
	store := signedInAsAlice(t)
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{"token": "tb"})
		},
		whoAmIFn: func(token string) (*ports.APIResponse, error) {
			if token != "tb" {
				t.Fatalf("who-am-i must use the new token, got %q", token)
			}
			return respond(http.StatusInternalServerError, nil)
		},
	}
	gw := NewAuthGateway(api, store, zerolog.Nop())

	res := gw.Login(ctx, domain.Credentials{Email: "bob@x.com", Password: "pw"})
	if !res.Success || res.User != nil {
		t.Fatalf("expected success without user, got %+v", res)
	}
	if token, _ := store.PeekToken(ctx); token != "tb" {
		t.Fatalf("expected bob's token stored, got %q", token)
	}
	if u, ok := store.CachedUser(ctx); ok {
		t.Fatalf("cached user belongs to the previous session: %+v", u)
	}
}

func TestAuthGateway_Login_NonSuccessStatusWithTokenIsSuccess(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusBadRequest, map[string]any{
				"authToken": "t", "id": "u1", "name": "Flat", "email": "f@l.at",
			})
		},
		userByIDFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusNotFound, nil)
		},
	}
	session := &fakeSession{}
	gw := newGateway(api, session)

	res := gw.Login(context.Background(), domain.Credentials{Email: "f@l.at", Password: "pw"})
	if !res.Success || res.User == nil || res.User.ID != "u1" {
		t.Fatalf("expected success with flat user, got %+v", res)
	}
	if session.token != "t" {
		t.Fatalf("expected token persisted")
	}
}

func TestAuthGateway_Login_Failure(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
		},
	}
	session := &fakeSession{}
	gw := newGateway(api, session)

	res := gw.Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "bad"})
	if res.Success || res.Message != "Invalid credentials" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if session.token != "" {
		t.Fatalf("no session expected")
	}

	api.loginFn = func(_, _ string) (*ports.APIResponse, error) { return respond(http.StatusBadGateway, nil) }
	if res := gw.Login(context.Background(), domain.Credentials{}); res.Message != domain.MsgLoginFailed {
		t.Fatalf("expected default message, got %q", res.Message)
	}
}

func TestAuthGateway_Login_NetworkError(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(_, _ string) (*ports.APIResponse, error) {
			return nil, fmt.Errorf("connection refused: %w", domain.ErrNetwork)
		},
	}
	gw := newGateway(api, &fakeSession{})

	res := gw.Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "pw"})
	if res.Success || res.Message != "Network error occurred" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAuthGateway_Signup_NoEnrichment(t *testing.T) {
	var gotName, gotEmail string
	api := &stubAuthAPI{
		signupFn: func(name, email, _ string) (*ports.APIResponse, error) {
			gotName, gotEmail = name, email
			return respond(http.StatusCreated, map[string]any{
				"token": "s", "user": map[string]any{"name": name, "email": email},
			})
		},
	}
	session := &fakeSession{}
	gw := newGateway(api, session)

	res := gw.Signup(context.Background(), domain.SignupCredentials{
		Name: "  Ada   King  Lovelace ", Email: " ADA@Example.COM ", Password: "pw",
	})
	if gotName != "Ada King Lovelace" || gotEmail != "ada@example.com" {
		t.Fatalf("unexpected normalisation: %q %q", gotName, gotEmail)
	}
	if !res.Success || res.User == nil || res.User.ID != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if fmt.Sprint(api.calls) != "[signup]" {
		t.Fatalf("signup must not enrich, calls: %v", api.calls)
	}
	if session.token != "s" {
		t.Fatalf("expected token persisted")
	}
}

func TestAuthGateway_Signup_Failure(t *testing.T) {
	api := &stubAuthAPI{
		signupFn: func(_, _, _ string) (*ports.APIResponse, error) {
			return respond(http.StatusConflict, nil)
		},
	}
	gw := newGateway(api, &fakeSession{})

	res := gw.Signup(context.Background(), domain.SignupCredentials{Name: "A B", Email: "a@b.co", Password: "pw"})
	if res.Success || res.Message != "Signup failed" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAuthGateway_GetCurrentUser_InactiveSkipsNetwork(t *testing.T) {
	api := &stubAuthAPI{}
	session := &fakeSession{token: "old", active: false}
	gw := newGateway(api, session)

	if u := gw.GetCurrentUser(context.Background()); u != nil {
		t.Fatalf("expected nil user")
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no network calls, got %v", api.calls)
	}
	if session.cleared != 1 || session.token != "" {
		t.Fatalf("expected session cleared")
	}
}

func TestAuthGateway_GetCurrentUser_RejectedClears(t *testing.T) {
	api := &stubAuthAPI{
		profileFn: func(token string) (*ports.APIResponse, error) {
			if token != "t" {
				t.Fatalf("expected bearer token t, got %q", token)
			}
			return respond(http.StatusServiceUnavailable, nil)
		},
	}
	session := &fakeSession{token: "t", active: true, user: &domain.User{ID: "u1"}}
	gw := newGateway(api, session)

	if u := gw.GetCurrentUser(context.Background()); u != nil {
		t.Fatalf("expected nil user")
	}
	if session.token != "" || session.user != nil {
		t.Fatalf("expected storage emptied, got %+v", session)
	}
}

func TestAuthGateway_GetCurrentUser_Success(t *testing.T) {
	api := &stubAuthAPI{
		profileFn: func(string) (*ports.APIResponse, error) {
			return respond(http.StatusOK, map[string]any{"data": map[string]any{
				"id": "u1", "email": "a@b.co", "roles": []any{map[string]any{"name": "client"}},
			}})
		},
	}
	session := &fakeSession{token: "t", active: true}
	gw := newGateway(api, session)

	u := gw.GetCurrentUser(context.Background())
	if u == nil || u.ID != "u1" || !u.Roles.Has("client") {
		t.Fatalf("unexpected user: %+v", u)
	}
	if session.user != u {
		t.Fatalf("expected cached user replaced")
	}
}

func TestAuthGateway_GetCurrentUser_NetworkErrorKeepsSession(t *testing.T) {
	api := &stubAuthAPI{
		profileFn: func(string) (*ports.APIResponse, error) {
			return nil, fmt.Errorf("timeout: %w", domain.ErrNetwork)
		},
	}
	session := &fakeSession{token: "t", active: true}
	gw := newGateway(api, session)

	if u := gw.GetCurrentUser(context.Background()); u != nil {
		t.Fatalf("expected nil user")
	}
	if session.token != "t" {
		t.Fatalf("network failure must not clear the session")
	}

	session.user = &domain.User{ID: "u1", Roles: domain.NewRoleSet("member")}
	u := gw.GetCurrentUser(context.Background())
	if u == nil || u.ID != "u1" {
		t.Fatalf("expected cached user on network failure, got %+v", u)
	}
	if session.token != "t" {
		t.Fatalf("network failure must not clear the session")
	}
}

func TestAuthGateway_Logout(t *testing.T) {
	api := &stubAuthAPI{}
	session := &fakeSession{token: "t", active: true, user: &domain.User{ID: "u1"}}
	gw := newGateway(api, session)

	if err := gw.Logout(context.Background()); err != nil {
		t.Fatalf("logout must ignore backend failure, got %v", err)
	}
	if session.token != "" || session.user != nil {
		t.Fatalf("expected session cleared")
	}
	if fmt.Sprint(api.calls) != "[logout]" {
		t.Fatalf("expected best-effort backend logout, got %v", api.calls)
	}
}
