package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/identity"
	"github.com/merthanaya/pos-backend/pkg/types"
)

type stubSessions struct {
	session    *identity.Session
	err        error
	resetEmail string
	resetErr   error
	signedOut  string
}

func (s *stubSessions) SignInWithPassword(context.Context, string, string) (*identity.Session, error) {
	return s.session, s.err
}

func (s *stubSessions) RefreshSession(context.Context, string) (*identity.Session, error) {
	return s.session, s.err
}

func (s *stubSessions) SignOut(_ context.Context, token string) error {
	s.signedOut = token
	return s.err
}

func (s *stubSessions) ResetPasswordForEmail(_ context.Context, email, _ string) error {
	s.resetEmail = email
	return s.resetErr
}

type stubResolver struct {
	res Resolution
}

func (s stubResolver) Resolve(context.Context, string) Resolution {
	return s.res
}

func buildTestService(t *testing.T, sessions *stubSessions, profiles *stubProfiles, res Resolution) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Provider: sessions, Profiles: profiles, Gateway: stubResolver{res: res}})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestLoginReturnsBearerSession(t *testing.T) {
	id := uuid.New()
	sessions := &stubSessions{session: &identity.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         identity.User{ID: id, Email: "kasir@pos.test"},
	}}
	profiles := &stubProfiles{profile: &models.User{ID: id, Email: "kasir@pos.test", Role: enums.UserRoleStaff, IsActive: true}}
	svc := buildTestService(t, sessions, profiles, Resolution{})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Kasir@pos.test", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken != "access" || resp.RefreshToken != "refresh" {
		t.Fatalf("unexpected tokens %+v", resp)
	}
	if resp.User == nil || resp.User.ID != id {
		t.Fatalf("unexpected user %+v", resp.User)
	}
}

func TestLoginFailures(t *testing.T) {
	id := uuid.New()
	session := &identity.Session{AccessToken: "a", User: identity.User{ID: id}}

	cases := []struct {
		name     string
		sessions *stubSessions
		profiles *stubProfiles
		code     pkgerrors.Code
		message  string
	}{
		{
			name:     "bad credentials",
			sessions: &stubSessions{err: pkgerrors.New(pkgerrors.CodeValidation, "Invalid login credentials")},
			profiles: &stubProfiles{},
			code:     pkgerrors.CodeUnauthorized,
			message:  "Invalid credentials",
		},
		{
			name:     "missing profile",
			sessions: &stubSessions{session: session},
			profiles: &stubProfiles{},
			code:     pkgerrors.CodeNotFound,
			message:  "User profile not found",
		},
		{
			name:     "deactivated",
			sessions: &stubSessions{session: session},
			profiles: &stubProfiles{profile: &models.User{ID: id, IsActive: false}},
			code:     pkgerrors.CodeForbidden,
			message:  "User account is deactivated",
		},
		{
			name:     "provider down",
			sessions: &stubSessions{err: pkgerrors.New(pkgerrors.CodeDependency, "identity provider unavailable")},
			profiles: &stubProfiles{},
			code:     pkgerrors.CodeDependency,
			message:  "identity provider unavailable",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := buildTestService(t, tc.sessions, tc.profiles, Resolution{})
			_, err := svc.Login(context.Background(), LoginRequest{Email: "a@pos.test", Password: "pw"})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.code || typed.Message() != tc.message {
				t.Fatalf("expected %s %q, got %v", tc.code, tc.message, err)
			}
		})
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	sessions := &stubSessions{err: errors.New("network")}
	svc := buildTestService(t, sessions, &stubProfiles{}, Resolution{})

	resp := svc.Logout(context.Background(), "token")
	if resp.Message != "Logged out successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if sessions.signedOut != "token" {
		t.Fatal("expected provider sign-out with the caller token")
	}
}

func TestVerify(t *testing.T) {
	user := &types.UserContext{ID: uuid.New(), IsActive: true}
	valid := buildTestService(t, &stubSessions{}, &stubProfiles{}, Resolution{User: user, Outcome: OutcomeAuthenticated})
	if resp := valid.Verify(context.Background(), "t"); !resp.Valid || resp.User != user {
		t.Fatalf("expected valid response, got %+v", resp)
	}

	invalid := buildTestService(t, &stubSessions{}, &stubProfiles{}, Resolution{Outcome: OutcomeUnavailable, Err: errors.New("down")})
	if resp := invalid.Verify(context.Background(), "t"); resp.Valid || resp.User != nil {
		t.Fatalf("expected invalid response, got %+v", resp)
	}
}

func TestForgotPasswordIsNeutral(t *testing.T) {
	sessions := &stubSessions{resetErr: pkgerrors.New(pkgerrors.CodeNotFound, "no user")}
	svc := buildTestService(t, sessions, &stubProfiles{}, Resolution{})

	resp := svc.ForgotPassword(context.Background(), " Someone@POS.test ")
	if resp.Message != forgotPasswordMessage {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if sessions.resetEmail != "someone@pos.test" {
		t.Fatalf("expected normalized email, got %q", sessions.resetEmail)
	}
}

func TestRefresh(t *testing.T) {
	ok := buildTestService(t, &stubSessions{session: &identity.Session{AccessToken: "new", RefreshToken: "r2"}}, &stubProfiles{}, Resolution{})
	pair, err := ok.Refresh(context.Background(), "r1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.AccessToken != "new" || pair.TokenType != "bearer" {
		t.Fatalf("unexpected pair %+v", pair)
	}

	refused := buildTestService(t, &stubSessions{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid grant")}, &stubProfiles{}, Resolution{})
	_, err = refused.Refresh(context.Background(), "r1")
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "Invalid refresh token" {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestMe(t *testing.T) {
	if _, err := Me(nil); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	user := &types.UserContext{ID: uuid.New(), IsActive: true}
	got, err := Me(user)
	if err != nil || got != user {
		t.Fatalf("unexpected result %v %v", got, err)
	}
}
