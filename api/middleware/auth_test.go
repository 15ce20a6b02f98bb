package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/merthanaya/pos-backend/internal/auth"
	"github.com/merthanaya/pos-backend/pkg/enums"
	"github.com/merthanaya/pos-backend/pkg/types"
)

type stubResolver struct {
	res   auth.Resolution
	calls int
	token string
}

func (s *stubResolver) Resolve(ctx context.Context, token string) auth.Resolution {
	s.calls++
	s.token = token
	return s.res
}

type captured struct {
	user  *types.UserContext
	token string
	hit   bool
}

func capture(c *captured) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.hit = true
		c.user = UserFromContext(r.Context())
		c.token = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityAnonymousWithoutHeader(t *testing.T) {
	res := &stubResolver{}
	var got captured
	Identity(res, nil)(capture(&got)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !got.hit || got.user != nil {
		t.Fatalf("expected anonymous pass-through, got %+v", got)
	}
	if res.calls != 0 {
		t.Fatalf("resolver should not be called without a token")
	}
}

func TestIdentityAuthenticated(t *testing.T) {
	user := &types.UserContext{ID: uuid.New(), Role: enums.UserRoleStaff, IsActive: true}
	res := &stubResolver{res: auth.Resolution{Outcome: auth.OutcomeAuthenticated, User: user}}
	var got captured

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	Identity(res, nil)(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got.user != user {
		t.Fatalf("expected resolved user in context")
	}
	if got.token != "abc.def.ghi" || res.token != "abc.def.ghi" {
		t.Fatalf("expected token propagated, got ctx=%q resolver=%q", got.token, res.token)
	}
}

func TestIdentityNeverRejects(t *testing.T) {
	outcomes := []auth.Resolution{
		{Outcome: auth.OutcomeRejected, Err: errors.New("expired")},
		{Outcome: auth.OutcomeUnavailable, Err: errors.New("provider down")},
	}
	for _, outcome := range outcomes {
		var got captured
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()

		Identity(&stubResolver{res: outcome}, nil)(capture(&got)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || !got.hit {
			t.Fatalf("%s: expected request to continue, got %d", outcome.Outcome, rec.Code)
		}
		if got.user != nil {
			t.Fatalf("%s: expected no user", outcome.Outcome)
		}
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"abc":          "abc",
		"":             "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := BearerToken(req); got != want {
			t.Fatalf("header %q: expected %q got %q", header, want, got)
		}
	}
}

func TestRoleGuards(t *testing.T) {
	staff := &types.UserContext{ID: uuid.New(), Role: enums.UserRoleStaff, IsActive: true}
	admin := &types.UserContext{ID: uuid.New(), Role: enums.UserRoleAdmin, IsActive: true}
	inactive := &types.UserContext{ID: uuid.New(), Role: enums.UserRoleAdmin}

	cases := []struct {
		name  string
		guard func(http.Handler) http.Handler
		user  *types.UserContext
		want  int
	}{
		{"auth anonymous", RequireAuth(nil), nil, http.StatusUnauthorized},
		{"auth inactive", RequireAuth(nil), inactive, http.StatusForbidden},
		{"auth staff", RequireAuth(nil), staff, http.StatusOK},
		{"admin staff", RequireAdmin(nil), staff, http.StatusForbidden},
		{"admin admin", RequireAdmin(nil), admin, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.user != nil {
			req = req.WithContext(WithUser(req.Context(), tc.user))
		}
		rec := httptest.NewRecorder()
		var got captured
		tc.guard(capture(&got)).ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, rec.Code)
		}
	}
}
