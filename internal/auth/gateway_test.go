package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/identity"
	"github.com/merthanaya/pos-backend/pkg/types"
)

type stubVerifier struct {
	user *identity.User
	err  error
	hits int
}

func (s *stubVerifier) GetUser(context.Context, string) (*identity.User, error) {
	s.hits++
	return s.user, s.err
}

type stubProfiles struct {
	profile *models.User
	err     error
}

func (s *stubProfiles) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.profile == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.profile, nil
}

func buildGateway(t *testing.T, verifier *stubVerifier, profiles *stubProfiles, policy string) *Gateway {
	t.Helper()
	gw, err := NewGateway(GatewayParams{Verifier: verifier, Profiles: profiles, ProfilelessRole: policy})
	if err != nil {
		t.Fatalf("build gateway: %v", err)
	}
	return gw
}

func TestNewGatewayRejectsUnknownPolicy(t *testing.T) {
	_, err := NewGateway(GatewayParams{Verifier: &stubVerifier{}, Profiles: &stubProfiles{}, ProfilelessRole: "owner"})
	if err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestResolveBlankTokenIsAnonymous(t *testing.T) {
	verifier := &stubVerifier{}
	gw := buildGateway(t, verifier, &stubProfiles{}, "")

	res := gw.Resolve(context.Background(), "   ")
	if res.Outcome != OutcomeAnonymous {
		t.Fatalf("expected anonymous, got %s", res.Outcome)
	}
	if verifier.hits != 0 {
		t.Fatal("provider must not be called for a blank token")
	}
}

func TestResolveAttachesProfile(t *testing.T) {
	id := uuid.New()
	name := "Sari"
	verifier := &stubVerifier{user: &identity.User{ID: id, Email: "sari@pos.test"}}
	profiles := &stubProfiles{profile: &models.User{ID: id, Email: "old@pos.test", FullName: &name, Role: enums.UserRoleStaff, IsActive: true}}
	gw := buildGateway(t, verifier, profiles, "")

	res := gw.Resolve(context.Background(), "token")
	if res.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected authenticated, got %s (%v)", res.Outcome, res.Err)
	}
	if res.User.Role != enums.UserRoleStaff || res.User.Email != "sari@pos.test" {
		t.Fatalf("unexpected user %+v", res.User)
	}
}

func TestResolveClassifiesProviderFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Outcome
	}{
		{"refused", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token"), OutcomeRejected},
		{"unknown account", pkgerrors.New(pkgerrors.CodeNotFound, "gone"), OutcomeRejected},
		{"provider down", pkgerrors.New(pkgerrors.CodeDependency, "identity provider unavailable"), OutcomeUnavailable},
		{"untyped", errors.New("boom"), OutcomeUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := buildGateway(t, &stubVerifier{err: tc.err}, &stubProfiles{}, "")
			res := gw.Resolve(context.Background(), "token")
			if res.Outcome != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, res.Outcome)
			}
			if res.UserOrNil() != nil {
				t.Fatal("non-authenticated outcomes must not expose a user")
			}
		})
	}
}

func TestResolveProfileStoreFailureIsUnavailable(t *testing.T) {
	verifier := &stubVerifier{user: &identity.User{ID: uuid.New(), Email: "a@pos.test"}}
	gw := buildGateway(t, verifier, &stubProfiles{err: errors.New("connection refused")}, "")

	res := gw.Resolve(context.Background(), "token")
	if res.Outcome != OutcomeUnavailable {
		t.Fatalf("expected unavailable, got %s", res.Outcome)
	}
	if !pkgerrors.IsCode(res.Err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", res.Err)
	}
}

func TestResolveProfilelessPolicies(t *testing.T) {
	account := &identity.User{ID: uuid.New(), Email: "walkin@pos.test"}

	admin := buildGateway(t, &stubVerifier{user: account}, &stubProfiles{}, "admin").Resolve(context.Background(), "t")
	if admin.Outcome != OutcomeAuthenticated || admin.User.Role != enums.UserRoleAdmin {
		t.Fatalf("admin policy: got %s %+v", admin.Outcome, admin.User)
	}
	if admin.User.FullName == nil || *admin.User.FullName != "walkin" {
		t.Fatalf("expected email local part as name, got %v", admin.User.FullName)
	}

	staff := buildGateway(t, &stubVerifier{user: account}, &stubProfiles{}, "staff").Resolve(context.Background(), "t")
	if staff.Outcome != OutcomeAuthenticated || staff.User.Role != enums.UserRoleStaff {
		t.Fatalf("staff policy: got %s %+v", staff.Outcome, staff.User)
	}

	deny := buildGateway(t, &stubVerifier{user: account}, &stubProfiles{}, "deny").Resolve(context.Background(), "t")
	if deny.Outcome != OutcomeRejected || deny.User != nil {
		t.Fatalf("deny policy: got %s %+v", deny.Outcome, deny.User)
	}
}

func TestRequireAuthAndAdmin(t *testing.T) {
	if err := RequireAuth(nil); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	inactive := &types.UserContext{ID: uuid.New(), Role: enums.UserRoleAdmin}
	if err := RequireAuth(inactive); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for inactive user, got %v", err)
	}
	staff := &types.UserContext{ID: uuid.New(), Role: enums.UserRoleStaff, IsActive: true}
	if err := RequireAuth(staff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := RequireAdmin(staff)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) || pkgerrors.As(err).Message() != "Admin access required" {
		t.Fatalf("expected admin access required, got %v", err)
	}
	admin := &types.UserContext{ID: uuid.New(), Role: enums.UserRoleAdmin, IsActive: true}
	if err := RequireAdmin(admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
