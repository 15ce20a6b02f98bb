package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/internal/users"
	"github.com/merthanaya/pos-backend/pkg/config"
	"github.com/merthanaya/pos-backend/pkg/db/models"
	"github.com/merthanaya/pos-backend/pkg/enums"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/identity"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/types"
)

// Outcome classifies how a bearer credential resolved.
type Outcome int

const (
	OutcomeAnonymous Outcome = iota
	OutcomeAuthenticated
	OutcomeRejected
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnonymous:
		return "anonymous"
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeRejected:
		return "rejected"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Resolution is the result of resolving a bearer credential.
type Resolution struct {
	User    *types.UserContext
	Outcome Outcome
	Err     error
}

// UserOrNil degrades every non-authenticated outcome to "no user".
func (r Resolution) UserOrNil() *types.UserContext {
	if r.Outcome != OutcomeAuthenticated {
		return nil
	}
	return r.User
}

type tokenVerifier interface {
	GetUser(ctx context.Context, accessToken string) (*identity.User, error)
}

type profileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Gateway turns bearer credentials into request-scoped callers.
type Gateway struct {
	verifier tokenVerifier
	profiles profileRepository
	policy   string
	logg     *logger.Logger
}

type GatewayParams struct {
	Verifier        tokenVerifier
	Profiles        profileRepository
	ProfilelessRole string
	Logger          *logger.Logger
}

func NewGateway(params GatewayParams) (*Gateway, error) {
	if params.Verifier == nil {
		return nil, fmt.Errorf("token verifier is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	policy := strings.ToLower(strings.TrimSpace(params.ProfilelessRole))
	switch policy {
	case "":
		policy = config.ProfilelessAdmin
	case config.ProfilelessAdmin, config.ProfilelessStaff, config.ProfilelessDeny:
	default:
		return nil, fmt.Errorf("unknown profile-less policy %q", params.ProfilelessRole)
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Gateway{verifier: params.Verifier, profiles: params.Profiles, policy: policy, logg: logg}, nil
}

// Resolve validates token with the provider and attaches the stored profile.
func (g *Gateway) Resolve(ctx context.Context, token string) Resolution {
	token = strings.TrimSpace(token)
	if token == "" {
		return Resolution{Outcome: OutcomeAnonymous}
	}

	account, err := g.verifier.GetUser(ctx, token)
	if err != nil {
		return Resolution{Outcome: classify(err), Err: err}
	}

	profile, err := g.profiles.FindByID(ctx, account.ID)
	switch {
	case err == nil:
		user := users.ToUserContext(profile)
		user.Email = account.Email
		return Resolution{User: user, Outcome: OutcomeAuthenticated}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return g.profileless(ctx, account)
	default:
		return Resolution{Outcome: OutcomeUnavailable, Err: pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user profile")}
	}
}

func (g *Gateway) profileless(ctx context.Context, account *identity.User) Resolution {
	ctx = g.logg.WithFields(ctx, map[string]any{
		"user_id": account.ID.String(),
		"policy":  g.policy,
	})
	g.logg.Warn(ctx, "auth.profileless_fallback")

	if g.policy == config.ProfilelessDeny {
		return Resolution{Outcome: OutcomeRejected, Err: pkgerrors.New(pkgerrors.CodeUnauthorized, "User profile not found")}
	}

	role := enums.UserRoleAdmin
	if g.policy == config.ProfilelessStaff {
		role = enums.UserRoleStaff
	}
	name := fallbackName(account)
	return Resolution{
		Outcome: OutcomeAuthenticated,
		User: &types.UserContext{
			ID:       account.ID,
			Email:    account.Email,
			FullName: &name,
			Role:     role,
			IsActive: true,
		},
	}
}

// classify separates provider refusals from hard failures.
func classify(err error) Outcome {
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeUnauthorized, pkgerrors.CodeForbidden, pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
		return OutcomeRejected
	default:
		return OutcomeUnavailable
	}
}

func fallbackName(account *identity.User) string {
	if raw, ok := account.UserMetadata["full_name"].(string); ok && strings.TrimSpace(raw) != "" {
		return raw
	}
	if local, _, found := strings.Cut(account.Email, "@"); found && local != "" {
		return local
	}
	return "User"
}

// RequireAuth fails when no active caller resolved.
func RequireAuth(user *types.UserContext) error {
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Not authenticated")
	}
	if !user.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, "User account is deactivated")
	}
	return nil
}

// RequireAdmin fails unless the caller is an active admin.
func RequireAdmin(user *types.UserContext) error {
	if err := RequireAuth(user); err != nil {
		return err
	}
	if !user.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}
	return nil
}
