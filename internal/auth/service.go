package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/internal/users"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/identity"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/types"
)

const (
	logoutMessage         = "Logged out successfully"
	forgotPasswordMessage = "If an account with this email exists, a password reset link has been sent."
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessToken string) *MessageResponse
	Verify(ctx context.Context, accessToken string) *VerifyResponse
	ForgotPassword(ctx context.Context, email string) *MessageResponse
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type sessionProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

type resolver interface {
	Resolve(ctx context.Context, token string) Resolution
}

type service struct {
	provider      sessionProvider
	profiles      profileRepository
	gateway       resolver
	resetRedirect string
	logg          *logger.Logger
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Provider      sessionProvider
	Profiles      profileRepository
	Gateway       resolver
	ResetRedirect string
	Logger        *logger.Logger
}

// NewService constructs the auth endpoints service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("session provider is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		provider:      params.Provider,
		profiles:      params.Profiles,
		gateway:       params.Gateway,
		resetRedirect: params.ResetRedirect,
		logg:          logg,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	session, err := s.provider.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeDependency) || pkgerrors.IsCode(err, pkgerrors.CodeRateLimit) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid credentials")
	}
	if session.User.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials")
	}

	profile, err := s.profiles.FindByID(ctx, session.User.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user profile")
	}
	if !profile.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "User account is deactivated")
	}

	user := users.ToUserContext(profile)
	user.Email = session.User.Email
	return &LoginResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    tokenTypeBearer,
		User:         user,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) *MessageResponse {
	if strings.TrimSpace(accessToken) != "" {
		if err := s.provider.SignOut(ctx, accessToken); err != nil {
			s.logg.Warn(ctx, "auth.logout_failed")
		}
	}
	return &MessageResponse{Message: logoutMessage}
}

func (s *service) Verify(ctx context.Context, accessToken string) *VerifyResponse {
	user := s.gateway.Resolve(ctx, accessToken).UserOrNil()
	if user == nil {
		return &VerifyResponse{Valid: false}
	}
	return &VerifyResponse{Valid: true, User: user}
}

func (s *service) ForgotPassword(ctx context.Context, email string) *MessageResponse {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if err := s.provider.ResetPasswordForEmail(ctx, email, s.resetRedirect); err != nil {
			s.logg.Warn(ctx, "auth.password_reset_failed")
		}
	}
	return &MessageResponse{Message: forgotPasswordMessage}
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid refresh token")
	}
	session, err := s.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid refresh token")
	}
	if session.AccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid refresh token")
	}
	return &TokenPair{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    tokenTypeBearer,
	}, nil
}

// Me returns the caller once RequireAuth passes.
func Me(user *types.UserContext) (*types.UserContext, error) {
	if err := RequireAuth(user); err != nil {
		return nil, err
	}
	return user, nil
}
