package auth

import "github.com/merthanaya/pos-backend/pkg/types"

const tokenTypeBearer = "bearer"

// LoginRequest is the login payload accepted by the auth endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after a successful password grant.
type LoginResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	TokenType    string             `json:"token_type"`
	User         *types.UserContext `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is returned by the refresh grant.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type VerifyResponse struct {
	Valid bool               `json:"valid"`
	User  *types.UserContext `json:"user,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
