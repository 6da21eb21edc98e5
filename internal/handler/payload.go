package handler

import (
	"time"

	"github.com/crmdash/backoffice-api/internal/model"
)

type RegisterRequest struct {
	Username        string `json:"username"        validate:"required,min=3,max=32"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// AccountResponse is the redacted account view. Password hashes and
// reset-token state never appear in any response body.
type AccountResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	LoginCount  int64      `json:"loginCount,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type RegisterResponse struct {
	Message string          `json:"message"`
	Account AccountResponse `json:"account"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password"        validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ForgotPasswordResponse struct {
	Message  string `json:"message"`
	ResetURL string `json:"resetUrl,omitempty"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"           validate:"required"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

func newAccountResponse(account *model.Account) AccountResponse {
	return AccountResponse{
		ID:          account.ID.Hex(),
		Username:    account.Username,
		Email:       account.Email,
		LastLoginAt: account.LastLoginAt,
		LoginCount:  account.LoginCount,
		CreatedAt:   account.CreatedAt,
	}
}
