package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/crmdash/backoffice-api/internal/usecase"
)

// AuthHandler exposes registration, login and password-recovery over HTTP.
type AuthHandler struct {
	authUsecase  usecase.AuthUsecase
	resetUsecase usecase.PasswordResetUsecase
	validator    *requestValidator
	logger       *zerolog.Logger

	// exposeResetURL puts the recovery link in the /forgot-password
	// response body. Meant for deployments without outbound email; with
	// a mailer configured the link travels out-of-band only, otherwise
	// anyone who knows an email address could read the token off the wire.
	exposeResetURL bool
}

func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	resetUsecase usecase.PasswordResetUsecase,
	exposeResetURL bool,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:    authUsecase,
		resetUsecase:   resetUsecase,
		validator:      newRequestValidator(),
		logger:         logger,
		exposeResetURL: exposeResetURL,
	}
}

// RegisterRoutes mounts the auth endpoints on the given router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := h.validator.check(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	account, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPasswordMismatch):
			respondError(w, http.StatusBadRequest, "passwords do not match")
		case errors.Is(err, usecase.ErrAccountExists):
			respondError(w, http.StatusBadRequest, "account already exists")
		default:
			h.logger.Error().Err(err).Msg("failed to register account")
			respondInternalError(w)
		}
		return
	}

	respondJSON(w, http.StatusCreated, RegisterResponse{
		Message: "account registered successfully",
		Account: newAccountResponse(account),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := h.validator.check(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		UsernameOrEmail: req.UsernameOrEmail,
		Password:        req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			respondError(w, http.StatusBadRequest, "invalid credentials")
			return
		}

		h.logger.Error().Err(err).Msg("failed to log in")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Message: "logged in successfully",
		Success: true,
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := h.validator.check(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	resetURL, err := h.resetUsecase.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, usecase.ErrAccountNotFound) {
			respondError(w, http.StatusBadRequest, "account not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to request password reset")
		respondInternalError(w)
		return
	}

	resp := ForgotPasswordResponse{Message: "password reset link sent"}
	if h.exposeResetURL {
		resp.ResetURL = resetURL
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := h.validator.check(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.resetUsecase.ResetPassword(r.Context(), req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPasswordMismatch):
			respondError(w, http.StatusBadRequest, "passwords do not match")
		case errors.Is(err, usecase.ErrTokenInvalid):
			respondError(w, http.StatusBadRequest, "reset token is invalid")
		case errors.Is(err, usecase.ErrTokenExpired):
			respondError(w, http.StatusBadRequest, "reset token has expired")
		default:
			h.logger.Error().Err(err).Msg("failed to reset password")
			respondInternalError(w)
		}
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Message: "password reset successfully",
		Success: true,
	})
}
