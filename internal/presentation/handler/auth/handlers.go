package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/auth"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/json"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/validate"
)

type Handler struct {
	userRepository domain.UserRepository
	tokens         *auth.TokenManager
	passwords      *auth.PasswordHasher
	logger         logging.Logger
}

func NewHandler(
	userRepository domain.UserRepository,
	tokens *auth.TokenManager,
	passwords *auth.PasswordHasher,
	logger logging.Logger,
) *Handler {
	return &Handler{
		userRepository: userRepository,
		tokens:         tokens,
		passwords:      passwords,
		logger:         logger,
	}
}

// RegisterHandler creates an account and returns the first token pair.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	passwordHash, err := h.passwords.Hash(req.Password)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	ctx := r.Context()
	user, err := h.userRepository.Create(ctx, &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			json.WriteError(w, http.StatusConflict, "Email already in use")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	resp, err := h.issueTokens(ctx, user)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	h.logger.Info(logging.Auth, logging.ExternalService, "user registered", map[logging.ExtraKey]any{
		logging.UserID: user.ID,
	})

	json.Write(w, http.StatusCreated, resp)
}

// LoginHandler verifies credentials and rotates the stored refresh
// token. Unknown email and wrong password are indistinguishable to the
// caller.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	user, err := h.userRepository.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			json.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	if !h.passwords.Verify(req.Password, user.PasswordHash) {
		json.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	resp, err := h.issueTokens(ctx, user)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	h.logger.Info(logging.Auth, logging.ExternalService, "user logged in", map[logging.ExtraKey]any{
		logging.UserID: user.ID,
	})

	json.Write(w, http.StatusOK, resp)
}

// RefreshHandler exchanges a valid refresh token for a fresh pair. The
// presented token must match the stored digest, so a rotated-out token
// is single use.
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	claims, err := h.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		json.WriteError(w, http.StatusBadRequest, "Invalid refresh token")
		return
	}

	ctx := r.Context()
	user, err := h.userRepository.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID) {
			json.WriteError(w, http.StatusBadRequest, "Invalid refresh token")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	if user.RefreshTokenHash == "" || !auth.VerifyTokenHash(req.RefreshToken, user.RefreshTokenHash) {
		h.logger.Warn(logging.Auth, logging.ExternalService, "refresh token digest mismatch", map[logging.ExtraKey]any{
			logging.UserID: user.ID,
		})
		json.WriteError(w, http.StatusBadRequest, "Invalid refresh token")
		return
	}

	resp, err := h.issueTokens(ctx, user)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, resp)
}

func (h *Handler) issueTokens(ctx context.Context, user *domain.User) (*authResponse, error) {
	accessToken, err := h.tokens.SignAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.tokens.SignRefreshToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	if err := h.userRepository.UpdateRefreshToken(ctx, user.ID, auth.HashToken(refreshToken)); err != nil {
		return nil, err
	}

	return &authResponse{
		User: userResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
		Tokens: tokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}
