package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/nexus/internal/auth/authctx"
	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/service"
	"github.com/aussiebroadwan/nexus/internal/auth/store"
	"github.com/aussiebroadwan/nexus/pkg/httpx"
)

type UserHandler struct {
	UserService *service.UserService
	RateLimits  RateLimitLister
}

// LoginAttemptsResponse lists the caller's most recent login attempts.
type LoginAttemptsResponse struct {
	Attempts []domain.LoginAttempt `json:"attempts"`
}

// HandleInfo godoc
//
//	@Summary		Get user information
//	@Description	Returns the profile of the authenticated user.
//	@Tags			User
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	domain.UserPublic
//	@Failure		401	{object}	APIError	"authentication_required"
//	@Failure		500	{object}	APIError	"server_error"
//	@Router			/v1/user/info [get].
func (h *UserHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	ac, err := authctx.Require(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.UserService.FindByID(r.Context(), ac.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ErrAuthenticationRequired.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user.Public())
}

// HandleLoginAttempts godoc
//
//	@Summary		List login attempts
//	@Description	Returns the newest login attempts against the caller's email, newest first.
//	@Tags			User
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int	false	"maximum entries (default 20, max 100)"
//	@Success		200		{object}	LoginAttemptsResponse
//	@Failure		400		{object}	APIError	"invalid_request"
//	@Failure		401		{object}	APIError	"authentication_required"
//	@Router			/v1/user/login-attempts [get].
func (h *UserHandler) HandleLoginAttempts(w http.ResponseWriter, r *http.Request) {
	ac, err := authctx.Require(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			ErrInvalidRequest.WithDescription("limit must be a positive integer").WriteError(w)
			return
		}
	}

	attempts, err := h.UserService.ListLoginAttempts(r.Context(), ac.Email, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginAttemptsResponse{Attempts: attempts})
}

// HandleRateLimits godoc
//
//	@Summary		List rate limit buckets
//	@Description	Returns the rate limit buckets the caller currently occupies, keyed by user id or client address.
//	@Tags			User
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	RateLimitsResponse
//	@Failure		401	{object}	APIError	"authentication_required"
//	@Router			/v1/user/rate-limits [get].
func (h *UserHandler) HandleRateLimits(w http.ResponseWriter, r *http.Request) {
	if _, err := authctx.Require(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, RateLimitsResponse{Limits: h.RateLimits.Snapshot(r)})
}

// HandleSetBinanceToken godoc
//
//	@Summary		Set the Binance API token
//	@Description	Stores a hash of the given token. A null or empty token removes it.
//	@Tags			User
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BinanceTokenRequest	true	"token"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	APIError	"invalid_request"
//	@Failure		401		{object}	APIError	"authentication_required"
//	@Router			/v1/user/binance-token [put].
func (h *UserHandler) HandleSetBinanceToken(w http.ResponseWriter, r *http.Request) {
	ac, err := authctx.Require(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req BinanceTokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.UserService.SetBinanceToken(r.Context(), ac.UserID, req.Token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ErrAuthenticationRequired.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
