package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/snippetlab/auth/internal/auth/service"
	"github.com/snippetlab/auth/pkg/httpx"
	"github.com/snippetlab/auth/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login. Local email+password login with
// lockout enforcement. On success the refresh token is both returned in the
// body and set as an HttpOnly cookie.
type LoginHandler struct {
	TokenService *service.TokenService
	Cookies      CookieConfig
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Local Login Endpoint
//	@Description	Authenticates with email and password and issues an access/refresh token pair.
//	@Description	Accounts lock for 30 minutes after 5 consecutive failures; a locked account rejects even the correct password.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest		true	"email and password"
//	@Success		200		{object}	tokenResponse		"access and refresh tokens"
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_credentials"
//	@Failure		423		{object}	httpx.ErrorResponse	"account_locked"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	pair, err := h.TokenService.AuthenticateLocal(ctx,
		req.Email, req.Password,
		r.UserAgent(), httpx.ClientIP(r),
		time.Now().UTC(),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
		case errors.Is(err, service.ErrAccountLocked):
			httpx.WriteError(w, http.StatusLocked, "account_locked", "too many failed attempts, try again later")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		}
		return
	}

	setRefreshCookie(w, h.Cookies, pair.RefreshToken)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}
