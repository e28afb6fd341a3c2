package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/snippetlab/auth/internal/auth/service"
	"github.com/snippetlab/auth/pkg/httpx"
	"github.com/snippetlab/auth/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. It revokes the session behind
// the presented refresh token (body field, then cookie) and always clears
// the cookie. Unknown or missing tokens still succeed so clients can always
// reach a logged-out state.
type LogoutHandler struct {
	TokenService *service.TokenService
	Cookies      CookieConfig
}

// ServeHTTP godoc
//
//	@Summary		Device Logout Endpoint
//	@Description	Revokes the session behind the presented refresh token and clears the refresh cookie.
//	@Description	Idempotent: missing, unknown or already-revoked tokens still return 204.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	refreshRequest	false	"refresh token (optional when the cookie is set)"
//	@Success		204		"logged out"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	presented := req.RefreshToken
	if presented == "" {
		presented = refreshTokenFromCookie(r, h.Cookies)
	}

	if err := h.TokenService.Logout(ctx, presented, time.Now().UTC()); err != nil {
		// Store faults are the only failure mode; the client still ends up
		// logged out locally, so log and fall through to 204.
		log.Error("logout failed", "err", err)
	}

	clearRefreshCookie(w, h.Cookies)
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAllHandler serves POST /v1/auth/logout-all. Requires a bearer access
// token; revokes every session the user holds.
type LogoutAllHandler struct {
	TokenService *service.TokenService
	Cookies      CookieConfig
}

// ServeHTTP godoc
//
//	@Summary		Global Logout Endpoint
//	@Description	Revokes every session of the authenticated user, across all devices.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"all sessions revoked"
//	@Failure		401	{object}	httpx.ErrorResponse	"missing or invalid bearer token"
//	@Router			/v1/auth/logout-all [post].
func (h *LogoutAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "")
		return
	}

	if err := h.TokenService.LogoutAll(ctx, userID); err != nil {
		log.Error("logout-all failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	clearRefreshCookie(w, h.Cookies)
	w.WriteHeader(http.StatusNoContent)
}
