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

// RefreshHandler serves POST /v1/auth/refresh. The refresh token comes from
// the JSON body field first, falling back to the HttpOnly cookie. The reply
// carries a fresh access token and echoes the SAME refresh token; refresh
// tokens are not rotated.
type RefreshHandler struct {
	TokenService *service.TokenService
	Cookies      CookieConfig
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP godoc
//
//	@Summary		Token Refresh Endpoint
//	@Description	Exchanges a valid refresh token for a new access token. The refresh token is not rotated.
//	@Description	The token is read from the JSON body field "refresh_token", falling back to the refresh cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		refreshRequest		false	"refresh token (optional when the cookie is set)"
//	@Success		200		{object}	tokenResponse		"new access token plus the same refresh token"
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid, expired, revoked or unknown refresh token"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// Body field takes precedence over the cookie. An empty or malformed
	// body simply means "use the cookie".
	var req refreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	presented := req.RefreshToken
	if presented == "" {
		presented = refreshTokenFromCookie(r, h.Cookies)
	}

	pair, err := h.TokenService.RefreshAccess(ctx, presented, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "refresh_token_not_found", "no usable refresh token presented")
		case errors.Is(err, service.ErrInvalidRefreshToken):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "token failed verification")
		case errors.Is(err, service.ErrInvalidTokenType):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token_type", "a refresh token is required")
		case errors.Is(err, service.ErrRevokedRefreshToken):
			httpx.WriteError(w, http.StatusUnauthorized, "revoked_refresh_token", "session has been revoked")
		case errors.Is(err, service.ErrExpiredRefreshToken):
			httpx.WriteError(w, http.StatusUnauthorized, "expired_refresh_token", "refresh token has expired")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "user_not_found", "session user no longer exists")
		default:
			log.Error("refresh failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}
