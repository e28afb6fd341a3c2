package http

import (
	"net/http"

	"github.com/snippetlab/auth/pkg/httpx"
)

// MeHandler serves GET /v1/users/me, answering from the verified access
// token claims without a store round trip.
type MeHandler struct{}

type meResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ServeHTTP godoc
//
//	@Summary		Current User Endpoint
//	@Description	Returns the authenticated user's id, email and role from the access token claims.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	meResponse
//	@Failure		401	{object}	httpx.ErrorResponse	"missing or invalid bearer token"
//	@Router			/v1/users/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httpx.WriteJSON(w, http.StatusOK, meResponse{
		UserID: httpx.UserIDFromCtx(ctx),
		Email:  httpx.EmailFromCtx(ctx),
		Role:   httpx.RoleFromCtx(ctx),
	})
}
