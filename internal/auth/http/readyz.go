package http

import (
	"net/http"
	"time"

	"github.com/snippetlab/auth/internal/auth/store"
	"github.com/snippetlab/auth/pkg/httpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Probe
//	@Description	Returns 200 when the store is reachable, 503 otherwise.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	healthResponse
//	@Failure		503	{object}	healthResponse	"store unreachable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		database := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			database = "error: " + err.Error()
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:   status,
			Uptime:   time.Since(startTime).String(),
			Version:  version,
			Database: database,
		})
	}
}
