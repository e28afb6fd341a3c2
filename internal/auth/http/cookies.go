package http

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig controls the HttpOnly refresh token cookie. The cookie is an
// alternative transport for the refresh token; the JSON body takes
// precedence when both are present.
type CookieConfig struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// DefaultCookieConfig matches a browser SPA deployment behind TLS.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Name:     "refresh_token",
		Path:     "/v1/auth",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   14 * 24 * time.Hour,
	}
}

// ParseSameSite maps a config string onto http.SameSite, defaulting to
// Strict for anything unrecognised.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func setRefreshCookie(w http.ResponseWriter, cfg CookieConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     cfg.Path,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// clearRefreshCookie expires the cookie immediately via Max-Age=0 semantics.
func clearRefreshCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     cfg.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

func refreshTokenFromCookie(r *http.Request, cfg CookieConfig) string {
	cookie, err := r.Cookie(cfg.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
