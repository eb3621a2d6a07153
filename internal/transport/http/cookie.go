package http

import (
	"net/http"
	"time"
)

type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
	MaxAge time.Duration
}

// RefreshCookie carries the refresh token. It is HttpOnly and scoped to the
// refresh endpoint so the browser sends it nowhere else.
func RefreshCookie(cfg CookieConfig, value string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    value,
		Path:     cfg.Path,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Expires:  time.Now().Add(cfg.MaxAge),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func ExpiredRefreshCookie(cfg CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     cfg.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
