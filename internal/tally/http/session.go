package http

import (
	"net/http"
	"strings"

	"github.com/quietloops/tally/internal/tally/domain"
)

// Cookie names for the browser session surface. Both cookies are
// script-inaccessible and same-site; their lifetimes track the token TTLs.
const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// attachSession sets both token cookies on the response. Non-cookie clients
// read the same tokens from the JSON body instead.
func attachSession(w http.ResponseWriter, pair domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(pair.AccessTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(pair.RefreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSession expires both token cookies. Logout is purely client-side;
// previously issued tokens remain valid until they expire on their own.
func clearSession(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// extractAccess reads the access token from the Authorization header or,
// failing that, the session cookie. Returns "" when neither is present.
func extractAccess(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if c, err := r.Cookie(accessCookieName); err == nil {
		// Tolerate clients that mirrored the header scheme into the cookie.
		return strings.TrimSpace(strings.TrimPrefix(c.Value, "Bearer "))
	}
	return ""
}

// extractRefresh reads the refresh token from the session cookie.
func extractRefresh(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
