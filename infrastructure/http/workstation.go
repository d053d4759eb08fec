package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	sessioncontext "stockdesk/frontend/shared/context"
)

const workstationCookieName = "stockdesk_workstation"

// WorkstationMiddleware identifies the browser with a long-lived cookie.
// Drafts and worksheets are keyed by this identity, so an operator can
// close the tab or restart the console and pick up where they left off.
func (s *Server) WorkstationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := ""
		if c, err := r.Cookie(workstationCookieName); err == nil {
			ws = strings.TrimSpace(c.Value)
		}
		if ws == "" {
			ws = uuid.NewString()
			http.SetCookie(w, WorkstationCookie(ws))
		}
		ctx := sessioncontext.NewContextWithWorkstation(r.Context(), ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WorkstationCookie builds the identity cookie.
func WorkstationCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     workstationCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	}
}
