package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "storefront_session"

type sessionKey struct{}

// Sessions loads the caller's session from its cookie, starting a new one
// when the cookie is missing or refers to an evicted session
func Sessions(repo repository.SessionRepository, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var sess *repository.Session
			if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
				sess, err = repo.Get(ctx, c.Value)
				if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
					logger.Error("failed to load session", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
			}

			if sess == nil {
				created, err := repo.Create(ctx)
				if err != nil {
					logger.Error("failed to create session", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				sess = created
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("session started", "session_id", sess.ID)
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
		})
	}
}

// WithSession stores a session in the context
func WithSession(ctx context.Context, sess *repository.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the request's session, or nil outside Sessions
func SessionFrom(ctx context.Context) *repository.Session {
	sess, _ := ctx.Value(sessionKey{}).(*repository.Session)
	return sess
}
