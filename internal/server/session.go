package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/testgen/internal/generator"
	"github.com/hyperjump/testgen/internal/session"
)

type sessionKey struct{}

// withSession attaches the caller's session ID to the request context, issuing a
// new session cookie when the request has none or it has expired.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(session.CookieName); err == nil {
			id = c.Value
		}
		sess, created := s.sessions.GetOrCreate(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     session.CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			s.logger.Debug("session created", zap.String("session", sess.ID))
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// lockSession returns the request's session locked for one action. The session is
// saved (restarting its expiry) when the returned release func runs.
func (s *Server) lockSession(r *http.Request) (*generator.Session, func()) {
	id, _ := r.Context().Value(sessionKey{}).(string)
	sess, unlock, ok := s.sessions.Lock(id)
	if !ok {
		// Evicted between middleware and handler; start over under the same ID.
		s.sessions.Save(generator.NewSession(id))
		sess, unlock, _ = s.sessions.Lock(id)
	}
	return sess, func() {
		s.sessions.Save(sess)
		unlock()
	}
}
