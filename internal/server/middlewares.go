package server

import (
	"net/http"
	"net/url"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"studyrooms/internal/storage"
	"studyrooms/internal/storage/pgxlog"
)

// logRequests tags every request with an xid and logs it. The id rides the
// context so pgx statement logs carry it too.
func logRequests(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := xid.New().String()

		ctx := pgxlog.WithRequestID(r.Context(), id)

		logger.Info("incoming http request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("uri", r.URL.RequestURI()),
			zap.String("ip", r.RemoteAddr),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authedHandler is a handler that runs only with a concrete authenticated user.
type authedHandler func(w http.ResponseWriter, r *http.Request, user storage.User)

// requireAuth resolves the session before the wrapped handler runs. Anonymous
// callers are sent to the login page with the original URI as the "next"
// continuation, honored after a successful login.
func (h *handler) requireAuth(next authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.currentUser(r)
		if err != nil {
			h.serverError(w, err)
			return
		}
		if user == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next(w, r, *user)
	})
}

// currentUser resolves the caller's identity from the session cookie.
// A missing cookie or a stale token yields (nil, nil) — anonymous.
func (h *handler) currentUser(r *http.Request) (*storage.User, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, nil
	}
	return h.sessions.Resolve(r.Context(), c.Value)
}
