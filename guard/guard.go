// Package guard protects http routes behind a required role. Guards consult
// the session store directly rather than going through the client manager,
// so a handler can demand a specific role independent of whichever role the
// application currently treats as active.
package guard

import (
	"context"
	"net/http"
	"time"

	"github.com/medibook/go-client/session"
	"github.com/medibook/go-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser stores the *session.Session of the authenticated user.
const ContextKeyUser ContextKey = "session_user"

// Guard builds role-checking middleware over a session store.
type Guard struct {
	store       *session.Store
	redirectURL string
	log         zerolog.Logger
	nowTime     func() time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithRedirect makes denied requests redirect to url instead of answering
// 401. This is the behavior a server-rendered login page wants.
func WithRedirect(url string) Option {
	return func(g *Guard) {
		g.redirectURL = url
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Guard) {
		g.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(g *Guard) {
		g.nowTime = nowFunc
	}
}

// New creates a Guard over the given store.
func New(store *session.Store, options ...Option) (*Guard, error) {
	if store == nil {
		return nil, errors.New("[guard.New] session store is required")
	}
	guard := &Guard{
		store:   store,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(guard)
	}
	return guard, nil
}

// RequireRole admits only requests with a persisted session and token for
// role. The session is injected into the request context for the handler.
func (g *Guard) RequireRole(role session.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess, ok := g.check(role)
			if !ok {
				g.deny(w, r, role)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, sess)))
		}
	}
}

// RequireAnyRole admits a request when any of the listed roles has a valid
// session. Roles are tried in the order given.
func (g *Guard) RequireAnyRole(roles ...session.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			for _, role := range roles {
				if sess, ok := g.check(role); ok {
					next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, sess)))
					return
				}
			}
			g.deny(w, r, session.RoleAny)
		}
	}
}

func (g *Guard) check(role session.Role) (*session.Session, bool) {
	tok := g.store.Token(role)
	if tok == "" {
		return nil, false
	}
	sess := g.store.CurrentUser(role)
	if sess == nil {
		return nil, false
	}
	if token.Expired(tok, g.nowTime()) {
		g.log.Debug().Str("role", role.String()).Msg("rejecting expired token")
		return nil, false
	}
	sess.AccessToken = tok
	return sess, true
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, role session.Role) {
	g.log.Debug().Str("role", role.String()).Str("path", r.URL.Path).Msg("request denied")
	if g.redirectURL != "" {
		http.Redirect(w, r, g.redirectURL, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","error_description":"No valid session for the required role"}`))
}

// UserFromContext returns the session a guard injected, or nil when the
// request did not pass through one.
func UserFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ContextKeyUser).(*session.Session)
	return sess
}

// Chain applies middleware to a handler in declaration order.
func Chain(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}
