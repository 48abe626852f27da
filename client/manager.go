// Package client ties the auth API and the session store together into the
// surface the rest of an application consumes: sign in, sign up, sign out,
// and resolve which signed-in identity is currently "active".
package client

import (
	"context"
	"strings"

	"github.com/medibook/go-client/authapi"
	"github.com/medibook/go-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Manager combines the auth API client with the session store. Login and
// Register perform the two-step call-then-persist sequence on behalf of the
// caller; everything else is a thin view over the store.
type Manager struct {
	api   *authapi.Client
	store *session.Store
	log   zerolog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager creates a Manager from its two required collaborators.
func NewManager(api *authapi.Client, store *session.Store, options ...ManagerOption) (*Manager, error) {
	if api == nil {
		return nil, errors.New("[NewManager] authapi client is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] session store is required")
	}
	manager := &Manager{
		api:   api,
		store: store,
		log:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(manager)
	}
	return manager, nil
}

// Login authenticates against the API and persists the resulting session
// under its role. The persisted session is returned.
func (m *Manager) Login(ctx context.Context, username, password string) (*session.Session, error) {
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] api.Login")
	}
	sess := resp.Session()
	if err := m.store.SetAuthData(sess); err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] store.SetAuthData")
	}
	m.log.Info().Str("role", sess.Role.String()).Str("user_id", sess.UserID).Msg("signed in")
	return sess, nil
}

// Register creates an account and persists the returned session.
func (m *Manager) Register(ctx context.Context, req authapi.RegisterRequest) (*session.Session, error) {
	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Register] api.Register")
	}
	sess := resp.Session()
	if err := m.store.SetAuthData(sess); err != nil {
		return nil, errors.Wrap(err, "[Manager.Register] store.SetAuthData")
	}
	return sess, nil
}

// Logout signs out one role, leaving any other signed-in roles intact.
func (m *Manager) Logout(role session.Role) error {
	return m.store.Logout(role)
}

// LogoutAll signs out every identity, role-scoped and legacy alike.
func (m *Manager) LogoutAll() error {
	return m.store.Logout(session.RoleAny)
}

// CurrentSession returns the session for the highest-priority signed-in
// role, or nil when nobody is signed in.
func (m *Manager) CurrentSession() *session.Session {
	return m.store.CurrentUser(session.RoleAny)
}

// SessionFor returns the session for one specific role, with no fallback.
func (m *Manager) SessionFor(role session.Role) *session.Session {
	return m.store.CurrentUser(role)
}

// TokenFor returns the persisted access token for role, "" when absent.
// RoleAny follows the same priority lookup as CurrentSession.
func (m *Manager) TokenFor(role session.Role) string {
	return m.store.Token(role)
}

// IsAuthenticated reports whether any identity is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.CurrentSession() != nil
}

// ActiveRole resolves the application's active role from a route path whose
// leading segment names a role area ("/doctor/schedule" -> DOCTOR). When the
// path names no role area, the first signed-in role in priority order wins.
// RoleAny is returned when neither yields anything.
func (m *Manager) ActiveRole(path string) session.Role {
	if role := roleFromPath(path); role != session.RoleAny {
		return role
	}
	for _, r := range session.RolePriority {
		if m.store.CurrentUser(r) != nil {
			return r
		}
	}
	return session.RoleAny
}

func roleFromPath(path string) session.Role {
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	role := session.Role(segment).Normalize()
	if role.IsValid() {
		return role
	}
	return session.RoleAny
}
