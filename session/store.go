package session

import (
	"encoding/json"

	"github.com/medibook/go-client/kv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Persisted key layout. Role-scoped keys are "<field>_<ROLE>"; the bare
// field names are the legacy unscoped mirrors kept for callers that predate
// multi-role sign-in.
const (
	fieldToken        = "token"
	fieldRefreshToken = "refreshToken"
	fieldUser         = "user"
)

func scopedKey(field string, role Role) string {
	return field + "_" + string(role)
}

// Store is the role-partitioned session store. All methods are synchronous;
// concurrency safety is delegated to the injected KV backend.
type Store struct {
	kv  kv.KV
	log zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger attaches a logger used for diagnostics (malformed records,
// read-back mismatches).
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a Store over the given KV backend.
func NewStore(backend kv.KV, options ...StoreOption) (*Store, error) {
	if backend == nil {
		return nil, errors.New("[NewStore] kv backend is required")
	}
	store := &Store{
		kv:  backend,
		log: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

// SetAuthData persists sess under its role's keys and mirrors it to the
// legacy unscoped keys. A second call for the same role fully replaces the
// previous session; other roles are untouched.
//
// Each write is read back and compared; a mismatch is a hard error rather
// than a diagnostic, so a corrupt backend is detected at write time instead
// of surfacing later as a half-valid session.
func (s *Store) SetAuthData(sess *Session) error {
	if sess == nil {
		return errors.Wrap(ErrMissingRole, "[SetAuthData] nil session")
	}
	role := sess.Role.Normalize()
	if role == RoleAny {
		return errors.Wrap(ErrMissingRole, "[SetAuthData]")
	}

	if sess.AccessToken != "" {
		if err := s.write(scopedKey(fieldToken, role), sess.AccessToken); err != nil {
			return errors.Wrap(err, "[SetAuthData] token")
		}
		if err := s.write(fieldToken, sess.AccessToken); err != nil {
			return errors.Wrap(err, "[SetAuthData] legacy token")
		}
	}

	if sess.RefreshToken != "" {
		if err := s.write(scopedKey(fieldRefreshToken, role), sess.RefreshToken); err != nil {
			return errors.Wrap(err, "[SetAuthData] refresh token")
		}
		if err := s.write(fieldRefreshToken, sess.RefreshToken); err != nil {
			return errors.Wrap(err, "[SetAuthData] legacy refresh token")
		}
	}

	record := *sess
	record.Role = role
	if record.UserID == "" || record.Role == "" {
		return errors.Wrap(ErrIncompleteUserData, "[SetAuthData]")
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[SetAuthData] marshal user record")
	}
	if err := s.write(scopedKey(fieldUser, role), string(raw)); err != nil {
		return errors.Wrap(err, "[SetAuthData] user record")
	}
	if err := s.write(fieldUser, string(raw)); err != nil {
		return errors.Wrap(err, "[SetAuthData] legacy user record")
	}

	s.log.Debug().Str("role", role.String()).Str("user_id", record.UserID).Msg("session persisted")
	return nil
}

// CurrentUser returns the persisted user record for role, or nil when there
// is none. With RoleAny it searches RolePriority order and then the legacy
// unscoped record. It never fails for "not found", and a record that no
// longer parses is skipped as if absent.
func (s *Store) CurrentUser(role Role) *Session {
	if role != RoleAny {
		return s.userAt(scopedKey(fieldUser, role.Normalize()))
	}
	for _, r := range RolePriority {
		if sess := s.userAt(scopedKey(fieldUser, r)); sess != nil {
			return sess
		}
	}
	return s.userAt(fieldUser)
}

// Token returns the persisted access token for role, or "" when there is
// none. Lookup strategy mirrors CurrentUser exactly.
func (s *Store) Token(role Role) string {
	return s.field(fieldToken, role)
}

// RefreshToken returns the persisted refresh token for role, or "" when
// there is none. Lookup strategy mirrors CurrentUser exactly.
func (s *Store) RefreshToken(role Role) string {
	return s.field(fieldRefreshToken, role)
}

// Logout removes the persisted session for role. With RoleAny every role's
// keys and the legacy unscoped keys are removed: a full sign-out of every
// identity. Removing what is not there is a no-op.
func (s *Store) Logout(role Role) error {
	if role != RoleAny {
		return s.removeRole(role.Normalize())
	}
	for _, r := range RolePriority {
		if err := s.removeRole(r); err != nil {
			return err
		}
	}
	for _, field := range []string{fieldToken, fieldRefreshToken, fieldUser} {
		if err := s.kv.Remove(field); err != nil {
			return errors.Wrapf(err, "[Logout] remove %q", field)
		}
	}
	return nil
}

func (s *Store) removeRole(role Role) error {
	for _, field := range []string{fieldToken, fieldRefreshToken, fieldUser} {
		key := scopedKey(field, role)
		if err := s.kv.Remove(key); err != nil {
			return errors.Wrapf(err, "[Logout] remove %q", key)
		}
	}
	return nil
}

func (s *Store) field(field string, role Role) string {
	if role != RoleAny {
		value, _ := s.kv.Get(scopedKey(field, role.Normalize()))
		return value
	}
	for _, r := range RolePriority {
		if value, ok := s.kv.Get(scopedKey(field, r)); ok {
			return value
		}
	}
	value, _ := s.kv.Get(field)
	return value
}

func (s *Store) userAt(key string) *Session {
	raw, ok := s.kv.Get(key)
	if !ok {
		return nil
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.Warn().Str("key", key).Err(err).Msg("ignoring malformed user record")
		return nil
	}
	return &sess
}

func (s *Store) write(key, value string) error {
	if err := s.kv.Set(key, value); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	got, ok := s.kv.Get(key)
	if !ok || got != value {
		s.log.Error().Str("key", key).Msg("read-back after write did not match")
		return errors.Wrapf(ErrStoreMismatch, "key %q", key)
	}
	return nil
}
