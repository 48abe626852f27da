package session

import "errors"

var (
	// ErrMissingRole is returned by SetAuthData when the session to persist
	// has no role. The role is the partition key; nothing is written.
	ErrMissingRole = errors.New("session has no role")

	// ErrIncompleteUserData is returned by SetAuthData when the user record
	// about to be persisted lacks an id or a role.
	ErrIncompleteUserData = errors.New("user record missing id or role")

	// ErrStoreMismatch is returned when a read-back after a write does not
	// match what was written, which indicates a corrupt or lying backend.
	ErrStoreMismatch = errors.New("store read-back mismatch")
)
