// Package kv provides the key-value persistence layer used by the session
// store. The interface mirrors the semantics of a browser's localStorage:
// synchronous calls, single-key atomicity, string keys and values. Backends
// are expected to be safe for use from multiple goroutines.
package kv

// KV is the storage contract injected into the session store.
type KV interface {
	// Get returns the value stored under key. The boolean reports whether
	// the key was present; a missing key is not an error.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string) error
}
