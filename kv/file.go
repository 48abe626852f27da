package kv

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

var _ KV = (*File)(nil)

// ErrBadSecret is returned by OpenFile when an encrypted store cannot be
// decrypted with the supplied secret.
var ErrBadSecret = errors.New("store cannot be decrypted with the supplied secret")

const fileKeyInfo = "medibook-session-store"

// File is a KV persisted as a single JSON document on disk. Every Set and
// Remove rewrites the document through a temp-file rename, so a crash leaves
// either the old or the new document, never a torn one. With a secret
// configured the document is sealed with AES-GCM under an HKDF-derived key.
type File struct {
	mu   sync.Mutex
	path string
	aead cipher.AEAD // nil when storing plaintext
	data map[string]string
}

// FileOption configures OpenFile.
type FileOption func(*File) error

// WithEncryptionSecret seals the on-disk document with a key derived from
// secret via HKDF-SHA256.
func WithEncryptionSecret(secret []byte) FileOption {
	return func(f *File) error {
		if len(secret) == 0 {
			return errors.New("empty encryption secret")
		}
		key := make([]byte, 32)
		if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(fileKeyInfo)), key); err != nil {
			return errors.Wrap(err, "derive key")
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return errors.Wrap(err, "aes.NewCipher")
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return errors.Wrap(err, "cipher.NewGCM")
		}
		f.aead = aead
		return nil
	}
}

// OpenFile loads the store at path, creating it lazily on first write.
func OpenFile(path string, options ...FileOption) (*File, error) {
	f := &File{
		path: path,
		data: make(map[string]string),
	}
	for _, opt := range options {
		if err := opt(f); err != nil {
			return nil, errors.Wrap(err, "[OpenFile] option")
		}
	}
	if err := f.load(); err != nil {
		return nil, errors.Wrap(err, "[OpenFile] load")
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.data[key]
	return value, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, existed := f.data[key]
	f.data[key] = value
	if err := f.save(); err != nil {
		// Keep the in-memory view consistent with disk.
		if existed {
			f.data[key] = previous
		} else {
			delete(f.data, key)
		}
		return errors.Wrapf(err, "[File.Set] %q", key)
	}
	return nil
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, existed := f.data[key]
	if !existed {
		return nil
	}
	delete(f.data, key)
	if err := f.save(); err != nil {
		f.data[key] = previous
		return errors.Wrapf(err, "[File.Remove] %q", key)
	}
	return nil
}

func (f *File) load() error {
	blob, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "os.ReadFile")
	}
	if len(blob) == 0 {
		return nil
	}
	if f.aead != nil {
		blob, err = f.open(blob)
		if err != nil {
			return err
		}
	}
	if err := json.Unmarshal(blob, &f.data); err != nil {
		return errors.Wrap(err, "json.Unmarshal")
	}
	return nil
}

func (f *File) save() error {
	blob, err := json.Marshal(f.data)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}
	if f.aead != nil {
		blob, err = f.seal(blob)
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "os.MkdirAll")
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return errors.Wrap(err, "os.WriteFile")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "os.Rename")
	}
	return nil
}

func (f *File) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, f.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "rand nonce")
	}
	return f.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (f *File) open(blob []byte) ([]byte, error) {
	if len(blob) < f.aead.NonceSize() {
		return nil, ErrBadSecret
	}
	nonce, ciphertext := blob[:f.aead.NonceSize()], blob[f.aead.NonceSize():]
	plaintext, err := f.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrBadSecret
	}
	return plaintext, nil
}
