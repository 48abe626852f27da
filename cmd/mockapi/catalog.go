package main

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// account is one entry in the static user catalog the mock backend serves.
type account struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Phone        string
	Role         string
	PasswordHash string
}

type catalog struct {
	mu         sync.RWMutex
	byUsername map[string]*account
}

var errDuplicateUsername = errors.New("username already taken")

// seedCatalog builds the demo accounts every fresh mockapi starts with. The
// passwords are hashed at startup so the catalog never holds plaintext.
func seedCatalog() (*catalog, error) {
	cat := &catalog{byUsername: make(map[string]*account)}

	seed := []struct {
		username, password, email, fullName, role string
	}{
		{"admin", "Admin1234", "admin@medibook.example", "Ada Admin", "ADMIN"},
		{"drbob", "Doctor1234", "bob@medibook.example", "Dr Bob Erlang", "DOCTOR"},
		{"alice", "Patient1234", "alice@medibook.example", "Alice Anders", "PATIENT"},
	}
	for _, s := range seed {
		if _, err := cat.add(s.username, s.password, s.email, s.fullName, "", s.role); err != nil {
			return nil, errors.Wrapf(err, "[seedCatalog] %s", s.username)
		}
	}
	return cat, nil
}

func (c *catalog) add(username, password, email, fullName, phone, role string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "bcrypt.GenerateFromPassword")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byUsername[username]; exists {
		return nil, errDuplicateUsername
	}
	acct := &account{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Phone:        phone,
		Role:         role,
		PasswordHash: string(hash),
	}
	c.byUsername[username] = acct
	return acct, nil
}

// authenticate returns the account when the credentials match, nil otherwise.
func (c *catalog) authenticate(username, password string) *account {
	c.mu.RLock()
	acct, ok := c.byUsername[username]
	c.mu.RUnlock()

	if !ok {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil
	}
	return acct
}
