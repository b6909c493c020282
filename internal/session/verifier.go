package session

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/taskflow/internal/model"
)

// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-byte limit.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// CredentialVerifier checks an email/password pair and returns the matching user.
type CredentialVerifier interface {
	Verify(email, password string) (model.User, bool)
}

// Enroller is implemented by verifiers that store a credential for newly
// registered users.
type Enroller interface {
	Enroll(user model.User, password string) error
}

// EmailLookup finds a user by exact email.
type EmailLookup interface {
	ByEmail(email string) (model.User, bool)
}

// MockVerifier accepts any known email paired with one fixed password.
type MockVerifier struct {
	users    EmailLookup
	password string
}

// NewMockVerifier returns a verifier that accepts password for every user
// in users.
func NewMockVerifier(users EmailLookup, password string) *MockVerifier {
	return &MockVerifier{users: users, password: password}
}

// Verify looks the email up and compares password to the fixed value.
func (v *MockVerifier) Verify(email, password string) (model.User, bool) {
	user, ok := v.users.ByEmail(email)
	if !ok || password != v.password {
		return model.User{}, false
	}
	return user, true
}

// BcryptVerifier checks passwords against per-user bcrypt hashes.
type BcryptVerifier struct {
	mu     sync.RWMutex
	users  EmailLookup
	hashes map[string]string
	cost   int
}

// NewBcryptVerifier returns a verifier hashing with cost. A cost outside
// bcrypt's accepted range falls back to bcrypt.DefaultCost.
func NewBcryptVerifier(users EmailLookup, cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{
		users:  users,
		hashes: make(map[string]string),
		cost:   cost,
	}
}

// Enroll hashes password and stores it for user.
func (v *BcryptVerifier) Enroll(user model.User, password string) error {
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.hashes[user.ID] = string(hash)
	return nil
}

// Verify looks the email up and compares password to the stored hash.
// Users without an enrolled credential never verify.
func (v *BcryptVerifier) Verify(email, password string) (model.User, bool) {
	user, ok := v.users.ByEmail(email)
	if !ok {
		return model.User{}, false
	}

	v.mu.RLock()
	hash, enrolled := v.hashes[user.ID]
	v.mu.RUnlock()

	if !enrolled {
		return model.User{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return model.User{}, false
	}
	return user, true
}
