// Package session owns the current-user identity and the transitions
// between the anonymous and authenticated states.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
)

var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not verify.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailAlreadyExists is returned when registering a taken email.
	ErrEmailAlreadyExists = errors.New("email already registered")
)

// UserStore is the known-user set the manager authenticates against and
// registers into.
type UserStore interface {
	HasID(id string) bool
	ByEmail(email string) (model.User, bool)
	Add(u model.User) bool
}

// Manager is the session state machine. It starts anonymous unless given a
// restored session.
type Manager struct {
	mu      sync.RWMutex
	current model.Session

	users    UserStore
	verifier CredentialVerifier
	tokens   TokenIssuer
	clock    ident.Clock
	ids      ident.IDGenerator
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock injects the time source used for new users.
func WithClock(c ident.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithIDGenerator injects the identifier source used for new users.
func WithIDGenerator(g ident.IDGenerator) Option {
	return func(m *Manager) {
		if g != nil {
			m.ids = g
		}
	}
}

// WithSession starts the manager in s instead of anonymous.
func WithSession(s model.Session) Option {
	return func(m *Manager) {
		m.current = normalize(s)
	}
}

// NewManager creates a session manager.
func NewManager(users UserStore, verifier CredentialVerifier, tokens TokenIssuer, opts ...Option) *Manager {
	m := &Manager{
		users:    users,
		verifier: verifier,
		tokens:   tokens,
		clock:    ident.SystemClock{},
		ids:      ident.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the current session.
func (m *Manager) Current() model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return copySession(m.current)
}

// User returns the signed-in user, if any.
func (m *Manager) User() (model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current.Anonymous() {
		return model.User{}, false
	}
	return *m.current.User, true
}

// Login authenticates email and password. On success the session holds the
// user and a freshly issued token. On failure the session is unchanged.
func (m *Manager) Login(email, password string) (model.Session, error) {
	user, ok := m.verifier.Verify(email, password)
	if !ok {
		return model.Session{}, ErrInvalidCredentials
	}
	return m.authenticate(user)
}

// Register creates a member account and signs it in. It fails with
// ErrEmailAlreadyExists, adding nothing, when the email is taken.
func (m *Manager) Register(name, email, password string) (model.Session, error) {
	if _, taken := m.users.ByEmail(email); taken {
		return model.Session{}, ErrEmailAlreadyExists
	}

	user := model.User{
		ID:        m.nextUserID(),
		Name:      name,
		Email:     email,
		Role:      model.RoleMember,
		CreatedAt: m.clock.Now(),
	}

	if enroller, ok := m.verifier.(Enroller); ok {
		if err := enroller.Enroll(user, password); err != nil {
			return model.Session{}, fmt.Errorf("enrolling credentials for %s: %w", email, err)
		}
	}
	if !m.users.Add(user) {
		return model.Session{}, ErrEmailAlreadyExists
	}

	return m.authenticate(user)
}

// Logout clears the user and token. It always succeeds.
func (m *Manager) Logout() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = model.Session{}
	return m.current
}

// Restore replaces the current session with one decoded from blob. If the
// issuer can parse tokens, an expired or forged token leaves the manager
// anonymous. It reports whether the result is authenticated.
func (m *Manager) Restore(blob []byte) bool {
	s := RestoreSession(blob)
	if !s.Anonymous() {
		if parser, ok := m.tokens.(TokenParser); ok {
			claims, err := parser.Parse(s.Token)
			if err != nil || claims.UserID != s.User.ID {
				s = model.Session{}
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = s
	return !s.Anonymous()
}

func (m *Manager) authenticate(user model.User) (model.Session, error) {
	token, err := m.tokens.Issue(user)
	if err != nil {
		return model.Session{}, fmt.Errorf("issuing token for %s: %w", user.Email, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = model.Session{User: &user, Token: token, IsAuthenticated: true}
	return copySession(m.current), nil
}

func (m *Manager) nextUserID() string {
	for {
		id := m.ids.NextID()
		if id != "" && !m.users.HasID(id) {
			return id
		}
	}
}

func copySession(s model.Session) model.Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// normalize collapses half-populated sessions to anonymous.
func normalize(s model.Session) model.Session {
	if s.User == nil || s.Token == "" {
		return model.Session{}
	}
	s = copySession(s)
	s.IsAuthenticated = true
	return s
}
