package store

import (
	"sync"

	"github.com/nhle/taskflow/internal/model"
)

// UserDirectory is the set of known users. Users are only ever added.
type UserDirectory struct {
	mu    sync.RWMutex
	users []model.User
}

// NewUserDirectory creates a directory seeded with users. Later entries that
// reuse an id or email already seen are dropped.
func NewUserDirectory(seed []model.User) *UserDirectory {
	d := &UserDirectory{users: make([]model.User, 0, len(seed))}
	for _, u := range seed {
		d.Add(u)
	}
	return d
}

// ByID looks a user up by id.
func (d *UserDirectory) ByID(id string) (model.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// ByEmail looks a user up by exact email match.
func (d *UserDirectory) ByEmail(email string) (model.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if u.Email == email {
			return u, true
		}
	}
	return model.User{}, false
}

// Add registers u. It returns false, leaving the directory unchanged, when
// the id or email is already taken.
func (d *UserDirectory) Add(u model.User) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.users {
		if existing.ID == u.ID || existing.Email == u.Email {
			return false
		}
	}
	d.users = append(d.users, u)
	return true
}

// HasID reports whether id belongs to a known user.
func (d *UserDirectory) HasID(id string) bool {
	_, ok := d.ByID(id)
	return ok
}

// All returns the users in registration order.
func (d *UserDirectory) All() []model.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]model.User(nil), d.users...)
}

// Len returns the number of known users.
func (d *UserDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.users)
}
