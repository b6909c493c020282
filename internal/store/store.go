// Package store holds the in-memory state of the workspace: the known users,
// the task collection and the per-session notification feed. Every store is
// constructed explicitly from fixture data and passed by reference to its
// consumers; there is no package-level state.
//
// Operations are synchronous and atomic with respect to their store. A
// missing id on update or delete is a no-op reported through a false return,
// never an error.
package store

import (
	"time"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
)

// UserLookup resolves user references for the cached joins.
type UserLookup interface {
	ByID(id string) (model.User, bool)
}

// TaskFilter narrows a task query. Nil fields match everything.
type TaskFilter struct {
	Status     *model.TaskStatus
	Priority   *model.Priority
	AssigneeID *string
	CreatedBy  *string
}

// Match reports whether t satisfies every set field of f.
func (f TaskFilter) Match(t model.Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.AssigneeID != nil && t.AssigneeID != *f.AssigneeID {
		return false
	}
	if f.CreatedBy != nil && t.CreatedBy != *f.CreatedBy {
		return false
	}
	return true
}

type options struct {
	clock     ident.Clock
	ids       ident.IDGenerator
	loadDelay time.Duration
}

func defaultOptions() options {
	return options{
		clock: ident.SystemClock{},
		ids:   ident.UUIDGenerator{},
	}
}

// Option configures a store.
type Option func(*options)

// WithClock injects the time source.
func WithClock(c ident.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithIDGenerator injects the identifier source.
func WithIDGenerator(g ident.IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}

// WithLoadDelay sets the simulated fetch delay the task repository waits
// before its seed tasks become visible.
func WithLoadDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.loadDelay = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// freshID draws ids until one is not taken.
func freshID(g ident.IDGenerator, taken func(string) bool) string {
	for {
		id := g.NextID()
		if id != "" && !taken(id) {
			return id
		}
	}
}
