// Package ident supplies the clock and identifier sources injected into the
// stores. Production code uses the system clock and random UUIDs; tests swap
// in deterministic implementations.
package ident

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces identifiers unique within a process lifetime.
type IDGenerator interface {
	NextID() string
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// UUIDGenerator issues random version 4 UUIDs, so any number of synchronous
// creates in the same tick stay distinct.
type UUIDGenerator struct{}

// NextID returns a fresh UUID string.
func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}

// Sequence issues prefix1, prefix2, ... in order.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence returns a Sequence whose first id is prefix + "1".
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix, next: 1}
}

// NextID returns the next id in the sequence.
func (s *Sequence) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.prefix + strconv.Itoa(s.next)
	s.next++
	return id
}

// StepClock is a strictly increasing clock: every call to Now advances it by
// Step before returning.
type StepClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewStepClock returns a clock starting at start that moves forward by step
// on each reading. A non-positive step is treated as one millisecond.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	if step <= 0 {
		step = time.Millisecond
	}
	return &StepClock{current: start, step: step}
}

// Now advances the clock and returns the new reading.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(c.step)
	return c.current
}
