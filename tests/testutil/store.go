package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/taskflow/internal/fixture"
	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
)

// Epoch is the fixed start time used by test clocks and fixtures.
var Epoch = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

// NewClock returns a clock starting at Epoch that advances one second per
// reading.
func NewClock() *ident.StepClock {
	return ident.NewStepClock(Epoch, time.Second)
}

// Fixture returns the built-in seed anchored at Epoch.
func Fixture() fixture.Fixture {
	return fixture.Default(Epoch)
}

// NewTestRepository creates a ready TaskRepository over users and tasks,
// with a stepping clock and sequential "t"-prefixed ids.
func NewTestRepository(
	t *testing.T,
	users []model.User,
	tasks []model.Task,
) (*store.TaskRepository, *store.UserDirectory, *ident.StepClock) {
	t.Helper()

	clock := NewClock()
	dir := store.NewUserDirectory(users)
	repo := store.NewTaskRepository(tasks, dir,
		store.WithClock(clock),
		store.WithIDGenerator(ident.NewSequence("t")),
	)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("loading test repository: %v", err)
	}

	return repo, dir, clock
}
