package store

import (
	"context"
	"sync"
	"time"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
)

// LoadState is the lifecycle of the task repository's initial fetch.
type LoadState int

const (
	StateLoading LoadState = iota
	StateReady
)

// String returns the lower-case state name.
func (s LoadState) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// TaskRepository owns the ordered task collection, most recent first.
//
// The Assignee, Creator and comment User fields are cached joins. Create
// resolves all of them; Update re-resolves Assignee only when the patch
// carries an AssigneeID, so a task can keep a stale Assignee after its
// referenced user changes in any other way.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks []model.Task
	seed  []model.Task
	state LoadState

	users UserLookup
	clock ident.Clock
	ids   ident.IDGenerator
	delay time.Duration
}

// NewTaskRepository creates a repository in the loading state. The seed
// tasks are installed by Load. Seed entries reusing an id are dropped.
func NewTaskRepository(seed []model.Task, users UserLookup, opts ...Option) *TaskRepository {
	o := buildOptions(opts)

	seen := make(map[string]bool, len(seed))
	kept := make([]model.Task, 0, len(seed))
	for _, t := range seed {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		kept = append(kept, t.Clone())
	}

	return &TaskRepository{
		tasks: []model.Task{},
		seed:  kept,
		state: StateLoading,
		users: users,
		clock: o.clock,
		ids:   o.ids,
		delay: o.loadDelay,
	}
}

// Load waits out the simulated fetch delay, then installs the seed tasks
// behind any tasks created in the meantime and moves to StateReady. It
// returns ctx.Err() if ctx ends first, leaving the repository loading.
// Calls after the first successful one do nothing.
func (r *TaskRepository) Load(ctx context.Context) error {
	if r.State() == StateReady {
		return nil
	}

	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateReady {
		return nil
	}
	r.tasks = append(r.tasks, r.seed...)
	r.seed = nil
	r.state = StateReady
	return nil
}

// State reports whether the initial load has completed.
func (r *TaskRepository) State() LoadState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state
}

// Create inserts a task built from d at the front of the collection and
// returns it. Empty status and priority default to todo and medium. An
// unset or unresolvable AssigneeID leaves Assignee nil.
func (r *TaskRepository) Create(d model.TaskDraft) model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	t := model.Task{
		ID:          freshID(r.ids, r.taken),
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		AssigneeID:  d.AssigneeID,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        append([]string{}, d.Tags...),
		Comments:    []model.Comment{},
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if d.DueDate != nil && !d.DueDate.IsZero() {
		t.DueDate = model.Ptr(*d.DueDate)
	}
	t.Assignee = r.resolve(t.AssigneeID)
	t.Creator = r.resolve(t.CreatedBy)

	r.tasks = append([]model.Task{t}, r.tasks...)
	return t.Clone()
}

// Update merges p into the task with the given id and bumps UpdatedAt, even
// for an empty patch. It returns false and changes nothing if id is unknown.
func (r *TaskRepository) Update(id string, p model.TaskPatch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}

	t := r.tasks[i].Clone()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			t.DueDate = model.Ptr(*p.DueDate)
		}
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, p.Tags...)
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
		t.Assignee = r.resolve(t.AssigneeID)
	}
	t.UpdatedAt = r.stamp(t)

	r.tasks[i] = t
	return true
}

// Delete removes the task with the given id. It returns false if no such
// task exists.
func (r *TaskRepository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
	return true
}

// AddComment appends a comment by userID to the task's thread and bumps the
// task's UpdatedAt. It returns false if the task does not exist.
func (r *TaskRepository) AddComment(taskID, userID, content string) (model.Comment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(taskID)
	if i < 0 {
		return model.Comment{}, false
	}

	t := r.tasks[i].Clone()
	taken := make(map[string]bool, len(t.Comments))
	for _, c := range t.Comments {
		taken[c.ID] = true
	}
	c := model.Comment{
		ID:        freshID(r.ids, func(id string) bool { return taken[id] }),
		TaskID:    taskID,
		UserID:    userID,
		Content:   content,
		User:      r.resolve(userID),
		CreatedAt: r.clock.Now(),
	}
	t.Comments = append(t.Comments, c)
	t.UpdatedAt = r.stamp(t)

	r.tasks[i] = t
	return c.Clone(), true
}

// Get returns a copy of the task with the given id.
func (r *TaskRepository) Get(id string) (model.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return r.tasks[i].Clone(), true
}

// All returns a copy of every task, most recent first.
func (r *TaskRepository) All() []model.Task {
	return r.Query(TaskFilter{})
}

// Query returns copies of the tasks matching f, in collection order.
func (r *TaskRepository) Query(f TaskFilter) []model.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if f.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// ByStatus returns the tasks currently in status.
func (r *TaskRepository) ByStatus(status model.TaskStatus) []model.Task {
	return r.Query(TaskFilter{Status: &status})
}

// ByAssignee returns the tasks whose AssigneeID equals assigneeID.
func (r *TaskRepository) ByAssignee(assigneeID string) []model.Task {
	return r.Query(TaskFilter{AssigneeID: &assigneeID})
}

// Len returns the number of visible tasks.
func (r *TaskRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tasks)
}

func (r *TaskRepository) indexOf(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// taken reports whether id is used by a visible or pending seed task.
func (r *TaskRepository) taken(id string) bool {
	if r.indexOf(id) >= 0 {
		return true
	}
	for i := range r.seed {
		if r.seed[i].ID == id {
			return true
		}
	}
	return false
}

func (r *TaskRepository) resolve(userID string) *model.User {
	if userID == "" || r.users == nil {
		return nil
	}
	u, ok := r.users.ByID(userID)
	if !ok {
		return nil
	}
	return &u
}

// stamp reads the clock for a write to t. The result is always after t's
// previous UpdatedAt and never before its CreatedAt, even when the clock
// lags the stored timestamps.
func (r *TaskRepository) stamp(t model.Task) time.Time {
	floor := t.UpdatedAt
	if floor.Before(t.CreatedAt) {
		floor = t.CreatedAt
	}
	now := r.clock.Now()
	if !now.After(floor) {
		return floor.Add(time.Millisecond)
	}
	return now
}
