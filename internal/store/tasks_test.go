package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/tests/testutil"
)

func TestCreateAssignsDistinctIDs(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, f.Tasks)

	seen := make(map[string]bool)
	for _, task := range repo.All() {
		seen[task.ID] = true
	}
	for i := 0; i < 50; i++ {
		task := repo.Create(model.TaskDraft{Title: "bulk", CreatedBy: "1"})
		require.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
	assert.Equal(t, 54, repo.Len())
}

func TestCreateSkipsIDsTakenBySeed(t *testing.T) {
	dir := store.NewUserDirectory(nil)
	seed := []model.Task{{ID: "1", Title: "seeded"}, {ID: "2", Title: "seeded too"}}
	repo := store.NewTaskRepository(seed, dir, store.WithIDGenerator(ident.NewSequence("")))

	created := repo.Create(model.TaskDraft{Title: "while loading"})
	assert.Equal(t, "3", created.ID)

	require.NoError(t, repo.Load(context.Background()))
	assert.Equal(t, 3, repo.Len())
}

func TestCreateIsMostRecentFirst(t *testing.T) {
	repo, _, _ := testutil.NewTestRepository(t, nil, nil)

	t1 := repo.Create(model.TaskDraft{Title: "T1"})
	t2 := repo.Create(model.TaskDraft{Title: "T2"})

	all := repo.All()
	require.Len(t, all, 2)
	assert.Equal(t, t2.ID, all[0].ID)
	assert.Equal(t, t1.ID, all[1].ID)
}

func TestCreateInitializesFields(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, nil)
	due := testutil.Epoch.Add(48 * time.Hour)

	task := repo.Create(model.TaskDraft{
		Title:      "Ship",
		AssigneeID: "3",
		CreatedBy:  "1",
		DueDate:    &due,
		Tags:       []string{"release"},
	})

	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.Empty(t, task.Comments)
	assert.NotNil(t, task.Comments)
	assert.Equal(t, []string{"release"}, task.Tags)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, due, *task.DueDate)
	require.NotNil(t, task.Creator)
	assert.Equal(t, "John Doe", task.Creator.Name)
}

func TestCreateResolvesAssignee(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, nil)

	known := repo.Create(model.TaskDraft{Title: "known", AssigneeID: "2"})
	require.NotNil(t, known.Assignee)
	assert.Equal(t, "2", known.Assignee.ID)

	unknown := repo.Create(model.TaskDraft{Title: "unknown", AssigneeID: "99"})
	assert.Nil(t, unknown.Assignee)
	assert.Equal(t, "99", unknown.AssigneeID)

	unset := repo.Create(model.TaskDraft{Title: "unset"})
	assert.Nil(t, unset.Assignee)
}

func TestCreateCopiesDraftSlices(t *testing.T) {
	repo, _, _ := testutil.NewTestRepository(t, nil, nil)
	tags := []string{"a", "b"}

	task := repo.Create(model.TaskDraft{Title: "x", Tags: tags})
	tags[0] = "mutated"

	got, ok := repo.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
}

func TestUpdateMissingIsNoop(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, f.Tasks)
	before := repo.All()

	ok := repo.Update("nonexistent", model.TaskPatch{Title: model.Ptr("changed")})

	assert.False(t, ok)
	assert.Equal(t, before, repo.All())
}

func TestUpdateBumpsUpdatedAt(t *testing.T) {
	repo, _, _ := testutil.NewTestRepository(t, nil, nil)
	task := repo.Create(model.TaskDraft{Title: "x"})

	prev := task.UpdatedAt
	for i := 0; i < 3; i++ {
		require.True(t, repo.Update(task.ID, model.TaskPatch{}))
		got, _ := repo.Get(task.ID)
		assert.True(t, got.UpdatedAt.After(prev), "update %d must move UpdatedAt forward", i)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
		prev = got.UpdatedAt
	}
}

func TestUpdateNeverMovesBackwards(t *testing.T) {
	start := testutil.Epoch
	backwards := &rewindClock{times: []time.Time{start, start.Add(-time.Hour)}}
	repo := store.NewTaskRepository(nil, nil, store.WithClock(backwards))
	require.NoError(t, repo.Load(context.Background()))

	task := repo.Create(model.TaskDraft{Title: "x"})
	require.True(t, repo.Update(task.ID, model.TaskPatch{}))

	got, _ := repo.Get(task.ID)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestUpdateAfterSeedUpdatedAtAheadOfClock(t *testing.T) {
	start := testutil.Epoch
	seed := []model.Task{{
		ID:        "a",
		Title:     "imported",
		CreatedAt: start,
		UpdatedAt: start.Add(time.Hour),
	}}
	repo := store.NewTaskRepository(seed, nil, store.WithClock(ident.NewStepClock(start, time.Second)))
	require.NoError(t, repo.Load(context.Background()))

	prev := start.Add(time.Hour)
	for i := 0; i < 2; i++ {
		require.True(t, repo.Update("a", model.TaskPatch{}))
		got, _ := repo.Get("a")
		assert.True(t, got.UpdatedAt.After(prev), "update %d went from %s to %s", i, prev, got.UpdatedAt)
		prev = got.UpdatedAt
	}

	_, ok := repo.AddComment("a", "u", "hi")
	require.True(t, ok)
	got, _ := repo.Get("a")
	assert.True(t, got.UpdatedAt.After(prev))
}

func TestUpdateMergesFields(t *testing.T) {
	repo, _, _ := testutil.NewTestRepository(t, nil, nil)
	due := testutil.Epoch.Add(time.Hour)
	task := repo.Create(model.TaskDraft{Title: "old", Description: "keep", Tags: []string{"a"}, DueDate: &due})

	ok := repo.Update(task.ID, model.TaskPatch{
		Title:    model.Ptr("new"),
		Status:   model.Ptr(model.StatusReview),
		Priority: model.Ptr(model.PriorityUrgent),
		Tags:     []string{},
		DueDate:  &time.Time{},
	})
	require.True(t, ok)

	got, _ := repo.Get(task.ID)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "keep", got.Description)
	assert.Equal(t, model.StatusReview, got.Status)
	assert.Equal(t, model.PriorityUrgent, got.Priority)
	assert.Empty(t, got.Tags)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.CreatedAt, got.CreatedAt)
}

func TestUpdateWithoutAssigneeKeepsStaleJoin(t *testing.T) {
	f := testutil.Fixture()
	stale := f.Tasks[0]
	stale.AssigneeID = "4"
	require.Equal(t, "2", stale.Assignee.ID)

	repo, _, _ := testutil.NewTestRepository(t, f.Users, []model.Task{stale})

	require.True(t, repo.Update(stale.ID, model.TaskPatch{Status: model.Ptr(model.StatusCompleted)}))

	got, _ := repo.Get(stale.ID)
	assert.Equal(t, "4", got.AssigneeID)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, "2", got.Assignee.ID, "assignee join is only refreshed by an assignee change")
}

func TestUpdateWithAssigneeReResolves(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, nil)
	task := repo.Create(model.TaskDraft{Title: "x", AssigneeID: "2"})

	require.True(t, repo.Update(task.ID, model.TaskPatch{AssigneeID: model.Ptr("3")}))
	got, _ := repo.Get(task.ID)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, "3", got.Assignee.ID)

	require.True(t, repo.Update(task.ID, model.TaskPatch{AssigneeID: model.Ptr("")}))
	got, _ = repo.Get(task.ID)
	assert.Empty(t, got.AssigneeID)
	assert.Nil(t, got.Assignee)

	require.True(t, repo.Update(task.ID, model.TaskPatch{AssigneeID: model.Ptr("ghost")}))
	got, _ = repo.Get(task.ID)
	assert.Equal(t, "ghost", got.AssigneeID)
	assert.Nil(t, got.Assignee)
}

func TestDeleteThenUpdate(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, f.Tasks)

	require.True(t, repo.Delete("2"))
	assert.False(t, repo.Delete("2"))
	length := repo.Len()

	assert.False(t, repo.Update("2", model.TaskPatch{Title: model.Ptr("ghost")}))
	assert.Equal(t, length, repo.Len())
	_, ok := repo.Get("2")
	assert.False(t, ok)
}

func TestQueries(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, f.Tasks)

	completed := repo.ByStatus(model.StatusCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "User Testing", completed[0].Title)

	sarah := repo.ByAssignee("2")
	require.Len(t, sarah, 2)
	assert.Equal(t, "1", sarah[0].ID)
	assert.Equal(t, "4", sarah[1].ID)

	urgent := model.PriorityUrgent
	byJohn := "1"
	got := repo.Query(store.TaskFilter{Priority: &urgent, CreatedBy: &byJohn})
	require.Len(t, got, 1)
	assert.Equal(t, "API Integration", got[0].Title)

	assert.Empty(t, repo.ByAssignee("nobody"))
}

func TestReadsDoNotAliasState(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, f.Tasks)

	got, ok := repo.Get("1")
	require.True(t, ok)
	got.Tags[0] = "mutated"
	got.Comments[0].Content = "mutated"
	got.Assignee.Name = "mutated"

	again, _ := repo.Get("1")
	assert.Equal(t, "design", again.Tags[0])
	assert.Equal(t, "Please focus on mobile-first design approach", again.Comments[0].Content)
	assert.Equal(t, "Sarah Wilson", again.Assignee.Name)
}

func TestAddComment(t *testing.T) {
	f := testutil.Fixture()
	repo, _, _ := testutil.NewTestRepository(t, f.Users, f.Tasks)
	before, _ := repo.Get("1")

	c, ok := repo.AddComment("1", "3", "On it")
	require.True(t, ok)
	assert.Equal(t, "1", c.TaskID)
	require.NotNil(t, c.User)
	assert.Equal(t, "Mike Johnson", c.User.Name)

	after, _ := repo.Get("1")
	require.Len(t, after.Comments, 2)
	assert.Equal(t, "Please focus on mobile-first design approach", after.Comments[0].Content)
	assert.Equal(t, "On it", after.Comments[1].Content)
	assert.NotEqual(t, after.Comments[0].ID, after.Comments[1].ID)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	_, ok = repo.AddComment("missing", "3", "lost")
	assert.False(t, ok)
}

func TestLoadInstallsSeedAfterDelay(t *testing.T) {
	f := testutil.Fixture()
	dir := store.NewUserDirectory(f.Users)
	repo := store.NewTaskRepository(f.Tasks, dir, store.WithLoadDelay(10*time.Millisecond))

	assert.Equal(t, store.StateLoading, repo.State())
	assert.Equal(t, 0, repo.Len())

	early := repo.Create(model.TaskDraft{Title: "early"})

	require.NoError(t, repo.Load(context.Background()))
	assert.Equal(t, store.StateReady, repo.State())

	all := repo.All()
	require.Len(t, all, 5)
	assert.Equal(t, early.ID, all[0].ID)
	assert.Equal(t, "1", all[1].ID)

	require.NoError(t, repo.Load(context.Background()))
	assert.Equal(t, 5, repo.Len(), "second load is a no-op")
}

func TestLoadHonorsCancellation(t *testing.T) {
	repo := store.NewTaskRepository(testutil.Fixture().Tasks, nil, store.WithLoadDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, store.StateLoading, repo.State())
	assert.Equal(t, "loading", repo.State().String())
}

func TestSeedDuplicatesDropped(t *testing.T) {
	seed := []model.Task{{ID: "1", Title: "first"}, {ID: "1", Title: "second"}}
	repo, _, _ := testutil.NewTestRepository(t, nil, seed)

	all := repo.All()
	require.Len(t, all, 1)
	assert.Equal(t, "first", all[0].Title)
}

// rewindClock replays times in order, then repeats the last one.
type rewindClock struct {
	times []time.Time
	i     int
}

func (c *rewindClock) Now() time.Time {
	t := c.times[c.i]
	if c.i < len(c.times)-1 {
		c.i++
	}
	return t
}
