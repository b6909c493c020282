package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/tests/testutil"
)

func TestUserDirectoryLookups(t *testing.T) {
	dir := store.NewUserDirectory(testutil.Fixture().Users)

	u, ok := dir.ByEmail("mike@taskflow.com")
	require.True(t, ok)
	assert.Equal(t, "3", u.ID)

	_, ok = dir.ByEmail("MIKE@taskflow.com")
	assert.False(t, ok, "email match is exact")

	u, ok = dir.ByID("4")
	require.True(t, ok)
	assert.Equal(t, "Emily Chen", u.Name)

	assert.True(t, dir.HasID("1"))
	assert.False(t, dir.HasID("9"))
}

func TestUserDirectoryAdd(t *testing.T) {
	dir := store.NewUserDirectory(testutil.Fixture().Users)

	assert.False(t, dir.Add(model.User{ID: "9", Email: "john@taskflow.com"}))
	assert.False(t, dir.Add(model.User{ID: "1", Email: "new@taskflow.com"}))
	assert.Equal(t, 4, dir.Len())

	assert.True(t, dir.Add(model.User{ID: "9", Email: "new@taskflow.com"}))
	assert.Equal(t, 5, dir.Len())
	assert.Equal(t, "9", dir.All()[4].ID)
}

func TestUserDirectorySeedDropsDuplicates(t *testing.T) {
	dir := store.NewUserDirectory([]model.User{
		{ID: "1", Email: "a@x.com"},
		{ID: "2", Email: "a@x.com"},
	})
	assert.Equal(t, 1, dir.Len())
}
