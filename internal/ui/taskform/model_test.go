package taskform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskflow/internal/model"
)

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"design", "frontend"}, ParseTags(" design, ,frontend ,"))
	assert.Equal(t, []string{}, ParseTags(""))
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), parseDate(" 2024-03-09 "))
	assert.True(t, parseDate("").IsZero())
	assert.True(t, parseDate("09/03/2024").IsZero())
}

func TestValidateOptionalDate(t *testing.T) {
	assert.NoError(t, validateOptionalDate(""))
	assert.NoError(t, validateOptionalDate("2024-03-09"))
	assert.Error(t, validateOptionalDate("tomorrow"))
}

func TestSubmitEditCarriesEveryField(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Task{ID: "5", Title: "Old", Status: model.StatusReview, Priority: model.PriorityLow, AssigneeID: "2"})
	m.fb.title = "New"
	m.fb.assigneeID = ""
	m.fb.dueDate = ""

	msg, ok := m.submit()().(UpdatedMsg)
	assert.True(t, ok)
	assert.Equal(t, "5", msg.TaskID)
	assert.Equal(t, "New", *msg.Patch.Title)
	assert.Equal(t, model.StatusReview, *msg.Patch.Status)
	assert.Equal(t, "", *msg.Patch.AssigneeID, "an empty assignee unassigns")
	assert.True(t, msg.Patch.DueDate.IsZero(), "an empty due date clears it")
}

func TestSubmitCreate(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.title = "Fresh"
	m.fb.dueDate = "2024-03-09"
	m.fb.tags = "x, y"

	msg, ok := m.submit()().(CreatedMsg)
	assert.True(t, ok)
	assert.Equal(t, "Fresh", msg.Draft.Title)
	assert.Equal(t, model.StatusTodo, msg.Draft.Status)
	assert.Equal(t, model.PriorityMedium, msg.Draft.Priority)
	assert.Equal(t, []string{"x", "y"}, msg.Draft.Tags)
	if assert.NotNil(t, msg.Draft.DueDate) {
		assert.Equal(t, 9, msg.Draft.DueDate.Day())
	}
}
