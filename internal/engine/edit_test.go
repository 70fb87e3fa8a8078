package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

func TestEditSession_OpenReplacesThenCancel(t *testing.T) {
	e, api, _ := setupEngine(t)
	x, y := newTask("x", "X"), newTask("y", "Y")
	seedTasks(t, e, api, x, y)

	e.Edit.OpenFor(x)
	e.Edit.OpenFor(y)
	id, ok := e.Edit.Editing()
	require.True(t, ok)
	assert.Equal(t, "y", id)
	assert.Equal(t, "Y", e.Edit.Form().Title)

	e.Edit.Cancel()
	_, ok = e.Edit.Editing()
	assert.False(t, ok)
	assert.Empty(t, e.Edit.Form().Title)

	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditSession_FormPopulation(t *testing.T) {
	due := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
	tk := model.Task{
		ID:          "1",
		Title:       "Wrap gifts",
		Description: "all of them",
		DueDate:     &due,
		Priority:    model.PriorityHigh,
	}

	f := FormFromTask(tk)
	assert.Equal(t, "Wrap gifts", f.Title)
	assert.Equal(t, "all of them", f.Description)
	assert.Equal(t, "2024-12-24", f.DueDate)
	assert.Equal(t, model.PriorityHigh, f.Priority)

	tk.Priority = "Someday"
	tk.DueDate = nil
	f = FormFromTask(tk)
	assert.Equal(t, model.PriorityMedium, f.Priority)
	assert.Empty(t, f.DueDate)
}

func TestEditSession_SubmitEditUpdatesTrackedTask(t *testing.T) {
	e, api, _ := setupEngine(t)
	a, b, c := newTask("a", "A"), newTask("b", "B"), newTask("c", "C")
	seedTasks(t, e, api, a, b, c)

	e.Edit.OpenFor(b)

	// The collection is reordered before the user submits.
	api.On("List", mock.Anything, model.StatusAll).Return([]model.Task{c, b, a}, nil).Once()
	require.NoError(t, e.Query.Refresh(context.Background()))

	f := e.Edit.Form()
	f.Title = "B edited"
	f.DueDate = "2025-01-15"

	api.On("Update", mock.Anything, "b", mock.MatchedBy(func(p model.TaskPatch) bool {
		return p.Title != nil && *p.Title == "B edited" &&
			p.DueDate != nil && *p.DueDate == "2025-01-15T00:00:00.000Z"
	})).Return(newTask("b", "B edited"), nil).Once()

	updated, err := e.Edit.Submit(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "B edited", updated.Title)

	_, editing := e.Edit.Editing()
	assert.False(t, editing)
	assert.Equal(t, []string{"C", "B edited", "A"}, titles(e.State.Tasks()))
	api.AssertExpectations(t)
}

func TestEditSession_SubmitCreateMode(t *testing.T) {
	e, api, _ := setupEngine(t)

	f := e.Edit.Form()
	key := f.IdempotencyKey
	require.NotEmpty(t, key)
	assert.Equal(t, model.PriorityMedium, f.Priority)

	f.Title = "New task"
	f.DueDate = "2025-03-01"
	api.On("Create", mock.Anything, model.TaskInput{
		Title:    "New task",
		DueDate:  "2025-03-01T00:00:00.000Z",
		Priority: model.PriorityMedium,
	}, key).Return(newTask("n", "New task"), nil).Once()

	_, err := e.Edit.Submit(context.Background(), f)
	require.NoError(t, err)

	reset := e.Edit.Form()
	assert.Empty(t, reset.Title)
	assert.Empty(t, reset.DueDate)
	assert.NotEqual(t, key, reset.IdempotencyKey)
	assert.Equal(t, []string{"New task"}, titles(e.State.Tasks()))
}

func TestEditSession_BlankTitleNeverCallsRemote(t *testing.T) {
	e, api, _ := setupEngine(t)
	x := newTask("x", "X")
	seedTasks(t, e, api, x)

	_, err := e.Edit.Submit(context.Background(), Form{Title: "  ", Priority: model.PriorityLow})
	assert.ErrorIs(t, err, ErrValidation)

	e.Edit.OpenFor(x)
	f := e.Edit.Form()
	f.Title = ""
	_, err = e.Edit.Submit(context.Background(), f)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Title is required.", e.State.Err())

	id, ok := e.Edit.Editing()
	assert.True(t, ok)
	assert.Equal(t, "x", id)

	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditSession_BadDueDate(t *testing.T) {
	e, api, _ := setupEngine(t)

	_, err := e.Edit.Submit(context.Background(), Form{Title: "T", DueDate: "tomorrow", Priority: model.PriorityLow})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Due date must be YYYY-MM-DD.", e.State.Err())
	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditSession_FailedSubmitKeepsSession(t *testing.T) {
	e, api, _ := setupEngine(t)
	x := newTask("x", "X")
	seedTasks(t, e, api, x)

	e.Edit.OpenFor(x)
	f := e.Edit.Form()
	f.Title = "X2"
	api.On("Update", mock.Anything, "x", mock.Anything).Return(model.Task{}, errors.New("offline")).Once()

	_, err := e.Edit.Submit(context.Background(), f)
	require.Error(t, err)

	id, ok := e.Edit.Editing()
	assert.True(t, ok)
	assert.Equal(t, "x", id)
	assert.Equal(t, "X2", e.Edit.Form().Title)
	assert.Equal(t, MsgMutationFailed, e.State.Err())
}

func TestEditSession_FailedCreateKeepsIdempotencyKey(t *testing.T) {
	e, api, _ := setupEngine(t)

	f := e.Edit.Form()
	f.Title = "Retry me"
	api.On("Create", mock.Anything, mock.Anything, f.IdempotencyKey).Return(model.Task{}, errors.New("offline")).Once()
	api.On("Create", mock.Anything, mock.Anything, f.IdempotencyKey).Return(newTask("r", "Retry me"), nil).Once()

	_, err := e.Edit.Submit(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, f.IdempotencyKey, e.Edit.Form().IdempotencyKey)

	_, err = e.Edit.Submit(context.Background(), e.Edit.Form())
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestEditSession_ReopenDuringSubmit(t *testing.T) {
	e, api, _ := setupEngine(t)
	x, y := newTask("x", "X"), newTask("y", "Y")
	seedTasks(t, e, api, x, y)

	gate := make(chan time.Time)
	api.On("Update", mock.Anything, "x", mock.Anything).WaitUntil(gate).Return(newTask("x", "X2"), nil).Once()

	e.Edit.OpenFor(x)
	f := e.Edit.Form()
	f.Title = "X2"

	done := make(chan error, 1)
	go func() {
		_, err := e.Edit.Submit(context.Background(), f)
		done <- err
	}()

	assert.Eventually(t, func() bool {
		return e.Edit.Form().Title == "X2"
	}, 2*time.Second, 5*time.Millisecond)
	e.Edit.OpenFor(y)
	close(gate)
	require.NoError(t, <-done)

	id, ok := e.Edit.Editing()
	assert.True(t, ok)
	assert.Equal(t, "y", id)
	assert.Equal(t, []string{"X2", "Y"}, titles(e.State.Tasks()))
}

func TestEditSession_PreparedSubmitKeepsItsTask(t *testing.T) {
	e, api, _ := setupEngine(t)
	x, y := newTask("x", "X"), newTask("y", "Y")
	seedTasks(t, e, api, x, y)

	e.Edit.OpenFor(x)
	f := e.Edit.Form()
	f.Title = "X2"
	submit := e.Edit.Prepare(f)

	e.Edit.Cancel()
	e.Edit.OpenFor(y)

	api.On("Update", mock.Anything, "x", mock.MatchedBy(func(p model.TaskPatch) bool {
		return p.Title != nil && *p.Title == "X2"
	})).Return(newTask("x", "X2"), nil).Once()

	_, err := submit(context.Background())
	require.NoError(t, err)

	id, ok := e.Edit.Editing()
	assert.True(t, ok)
	assert.Equal(t, "y", id)
	assert.Equal(t, "Y", e.Edit.Form().Title)
	assert.Equal(t, []string{"X2", "Y"}, titles(e.State.Tasks()))
	api.AssertExpectations(t)
}
