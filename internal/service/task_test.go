package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
)

func setField(value string) model.Field[string] {
	return model.Field[string]{Set: true, Valid: true, Value: value}
}

func nullField() model.Field[string] {
	return model.Field[string]{Set: true}
}

func TestTaskCreate_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	created, err := env.task.Create(user.ID, TaskInput{
		Title:       "Buy milk",
		Description: "2 liters",
		Status:      model.TaskStatusInProgress,
		DueDate:     "2026-09-01",
	})
	require.NoError(t, err)

	got, err := env.task.Get(user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2 liters", got.Description)
	assert.Equal(t, model.TaskStatusInProgress, got.Status)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-09-01", *got.DueDate)
	assert.Empty(t, got.Attachments)
	assert.NotNil(t, got.Attachments)
}

func TestTaskCreate_Defaults(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	created, err := env.task.Create(user.ID, TaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, created.Status)
	assert.Nil(t, created.DueDate) // empty due date normalized to absent
	assert.Empty(t, created.Description)
}

func TestTaskCreate_ValidationBoundaries(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	_, err := env.task.Create(user.ID, TaskInput{Title: strings.Repeat("a", 255)})
	assert.NoError(t, err)

	_, err = env.task.Create(user.ID, TaskInput{Title: strings.Repeat("a", 256)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.task.Create(user.ID, TaskInput{Title: "t", Description: strings.Repeat("d", 10000)})
	assert.NoError(t, err)

	_, err = env.task.Create(user.ID, TaskInput{Title: "t", Description: strings.Repeat("d", 10001)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.task.Create(user.ID, TaskInput{Title: ""})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.task.Create(user.ID, TaskInput{Title: "t", Status: "done"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.task.Create(user.ID, TaskInput{Title: "t", DueDate: "tomorrow"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTaskList_StatusFilterAndOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	first, err := env.task.Create(user.ID, TaskInput{Title: "first", Status: model.TaskStatusCompleted})
	require.NoError(t, err)
	_, err = env.task.Create(user.ID, TaskInput{Title: "second"})
	require.NoError(t, err)
	third, err := env.task.Create(user.ID, TaskInput{Title: "third", Status: model.TaskStatusCompleted})
	require.NoError(t, err)

	all, err := env.task.List(user.ID, "all")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	completed, err := env.task.List(user.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	// newest-created-first
	assert.Equal(t, third.ID, completed[0].ID)
	assert.Equal(t, first.ID, completed[1].ID)
	for _, task := range completed {
		assert.Equal(t, model.TaskStatusCompleted, task.Status)
	}
}

func TestTask_OwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")

	task, err := env.task.Create(alice.ID, TaskInput{Title: "alice's task"})
	require.NoError(t, err)

	bobTasks, err := env.task.List(bob.ID, "all")
	require.NoError(t, err)
	assert.Empty(t, bobTasks)

	_, err = env.task.Get(bob.ID, task.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	_, err = env.task.Update(bob.ID, task.ID, model.TaskPatch{Title: setField("stolen")})
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	err = env.task.Delete(bob.ID, task.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

func TestTaskUpdate_PatchSemantics(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	created, err := env.task.Create(user.ID, TaskInput{
		Title:       "original",
		Description: "keep me",
		DueDate:     "2026-09-01",
	})
	require.NoError(t, err)

	// Omitted fields keep their values
	updated, err := env.task.Update(user.ID, created.ID, model.TaskPatch{
		Status: setField(model.TaskStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, "original", updated.Title)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, model.TaskStatusCompleted, updated.Status)
	require.NotNil(t, updated.DueDate)

	// Explicit null clears the nullable fields
	updated, err = env.task.Update(user.ID, created.ID, model.TaskPatch{
		Description: nullField(),
		DueDate:     nullField(),
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Nil(t, updated.DueDate)

	// Empty-string due date clears too
	updated, err = env.task.Update(user.ID, created.ID, model.TaskPatch{
		DueDate: setField("2026-10-01"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)

	updated, err = env.task.Update(user.ID, created.ID, model.TaskPatch{
		DueDate: setField(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)

	// Title cannot be cleared
	_, err = env.task.Update(user.ID, created.ID, model.TaskPatch{Title: nullField()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.task.Update(user.ID, created.ID, model.TaskPatch{Title: setField(strings.Repeat("a", 256))})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTask_OrphanClaim(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")

	orphan := env.createOrphanTask(t, "legacy")

	// Orphans are invisible to reads
	_, err := env.task.Get(alice.ID, orphan.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	// First mutation by id adopts the task
	updated, err := env.task.Update(alice.ID, orphan.ID, model.TaskPatch{
		Status: setField(model.TaskStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, updated.Status)

	// Thereafter it belongs exclusively to the claimer
	got, err := env.task.Get(alice.ID, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, "legacy", got.Title)

	_, err = env.task.Get(bob.ID, orphan.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	_, err = env.task.Update(bob.ID, orphan.ID, model.TaskPatch{Title: setField("mine now")})
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

func TestTask_OrphanClaimOnDelete(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")

	orphan := env.createOrphanTask(t, "legacy")

	require.NoError(t, env.task.Delete(alice.ID, orphan.ID))

	_, err := env.task.Get(alice.ID, orphan.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

func TestTaskDelete_NotFoundTwice(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice")

	err := env.task.Delete(user.ID, 4242)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	err = env.task.Delete(user.ID, 4242)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}
