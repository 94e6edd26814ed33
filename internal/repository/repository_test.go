package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/db"
	"github.com/taskhive/taskhive/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	return database
}

func newTestUser(t *testing.T, repo UserRepository, username string) *model.User {
	t.Helper()

	now := time.Now()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := repo.Create(user)
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	return user
}

func newTestTask(t *testing.T, repo TaskRepository, userID *int64, title string, createdAt time.Time) *model.Task {
	t.Helper()

	task := &model.Task{
		UserID:    userID,
		Title:     title,
		Status:    model.TaskStatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	err := repo.Create(task)
	require.NoError(t, err)
	require.NotZero(t, task.ID)

	return task
}
