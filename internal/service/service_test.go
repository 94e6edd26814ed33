package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/db"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/storage"
	"github.com/taskhive/taskhive/internal/validation"
)

type testEnv struct {
	db          *sqlx.DB
	users       repository.UserRepository
	tasks       repository.TaskRepository
	attachments repository.AttachmentRepository
	storage     *storage.LocalStorage
	auth        *AuthService
	task        *TaskService
	attachment  *AttachmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	users := repository.NewUserRepository(database)
	tasks := repository.NewTaskRepository(database)
	attachments := repository.NewAttachmentRepository(database)

	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	auth := NewAuthService(users, "test-secret", 24*time.Hour, false)
	task := NewTaskService(tasks, attachments, store)
	attachment := NewAttachmentService(task, attachments, store, validation.AttachmentConstraints)

	return &testEnv{
		db:          database,
		users:       users,
		tasks:       tasks,
		attachments: attachments,
		storage:     store,
		auth:        auth,
		task:        task,
		attachment:  attachment,
	}
}

func (e *testEnv) registerUser(t *testing.T, username string) *model.User {
	t.Helper()

	user, err := e.auth.Register(username, username+"@example.com", "secret1")
	require.NoError(t, err)
	return user
}

func (e *testEnv) createOrphanTask(t *testing.T, title string) *model.Task {
	t.Helper()

	task := &model.Task{
		Title:     title,
		Status:    model.TaskStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, e.tasks.Create(task))
	return task
}
