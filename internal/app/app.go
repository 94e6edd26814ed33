package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/db"
	"github.com/taskhive/taskhive/internal/realtime"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/service"
	"github.com/taskhive/taskhive/internal/storage"
	"github.com/taskhive/taskhive/internal/validation"
)

// App is the explicitly constructed service context handed to every handler.
// Nothing here is an ambient global; lifecycle is tied to process start/stop.
type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Storage           storage.Storage
	AuthService       *service.AuthService
	TaskService       *service.TaskService
	AttachmentService *service.AttachmentService
	Hub               *realtime.Hub
	RealtimeHandler   *realtime.Handler
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	taskRepository := repository.NewTaskRepository(database)
	attachmentRepository := repository.NewAttachmentRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())
	taskService := service.NewTaskService(taskRepository, attachmentRepository, fileStorage)

	constraints := validation.AttachmentConstraints
	constraints.MaxSize = cfg.MaxUploadSize
	constraints.MaxFiles = cfg.MaxFilesPerUpload
	attachmentService := service.NewAttachmentService(taskService, attachmentRepository, fileStorage, constraints)

	// Realtime channel
	hub := realtime.NewHub()
	go hub.Run()
	realtimeHandler := realtime.NewHandler(hub, authService, taskService, attachmentService)

	return &App{
		Cfg:               cfg,
		DB:                database,
		Storage:           fileStorage,
		AuthService:       authService,
		TaskService:       taskService,
		AttachmentService: attachmentService,
		Hub:               hub,
		RealtimeHandler:   realtimeHandler,
	}, nil
}

func (a *App) Close() error {
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
