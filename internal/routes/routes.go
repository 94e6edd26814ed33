package routes

import (
	"net/http"

	"github.com/taskhive/taskhive/internal/app"
	"github.com/taskhive/taskhive/internal/handler"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/storage"
)

func SetupRoutes(a *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(a.AuthService)
	task := handler.NewTaskHandler(a.TaskService)
	attachment := handler.NewAttachmentHandler(a.AttachmentService, a.Cfg.MaxUploadSize, a.Cfg.MaxFilesPerUpload)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /health", handler.Health)

	// Uploaded files (local storage only; S3 serves its own URLs)
	if local, ok := a.Storage.(*storage.LocalStorage); ok {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Root()))))
	}

	// Auth (register/login rate limited)
	rateLimiter := middleware.RateLimitAuth(a.Cfg.AuthRateLimit, a.Cfg.AuthRateWindow)

	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(auth.Me))

	// Tasks
	mux.HandleFunc("GET /tasks", middleware.RequireAuth(task.List))
	mux.HandleFunc("POST /tasks", middleware.RequireAuth(task.Create))
	mux.HandleFunc("GET /tasks/{id}", middleware.RequireAuth(task.Get))
	mux.HandleFunc("PUT /tasks/{id}", middleware.RequireAuth(task.Update))
	mux.HandleFunc("DELETE /tasks/{id}", middleware.RequireAuth(task.Delete))

	// Attachments
	mux.HandleFunc("POST /tasks/{id}/attachments", middleware.RequireAuth(attachment.Upload))
	mux.HandleFunc("DELETE /attachments/{id}", middleware.RequireAuth(attachment.Delete))

	// Realtime channel
	mux.Handle("GET /ws", a.RealtimeHandler)

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(a.AuthService),
	)

	return h
}
