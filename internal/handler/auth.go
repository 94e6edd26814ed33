package handler

import (
	"net/http"

	"github.com/taskhive/taskhive/internal/ctxkeys"
	"github.com/taskhive/taskhive/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.authService.SetJWTCookie(w, token)

	writeJSON(w, http.StatusCreated, user.View())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.authService.SetJWTCookie(w, token)

	writeJSON(w, http.StatusOK, user.View())
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	writeJSON(w, http.StatusOK, user.View())
}
