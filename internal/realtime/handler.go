package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/service"
)

// Call event names. Each mirrors an HTTP route with the same validation and
// the same output shape; file upload has no event and stays on HTTP.
const (
	EventAuthRegister     = "auth:register"
	EventAuthLogin        = "auth:login"
	EventAuthMe           = "auth:me"
	EventTasksGet         = "tasks:get"
	EventTasksGetByID     = "tasks:getById"
	EventTasksCreate      = "tasks:create"
	EventTasksUpdate      = "tasks:update"
	EventTasksDelete      = "tasks:delete"
	EventAttachmentDelete = "attachments:delete"
)

// request is a call frame. The token rides in the payload because there is
// no cookie jar shared across frames.
type request struct {
	ID    string          `json:"id,omitempty"`
	Event string          `json:"event"`
	Token string          `json:"token,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type frameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// response is the single acknowledgement sent per call frame.
type response struct {
	ID    string      `json:"id,omitempty"`
	OK    bool        `json:"ok"`
	Data  any         `json:"data,omitempty"`
	Error *frameError `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades connections and routes call frames to the same services
// the HTTP handlers use.
type Handler struct {
	hub               *Hub
	authService       *service.AuthService
	taskService       *service.TaskService
	attachmentService *service.AttachmentService
}

func NewHandler(hub *Hub, authService *service.AuthService, taskService *service.TaskService, attachmentService *service.AttachmentService) *Handler {
	return &Handler{
		hub:               hub,
		authService:       authService,
		taskService:       taskService,
		attachmentService: attachmentService,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", "error", err)
		return
	}

	client := newClient(h.hub, conn)

	// A connection-time auth payload may carry the session token up front.
	if token := r.URL.Query().Get("token"); token != "" {
		client.token = token
	}

	h.hub.register <- client

	go client.writePump()
	client.readPump(h.dispatch)
}

func (h *Handler) dispatch(c *Client, message []byte) {
	var req request
	err := json.Unmarshal(message, &req)
	if err != nil {
		c.reply(marshalResponse(response{OK: false, Error: &frameError{Code: "VALIDATION_ERROR", Message: "invalid frame"}}))
		return
	}

	if req.Token != "" {
		c.token = req.Token
	}

	data, err := h.handle(c, req)

	resp := response{ID: req.ID, OK: err == nil, Data: data}
	if err != nil {
		resp.Data = nil
		resp.Error = ackError(err)
	}
	c.reply(marshalResponse(resp))
}

func (h *Handler) handle(c *Client, req request) (any, error) {
	switch req.Event {
	case EventAuthRegister:
		return h.register(c, req.Data)
	case EventAuthLogin:
		return h.login(c, req.Data)
	case EventAuthMe:
		user, err := h.resolveUser(c, req)
		if err != nil {
			return nil, err
		}
		return user.View(), nil
	case EventTasksGet:
		user, err := h.resolveUser(c, req)
		if err != nil {
			return nil, err
		}
		var in struct {
			Status string `json:"status"`
		}
		if err := unmarshalData(req.Data, &in); err != nil {
			return nil, err
		}
		return h.taskService.List(user.ID, in.Status)
	case EventTasksGetByID:
		user, err := h.resolveUser(c, req)
		if err != nil {
			return nil, err
		}
		id, err := idFromData(req.Data)
		if err != nil {
			return nil, err
		}
		return h.taskService.Get(user.ID, id)
	case EventTasksCreate:
		user, err := h.resolveUser(c, req)
		if err != nil {
			return nil, err
		}
		var in service.TaskInput
		if err := unmarshalData(req.Data, &in); err != nil {
			return nil, err
		}
		task, err := h.taskService.Create(user.ID, in)
		if err != nil {
			return nil, err
		}
		h.hub.Broadcast(EventTaskCreated, task)
		return task, nil
	case EventTasksUpdate:
		user, err := h.resolveUser(c, req)
		if err != nil {
			return nil, err
		}
		var in struct {
			ID int64 `json:"id"`
			model.TaskPatch
		}
		if err := unmarshalData(req.Data, &in); err != nil {
			return nil, err
		}
		task, err := h.taskService.Update(user.ID, in.ID, in.TaskPatch)
		if err != nil {
			return nil, err
		}
		h.hub.Broadcast(EventTaskUpdated, task)
		return task, nil
	case EventTasksDelete:
		user, err := h.resolveUser(c, req)
		if err != nil {
			return nil, err
		}
		id, err := idFromData(req.Data)
		if err != nil {
			return nil, err
		}
		err = h.taskService.Delete(user.ID, id)
		if err != nil {
			return nil, err
		}
		h.hub.Broadcast(EventTaskDeleted, map[string]int64{"id": id})
		return map[string]int64{"id": id}, nil
	case EventAttachmentDelete:
		_, err := h.resolveUser(c, req)
		if err != nil {
			return nil, err
		}
		id, err := idFromData(req.Data)
		if err != nil {
			return nil, err
		}
		err = h.attachmentService.Delete(id)
		if err != nil {
			return nil, err
		}
		h.hub.Broadcast(EventAttachmentDeleted, map[string]int64{"id": id})
		return map[string]int64{"id": id}, nil
	default:
		return nil, fmt.Errorf("%w: unknown event %q", service.ErrValidation, req.Event)
	}
}

func (h *Handler) register(c *Client, data json.RawMessage) (any, error) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := unmarshalData(data, &in); err != nil {
		return nil, err
	}

	user, err := h.authService.Register(in.Username, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	c.token = token

	return map[string]any{"user": user.View(), "token": token}, nil
}

func (h *Handler) login(c *Client, data json.RawMessage) (any, error) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := unmarshalData(data, &in); err != nil {
		return nil, err
	}

	user, err := h.authService.Authenticate(in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	c.token = token

	return map[string]any{"user": user.View(), "token": token}, nil
}

// resolveUser applies the same gate as the HTTP middleware: verify the token
// carried by the frame (or remembered on the connection), then confirm the
// user still exists.
func (h *Handler) resolveUser(c *Client, req request) (*model.User, error) {
	token := req.Token
	if token == "" {
		token = c.token
	}
	if token == "" {
		return nil, service.ErrUnauthenticated
	}
	return h.authService.ResolveUser(token)
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	err := json.Unmarshal(data, v)
	if err != nil {
		return service.ErrValidation
	}
	return nil
}

func idFromData(data json.RawMessage) (int64, error) {
	var in struct {
		ID int64 `json:"id"`
	}
	err := unmarshalData(data, &in)
	if err != nil {
		return 0, err
	}
	return in.ID, nil
}

// ackError maps the service error taxonomy to the ack frame idiom, keeping
// the same cases the HTTP status codes carry.
func ackError(err error) *frameError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return &frameError{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, service.ErrUploadRejected):
		return &frameError{Code: "UPLOAD_REJECTED", Message: err.Error()}
	case errors.Is(err, service.ErrDuplicateUser):
		return &frameError{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, service.ErrInvalidCredentials):
		return &frameError{Code: "INVALID_CREDENTIALS", Message: err.Error()}
	case errors.Is(err, service.ErrUnauthenticated):
		return &frameError{Code: "AUTH_REQUIRED", Message: err.Error()}
	case errors.Is(err, repository.ErrTaskNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrAttachmentNotFound):
		return &frameError{Code: "NOT_FOUND", Message: err.Error()}
	default:
		slog.Error("websocket call failed", "error", err)
		return &frameError{Code: "INTERNAL_ERROR", Message: "internal server error"}
	}
}

func marshalResponse(resp response) []byte {
	message, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return []byte(`{"ok":false,"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`)
	}
	return message
}
