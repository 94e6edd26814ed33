package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/taskhive/taskhive/internal/ctxkeys"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	status := r.URL.Query().Get("status")

	tasks, err := h.taskService.List(user.ID, status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.taskService.Get(user.ID, taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.TaskInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.taskService.Create(user.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var patch model.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.taskService.Update(user.ID, taskID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.taskService.Delete(user.ID, taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// taskIDFromPath parses the {id} segment. A non-numeric id can never match a
// row, so it reports not-found rather than a validation error.
func taskIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", repository.ErrTaskNotFound)
	}
	return id, nil
}
