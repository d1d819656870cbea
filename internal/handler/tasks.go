package handler

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"taskboard/internal/codec"
	"taskboard/internal/domain"
	"taskboard/internal/service"
)

// TaskHandler handles task and ranking requests
type TaskHandler struct {
	svc *service.RankingService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(svc *service.RankingService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Register adds the task routes to mux
func (h *TaskHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tasks", h.CreateTask)
	mux.HandleFunc("GET /api/tasks", h.ListTasks)
	mux.HandleFunc("POST /api/tasks/rerank", h.Rerank)
	mux.HandleFunc("GET /api/tasks/export", h.Export)
	mux.HandleFunc("POST /api/tasks/import", h.Import)
	mux.HandleFunc("GET /api/tasks/{id}", h.GetTask)
	mux.HandleFunc("POST /api/tasks/{id}", h.UpdateTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", h.UpdateTask)
	mux.HandleFunc("POST /api/tasks/{id}/complete", h.CompleteTask)
	mux.HandleFunc("POST /api/tasks/{id}/reopen", h.ReopenTask)
}

type createTaskRequest struct {
	Title string `json:"title"`
}

type rerankRequest struct {
	IDs []int64 `json:"ids"`
}

// CreateTask creates a task for the calling owner
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	owner, err := OwnerFromRequest(r)
	if err != nil {
		writeServiceError(w, "create task", err)
		return
	}

	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, "create task", err)
		return
	}

	task, err := h.svc.CreateTask(r.Context(), req.Title, owner)
	if err != nil {
		writeServiceError(w, "create task", err)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+strconv.FormatInt(task.ID, 10))
	writeJSON(w, task, http.StatusCreated)
}

// ListTasks returns the calling owner's tasks in display order.
// Repeat the state parameter to select several states.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	owner, err := OwnerFromRequest(r)
	if err != nil {
		writeServiceError(w, "list tasks", err)
		return
	}

	tasks, err := h.svc.QueryByOwner(r.Context(), owner, stateParams(r))
	if err != nil {
		writeServiceError(w, "list tasks", err)
		return
	}

	etag, err := listETag(tasks)
	if err != nil {
		writeServiceError(w, "list tasks", err)
		return
	}
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, tasks, http.StatusOK)
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "get task", err)
		return
	}

	task, err := h.svc.GetTask(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get task", err)
		return
	}

	writeJSON(w, task, http.StatusOK)
}

// UpdateTask applies a partial edit. Omitted fields are left untouched.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "update task", err)
		return
	}

	var patch domain.TaskPatch
	if err := decodeBody(r, &patch); err != nil {
		writeServiceError(w, "update task", err)
		return
	}

	task, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, "update task", err)
		return
	}

	writeJSON(w, task, http.StatusOK)
}

// CompleteTask marks a task complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete task", h.svc.CompleteTask)
}

// ReopenTask marks a task open again
func (h *TaskHandler) ReopenTask(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reopen task", h.svc.ReopenTask)
}

func (h *TaskHandler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, int64) (domain.Result, error)) {
	id, err := domain.ParseTaskID(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, action, err)
		return
	}

	result, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, action, err)
		return
	}

	w.Header().Set(HeaderTaskResult, string(result.Outcome))
	writeJSON(w, result, http.StatusOK)
}

// Rerank replaces the calling owner's ranking
func (h *TaskHandler) Rerank(w http.ResponseWriter, r *http.Request) {
	owner, err := OwnerFromRequest(r)
	if err != nil {
		writeServiceError(w, "save rankings", err)
		return
	}

	var req rerankRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, "save rankings", err)
		return
	}

	ranking, err := h.svc.SaveRankings(r.Context(), owner, req.IDs)
	if err != nil {
		writeServiceError(w, "save rankings", err)
		return
	}

	writeJSON(w, ranking, http.StatusOK)
}

// Export downloads the calling owner's ranked list as JSON or YAML
func (h *TaskHandler) Export(w http.ResponseWriter, r *http.Request) {
	owner, err := OwnerFromRequest(r)
	if err != nil {
		writeServiceError(w, "export tasks", err)
		return
	}

	format := r.URL.Query().Get("format")
	exporter, err := codec.ForFormat(format)
	if err != nil {
		writeServiceError(w, "export tasks", err)
		return
	}

	// Buffer so a failure can still be reported as an error response
	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), owner, stateParams(r), exporter.Format(), &buf); err != nil {
		writeServiceError(w, "export tasks", err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=tasks.%s", exporter.Format()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Import recreates an exported task list for the calling owner. The format
// comes from the format parameter, else from a YAML Content-Type.
func (h *TaskHandler) Import(w http.ResponseWriter, r *http.Request) {
	owner, err := OwnerFromRequest(r)
	if err != nil {
		writeServiceError(w, "import tasks", err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" && strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = "yaml"
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	tasks, err := h.svc.Import(r.Context(), owner, format, r.Body)
	if err != nil {
		writeServiceError(w, "import tasks", err)
		return
	}

	writeJSON(w, tasks, http.StatusCreated)
}

// stateParams collects state tokens from repeated or comma-separated
// state query parameters
func stateParams(r *http.Request) []string {
	var states []string
	for _, v := range r.URL.Query()["state"] {
		for _, token := range strings.Split(v, ",") {
			if token = strings.TrimSpace(token); token != "" {
				states = append(states, token)
			}
		}
	}
	return states
}

// listETag digests everything a client renders from the list
func listETag(tasks []domain.Task) (string, error) {
	hash, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, t := range tasks {
		fmt.Fprintf(hash, "%d\x00%s\x00%s\x00%s\x00%s\x00",
			t.ID, t.State, t.Title, t.Description, t.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	return `"` + hex.EncodeToString(hash.Sum(nil)) + `"`, nil
}

// etagMatches implements the If-None-Match comparison
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
