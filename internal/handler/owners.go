package handler

import (
	"net/http"

	"taskboard/internal/service"
)

// OwnerHandler handles owner directory requests
type OwnerHandler struct {
	svc *service.OwnerService
}

// NewOwnerHandler creates a new owner handler
func NewOwnerHandler(svc *service.OwnerService) *OwnerHandler {
	return &OwnerHandler{svc: svc}
}

// Register adds the owner routes to mux
func (h *OwnerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", h.CreateOwner)
	mux.HandleFunc("GET /api/users", h.ListOwners)
}

type createOwnerRequest struct {
	Name string `json:"name"`
}

// CreateOwner registers a new owner
func (h *OwnerHandler) CreateOwner(w http.ResponseWriter, r *http.Request) {
	var req createOwnerRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, "create owner", err)
		return
	}

	owner, err := h.svc.CreateOwner(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, "create owner", err)
		return
	}

	writeJSON(w, owner, http.StatusCreated)
}

// ListOwners returns all owners sorted by name
func (h *OwnerHandler) ListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.svc.ListOwners(r.Context())
	if err != nil {
		writeServiceError(w, "list owners", err)
		return
	}

	writeJSON(w, owners, http.StatusOK)
}
