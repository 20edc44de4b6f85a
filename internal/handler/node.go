package handler

import (
	"log/slog"
	"net/http"

	services "arbor/internal/domain/services/vfs"
	"arbor/internal/httputil"
)

// NamespaceHandler exposes the virtual namespace over HTTP. It parses and
// answers; every rule lives in the service layer.
type NamespaceHandler struct {
	svc    services.Namespace
	logger *slog.Logger
}

// NewNamespaceHandler creates a new namespace handler
func NewNamespaceHandler(svc services.Namespace, logger *slog.Logger) *NamespaceHandler {
	return &NamespaceHandler{
		svc:    svc,
		logger: logger,
	}
}

// Mkdir creates every missing directory along a path
// POST /api/fs/mkdir
func (h *NamespaceHandler) Mkdir(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Mkdir(r.Context(), viewer, ns, req.Path); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"path": req.Path})
}

// Rename moves or renames one node
// POST /api/fs/rename
func (h *NamespaceHandler) Rename(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req services.RenameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Rename(r.Context(), viewer, ns, &req); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"path": req.NewPath})
}

// Delete removes named children of a directory, recursively for directories
// POST /api/fs/delete
func (h *NamespaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req services.DeleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Names) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "names is required")
		return
	}

	result, err := h.svc.Delete(r.Context(), viewer, ns, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Move swaps a node with its adjacent sibling
// POST /api/fs/move
func (h *NamespaceHandler) Move(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req services.MoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Move(r.Context(), viewer, ns, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// SetVisibility flips the public flag on a node, optionally recursively
// POST /api/fs/visibility
func (h *NamespaceHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req services.VisibilityRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetVisibility(r.Context(), viewer, ns, &req); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"public": req.Public})
}

// Paste relocates a batch of items into a target directory
// POST /api/fs/paste
func (h *NamespaceHandler) Paste(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req services.PasteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.SourcePaths) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "source_paths is required")
		return
	}

	result, err := h.svc.Paste(r.Context(), viewer, ns, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
