package handler

import (
	"net/http"

	models "arbor/internal/domain/models/vfs"
	services "arbor/internal/domain/services/vfs"
	"arbor/internal/httputil"
)

// GetTree returns the whole namespace as a nested tree
// GET /api/fs/tree
func (h *NamespaceHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	tree, err := h.svc.GetTree(r.Context(), viewer, ns)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}

// List returns the direct children of a directory in ordinal order
// GET /api/fs/list?path=...
func (h *NamespaceHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	children, err := h.svc.List(r.Context(), viewer, ns, r.URL.Query().Get("path"))
	if err != nil {
		handleError(w, err)
		return
	}
	if children == nil {
		children = []models.Node{}
	}
	httputil.RespondJSON(w, http.StatusOK, children)
}

// Stat resolves a path to its node metadata
// GET /api/fs/stat?path=...
func (h *NamespaceHandler) Stat(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	node, err := h.svc.Stat(r.Context(), viewer, ns, r.URL.Query().Get("path"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, node)
}

// Search matches file content under a subtree
// GET /api/fs/search?q=...&path=...&mode=...&order=...
func (h *NamespaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	query := r.URL.Query()
	req := services.SearchRequest{
		Query:       query.Get("q"),
		SubtreePath: query.Get("path"),
		Mode:        models.SearchMode(query.Get("mode")),
		Order:       models.SearchOrder(query.Get("order")),
	}

	results, err := h.svc.Search(r.Context(), viewer, ns, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}

// HealthCheck reports liveness
// GET /health
func (h *NamespaceHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
