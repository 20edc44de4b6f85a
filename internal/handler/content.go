package handler

import (
	"net/http"

	services "arbor/internal/domain/services/vfs"
	"arbor/internal/httputil"
)

// Save writes a file, optionally renaming it first or splitting it on the
// delimiter
// POST /api/fs/save
func (h *NamespaceHandler) Save(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req services.SaveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "path is required")
		return
	}

	result, err := h.svc.Save(r.Context(), viewer, ns, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Join concatenates sibling files into the lowest-ordinal one
// POST /api/fs/join
func (h *NamespaceHandler) Join(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req services.JoinRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Join(r.Context(), viewer, ns, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// BuildFolder converts a file into a folder at the same tree position
// POST /api/fs/folder
func (h *NamespaceHandler) BuildFolder(w http.ResponseWriter, r *http.Request) {
	viewer, ns, ok := requestIdentity(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req services.BuildFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, err := h.svc.BuildFolder(r.Context(), viewer, ns, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"folder": name})
}
