package handler

import (
	"net/http"

	models "arbor/internal/domain/models/vfs"
	"arbor/internal/httputil"
)

// namespaceHeader selects which namespace a request operates on. Without it
// the caller's personal namespace (keyed by user id) is used.
const namespaceHeader = "X-Namespace"

// requestIdentity resolves the viewer and namespace key for a request. The
// viewer comes from the auth middleware; an empty one means the middleware
// was bypassed and the request must be rejected.
func requestIdentity(r *http.Request) (models.Viewer, string, bool) {
	viewer := httputil.GetViewer(r)
	if viewer.UserID == "" {
		return models.Viewer{}, "", false
	}
	ns := r.Header.Get(namespaceHeader)
	if ns == "" {
		ns = viewer.UserID
	}
	return viewer, ns, true
}
