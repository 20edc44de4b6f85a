package httputil

import (
	"context"
	"net/http"

	models "arbor/internal/domain/models/vfs"
)

// Context key type to avoid collisions
type contextKey string

const viewerKey contextKey = "viewer"

// WithViewer attaches the authenticated viewer to the request context.
func WithViewer(r *http.Request, viewer models.Viewer) *http.Request {
	ctx := context.WithValue(r.Context(), viewerKey, viewer)
	return r.WithContext(ctx)
}

// GetViewer retrieves the viewer from context. The zero Viewer means the
// request was not authenticated.
func GetViewer(r *http.Request) models.Viewer {
	viewer, _ := r.Context().Value(viewerKey).(models.Viewer)
	return viewer
}
