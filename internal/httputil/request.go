package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"arbor/internal/config"
)

// ParseJSON decodes JSON from the request body into the given destination.
// The body is capped at the content limit; w is needed so the reader can
// produce a proper 413.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxContentBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
