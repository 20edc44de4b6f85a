package vfs

// ItemError records a single item's failure inside a batch operation.
// Batch operations accumulate these instead of aborting sibling items.
type ItemError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BatchResult reports the outcome of a batch operation (delete, paste).
type BatchResult struct {
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
	Errors    []ItemError `json:"errors,omitempty"`
}

// JoinResult reports the outcome of joining multiple files into one.
type JoinResult struct {
	JoinedFile   string   `json:"joined_file"`
	DeletedFiles []string `json:"deleted_files"`
}

// SaveResult reports the outcome of a save, including split fan-out.
type SaveResult struct {
	Path  string `json:"path"`
	Parts int    `json:"parts"` // 1 for an ordinary save
}

// SwapResult names the sibling pair whose ordinals were exchanged.
type SwapResult struct {
	Moved string `json:"moved"`
	Other string `json:"other"`
}
