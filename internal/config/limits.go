package config

const (
	// MaxNodeNameLength is the maximum length for file and directory names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxNodeNameLength = 255

	// MaxNodePathLength is the maximum length for full node paths.
	// Longer paths indicate overly deep hierarchies (anti-pattern).
	MaxNodePathLength = 500

	// MaxContentBytes bounds a single file payload accepted over the API.
	MaxContentBytes = 10 << 20
)
