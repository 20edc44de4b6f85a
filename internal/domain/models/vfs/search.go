package vfs

import (
	"fmt"
	"strings"
)

// SearchMode defines how the query text is matched against file content
type SearchMode string

const (
	// SearchModeRegex matches content against the query as a regular expression
	SearchModeRegex SearchMode = "regex"

	// SearchModeMatchAny matches content containing ANY whitespace-split term
	SearchModeMatchAny SearchMode = "any"

	// SearchModeMatchAll matches content containing ALL whitespace-split terms
	SearchModeMatchAll SearchMode = "all"
)

// SearchOrder defines the ordering of search results
type SearchOrder string

const (
	// SearchOrderModified orders by modification time, most recent first
	SearchOrderModified SearchOrder = "modified"

	// SearchOrderName orders lexicographically by filename
	SearchOrderName SearchOrder = "name"

	// SearchOrderCreated orders by creation time, newest first
	SearchOrderCreated SearchOrder = "created"
)

// MatchAllPattern is substituted for a blank query under regex mode so an
// empty search returns every visible file in scope.
const MatchAllPattern = ".*"

// SearchOptions configures a subtree-scoped content search
type SearchOptions struct {
	// Query is the raw search text. Blank means "match everything".
	Query string

	// SubtreePath scopes the search; "" searches the whole namespace.
	SubtreePath string

	// Mode selects regex / match-any / match-all semantics (default: regex)
	Mode SearchMode

	// Order selects result ordering (default: modified, most recent first)
	Order SearchOrder

	// Terms is derived from Query by ApplyDefaults: the regex pattern for
	// SearchModeRegex, or the whitespace-split term list otherwise.
	Terms []string
}

// ApplyDefaults fills in default mode/order and derives Terms from Query.
func (opts *SearchOptions) ApplyDefaults() {
	if opts.Mode == "" {
		opts.Mode = SearchModeRegex
	}
	if opts.Order == "" {
		opts.Order = SearchOrderModified
	}
	if strings.TrimSpace(opts.Query) == "" {
		// Blank query matches everything, expressed as a regex.
		opts.Mode = SearchModeRegex
		opts.Terms = []string{MatchAllPattern}
		return
	}
	switch opts.Mode {
	case SearchModeRegex:
		opts.Terms = []string{opts.Query}
	default:
		opts.Terms = strings.Fields(opts.Query)
	}
}

// Validate checks mode and order values. Call after ApplyDefaults.
func (opts *SearchOptions) Validate() error {
	switch opts.Mode {
	case SearchModeRegex, SearchModeMatchAny, SearchModeMatchAll:
	default:
		return fmt.Errorf("unknown search mode: %q", opts.Mode)
	}
	switch opts.Order {
	case SearchOrderModified, SearchOrderName, SearchOrderCreated:
	default:
		return fmt.Errorf("unknown search order: %q", opts.Order)
	}
	if len(opts.Terms) == 0 {
		return fmt.Errorf("search terms not derived; call ApplyDefaults first")
	}
	return nil
}

// SearchResult is a single file-level match
type SearchResult struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}
