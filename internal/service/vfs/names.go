package vfs

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"arbor/internal/config"
	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
)

// Leaf names are restricted to a bounded charset: letters, digits,
// underscore, dot, space and hyphen. Slashes only ever appear between
// segments of a full path. Dotted names are allowed because ordinary
// filenames ("notes.md") carry extensions.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9 ._-]+$`)

// ValidateName checks one leaf name against the namespace name policy.
func ValidateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxNodeNameLength),
		validation.Match(nameRegex),
	)
	if err != nil {
		return &domain.InvalidNameError{
			Message: fmt.Sprintf("invalid name %q: %v", name, err),
		}
	}
	// Dot-only names would collide with path normalization.
	if strings.Trim(name, ".") == "" {
		return &domain.InvalidNameError{
			Message: fmt.Sprintf("invalid name %q", name),
		}
	}
	return nil
}

// ValidatePath checks a full path: bounded total length and every segment
// passing the name policy. The empty path (namespace root) is valid.
func ValidatePath(path string) error {
	path = models.NormalizePath(path)
	if path == "" {
		return nil
	}
	if len(path) > config.MaxNodePathLength {
		return &domain.InvalidNameError{
			Message: fmt.Sprintf("path exceeds maximum length of %d characters", config.MaxNodePathLength),
		}
	}
	for _, segment := range strings.Split(path, "/") {
		if err := ValidateName(segment); err != nil {
			return err
		}
	}
	return nil
}

// splitSegmentName derives the filename of split segment i (i >= 1) from the
// original name by inserting "_i" before the last extension dot:
// "notes.md" -> "notes_1.md"; "notes" -> "notes_1".
func splitSegmentName(original string, i int) string {
	if dot := strings.LastIndexByte(original, '.'); dot > 0 {
		return fmt.Sprintf("%s_%d%s", original[:dot], i, original[dot:])
	}
	return fmt.Sprintf("%s_%d", original, i)
}
