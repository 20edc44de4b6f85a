package vfs

import (
	"strings"
)

// NormalizePath canonicalizes a namespace path segment by segment: empty and
// "." segments are dropped, ".." resolves lexically against what precedes it.
// The empty string is the namespace root; ".." never climbs above it.
func NormalizePath(path string) string {
	segments := strings.Split(strings.TrimSpace(path), "/")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) > 0 {
				kept = kept[:len(kept)-1]
			}
		default:
			kept = append(kept, seg)
		}
	}
	return strings.Join(kept, "/")
}

// SplitPath splits a normalized path into (parentPath, filename).
// The root itself splits into ("", "").
func SplitPath(path string) (parent, name string) {
	path = NormalizePath(path)
	if path == "" {
		return "", ""
	}
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return "", path
}

// JoinPath joins a parent path and a leaf name, treating "" as the root.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	if name == "" {
		return parent
	}
	return parent + "/" + name
}

// IsWithin reports whether path equals prefix or lies underneath it.
// The root prefix "" contains everything.
func IsWithin(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// ReplacePathPrefix rewrites the leading prefix of a materialized path.
// path must satisfy IsWithin(path, oldPrefix).
func ReplacePathPrefix(path, oldPrefix, newPrefix string) string {
	if path == oldPrefix {
		return newPrefix
	}
	if oldPrefix == "" {
		return JoinPath(newPrefix, path)
	}
	return newPrefix + strings.TrimPrefix(path, oldPrefix)
}
