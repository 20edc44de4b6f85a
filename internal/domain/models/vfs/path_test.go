package vfs

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/", ""},
		{".", ""},
		{"./docs", "docs"},
		{"/docs/", "docs"},
		{"docs//api", "docs/api"},
		{"  docs/api  ", "docs/api"},
		{"docs///api//", "docs/api"},
		{"..", ""},
		{"../docs", "docs"},
		{"docs/../api", "api"},
		{"docs/./api", "docs/api"},
		{"docs/api/..", "docs"},
		{".hidden", ".hidden"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.input); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		input      string
		wantParent string
		wantName   string
	}{
		{"", "", ""},
		{"/", "", ""},
		{"notes.md", "", "notes.md"},
		{"docs/notes.md", "docs", "notes.md"},
		{"a/b/c", "a/b", "c"},
		{"/a/b/", "a", "b"},
	}
	for _, tt := range tests {
		parent, name := SplitPath(tt.input)
		if parent != tt.wantParent || name != tt.wantName {
			t.Errorf("SplitPath(%q) = (%q, %q), want (%q, %q)",
				tt.input, parent, name, tt.wantParent, tt.wantName)
		}
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		parent string
		name   string
		want   string
	}{
		{"", "notes.md", "notes.md"},
		{"docs", "notes.md", "docs/notes.md"},
		{"docs", "", "docs"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.parent, tt.name); got != tt.want {
			t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.parent, tt.name, got, tt.want)
		}
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"a/b/c", "a/b", true},
		{"a/b", "a/b", true},
		{"a/bc", "a/b", false},
		{"anything", "", true},
		{"a", "a/b", false},
	}
	for _, tt := range tests {
		if got := IsWithin(tt.path, tt.prefix); got != tt.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestReplacePathPrefix(t *testing.T) {
	tests := []struct {
		path      string
		oldPrefix string
		newPrefix string
		want      string
	}{
		{"a/b/c", "a/b", "x/y", "x/y/c"},
		{"a/b", "a/b", "x", "x"},
		{"c", "", "root", "root/c"},
	}
	for _, tt := range tests {
		if got := ReplacePathPrefix(tt.path, tt.oldPrefix, tt.newPrefix); got != tt.want {
			t.Errorf("ReplacePathPrefix(%q, %q, %q) = %q, want %q",
				tt.path, tt.oldPrefix, tt.newPrefix, got, tt.want)
		}
	}
}

func TestPlaceholderOrdinalStaysBelowMinOrdinal(t *testing.T) {
	for _, i := range []int{0, 1, 100, 10000} {
		p := PlaceholderOrdinal(i)
		if p <= SentinelOrdinal {
			t.Errorf("PlaceholderOrdinal(%d) = %d, collides with the sentinel", i, p)
		}
		if p >= MinOrdinal {
			t.Errorf("PlaceholderOrdinal(%d) = %d, inside the live ordinal range", i, p)
		}
	}
}
