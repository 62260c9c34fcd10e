package vfile

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestSearchPath(t *testing.T) {
	a, b, c := t.TempDir(), t.TempDir(), t.TempDir()
	missing := filepath.Join(a, "missing")
	file := filepath.Join(a, "file")
	writeFile(t, file, "")

	env := strings.Join([]string{b, missing, c, file, a}, string(os.PathListSeparator))

	tests := []struct {
		name string
		env  string
		dirs []string
		want []string
	}{
		{"empty", "", nil, nil},
		{"env only", env, nil, []string{b, c, a}},
		{"configured first", env, []string{c}, []string{c, b, a}},
		{"configured missing", "", []string{missing, a}, []string{a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchPath(tt.env, tt.dirs...); !slices.Equal(got, tt.want) {
				t.Errorf("searchPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_SearchPathFromEnv(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	t.Setenv(PathEnv, b)

	got := New(WithSearch(a)).SearchPath()
	if want := []string{a, b}; !slices.Equal(got, want) {
		t.Errorf("SearchPath = %q, want %q", got, want)
	}
}
