package lit

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

// define stores text under path in r.
func define(t *testing.T, r *Registry, path, text string) *Command {
	t.Helper()

	cmd, err := ParseCommand(r.syntax, "<<"+path+">>")
	if err != nil {
		t.Fatalf("ParseCommand(%q) failed: %v", path, err)
	}

	chunk, err := NewChunk(r.syntax, text)
	if err != nil {
		t.Fatalf("NewChunk(%q) failed: %v", text, err)
	}

	if err := r.Define(cmd, chunk); err != nil {
		t.Fatalf("Define(%q) failed: %v", path, err)
	}

	return cmd
}

// defineSet stores a sibling set under base.
func defineSet(t *testing.T, r *Registry, base string, texts ...string) {
	t.Helper()

	sib := &Siblings{Size: len(texts)}

	for i, text := range texts {
		cmd := define(t, r, ParsePath(base).WithIndex(i).String(), text)
		cmd.Siblings = sib
	}
}

func TestRegistry_Define_Duplicate(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "c.a", "a")

	cmd, _ := ParseCommand(r.syntax, "<<c.a, other:arg>>")
	chunk, _ := NewChunk(r.syntax, "b")

	if err := r.Define(cmd, chunk); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Define duplicate = %v, want ErrDuplicate", err)
	}

	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistry_Glob_InsertionOrder(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "c.b", "b")
	define(t, r, "x.a", "x")
	define(t, r, "c.a", "a")

	var got []string
	for _, cmd := range r.Glob("c.*") {
		got = append(got, cmd.Path.String())
	}

	if !slices.Equal(got, []string{"c.b", "c.a"}) {
		t.Errorf("Glob(c.*) = %q", got)
	}

	for _, glob := range []string{"c.?", "c.[ab]"} {
		got = got[:0]
		for _, cmd := range r.Glob(glob) {
			got = append(got, cmd.Path.String())
		}

		if !slices.Equal(got, []string{"c.b", "c.a"}) {
			t.Errorf("Glob(%s) = %q", glob, got)
		}
	}

	if got := r.Glob("c.zz"); len(got) != 0 {
		t.Errorf("Glob(c.zz) = %v", got)
	}

	if got := r.Paths(); !slices.Equal(got, []string{"c.b", "x.a", "c.a"}) {
		t.Errorf("Paths = %q", got)
	}
}

func TestRegistry_Lookup_NegativeIndex(t *testing.T) {
	r := NewRegistry(nil)
	defineSet(t, r, "c.f", "first", "second", "third")

	tests := []struct {
		path string
		want string
	}{
		{"c.f.-1", "third"},
		{"c.f.-2", "second"},
		{"c.f.-3", "first"},
		{"c.f.1", "second"},
	}

	for _, tt := range tests {
		_, chunk, err := r.Lookup(tt.path)
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", tt.path, err)

			continue
		}

		if chunk.Orig != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.path, chunk.Orig, tt.want)
		}
	}

	if _, _, err := r.Lookup("c.f.-4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(c.f.-4) = %v, want ErrNotFound", err)
	}
}

func TestRegistry_Lookup_NotFoundNamesPath(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "c.sum", "s")

	_, _, err := r.Lookup("c.sun")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup = %v, want ErrNotFound", err)
	}

	if !strings.Contains(err.Error(), "'c.sun'") {
		t.Errorf("error %q does not name the path", err)
	}
}

func TestRegistry_CheckCycles(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][2]string
		cycle  bool
	}{
		{
			name:   "mutual",
			chunks: [][2]string{{"c.a", "<<=c.b>>"}, {"c.b", "<<=c.a>>"}},
			cycle:  true,
		},
		{
			name:   "self",
			chunks: [][2]string{{"c.a", "x <<=c.a>>"}},
			cycle:  true,
		},
		{
			name:   "through glob",
			chunks: [][2]string{{"c.a", "<<=d.*>>"}, {"d.x", "<<=c.a>>"}},
			cycle:  true,
		},
		{
			name:   "diamond",
			chunks: [][2]string{{"a", "<<=b>><<=c>>"}, {"b", "<<=d>>"}, {"c", "<<=d>>"}, {"d", "d"}},
		},
		{
			name:   "missing target",
			chunks: [][2]string{{"a", "<<=nope>>"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil)
			for _, c := range tt.chunks {
				define(t, r, c[0], c[1])
			}

			err := r.CheckCycles()
			if tt.cycle != errors.Is(err, ErrCycle) {
				t.Errorf("CheckCycles = %v, want cycle %v", err, tt.cycle)
			}

			if tt.cycle && !strings.Contains(err.Error(), "'c.a'") &&
				!strings.Contains(err.Error(), "'c.b'") &&
				!strings.Contains(err.Error(), "'d.x'") {
				t.Errorf("error %q names no chunk of the cycle", err)
			}
		})
	}
}

func TestRegistry_Merge(t *testing.T) {
	lib := NewRegistry(nil)
	define(t, lib, "a", "A <<=b>>")
	define(t, lib, "b", "B")

	main := NewRegistry(nil)
	define(t, main, "b", "main b")

	if err := main.Merge(lib, Path{"m"}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if got := main.Paths(); !slices.Equal(got, []string{"b", "m.a", "m.b"}) {
		t.Errorf("Paths = %q", got)
	}

	done, err := main.Expand(t.Context(), nil, "m.a", Bindings{})
	if err != nil || !done {
		t.Fatalf("Expand = (%v, %v)", done, err)
	}

	if _, chunk, _ := main.Lookup("m.a"); chunk.Tangle != "A B" {
		t.Errorf("imported chunk resolved to %q, want the mounted chunk", chunk.Tangle)
	}

	if err := main.Merge(lib, Path{"m"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second Merge = %v, want ErrDuplicate", err)
	} else if !strings.Contains(err.Error(), "path already exists when merging") {
		t.Errorf("error %q", err)
	}
}

func TestRegistry_All(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "a", "1")
	define(t, r, "b", "2")
	define(t, r, "c", "3")

	var got []string
	for cmd, chunk := range r.All() {
		got = append(got, cmd.Path.String()+"="+chunk.Orig)
		if cmd.Path.String() == "b" {
			break
		}
	}

	if !slices.Equal(got, []string{"a=1", "b=2"}) {
		t.Errorf("All = %q", got)
	}
}
