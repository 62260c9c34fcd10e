package lit

import (
	"context"
	"errors"
	"testing"
)

// tangle expands path in r without an environment and returns the text.
func tangle(t *testing.T, r *Registry, path string, b Bindings) (string, bool) {
	t.Helper()

	done, err := r.Expand(t.Context(), nil, path, b)
	if err != nil {
		t.Fatalf("Expand(%q) failed: %v", path, err)
	}

	_, chunk, _ := r.Lookup(path)

	return chunk.Tangle, done
}

func TestExpand_GlobJoin(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "c.a", "aaa")
	define(t, r, "c.b", "bbb")
	define(t, r, "root", `X <<=c.*, join:\,>> Y`)

	got, done := tangle(t, r, "root", Bindings{})
	if !done || got != "X aaa,bbb Y" {
		t.Errorf("tangle = (%q, %v), want (X aaa,bbb Y, true)", got, done)
	}
}

func TestExpand_GlobClasses(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"<<=c.?, join:+>>", "aaa+bbb"},
		{"<<=c.[ab], join:+>>", "aaa+bbb"},
		{"<<=c.[!a]>>", "bbb"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			r := NewRegistry(nil)
			define(t, r, "c.a", "aaa")
			define(t, r, "c.b", "bbb")
			define(t, r, "c.cc", "ccc")
			define(t, r, "root", tt.ref)

			got, done := tangle(t, r, "root", Bindings{})
			if !done || got != tt.want {
				t.Errorf("tangle = (%q, %v), want (%q, true)", got, done, tt.want)
			}
		})
	}
}

func TestExpand_StartEnd(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "c.a", "a")
	define(t, r, "c.b", "b")
	define(t, r, "root", "<<=c.*, start:[, end:], join:+>>")

	if got, _ := tangle(t, r, "root", Bindings{}); got != "[a]+[b]" {
		t.Errorf("tangle = %q", got)
	}
}

func TestExpand_NegativeIndexReference(t *testing.T) {
	r := NewRegistry(nil)
	defineSet(t, r, "c.f", "first", "second", "third")
	define(t, r, "root", "<<=c.f.-1>> <<=c.f.-3>>")

	if got, _ := tangle(t, r, "root", Bindings{}); got != "third first" {
		t.Errorf("tangle = %q", got)
	}

	define(t, r, "bad", "<<=c.f.-4>>")

	if _, err := r.Expand(t.Context(), nil, "bad", Bindings{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expand(bad) = %v, want ErrNotFound", err)
	}
}

func TestExpand_Cycle(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "c.a", "<<=c.b>>")
	define(t, r, "c.b", "<<=c.a>>")

	if _, err := r.Expand(t.Context(), nil, "c.a", Bindings{}); !errors.Is(err, ErrCycle) {
		t.Errorf("Expand = %v, want ErrCycle", err)
	}
}

func TestExpand_ArgumentSubstitution_TwoPasses(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "s", "aaa $a $b")

	got, done := tangle(t, r, "s", Bindings{Keyword: map[string]string{"a": "1"}})
	if done || got != "aaa 1 $b" {
		t.Errorf("first pass = (%q, %v), want (aaa 1 $b, false)", got, done)
	}

	got, done = tangle(t, r, "s", Bindings{Keyword: map[string]string{"a": "1", "b": "2"}})
	if !done || got != "aaa 1 2" {
		t.Errorf("second pass = (%q, %v), want (aaa 1 2, true)", got, done)
	}
}

func TestExpand_Idempotent(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "c.a", "aaa")
	define(t, r, "root", "X <<=c.a>> $0")

	b := Bindings{Positional: []string{"p"}}

	first, done := tangle(t, r, "root", b)
	if !done {
		t.Fatalf("first expansion not done: %q", first)
	}

	second, done := tangle(t, r, "root", b)
	if !done || second != first {
		t.Errorf("second expansion = (%q, %v), want (%q, true)", second, done, first)
	}
}

func TestExpand_IndentPropagation(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "body", "a = 1\nreturn a")
	define(t, r, "fun", "def f():\n   <<=body>>\n")

	want := "def f():\n   a = 1\n   return a\n"
	if got, _ := tangle(t, r, "fun", Bindings{}); got != want {
		t.Errorf("tangle = %q, want %q", got, want)
	}
}

func TestExpand_NestedIndent(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "inner", "x\ny")
	define(t, r, "mid", "m:\n  <<=inner>>")
	define(t, r, "top", "t:\n  <<=mid>>")

	want := "t:\n  m:\n    x\n    y"
	if got, _ := tangle(t, r, "top", Bindings{}); got != want {
		t.Errorf("tangle = %q, want %q", got, want)
	}
}

func TestExpand_Positional(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "sum", "$0 + $1 ($*) $-1")
	define(t, r, "root", "<<=sum, x, y>>")

	if got, _ := tangle(t, r, "root", Bindings{}); got != "x + y (xy) y" {
		t.Errorf("tangle = %q", got)
	}
}

func TestExpand_EmptyStar(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "c.all", "f($*)")
	define(t, r, "root", "<<=c.all>>")

	got, done := tangle(t, r, "root", Bindings{})
	if !done || got != "f()" {
		t.Errorf("tangle = (%q, %v), want (f(), true)", got, done)
	}
}

func TestExpand_PositionalInherited(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "leaf", "[$0]")
	define(t, r, "root", "<<=leaf>>")

	if got, _ := tangle(t, r, "root", Bindings{Positional: []string{"p"}}); got != "[p]" {
		t.Errorf("tangle = %q", got)
	}
}

func TestExpand_PositionalOutOfRange(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "leaf", "$0 $5")

	got, done := tangle(t, r, "leaf", Bindings{Positional: []string{"a"}})
	if done || got != "a $5" {
		t.Errorf("tangle = (%q, %v), want (a $5, false)", got, done)
	}
}

func TestExpand_KeywordOverride(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "greet", "hello $who from ${the place}")
	define(t, r, "root", "<<=greet, who:world>>")

	b := Bindings{Keyword: map[string]string{"who": "nobody", "the place": "here"}}
	if got, _ := tangle(t, r, "root", b); got != "hello world from here" {
		t.Errorf("tangle = %q", got)
	}
}

func TestExpand_NoVars(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "m", "use $x and $0")
	define(t, r, "root", "<<=m, *:*>>")

	got, done := tangle(t, r, "root", Bindings{})
	if !done || got != "use x and 0" {
		t.Errorf("tangle = (%q, %v)", got, done)
	}
}

func TestExpand_IncompleteDependency(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "leaf", "needs $v")
	define(t, r, "other", "ok")
	define(t, r, "root", "<<=leaf>> <<=other>>")

	got, done := tangle(t, r, "root", Bindings{})
	if done {
		t.Error("root is done with an unresolved dependency")
	}

	if got != "<<=leaf>> ok" {
		t.Errorf("tangle = %q, want the unresolved reference left in place", got)
	}
}

func TestExpand_NotFound(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "root", "<<=nope.*>>")

	if _, err := r.Expand(t.Context(), nil, "root", Bindings{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expand = %v, want ErrNotFound", err)
	}

	if _, err := r.Expand(t.Context(), nil, "missing", Bindings{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expand(missing) = %v, want ErrNotFound", err)
	}
}

func TestExpand_PerSiteArguments(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "item", "<$0>")
	define(t, r, "root", "<<=item, a>> <<=item, b>>")

	if got, _ := tangle(t, r, "root", Bindings{}); got != "<a> <b>" {
		t.Errorf("tangle = %q", got)
	}
}

func TestExpand_Canceled(t *testing.T) {
	r := NewRegistry(nil)
	define(t, r, "a", "a")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := r.Expand(ctx, nil, "a", Bindings{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expand = %v, want context.Canceled", err)
	}
}

func TestBindings_ForRef(t *testing.T) {
	ref, _ := ParseCommand(DefaultSyntax(), "<<=x, p, k:v, join:-, *:$d>>")
	b := Bindings{Positional: []string{"q"}, Keyword: map[string]string{"k": "old", "o": "1"}}

	got := b.forRef(ref)

	if len(got.Positional) != 1 || got.Positional[0] != "p" {
		t.Errorf("Positional = %q", got.Positional)
	}

	if got.Keyword["k"] != "v" || got.Keyword["o"] != "1" {
		t.Errorf("Keyword = %v", got.Keyword)
	}

	if _, ok := got.Keyword[ArgJoin]; ok {
		t.Error("reserved argument passed down")
	}

	if got.Scope != "d" {
		t.Errorf("Scope = %q", got.Scope)
	}

	if b.Keyword["k"] != "old" {
		t.Error("forRef modified the caller bindings")
	}
}
