package lit

import (
	"slices"
	"testing"
)

func TestNewChunk_ScansReferences(t *testing.T) {
	syn := DefaultSyntax()

	c, err := NewChunk(syn, "x <<=a.b, 1>> y\n  <<=c, k:v>>")
	if err != nil {
		t.Fatalf("NewChunk failed: %v", err)
	}

	if c.Done {
		t.Error("chunk with references is done")
	}

	if c.Tangle != c.Orig {
		t.Errorf("Tangle = %q, want Orig", c.Tangle)
	}

	if len(c.Deps) != 2 {
		t.Fatalf("found %d deps, want 2", len(c.Deps))
	}

	if got := c.Deps[0]; got.Path.String() != "a.b" || got.Indent != "" || !slices.Equal(got.Body, []string{"1"}) {
		t.Errorf("first dep = %+v", got)
	}

	if got := c.Deps[1]; got.Path.String() != "c" || got.Indent != "  " || got.GetOr("k", "") != "v" {
		t.Errorf("second dep = %+v", got)
	}
}

func TestNewChunk_Done(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"plain text", true},
		{"cost: 5 $", true},
		{"x = $x", false},
		{"${long name}", false},
		{"<<=c.x>>", false},
		{"<<c.x>>", true},
	}

	for _, tt := range tests {
		c, err := NewChunk(DefaultSyntax(), tt.text)
		if err != nil {
			t.Fatalf("NewChunk(%q) failed: %v", tt.text, err)
		}

		if c.Done != tt.want {
			t.Errorf("NewChunk(%q).Done = %v, want %v", tt.text, c.Done, tt.want)
		}
	}
}

func TestNewChunk_BadReference(t *testing.T) {
	if _, err := NewChunk(DefaultSyntax(), "<<=c,,x>>"); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestIndentAt(t *testing.T) {
	tests := []struct {
		text string
		pos  int
		want string
	}{
		{"foo\n   <<=x>>", 7, "   "},
		{"\t<<=x>>", 1, "\t"},
		{"<<=x>>", 0, ""},
		{"a <<=x>>", 2, ""},
		{"a\n b <<=x>>", 5, ""},
	}

	for _, tt := range tests {
		if got := indentAt(tt.text, tt.pos); got != tt.want {
			t.Errorf("indentAt(%q, %d) = %q, want %q", tt.text, tt.pos, got, tt.want)
		}
	}
}

func TestIndentText(t *testing.T) {
	tests := []struct {
		text, indent, want string
	}{
		{"a\nb", "  ", "a\n  b"},
		{"a\nb\n", "  ", "a\n  b\n"},
		{"a", "  ", "a"},
		{"a\nb", "", "a\nb"},
		{"a\n\nb", "\t", "a\n\t\n\tb"},
	}

	for _, tt := range tests {
		if got := indentText(tt.text, tt.indent); got != tt.want {
			t.Errorf("indentText(%q, %q) = %q, want %q", tt.text, tt.indent, got, tt.want)
		}
	}
}

func TestChunk_Pending(t *testing.T) {
	syn := DefaultSyntax()

	c, _ := NewChunk(syn, "a <<=x>> $b")

	got := c.Pending(syn)
	if !slices.Equal(got, []string{"<<=x>>", "$b"}) {
		t.Errorf("Pending = %q", got)
	}
}
