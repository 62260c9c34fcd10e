package format

import (
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/tangle/lit"
)

func TestExt(t *testing.T) {
	tests := []struct {
		loc  string
		want string
	}{
		{"doc.md", ".md"},
		{"dir/Doc.MarkDown", ".markdown"},
		{"/abs/notes.wiki", ".wiki"},
		{"file:///tmp/x/a.creole", ".creole"},
		{"https://example.com/lp/a.md?raw=1", ".md"},
		{"zip:/tmp/docs.zip#inner/b.md", ".md"},
		{"shell:cat#-n doc.creole", ".creole"},
		{"C:\\docs\\a.md", ".md"},
		{"README", ""},
	}

	for _, tt := range tests {
		t.Run(tt.loc, func(t *testing.T) {
			if got := Ext(tt.loc); got != tt.want {
				t.Errorf("Ext(%q) = %q, want %q", tt.loc, got, tt.want)
			}
		})
	}
}

func TestRegistry_Tokenizer(t *testing.T) {
	r := Default()

	if got := r.Names(); !slices.Equal(got, []string{"md", "creole"}) {
		t.Errorf("Names = %q", got)
	}

	tests := []struct {
		name, loc string
		want      string
		err       bool
	}{
		{"", "a.md", "md", false},
		{"", "a.mkd", "md", false},
		{"", "a.wiki", "creole", false},
		{"creole", "a.md", "creole", false},
		{"MD", "", "md", false},
		{"", "a.rst", "", true},
		{"tex", "a.md", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name+"|"+tt.loc, func(t *testing.T) {
			tz, err := r.Tokenizer(tt.name, tt.loc)
			if tt.err {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("Tokenizer = %v, want ErrUnknownFormat", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Tokenizer failed: %v", err)
			}

			f, _ := r.Lookup(tt.want)
			if tz == nil || f == nil {
				t.Fatalf("no tokenizer for %q", tt.want)
			}
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	var r Registry

	txt := &Format{Name: "txt", Exts: []string{".txt"}, Tokenizer: lit.TokenizerFunc(tokenizeCreole)}
	if err := r.Register(txt); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := r.Register(&Format{Name: "TXT"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Register = %v, want ErrDuplicate", err)
	}

	if f, err := r.Detect("notes.TXT"); err != nil || f != txt {
		t.Errorf("Detect = (%v, %v)", f, err)
	}
}

var _ lit.Formats = (*Registry)(nil)
