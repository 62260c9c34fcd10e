package lit

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestParseCommand_Fields(t *testing.T) {
	syn := DefaultSyntax()

	cmd, err := ParseCommand(syn, "<<c.fun, a, b, k:v, name : spaced value>>")
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if got := cmd.Path.String(); got != "c.fun" {
		t.Errorf("Path = %q", got)
	}

	if cmd.Paste || cmd.Set {
		t.Errorf("Paste = %v, Set = %v, want false", cmd.Paste, cmd.Set)
	}

	if !slices.Equal(cmd.Body, []string{"a", "b"}) {
		t.Errorf("Body = %q", cmd.Body)
	}

	want := []Arg{{"k", "v"}, {"name", "spaced value"}}
	if !slices.Equal(cmd.Args, want) {
		t.Errorf("Args = %+v, want %+v", cmd.Args, want)
	}
}

func TestParseCommand_Paste(t *testing.T) {
	cmd, err := ParseCommand(DefaultSyntax(), `<<=c.*, join:\,>>`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if !cmd.Paste || !cmd.Set {
		t.Errorf("Paste = %v, Set = %v, want true", cmd.Paste, cmd.Set)
	}

	if got, _ := cmd.Get(ArgJoin); got != "," {
		t.Errorf("join = %q, want %q", got, ",")
	}
}

func TestParseCommand_EscapedValue(t *testing.T) {
	cmd, err := ParseCommand(DefaultSyntax(), `<<c.url, a\:8000/, sep:\,\:>>`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if len(cmd.Body) != 1 || cmd.Body[0] != "a:8000/" {
		t.Errorf("Body = %q, want [a:8000/]", cmd.Body)
	}

	if got := cmd.GetOr("sep", ""); got != ",:" {
		t.Errorf("sep = %q", got)
	}
}

func TestParseCommand_Flags(t *testing.T) {
	syn := DefaultSyntax()

	cmd, err := ParseCommand(syn, "<<=c.m, *:*>>")
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if !cmd.NoVars {
		t.Error("NoVars not set")
	}

	cmd, err = ParseCommand(syn, "<<=c.m, *:$dict>>")
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if cmd.VarScope != "dict" {
		t.Errorf("VarScope = %q, want dict", cmd.VarScope)
	}

	if len(cmd.Args) != 0 {
		t.Errorf("flags leaked into Args: %+v", cmd.Args)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		text string
		want error
		msg  string
	}{
		{"c.fun", ErrMismatch, "mismatch form"},
		{"<<, a>>", ErrEmptyPath, "empty path"},
		{"<<a..b>>", ErrEmptyPath, "empty path"},
		{"<<a,,b>>", ErrMissedArg, "missed arg"},
		{"<<a, b, >>", ErrMissedArg, "missed arg"},
		{"<<a, b!c:1>>", ErrArgName, "unallowed symbols: arg 'b!c'"},
		{`<<a, b\,c:1>>`, ErrArgName, "unallowed symbols: arg 'b,c'"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := ParseCommand(DefaultSyntax(), tt.text)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error %v is not a syntax error", err)
			}

			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}

			if n := strings.Count(err.Error(), ErrArgName.Error()); n > 1 {
				t.Errorf("error %q repeats %q", err, ErrArgName.Error())
			}
		})
	}
}

func TestParseCommand_ArgNames(t *testing.T) {
	for _, text := range []string{
		"<<a, :x:y>>",
		"<<a, my_arg:1>>",
		"<<a, do.paste:upper>>",
		"<<a, two words:1>>",
		"<<a, héllo:1>>",
	} {
		if _, err := ParseCommand(DefaultSyntax(), text); err != nil {
			t.Errorf("ParseCommand(%q) = %v", text, err)
		}
	}

	cmd, _ := ParseCommand(DefaultSyntax(), "<<a, :x:y>>")
	if v, ok := cmd.Get(""); !ok || v != "x:y" {
		t.Errorf("empty name arg = (%q, %v), want (x:y, true)", v, ok)
	}
}

func TestCommand_String_RoundTrip(t *testing.T) {
	for _, text := range []string{
		"<<c.fun>>",
		"<<c.fun, a, k:v, b>>",
		`<<=c.*, join:\,>>`,
		`<<c.url, a\:8000/>>`,
		`<<=c.m, *:*, x:1>>`,
		`<<=c.m, *:$d>>`,
		`<<=a\.b.c>>`,
	} {
		t.Run(text, func(t *testing.T) {
			cmd, err := ParseCommand(DefaultSyntax(), text)
			if err != nil {
				t.Fatalf("ParseCommand failed: %v", err)
			}

			if got := cmd.String(); got != text {
				t.Errorf("String() = %q, want %q", got, text)
			}
		})
	}
}

func TestCommand_String_Canonical(t *testing.T) {
	cmd, err := ParseCommand(DefaultSyntax(), "<<c.fun,a ,  k : v>>")
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if got, want := cmd.String(), "<<c.fun, a, k:v>>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	syn, _ := NewSyntax("[[", "]]")
	if got, want := cmd.Format(syn), "[[c.fun, a, k:v]]"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestCommand_Get_LastWins(t *testing.T) {
	cmd, _ := ParseCommand(DefaultSyntax(), "<<a, k:1, k:2>>")

	if got := cmd.GetOr("k", ""); got != "2" {
		t.Errorf("Get(k) = %q, want 2", got)
	}

	if cmd.Has("missing") {
		t.Error("Has(missing) = true")
	}

	if got := cmd.GetOr("missing", "def"); got != "def" {
		t.Errorf("GetOr default = %q", got)
	}
}

func TestCommand_Match_NegativeIndex(t *testing.T) {
	cmd := &Command{Path: ParsePath("c.f.2"), Siblings: &Siblings{Size: 3}}

	tests := []struct {
		pattern string
		want    bool
	}{
		{"c.f.-1", true},
		{"c.f.-3", false},
		{"c.f.2", true},
		{"c.f.*", true},
		{"c.*.2", true},
		{"c.f.-4", false},
	}

	for _, tt := range tests {
		if got := cmd.Match(tt.pattern); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestCommand_Attr(t *testing.T) {
	cmd, _ := ParseCommand(DefaultSyntax(), "<<=c.x, a, lang:go>>")
	cmd.Source = "doc.md"

	tests := map[string]string{
		"path":   "c.x",
		"paste":  "true",
		"set":    "false",
		"source": "doc.md",
		"kind":   KindChunk,
		"body":   "a",
		"lang":   "go",
	}

	for name, want := range tests {
		if got, ok := cmd.Attr(name); !ok || got != want {
			t.Errorf("Attr(%q) = (%q, %v), want %q", name, got, ok, want)
		}
	}
}

func TestCommand_Clone_DoesNotAlias(t *testing.T) {
	cmd, _ := ParseCommand(DefaultSyntax(), "<<c.x, a, k:v>>")
	c := cmd.Clone()

	c.Path[0] = "z"
	c.Body[0] = "z"
	c.Args[0].Value = "z"

	if cmd.Path[0] != "c" || cmd.Body[0] != "a" || cmd.Args[0].Value != "v" {
		t.Errorf("clone aliases the original: %+v", cmd)
	}
}

func TestEscape_RoundTrip(t *testing.T) {
	for _, s := range []string{"a:b,c", `back\slash`, "plain", "a:8000/"} {
		if got := Unescape(Escape(s)); got != s {
			t.Errorf("Unescape(Escape(%q)) = %q", s, got)
		}
	}

	if got := Escape("a:b,c"); got != `a\:b\,c` {
		t.Errorf("Escape = %q", got)
	}
}
