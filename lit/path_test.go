package lit

import "testing"

func TestPath_Index(t *testing.T) {
	tests := []struct {
		path   string
		want   int
		wantOK bool
	}{
		{"a", 0, false},
		{"1", 0, false},
		{"a.b", 0, false},
		{"a.1", 1, true},
		{"a.b.-1", -1, true},
		{"file.main.0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := ParsePath(tt.path).Index()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Index() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPath_WithIndex(t *testing.T) {
	tests := []struct {
		path string
		i    int
		want string
	}{
		{"a.1", 5, "a.5"},
		{"a.-1", 2, "a.2"},
		{"a.b", 0, "a.b.0"},
		{"a", 3, "a.3"},
	}

	for _, tt := range tests {
		p := ParsePath(tt.path)
		if got := p.WithIndex(tt.i).String(); got != tt.want {
			t.Errorf("%s.WithIndex(%d) = %q, want %q", tt.path, tt.i, got, tt.want)
		}

		if p.String() != tt.path {
			t.Errorf("WithIndex modified its receiver: %q", p)
		}
	}
}

func TestPath_Helpers(t *testing.T) {
	if ParsePath("") != nil {
		t.Error("ParsePath(\"\") is not nil")
	}

	if got := ParsePath("a.b.2").Base().String(); got != "a.b" {
		t.Errorf("Base() = %q", got)
	}

	if got := ParsePath("c.x").Prefix(Path{"m"}).String(); got != "m.c.x" {
		t.Errorf("Prefix() = %q", got)
	}

	for _, glob := range []string{"c.*", "c.?", "c.[ab]"} {
		if !ParsePath(glob).IsGlob() {
			t.Errorf("IsGlob(%q) = false", glob)
		}
	}

	if ParsePath("c.x").IsGlob() {
		t.Error("IsGlob(c.x) = true")
	}

	if !ParsePath("a.b").Equal(Path{"a", "b"}) {
		t.Error("Equal() = false")
	}
}

func TestNormIndex(t *testing.T) {
	tests := []struct {
		i, size int
		want    int
		wantOK  bool
	}{
		{-1, 3, 2, true},
		{-3, 3, 0, true},
		{-4, 3, -1, false},
		{0, 3, 0, true},
		{3, 3, 3, false},
		{0, 0, 0, false},
	}

	for _, tt := range tests {
		got, ok := NormIndex(tt.i, tt.size)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("NormIndex(%d, %d) = (%d, %v), want (%d, %v)",
				tt.i, tt.size, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"c.*", "c.a", true},
		{"c.*", "c.a.b", true},
		{"c.*", "c", false},
		{"*", "a.b", true},
		{"c.?", "c.a", true},
		{"c.?", "c.ab", false},
		{"c.[ab]", "c.b", true},
		{"c.[!ab]", "c.c", true},
		{"c.[!ab]", "c.a", false},
		{"c.a", "c.a", true},
		{"c.a", "cxa", false},
		{"c.+*", "c.+x", true},
		{"c.(*)", "c.(x)", true},
		{"c.[", "c.[", true},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, tt.name); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}
