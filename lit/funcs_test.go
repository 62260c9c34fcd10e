package lit

import (
	"slices"
	"testing"
)

func TestDefaultFuncs(t *testing.T) {
	funcs := DefaultFuncs()

	tests := []struct {
		fn   string
		in   any
		args []string
		opts map[string]string
		want string
	}{
		{"lower", "AbC", nil, nil, "abc"},
		{"upper", "AbC", nil, nil, "ABC"},
		{"strip", " \ta\n ", nil, nil, "a"},
		{"strip", "xxhixx", []string{"x"}, nil, "hi"},
		{"lstrip", "  a ", nil, nil, "a "},
		{"rstrip", "  a ", nil, nil, "  a"},
		{"swapcase", "aBc1", nil, nil, "AbC1"},
		{"title", "hello world-foo BAR", nil, nil, "Hello World-Foo Bar"},
		{"joinargs", []string{"a", "b"}, nil, map[string]string{"j": ", "}, "a, b"},
		{"joinargs", []any{"A", "B"}, nil, map[string]string{"c": "l"}, "ab"},
		{"joinargs", "single", nil, nil, "single"},
		{"replace", "a-b-c", []string{"-", "+"}, nil, "a+b+c"},
		{"indent", "a\n\nb", []string{"> "}, nil, "> a\n\n> b"},
		{"upper", []string{"a", "b"}, nil, nil, "AB"},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			fn, ok := funcs.Lookup(tt.fn)
			if !ok {
				t.Fatalf("function %q not registered", tt.fn)
			}

			got, err := fn.Call(Call{Value: tt.in, Args: tt.args, Opts: tt.opts})
			if err != nil {
				t.Fatalf("call failed: %v", err)
			}

			if got != tt.want {
				t.Errorf("%s(%v) = %q, want %q", tt.fn, tt.in, got, tt.want)
			}
		})
	}
}

func TestFuncs_Register(t *testing.T) {
	funcs := NewFuncs()
	funcs.Register(&Func{Name: "twice", Call: func(c Call) (any, error) {
		s := flatten(c.Value)

		return s + s, nil
	}})

	if !slices.Equal(funcs.Names(), []string{"twice"}) {
		t.Errorf("Names = %q", funcs.Names())
	}

	p, err := ParsePipe("twice; twice", funcs)
	if err != nil {
		t.Fatalf("ParsePipe failed: %v", err)
	}

	out, err := p.Apply(FieldText, Payload{FieldText: "a"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if out[FieldText] != "aaaa" {
		t.Errorf("chunktext = %v", out[FieldText])
	}

	if _, err := ParsePipe("upper", funcs); err == nil {
		t.Error("a registry without upper accepted it")
	}
}

func TestFuncs_Names_Sorted(t *testing.T) {
	names := DefaultFuncs().Names()
	if !slices.IsSorted(names) {
		t.Errorf("Names not sorted: %q", names)
	}

	for _, want := range []string{"expr", "joinargs", "lower", "title", "upper"} {
		if !slices.Contains(names, want) {
			t.Errorf("Names missing %q", want)
		}
	}
}
