package lit

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Call is one invocation of a pipe function.
type Call struct {
	// Value is the payload field being transformed.
	Value any
	Args  []string
	Opts  map[string]string
	// Payload is the whole event payload, read only.
	Payload Payload
}

// Func is a named text transform usable in pipe expressions.
type Func struct {
	Name string
	Call func(c Call) (any, error)
	// Check validates the arguments of a stage when the pipe is parsed.
	Check func(args []string, opts map[string]string) error
}

// Funcs is a registry of pipe functions.
type Funcs struct {
	byName map[string]*Func
}

// NewFuncs returns a registry holding fns.
func NewFuncs(fns ...*Func) *Funcs {
	f := &Funcs{byName: make(map[string]*Func, len(fns))}
	for _, fn := range fns {
		f.Register(fn)
	}

	return f
}

// DefaultFuncs returns a registry with the built-in functions.
func DefaultFuncs() *Funcs {
	return NewFuncs(
		textFunc("lower", strings.ToLower),
		textFunc("upper", strings.ToUpper),
		trimFunc("strip", strings.TrimSpace, strings.Trim),
		trimFunc("lstrip", func(s string) string {
			return strings.TrimLeftFunc(s, unicode.IsSpace)
		}, strings.TrimLeft),
		trimFunc("rstrip", func(s string) string {
			return strings.TrimRightFunc(s, unicode.IsSpace)
		}, strings.TrimRight),
		textFunc("swapcase", swapCase),
		textFunc("title", titleCase),
		&Func{Name: "joinargs", Call: joinArgs, Check: checkJoinArgs},
		&Func{Name: "replace", Call: replace, Check: wantArgs(2)},
		&Func{Name: "indent", Call: indent, Check: wantArgs(1)},
		&Func{Name: "expr", Call: evalExpr, Check: checkExpr},
	)
}

// Register adds fn, replacing any function with the same name.
func (f *Funcs) Register(fn *Func) { f.byName[fn.Name] = fn }

// Lookup returns the function called name.
func (f *Funcs) Lookup(name string) (*Func, bool) {
	fn, ok := f.byName[name]

	return fn, ok
}

// Names returns the registered names in sorted order.
func (f *Funcs) Names() []string { return slices.Sorted(maps.Keys(f.byName)) }

func textFunc(name string, fn func(string) string) *Func {
	return &Func{
		Name: name,
		Call: func(c Call) (any, error) { return fn(flatten(c.Value)), nil },
	}
}

// trimFunc trims blanks, or the characters given as its only argument.
func trimFunc(name string, blank func(string) string, set func(string, string) string) *Func {
	return &Func{
		Name: name,
		Call: func(c Call) (any, error) {
			if len(c.Args) > 0 {
				return set(flatten(c.Value), c.Args[0]), nil
			}

			return blank(flatten(c.Value)), nil
		},
		Check: maxArgs(1),
	}
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		}

		return r
	}, s)
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest.
func titleCase(s string) string {
	prev := false

	return strings.Map(func(r rune) rune {
		letter := unicode.IsLetter(r)
		first := letter && !prev
		prev = letter

		switch {
		case first:
			return unicode.ToTitle(r)
		case letter:
			return unicode.ToLower(r)
		}

		return r
	}, s)
}

func joinArgs(c Call) (any, error) {
	var items []string

	switch v := c.Value.(type) {
	case []string:
		items = slices.Clone(v)
	case []any:
		for _, e := range v {
			items = append(items, flatten(e))
		}
	default:
		items = []string{flatten(v)}
	}

	switch c.Opts["c"] {
	case "u":
		for i := range items {
			items[i] = strings.ToUpper(items[i])
		}
	case "l":
		for i := range items {
			items[i] = strings.ToLower(items[i])
		}
	}

	return strings.Join(items, c.Opts["j"]), nil
}

func checkJoinArgs(args []string, opts map[string]string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments %q", args)
	}

	for k, v := range opts {
		switch k {
		case "j":
		case "c":
			if v != "u" && v != "l" {
				return fmt.Errorf("case must be 'u' or 'l', got %q", v)
			}
		default:
			return fmt.Errorf("unknown option '-%s'", k)
		}
	}

	return nil
}

func replace(c Call) (any, error) {
	return strings.ReplaceAll(flatten(c.Value), c.Args[0], c.Args[1]), nil
}

// indent prefixes every non-empty line.
func indent(c Call) (any, error) {
	lines := strings.Split(flatten(c.Value), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = c.Args[0] + line
		}
	}

	return strings.Join(lines, "\n"), nil
}

func wantArgs(n int) func([]string, map[string]string) error {
	return func(args []string, _ map[string]string) error {
		if len(args) != n {
			return fmt.Errorf("expected %d arguments, got %d", n, len(args))
		}

		return nil
	}
}

func maxArgs(n int) func([]string, map[string]string) error {
	return func(args []string, _ map[string]string) error {
		if len(args) > n {
			return fmt.Errorf("expected at most %d arguments, got %d", n, len(args))
		}

		return nil
	}
}

var (
	errExprSource = errors.New("expected one expression")
	programs      sync.Map // map[string]*vm.Program
)

// exprEnv is the environment of an expr stage. The values are type
// exemplars at compile time.
func exprEnv(c Call) map[string]any {
	name, _ := c.Payload[FieldName].(string)

	return map[string]any{
		"value": c.Value,
		"text":  flatten(c.Value),
		"name":  name,
		"args":  c.Args[1:],
		"opts":  c.Opts,
	}
}

func compileExpr(src string) (*vm.Program, error) {
	if v, ok := programs.Load(src); ok {
		prog, _ := v.(*vm.Program)

		return prog, nil
	}

	env := exprEnv(Call{Value: any(nil), Args: []string{src}, Opts: map[string]string{}})

	prog, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, err
	}

	programs.Store(src, prog)

	return prog, nil
}

func checkExpr(args []string, _ map[string]string) error {
	if len(args) == 0 {
		return errExprSource
	}

	_, err := compileExpr(args[0])

	return err
}

func evalExpr(c Call) (any, error) {
	prog, err := compileExpr(c.Args[0])
	if err != nil {
		return nil, err
	}

	return expr.Run(prog, exprEnv(c))
}
