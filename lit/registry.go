package lit

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions bounds the candidates attached to a not-found error.
const maxSuggestions = 3

type entry struct {
	cmd   *Command
	chunk *Chunk
}

// Registry is an insertion-ordered arena of chunks keyed by concrete path.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	syntax  *Syntax
	entries []entry
	index   map[string]int
}

// NewRegistry returns an empty registry whose chunks are scanned with syn.
func NewRegistry(syn *Syntax) *Registry {
	if syn == nil {
		syn = DefaultSyntax()
	}

	return &Registry{syntax: syn, index: make(map[string]int)}
}

// Len returns the number of chunks.
func (r *Registry) Len() int { return len(r.entries) }

// Define stores chunk under the path of cmd.
func (r *Registry) Define(cmd *Command, chunk *Chunk) error {
	key := cmd.Path.String()
	if _, ok := r.index[key]; ok {
		return ErrDuplicate.Wrapf("'%s'", key)
	}

	r.index[key] = len(r.entries)
	r.entries = append(r.entries, entry{cmd: cmd, chunk: chunk})

	return nil
}

// All iterates the registry in insertion order.
func (r *Registry) All() iter.Seq2[*Command, *Chunk] {
	return func(yield func(*Command, *Chunk) bool) {
		for _, e := range r.entries {
			if !yield(e.cmd, e.chunk) {
				return
			}
		}
	}
}

// Paths returns every concrete path in insertion order.
func (r *Registry) Paths() []string {
	paths := make([]string, len(r.entries))
	for i, e := range r.entries {
		paths[i] = e.cmd.Path.String()
	}

	return paths
}

// Lookup returns the command and chunk stored at path.
// A negative trailing index is resolved against the sibling set of the
// ".0" member.
func (r *Registry) Lookup(path string) (*Command, *Chunk, error) {
	i, err := r.lookup(path)
	if err != nil {
		return nil, nil, err
	}

	return r.entries[i].cmd, r.entries[i].chunk, nil
}

func (r *Registry) lookup(path string) (int, error) {
	if i, ok := r.index[path]; ok {
		return i, nil
	}

	p := ParsePath(path)
	if n, ok := p.Index(); ok && n < 0 {
		if first, ok := r.index[p.WithIndex(0).String()]; ok {
			size := r.entries[first].cmd.siblingSize()
			if k, ok := NormIndex(n, size); ok {
				if i, ok := r.index[p.WithIndex(k).String()]; ok {
					return i, nil
				}
			}
		}
	}

	return -1, r.notFound(path)
}

func (r *Registry) notFound(path string) error {
	err := ErrNotFound.Wrapf("'%s'", path)

	matches := fuzzy.Find(path, r.Paths())
	if len(matches) == 0 {
		return err
	}

	near := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(near) == maxSuggestions {
			break
		}

		near = append(near, m.Str)
	}

	return err.With(slog.String("candidates", strings.Join(near, ", ")))
}

// Glob returns the commands whose path matches pattern, in insertion order.
func (r *Registry) Glob(pattern string) []*Command {
	var cmds []*Command

	for _, i := range r.globIndex(pattern) {
		cmds = append(cmds, r.entries[i].cmd)
	}

	return cmds
}

func (r *Registry) globIndex(pattern string) []int {
	p := ParsePath(pattern)
	if !p.IsGlob() {
		if i, err := r.lookup(pattern); err == nil {
			return []int{i}
		}

		return nil
	}

	var found []int

	for i, e := range r.entries {
		if e.cmd.Match(pattern) {
			found = append(found, i)
		}
	}

	return found
}

// targets resolves a paste reference found in the chunk of from.
// Chunks imported under a mount prefix first look inside their own
// namespace.
func (r *Registry) targets(from *Command, ref *Command) []int {
	pattern := ref.Path.String()

	if len(from.scope) > 0 {
		if found := r.globIndex(ref.Path.Prefix(from.scope).String()); len(found) > 0 {
			return found
		}
	}

	return r.globIndex(pattern)
}

// Merge imports every entry of o with its path prefixed by prefix.
// The chunks are shared, the commands are cloned.
func (r *Registry) Merge(o *Registry, prefix Path) error {
	for _, e := range o.entries {
		cmd := e.cmd.Clone()
		cmd.Path = cmd.Path.Prefix(prefix)
		cmd.scope = cmd.scope.Prefix(prefix)

		key := cmd.Path.String()
		if _, ok := r.index[key]; ok {
			return ErrDuplicate.Wrapf("'%s' path already exists when merging", key)
		}

		r.index[key] = len(r.entries)
		r.entries = append(r.entries, entry{cmd: cmd, chunk: e.chunk})
	}

	return nil
}

// CheckCycles walks the reference graph from every chunk and reports the
// first chunk reached again while still on the walk stack.
// References without targets are ignored here and reported by expansion.
func (r *Registry) CheckCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(r.entries))

	var visit func(i int) error

	visit = func(i int) error {
		switch color[i] {
		case gray:
			return ErrCycle.Wrapf("'%s'", r.entries[i].cmd.Path)
		case black:
			return nil
		}

		color[i] = gray

		for _, dep := range r.entries[i].chunk.Deps {
			for _, j := range r.targets(r.entries[i].cmd, dep) {
				if err := visit(j); err != nil {
					return err
				}
			}
		}

		color[i] = black

		return nil
	}

	for i := range r.entries {
		if err := visit(i); err != nil {
			return err
		}
	}

	return nil
}
