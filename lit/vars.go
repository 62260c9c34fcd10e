package lit

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// AnonDict is the dictionary backing variable names without a dotted prefix.
const AnonDict = "_anon"

// Vars is a store of named variable dictionaries.
type Vars struct {
	dicts map[string]map[string]any
}

// NewVars returns an empty store.
func NewVars() *Vars {
	return &Vars{dicts: make(map[string]map[string]any)}
}

// Lookup resolves name in dictionary dict.
// With an empty dict the part of name before its last dot selects the
// dictionary, and names without a dot use [AnonDict].
func (v *Vars) Lookup(name, dict string) (any, bool) {
	if dict == "" {
		dict = AnonDict

		if i := strings.LastIndex(name, PathSep); i >= 0 {
			dict, name = name[:i], name[i+1:]
		}
	}

	d, ok := v.dicts[dict]
	if !ok {
		return nil, false
	}

	val, ok := d[name]

	return val, ok
}

// Update merges vals into dictionary dict, overwriting existing names.
// An empty dict selects [AnonDict].
func (v *Vars) Update(dict string, vals map[string]any) {
	if dict == "" {
		dict = AnonDict
	}

	d, ok := v.dicts[dict]
	if !ok {
		d = make(map[string]any, len(vals))
		v.dicts[dict] = d
	}

	maps.Copy(d, vals)
}

// Dicts returns the dictionary names in sorted order.
func (v *Vars) Dicts() []string {
	return slices.Sorted(maps.Keys(v.dicts))
}

// Dict returns a copy of one dictionary.
func (v *Vars) Dict(name string) map[string]any {
	return maps.Clone(v.dicts[name])
}

// merge imports the dictionaries of o under prefix without overwriting
// names already present. Dictionary d becomes "prefix.d" and the anonymous
// dictionary becomes "prefix".
func (v *Vars) merge(o *Vars, prefix string) {
	for name, d := range o.dicts {
		target := name

		if prefix != "" {
			if name == AnonDict {
				target = prefix
			} else {
				target = prefix + PathSep + name
			}
		}

		dst, ok := v.dicts[target]
		if !ok {
			dst = make(map[string]any, len(d))
			v.dicts[target] = dst
		}

		for k, val := range d {
			if _, exists := dst[k]; !exists {
				dst[k] = val
			}
		}
	}
}

// flatten renders a resolved value as text, concatenating lists.
func flatten(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, "")
	case []any:
		var sb strings.Builder
		for _, e := range val {
			sb.WriteString(flatten(e))
		}

		return sb.String()
	default:
		return fmt.Sprint(val)
	}
}
