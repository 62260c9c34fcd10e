package lit

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// PathSep separates the components of a [Path] in its textual form.
const PathSep = "."

// Wildcard is the glob component matching any sequence of characters,
// including separators.
const Wildcard = "*"

// globMeta are the characters that make a pattern a glob.
const globMeta = Wildcard + "?["

// Path is the dot-separated address of a chunk, such as "c.sum" or
// "file.main.-1".
//
// The final component may be an integer index selecting one member of a
// sibling set.
type Path []string

// ParsePath splits s on [PathSep]. The empty string yields a nil Path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}

	return strings.Split(s, PathSep)
}

// String joins the components with [PathSep].
func (p Path) String() string { return strings.Join(p, PathSep) }

// IsGlob reports whether any component contains a glob metacharacter:
// the [Wildcard], "?" or a "[...]" class.
func (p Path) IsGlob() bool {
	return slices.ContainsFunc(p, func(s string) bool {
		return strings.ContainsAny(s, globMeta)
	})
}

// Index returns the trailing integer index of p.
// A path with fewer than two components has no index.
func (p Path) Index() (int, bool) {
	if len(p) < 2 {
		return 0, false
	}

	i, err := strconv.Atoi(p[len(p)-1])
	if err != nil {
		return 0, false
	}

	return i, true
}

// WithIndex returns a copy of p with its trailing index replaced by i, or
// with i appended if p has no index.
func (p Path) WithIndex(i int) Path {
	q := slices.Clone(p)
	if _, ok := p.Index(); ok {
		q[len(q)-1] = strconv.Itoa(i)

		return q
	}

	return append(q, strconv.Itoa(i))
}

// Base returns p without its trailing index.
func (p Path) Base() Path {
	if _, ok := p.Index(); ok {
		return p[:len(p)-1]
	}

	return p
}

// Prefix returns a new path formed by prefix followed by p.
func (p Path) Prefix(prefix Path) Path {
	return append(slices.Clone(prefix), p...)
}

// Equal reports whether p and q have identical components.
func (p Path) Equal(q Path) bool { return slices.Equal(p, q) }

// NormIndex normalizes index i against a sequence of the given size.
// Negative indices count from the end (-1 is the last element).
// The result is false if i is out of range.
func NormIndex(i, size int) (int, bool) {
	if i < 0 {
		i += size
	}

	return i, i >= 0 && i < size
}

// Match reports whether name matches the shell-style glob pattern.
//
// The wildcard "*" matches any run of characters including separators, "?"
// matches a single character and "[...]" a character class ("[!...]"
// negates). The whole name must match.
func Match(pattern, name string) bool {
	if !strings.ContainsAny(pattern, globMeta) {
		return pattern == name
	}

	re := globRegexp(pattern)
	if re == nil {
		return false
	}

	return re.MatchString(name)
}

var globCache sync.Map // map[string]*regexp.Regexp

func globRegexp(pattern string) *regexp.Regexp {
	if v, ok := globCache.Load(pattern); ok {
		re, _ := v.(*regexp.Regexp)

		return re
	}

	re, err := regexp.Compile(translateGlob(pattern))
	if err != nil {
		re = nil
	}

	globCache.Store(pattern, re)

	return re
}

func translateGlob(pattern string) string {
	var sb strings.Builder

	sb.WriteString(`^(?s:`)

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*':
			sb.WriteString(`.*`)

		case '?':
			sb.WriteString(`.`)

		case '[':
			j := i + 1
			if j < len(pattern) && pattern[j] == '!' {
				j++
			}

			if j < len(pattern) && pattern[j] == ']' {
				j++
			}

			for j < len(pattern) && pattern[j] != ']' {
				j++
			}

			if j >= len(pattern) {
				sb.WriteString(`\[`)

				continue
			}

			class := strings.ReplaceAll(pattern[i+1:j], `\`, `\\`)
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}

			sb.WriteString("[" + class + "]")

			i = j

		default:
			sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}

	sb.WriteString(`)$`)

	return sb.String()
}
