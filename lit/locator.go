package lit

import (
	"sort"
	"strings"
)

// Locator maps byte offsets of a document to line numbers.
type Locator struct {
	source string
	breaks []int
}

// NewLocator records the line breaks of text read from source.
func NewLocator(source, text string) *Locator {
	l := &Locator{source: source}

	for i := strings.IndexByte(text, '\n'); i >= 0; {
		l.breaks = append(l.breaks, i)

		next := strings.IndexByte(text[i+1:], '\n')
		if next < 0 {
			break
		}

		i += next + 1
	}

	return l
}

// Source returns the document locator.
func (l *Locator) Source() string { return l.source }

// Line returns the 1-based line holding offset.
func (l *Locator) Line(offset int) int {
	return sort.SearchInts(l.breaks, offset) + 1
}

// Locate attaches the position of offset to err.
func (l *Locator) Locate(err error, offset int) error {
	if l == nil {
		return err
	}

	return locate(err, l.source, l.Line(offset))
}
