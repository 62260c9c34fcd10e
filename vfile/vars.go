package vfile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// LoadVars reads a YAML mapping of variables. Mapping values are named
// dictionaries; scalar and sequence values belong to the anonymous
// dictionary, under the key "".
func LoadVars(ctx context.Context, r io.Reader) (map[string]map[string]any, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).DecodeContext(ctx, &doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	out := make(map[string]map[string]any)

	for key, val := range doc {
		if dict, ok := stringMap(val); ok {
			out[key] = dict

			continue
		}

		if out[""] == nil {
			out[""] = make(map[string]any)
		}

		out[""][key] = val
	}

	return out, nil
}

func stringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}

		return out, true
	default:
		return nil, false
	}
}
