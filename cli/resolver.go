package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] reading YAML configuration files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// The document is a mapping from flag name to value:
//   - Flag names with hyphens (e.g., "log-level") may use underscores
//     (e.g., "log_level")
//   - Numbers are passed to kong as their decimal text
//   - Sequences are joined with commas, the separator of slice flags
//   - Mappings are joined as KEY=VALUE pairs with semicolons, the separator
//     of map flags
//
// Example config file:
//
//	log_level: debug
//	log_pretty: true
//	search: [~/lp/lib, /usr/share/lp]
//
// Command-line flags override config file values.
func resolve(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg := make(config, len(doc))
	for key, val := range doc {
		cfg[key] = flagText(val)
	}

	return cfg, nil
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagText converts a decoded YAML value to what kong parses from a
// configuration: booleans and strings as they are, anything else as text.
func flagText(v any) any {
	switch v := v.(type) {
	case nil, bool, string:
		return v
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(flagText(item))
		}

		return strings.Join(items, ",")
	case map[string]any:
		pairs := make([]string, 0, len(v))
		for _, key := range slices.Sorted(maps.Keys(v)) {
			pairs = append(pairs, key+"="+fmt.Sprint(flagText(v[key])))
		}

		return strings.Join(pairs, ";")
	default:
		return fmt.Sprint(v)
	}
}
