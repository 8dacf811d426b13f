package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fulmenhq/relinfo/internal/schema"
)

// disabledFilter is the literal that turns a filter set off.
const disabledFilter = "false"

// ParseFilterSet parses a filter-set value as found in the environment or a
// config file: a JSON array of field names, a YAML/TOML list, or the literal
// false. A disabled set is returned as nil. The result is sorted and
// deduplicated.
func ParseFilterSet(key string, raw interface{}) ([]string, error) {
	var doc interface{}

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		if !v {
			return nil, nil
		}
		return nil, &Error{Key: key, Message: "expected a JSON array of strings or false"}
	case string:
		s := strings.TrimSpace(v)
		if s == disabledFilter {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return nil, &Error{Key: key, Message: "expected a JSON array of strings or false", Wrapped: err}
		}
	case []string:
		items := make([]interface{}, len(v))
		for i, s := range v {
			items[i] = s
		}
		doc = items
	case []interface{}:
		doc = v
	default:
		return nil, &Error{Key: key, Message: fmt.Sprintf("unsupported value type %T", raw)}
	}

	items, ok := doc.([]interface{})
	if !ok {
		return nil, &Error{Key: key, Message: "expected a JSON array of strings or false"}
	}
	// Duplicates are tolerated in input and collapsed here.
	names := dedupe(items)

	res, err := schema.Validate(names, schema.FilterSet)
	if err != nil {
		return nil, &Error{Key: key, Message: "schema unavailable", Wrapped: err}
	}
	if !res.Valid {
		return nil, &Error{Key: key, Message: res.Summary()}
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n.(string))
	}
	sort.Strings(out)
	return out, nil
}

func dedupe(items []interface{}) []interface{} {
	seen := make(map[string]bool, len(items))
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			if seen[s] {
				continue
			}
			seen[s] = true
		}
		out = append(out, it)
	}
	return out
}
