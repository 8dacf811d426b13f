package releases

import (
	"encoding/json"
	"fmt"
	"io"
)

// Field names the pipeline relies on.
const (
	AssetsField = "assets"
	DraftField  = "draft"
	URLField    = "url"
)

// Release is one published release as returned by the API. Values keep
// their decoded JSON form; numbers are json.Number so integers are written
// back verbatim.
type Release map[string]interface{}

// Assets returns the nested asset records, skipping entries that are not
// objects. A missing or null assets field yields nil.
func (r Release) Assets() []map[string]interface{} {
	list, ok := r[AssetsField].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if asset, ok := item.(map[string]interface{}); ok {
			out = append(out, asset)
		}
	}
	return out
}

// Outcome is the result of a single-release fetch.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeFetched
	OutcomeNotModified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFetched:
		return "fetched"
	case OutcomeNotModified:
		return "not-modified"
	default:
		return "failed"
	}
}

func decodeJSON(r io.Reader, what string) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Source: "github", Message: what, Wrapped: err}
	}
	return doc, nil
}

// decodeRelease reads a single release object.
func decodeRelease(r io.Reader, resource string) (Release, error) {
	doc, err := decodeJSON(r, resource)
	if err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, &SchemaError{Resource: resource, Message: fmt.Sprintf("expected object, got %s", kindOf(doc))}
	}
	return Release(obj), nil
}

// decodeReleaseList reads one page of the release list.
func decodeReleaseList(r io.Reader, resource string) ([]Release, error) {
	doc, err := decodeJSON(r, resource)
	if err != nil {
		return nil, err
	}
	items, ok := doc.([]interface{})
	if !ok {
		return nil, &SchemaError{Resource: resource, Message: fmt.Sprintf("expected array, got %s", kindOf(doc))}
	}
	out := make([]Release, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, &SchemaError{Resource: resource, Message: fmt.Sprintf("entry %d: expected object, got %s", i, kindOf(item))}
		}
		out = append(out, Release(obj))
	}
	return out, nil
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
