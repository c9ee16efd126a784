package resume

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/portfolio-builder/internal/types"
)

// ErrUnsupportedShape is returned when a value matches none of the accepted
// list shapes.
var ErrUnsupportedShape = errors.New("unsupported list shape")

// listShape tags the representations an LLM uses for a list of strings.
type listShape int

const (
	shapeAbsent listShape = iota
	shapeText
	shapeList
	shapeCategoryMap
	shapeUnknown
)

func classifyList(raw any) listShape {
	switch raw.(type) {
	case nil:
		return shapeAbsent
	case string:
		return shapeText
	case []any, []string:
		return shapeList
	case map[string]any:
		return shapeCategoryMap
	default:
		return shapeUnknown
	}
}

// NormalizeStringList flattens the accepted skill representations into one
// ordered list of strings:
//
//   - null: empty list
//   - "Go, SQL": comma or newline separated text
//   - ["Go", "SQL"]: flat list
//   - [{"Backend": ["Go"]}, {"Data": ["SQL"]}]: list of category maps
//   - {"Backend": ["Go"], "Data": "SQL"}: category map, categories in key order
//
// Duplicates are kept.
func NormalizeStringList(raw any) ([]string, error) {
	out := []string{}
	switch classifyList(raw) {
	case shapeAbsent:
		return out, nil
	case shapeText:
		return appendText(out, raw.(string)), nil
	case shapeList:
		if list, ok := raw.([]string); ok {
			for _, s := range list {
				out = appendText(out, s)
			}
			return out, nil
		}
		for i, item := range raw.([]any) {
			var err error
			switch v := item.(type) {
			case string:
				out = appendItem(out, v)
			case map[string]any:
				out, err = appendCategories(out, v)
			case nil:
			default:
				err = fmt.Errorf("%w: element %d is %T", ErrUnsupportedShape, i, item)
			}
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case shapeCategoryMap:
		return appendCategories(out, raw.(map[string]any))
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, raw)
	}
}

func appendCategories(out []string, categories map[string]any) ([]string, error) {
	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := categories[k].(type) {
		case string:
			out = appendText(out, v)
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: category %q contains %T", ErrUnsupportedShape, k, item)
				}
				out = appendItem(out, s)
			}
		case map[string]any:
			var err error
			if out, err = appendCategories(out, v); err != nil {
				return nil, err
			}
		case nil:
		default:
			return nil, fmt.Errorf("%w: category %q is %T", ErrUnsupportedShape, k, v)
		}
	}
	return out, nil
}

func appendText(out []string, text string) []string {
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' }) {
		out = appendItem(out, part)
	}
	return out
}

func appendItem(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

// recordShape describes how bare strings in a section are wrapped.
type recordShape struct {
	key   string
	nulls []string
}

var (
	certificationShape = recordShape{key: "name", nulls: []string{"issuer", "year", "url"}}
	awardShape         = recordShape{key: "name", nulls: []string{"issuer", "year"}}
	publicationShape   = recordShape{key: "title", nulls: []string{"publisher", "date", "url"}}
)

// NormalizeRecords coerces a section into a list of records. Mappings are
// kept as-is, a lone mapping becomes a one-element list, and bare strings are
// wrapped into {key: s} with the given fields set to null. When key is empty
// bare strings are dropped. Other element types are dropped.
func NormalizeRecords(raw any, key string, nullFields ...string) []types.Record {
	out := []types.Record{}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	case string:
		items = []any{v}
	default:
		return out
	}

	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, types.Record(v))
		case string:
			v = strings.TrimSpace(v)
			if key == "" || v == "" {
				continue
			}
			rec := types.Record{key: v}
			for _, f := range nullFields {
				rec[f] = nil
			}
			out = append(out, rec)
		}
	}
	return out
}

func normalizeShaped(raw any, shape recordShape) []types.Record {
	return NormalizeRecords(raw, shape.key, shape.nulls...)
}

// normalizeSocial accepts a platform map or a list of {network, url} entries.
// Keys are lower-cased and empty values dropped. Unsupported shapes are
// returned unchanged so validation can report them.
func normalizeSocial(raw any) any {
	out := map[string]any{}
	switch v := raw.(type) {
	case nil:
		return out
	case map[string]any:
		for k, val := range v {
			switch s := val.(type) {
			case nil:
			case string:
				if s = strings.TrimSpace(s); s != "" {
					out[strings.ToLower(strings.TrimSpace(k))] = s
				}
			default:
				return raw
			}
		}
		return out
	case []any:
		for _, item := range v {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			network, _ := entry["network"].(string)
			url, _ := entry["url"].(string)
			network = strings.ToLower(strings.TrimSpace(network))
			url = strings.TrimSpace(url)
			if network != "" && url != "" {
				out[network] = url
			}
		}
		return out
	default:
		return raw
	}
}

// normalizeScalar trims strings, renders numbers as text, and maps empty
// values to null. Other types are returned unchanged.
func normalizeScalar(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if v = strings.TrimSpace(v); v == "" {
			return nil
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return raw
	}
}

func capRecords(records []types.Record, max int) []types.Record {
	if max > 0 && len(records) > max {
		return records[:max]
	}
	return records
}
