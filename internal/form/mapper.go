package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a response body does not have the shape of a
// resource (or a list of resources).
var ErrMalformed = errors.New("response is not a well-formed resource")

// ValueError is a form value that cannot be converted to its field's kind.
type ValueError struct {
	Field Field
	Value string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s must be a valid %s, got %q", e.Field.Label, e.Field.Kind, e.Value)
}

// RequiredError is a field that must hold a value before a request is made.
type RequiredError struct {
	Field Field
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("%s is required", e.Field.Label)
}

// Payload builds the create/update body. Only writable fields are included,
// keyed by their exact backend names. Strings are always sent; empty integer
// and number values are omitted; an empty bool is false.
func (s Schema) Payload(r Record) (map[string]any, error) {
	out := map[string]any{}
	for _, f := range s.Writable() {
		raw := strings.TrimSpace(r.Get(f.Name))
		switch f.Kind {
		case KindString:
			out[f.Name] = r.Get(f.Name)
		case KindInteger:
			if raw == "" {
				continue
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, &ValueError{Field: f, Value: raw}
			}
			out[f.Name] = n
		case KindNumber:
			if raw == "" {
				continue
			}
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &ValueError{Field: f, Value: raw}
			}
			out[f.Name] = n
		case KindBool:
			if raw == "" {
				out[f.Name] = false
				continue
			}
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, &ValueError{Field: f, Value: raw}
			}
			out[f.Name] = b
		}
	}
	return out, nil
}

// Decode maps a single resource body onto a record.
func (s Schema) Decode(body []byte) (Record, error) {
	value, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object", ErrMalformed)
	}
	return s.FromObject(obj)
}

// DecodeList maps a list body onto records in arrival order. One malformed
// element fails the whole list.
func (s Schema) DecodeList(body []byte) ([]Record, error) {
	value, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array", ErrMalformed)
	}
	out := make([]Record, len(list))
	for i, elem := range list {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformed, i)
		}
		rec, err := s.FromObject(obj)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = rec
	}
	return out, nil
}

// FromObject maps decoded JSON keys onto schema fields. Keys the schema does
// not know are ignored. The identifier must be present under its name or one
// of its aliases.
func (s Schema) FromObject(obj map[string]any) (Record, error) {
	out := Record{}
	for _, f := range s.Fields {
		value, ok := lookup(obj, f)
		if !ok {
			continue
		}
		out[f.Name] = formatValue(f, value)
	}
	id := s.Identifier()
	if out.Get(id.Name) == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, id.Name)
	}
	return out, nil
}

func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
	}
	return value, nil
}

func lookup(obj map[string]any, f Field) (any, bool) {
	if v, ok := obj[f.Name]; ok {
		return v, true
	}
	for _, alias := range f.Aliases {
		if v, ok := obj[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

func formatValue(f Field, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []any:
		return summarizeList(v)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}

// summarizeList renders a list field as names when its elements carry one
// (cart items do), and as compact JSON otherwise.
func summarizeList(list []any) string {
	names := make([]string, 0, len(list))
	for _, elem := range list {
		switch v := elem.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			name, ok := v["name"].(string)
			if !ok {
				return compactJSON(list)
			}
			names = append(names, name)
		default:
			return compactJSON(list)
		}
	}
	return strings.Join(names, ", ")
}

func compactJSON(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}
