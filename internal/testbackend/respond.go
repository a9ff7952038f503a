package testbackend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// errorBody is the error shape of the shopcart service.
type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
	})
}

const notFoundPage = `<!doctype html>
<html lang=en>
<title>404 Not Found</title>
<h1>Not Found</h1>
<p>The requested URL was not found on the server. If you entered the URL manually please check your spelling and try again.</p>
`

// NotFoundPageMessage is the paragraph of the HTML page served for unknown
// routes.
const NotFoundPageMessage = "The requested URL was not found on the server. If you entered the URL manually please check your spelling and try again."

func writeNotFoundPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, notFoundPage)
}

var errUnsupportedMediaType = errors.New("Content-Type must be application/json")

// readObject decodes a JSON object body, keeping numbers as json.Number.
func readObject(r *http.Request) (map[string]any, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil, errUnsupportedMediaType
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, fmt.Errorf("body of request contained bad or no data")
	}
	return obj, nil
}

// decodeError writes the response for a readObject or validation failure.
func decodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errUnsupportedMediaType) {
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

type missingError struct {
	resource string
	field    string
}

func (e missingError) Error() string {
	return fmt.Sprintf("Invalid %s: missing %s", e.resource, e.field)
}

type invalidError struct {
	resource string
	field    string
	value    any
}

func (e invalidError) Error() string {
	return fmt.Sprintf("Invalid %s: bad value for %s: %v", e.resource, e.field, e.value)
}

// stringField reads a required field as text, accepting numbers too.
func stringField(resource string, obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", missingError{resource: resource, field: key}
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	}
	return "", invalidError{resource: resource, field: key, value: v}
}

func intField(resource string, obj map[string]any, key string, fallback int) (int, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return fallback, nil
	}
	var raw string
	switch v := v.(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
	default:
		return 0, invalidError{resource: resource, field: key, value: v}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidError{resource: resource, field: key, value: v}
	}
	return n, nil
}

func floatField(resource string, obj map[string]any, key string) (float64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, nil
	}
	var raw string
	switch v := v.(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
	default:
		return 0, invalidError{resource: resource, field: key, value: v}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalidError{resource: resource, field: key, value: v}
	}
	return n, nil
}

func boolField(resource string, obj map[string]any, key string) (bool, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return false, nil
	}
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, invalidError{resource: resource, field: key, value: v}
		}
		return b, nil
	}
	return false, invalidError{resource: resource, field: key, value: v}
}
