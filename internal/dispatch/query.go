package dispatch

import (
	"net/url"
	"strings"
)

type queryPair struct {
	key   string
	value string
}

// Query is an ordered list of query parameters. Unlike url.Values it keeps
// insertion order and never holds a parameter with an empty value.
type Query struct {
	pairs []queryPair
}

// Add appends key=value, skipping empty values.
func (q *Query) Add(key, value string) {
	if value == "" {
		return
	}
	q.pairs = append(q.pairs, queryPair{key: key, value: value})
}

func (q Query) Len() int {
	return len(q.pairs)
}

func (q Query) Encode() string {
	parts := make([]string, len(q.pairs))
	for i, p := range q.pairs {
		parts[i] = url.QueryEscape(p.key) + "=" + url.QueryEscape(p.value)
	}
	return strings.Join(parts, "&")
}

// Apply appends the encoded query to path, or returns path unchanged when
// the query is empty.
func (q Query) Apply(path string) string {
	if q.Len() == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
