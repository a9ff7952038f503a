package restyutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu    sync.Mutex
	files map[string]string
}

func (m *memoryOutput) Write(id string, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id] = contents
}

func TestDumpExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	out := &memoryOutput{files: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	DumpExchanges(client, out)

	_, err := client.R().
		SetHeader("X-Request-Id", "abc").
		SetHeader("Content-Type", "application/json").
		SetBody(`{"customer_id":"7"}`).
		Post("/shopcarts")
	require.NoError(t, err)

	contents, ok := out.files["post-abc.txt"]
	require.True(t, ok, "expected dump file, got %v", out.files)
	require.True(t, strings.HasPrefix(contents, "---- REQUEST ----\n\nPOST "))
	require.True(t, strings.Contains(contents, "/shopcarts"))
	require.True(t, strings.Contains(contents, `{"customer_id":"7"}`))
	require.True(t, strings.Contains(contents, "201"))
	require.True(t, strings.Contains(contents, `{"id":1}`))
}

func TestDumpExchangesWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	out := &memoryOutput{files: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	DumpExchanges(client, out)

	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodPut} {
		res, err := client.R().
			SetHeader("X-Request-Id", "r1").
			Execute(method, "/shopcarts/1")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode())

		name := strings.ToLower(method) + "-r1.txt"
		contents, ok := out.files[name]
		require.True(t, ok, "expected %s, got %v", name, out.files)
		require.Contains(t, contents, "<NO BODY>")
		require.Contains(t, contents, "/shopcarts/1")
	}
}

func TestDumpExchangesNilOutput(t *testing.T) {
	client := resty.New()
	DumpExchanges(client, nil)
}
