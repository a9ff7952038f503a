package testbackend

import (
	"net/http"
	"sync"
	"time"
)

// RequestLogEntry is one request received by the backend.
type RequestLogEntry struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	RequestID   string
	Body        []byte
	StatusCode  int
	Timestamp   time.Time
}

// RequestLog keeps every request the backend served, in arrival order.
type RequestLog struct {
	mu      sync.RWMutex
	entries []RequestLogEntry
}

func (rl *RequestLog) Add(entry RequestLogEntry) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = append(rl.entries, entry)
}

func (rl *RequestLog) Entries() []RequestLogEntry {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	out := make([]RequestLogEntry, len(rl.entries))
	copy(out, rl.entries)
	return out
}

func (rl *RequestLog) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = nil
}

// Fault replaces the response of a matching request.
type Fault struct {
	StatusCode int
	// ContentType defaults to application/json.
	ContentType string
	Body        string
}

// FaultRegistry holds faults keyed by method and exact path.
type FaultRegistry struct {
	mu     sync.RWMutex
	faults map[string]Fault
}

func faultKey(method, path string) string {
	return method + " " + path
}

func (fr *FaultRegistry) Set(method, path string, fault Fault) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.faults == nil {
		fr.faults = map[string]Fault{}
	}
	fr.faults[faultKey(method, path)] = fault
}

func (fr *FaultRegistry) Remove(method, path string) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	delete(fr.faults, faultKey(method, path))
}

func (fr *FaultRegistry) Check(method, path string) (Fault, bool) {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	f, ok := fr.faults[faultKey(method, path)]
	return f, ok
}

func (fr *FaultRegistry) Reset() {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.faults = nil
}

func (f Fault) write(w http.ResponseWriter) {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(f.StatusCode)
	w.Write([]byte(f.Body))
}
