// Package status is the single-slot flash area: it shows the outcome of the
// most recent operation and nothing else.
package status

import (
	"strings"
	"sync"
)

type Level int

const (
	LevelNone Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	}
	return "none"
}

// FallbackError is shown for an error without text.
const FallbackError = "Server error!"

type Message struct {
	Level Level
	Text  string
}

// Reporter holds one message at a time. A new message fully replaces the
// previous one.
type Reporter struct {
	mu          sync.RWMutex
	current     Message
	subscribers []func(Message)
}

func (r *Reporter) Flash(level Level, text string) {
	msg := Message{Level: level, Text: text}

	r.mu.Lock()
	r.current = msg
	subscribers := r.subscribers
	r.mu.Unlock()

	for _, fn := range subscribers {
		fn(msg)
	}
}

func (r *Reporter) Success(text string) {
	r.Flash(LevelSuccess, text)
}

// Error flashes text as an error, never leaving the slot blank.
func (r *Reporter) Error(text string) {
	if strings.TrimSpace(text) == "" {
		text = FallbackError
	}
	r.Flash(LevelError, text)
}

func (r *Reporter) Current() Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Reporter) Clear() {
	r.Flash(LevelNone, "")
}

// Subscribe registers fn to be called with every new message, outside the
// reporter's lock.
func (r *Reporter) Subscribe(fn func(Message)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}
