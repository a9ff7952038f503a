package prompt

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Scripted is a Driver that replays canned answers in order. Select answers
// are matched against the option text by prefix. When the script runs out
// every prompt returns ErrAborted.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	// Prompts records every message shown, in order.
	Prompts []string
}

func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) next(message string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, message)
	if len(s.answers) == 0 {
		return "", false
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, true
}

func (s *Scripted) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	answer, ok := s.next(cfg.Message)
	if !ok {
		return "", ErrAborted
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (s *Scripted) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	answer, ok := s.next(cfg.Message)
	if !ok {
		return 0, ErrAborted
	}
	for i, option := range cfg.Options {
		if strings.HasPrefix(option, answer) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no option matches %q", answer)
}
