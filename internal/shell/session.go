// Package shell runs an interactive form session: the user edits fields and
// fires triggers until they quit.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"shopcart-console/internal/controller"
	"shopcart-console/internal/form"
	"shopcart-console/internal/prompt"
)

const (
	optionShow = "Show form"
	optionQuit = "Quit"
)

type Session struct {
	Controller *controller.Controller
	Driver     prompt.Driver
	Out        io.Writer
	HTML       bool
	// AfterFire runs after every trigger, e.g. to persist the form.
	AfterFire func(c *controller.Controller)
}

type action struct {
	label   string
	field   *form.Field
	trigger controller.Trigger
}

func (s *Session) actions() []action {
	out := []action{}
	current := s.Controller.Form()
	for _, f := range s.Controller.Schema().Fields {
		if f.Role == form.RoleDerived {
			continue
		}
		label := fmt.Sprintf("Edit %s [%s]", f.Label, current.Get(f.Name))
		out = append(out, action{label: label, field: &f})
	}
	for _, trigger := range s.Controller.Triggers() {
		out = append(out, action{label: "Fire " + string(trigger), trigger: trigger})
	}
	out = append(out, action{label: optionShow}, action{label: optionQuit})
	return out
}

// Run loops until the user quits or aborts. Trigger failures are shown in
// the flash line and do not end the session.
func (s *Session) Run(ctx context.Context) error {
	for {
		actions := s.actions()
		labels := make([]string, len(actions))
		for i, a := range actions {
			labels[i] = a.label
		}

		idx, err := s.Driver.Select(ctx, prompt.SelectConfig{
			Message:  fmt.Sprintf("%s form", s.Controller.Schema().Singular),
			Options:  labels,
			PageSize: len(labels),
		})
		if errors.Is(err, prompt.ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(actions) {
			continue
		}

		chosen := actions[idx]
		switch {
		case chosen.field != nil:
			if err := s.edit(ctx, *chosen.field); err != nil {
				if errors.Is(err, prompt.ErrAborted) {
					return nil
				}
				return err
			}
		case chosen.trigger != "":
			// failures are flashed on the status line and the loop goes on
			if err := s.Controller.Fire(ctx, chosen.trigger); err != nil {
				slog.DebugContext(ctx, "trigger failed", "trigger", chosen.trigger, "err", err)
			}
			if s.AfterFire != nil {
				s.AfterFire(s.Controller)
			}
			Print(s.Out, s.Controller, PrintOptions{
				Results: chosen.trigger == controller.TriggerSearch,
				HTML:    s.HTML,
			})
		case chosen.label == optionShow:
			Print(s.Out, s.Controller, PrintOptions{Results: true, HTML: s.HTML})
		case chosen.label == optionQuit:
			return nil
		}
	}
}

func (s *Session) edit(ctx context.Context, f form.Field) error {
	value, err := s.Driver.Input(ctx, prompt.InputConfig{
		Message: f.Label,
		Default: s.Controller.Form().Get(f.Name),
		Help:    fmt.Sprintf("%s (%s)", f.Name, f.Kind),
	})
	if err != nil {
		return err
	}
	return s.Controller.SetField(f.Name, value)
}
