// Package controller binds a form to a REST resource: named triggers fire
// handlers that make one dispatcher call each and write the outcome back
// into the form, the results container and the status area.
package controller

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"shopcart-console/internal/components/telemetry"
	"shopcart-console/internal/dispatch"
	"shopcart-console/internal/form"
	"shopcart-console/internal/render"
	"shopcart-console/internal/status"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("shopcart-console/internal/controller")

// Dispatcher is the request side of the controller, implemented by
// *dispatch.Dispatcher.
type Dispatcher interface {
	Create(ctx context.Context, s form.Schema, rec form.Record) (form.Record, error)
	Update(ctx context.Context, s form.Schema, rec form.Record) (form.Record, error)
	Retrieve(ctx context.Context, s form.Schema, rec form.Record) (form.Record, error)
	Delete(ctx context.Context, s form.Schema, rec form.Record) error
	List(ctx context.Context, s form.Schema, rec form.Record) ([]form.Record, error)
	Empty(ctx context.Context, s form.Schema, rec form.Record) error
}

type Trigger string

const (
	TriggerCreate   Trigger = "create"
	TriggerUpdate   Trigger = "update"
	TriggerRetrieve Trigger = "retrieve"
	TriggerDelete   Trigger = "delete"
	TriggerClear    Trigger = "clear"
	TriggerSearch   Trigger = "search"
	TriggerEmpty    Trigger = "empty"
)

// Handler runs one trigger. It must make at most one dispatcher call.
type Handler func(ctx context.Context, c *Controller) error

type Options struct {
	Schema     form.Schema
	Dispatcher Dispatcher
	// Status and Results are created when nil.
	Status    *status.Reporter
	Results   *render.Renderer
	Telemetry telemetry.API
	// Initial is the starting form, e.g. restored from a state file.
	Initial form.Record
}

type Controller struct {
	schema     form.Schema
	dispatcher Dispatcher
	status     *status.Reporter
	results    *render.Renderer
	tel        telemetry.API
	operations metric.Int64Counter

	mu       sync.Mutex
	form     form.Record
	handlers map[Trigger]Handler
	order    []Trigger
}

func New(opts Options) (*Controller, error) {
	if err := opts.Schema.Validate(); err != nil {
		return nil, err
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if opts.Status == nil {
		opts.Status = &status.Reporter{}
	}
	if opts.Results == nil {
		opts.Results = &render.Renderer{}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}

	operations, err := meter.Int64Counter(
		"controller_operations_total",
		metric.WithDescription("The total amount of triggers fired, by trigger and outcome."),
	)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		schema:     opts.Schema,
		dispatcher: opts.Dispatcher,
		status:     opts.Status,
		results:    opts.Results,
		tel:        telemetry.NewScopedAPI("controller", opts.Telemetry),
		operations: operations,
		form:       form.Record{},
		handlers:   map[Trigger]Handler{},
	}
	c.Restore(opts.Initial)

	c.Register(TriggerCreate, handleCreate)
	c.Register(TriggerUpdate, handleUpdate)
	c.Register(TriggerRetrieve, handleRetrieve)
	c.Register(TriggerDelete, handleDelete)
	c.Register(TriggerClear, handleClear)
	c.Register(TriggerSearch, handleSearch)
	if opts.Schema.Emptiable {
		c.Register(TriggerEmpty, handleEmpty)
	}
	return c, nil
}

// Register binds handler to trigger, replacing any previous binding.
func (c *Controller) Register(trigger Trigger, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.handlers[trigger]; !exists {
		c.order = append(c.order, trigger)
	}
	c.handlers[trigger] = handler
}

// Triggers lists the registered triggers in registration order.
func (c *Controller) Triggers() []Trigger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}

// UnknownTriggerError is returned by Fire for a trigger with no handler.
type UnknownTriggerError struct {
	Trigger Trigger
}

func (e *UnknownTriggerError) Error() string {
	return fmt.Sprintf("unknown trigger %q", string(e.Trigger))
}

// Fire runs the handler bound to trigger. The outcome has already been
// written to the status area when Fire returns; the error is returned too so
// callers can react to it.
func (c *Controller) Fire(ctx context.Context, trigger Trigger) error {
	c.mu.Lock()
	handler, ok := c.handlers[trigger]
	c.mu.Unlock()
	if !ok {
		return &UnknownTriggerError{Trigger: trigger}
	}

	c.tel.ReportDebug("fire", "trigger", string(trigger))
	err := handler(ctx, c)

	outcome := "success"
	if err != nil {
		outcome = "error"
		if kind := dispatch.KindOf(err); kind != 0 {
			outcome = kind.String()
		}
	}
	c.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", c.schema.Name),
		attribute.String("trigger", string(trigger)),
		attribute.String("outcome", outcome),
	))
	return err
}

// UnknownFieldError is returned by SetField for a name the schema does not
// define, or for a field only the server may write.
type UnknownFieldError struct {
	Name     string
	ReadOnly bool
}

func (e *UnknownFieldError) Error() string {
	if e.ReadOnly {
		return fmt.Sprintf("field %q is read-only", e.Name)
	}
	return fmt.Sprintf("unknown field %q", e.Name)
}

// SetField writes one form field, as a user typing into an input would.
func (c *Controller) SetField(name, value string) error {
	f, ok := c.schema.Field(name)
	if !ok {
		return &UnknownFieldError{Name: name}
	}
	if f.Role == form.RoleDerived {
		return &UnknownFieldError{Name: name, ReadOnly: true}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form[name] = value
	return nil
}

// Restore replaces the form with rec, dropping keys the schema does not
// define.
func (c *Controller) Restore(rec form.Record) {
	c.setForm(rec)
}

// Form returns a copy of the current form.
func (c *Controller) Form() form.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

func (c *Controller) Schema() form.Schema {
	return c.schema
}

func (c *Controller) Status() *status.Reporter {
	return c.status
}

func (c *Controller) Results() *render.Renderer {
	return c.results
}

func (c *Controller) Dispatcher() Dispatcher {
	return c.dispatcher
}

// setForm overwrites the whole form. Fields are never merged.
func (c *Controller) setForm(rec form.Record) {
	next := form.Record{}
	for _, f := range c.schema.Fields {
		if rec.Has(f.Name) {
			next[f.Name] = rec.Get(f.Name)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = next
}

// blank is an empty form. Nested resources keep their parent key so the
// form stays scoped to the same parent.
func (c *Controller) blank() form.Record {
	rec := form.Record{}
	if parent, ok := c.schema.ParentField(); ok {
		if value := c.Form().Get(parent.Name); value != "" {
			rec[parent.Name] = value
		}
	}
	return rec
}
