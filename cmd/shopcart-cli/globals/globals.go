package globals

import (
	"context"

	"shopcart-console/internal/components/telemetry"
	"shopcart-console/internal/config"
	"shopcart-console/internal/controller"
	"shopcart-console/internal/dispatch"
	"shopcart-console/internal/form"
	"shopcart-console/internal/formstate"
	libtelemetry "shopcart-console/lib/telemetry"
)

const key = "shopcart-cli.ctx"

type Value struct {
	Config     config.Config
	State      *formstate.File
	Dispatcher *dispatch.Dispatcher
	Telemetry  telemetry.API
	Exporters  libtelemetry.Telemetry
	// HTML prints result tables as HTML.
	HTML bool
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key).(*Value)
}

// Controller builds a controller for s, starting from the saved form.
func (v *Value) Controller(s form.Schema) (*controller.Controller, error) {
	return controller.New(controller.Options{
		Schema:     s,
		Dispatcher: v.Dispatcher,
		Telemetry:  v.Telemetry,
		Initial:    v.State.Form(s.Name),
	})
}

// Save writes the controller's form back to the state file.
func (v *Value) Save(c *controller.Controller) error {
	v.State.Put(c.Schema().Name, c.Form())
	return v.State.Save()
}

// Close flushes telemetry exporters.
func (v *Value) Close(ctx context.Context) error {
	return v.Exporters.Shutdown(ctx)
}
