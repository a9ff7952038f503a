package shell

import (
	"fmt"
	"io"

	"shopcart-console/internal/controller"
	"shopcart-console/internal/render"
	"shopcart-console/internal/status"
)

type PrintOptions struct {
	// Results prints the current results table after the form.
	Results bool
	// HTML prints the results table as HTML instead of text.
	HTML bool
}

// Print writes the form, the flash message and optionally the results table.
func Print(w io.Writer, c *controller.Controller, opts PrintOptions) {
	fmt.Fprintln(w, render.FormText(c.Schema(), c.Form()))

	msg := c.Status().Current()
	if msg.Level != status.LevelNone {
		fmt.Fprintf(w, "%s: %s\n", msg.Level, msg.Text)
	}

	if !opts.Results {
		return
	}
	table, ok := c.Results().Last()
	if !ok {
		return
	}
	if opts.HTML {
		fmt.Fprintln(w, table.HTML())
		return
	}
	fmt.Fprintln(w, table.Text())
	fmt.Fprintf(w, "%d result(s)\n", table.Len())
}
