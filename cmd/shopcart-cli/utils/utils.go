package utils

import (
	"io"

	"shopcart-console/internal/controller"
	"shopcart-console/internal/shell"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// PrintOutcome prints the form and flash after trigger, plus the results
// table after a search.
func PrintOutcome(out io.Writer, c *controller.Controller, trigger controller.Trigger, html bool) {
	shell.Print(out, c, shell.PrintOptions{
		Results: trigger == controller.TriggerSearch,
		HTML:    html,
	})
}
