package items

import (
	"shopcart-console/cmd/shopcart-cli/formcmd"
	"shopcart-console/internal/controller"
	"shopcart-console/internal/form"

	"github.com/spf13/cobra"
)

var shortcuts = []formcmd.Shortcut{
	{Flag: "cart", Field: "shopcart_id", Usage: "Id of the shopcart holding the item."},
	{Flag: "id", Field: "id", Usage: "Identifier of the item."},
	{Flag: "name", Field: "name", Usage: "Item name."},
	{Flag: "sku", Field: "sku", Usage: "Item SKU."},
	{Flag: "quantity", Field: "quantity", Usage: "Item quantity (integer)."},
	{Flag: "price", Field: "price", Usage: "Item price (number)."},
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "The 'items' subcommand works on the items of one shopcart.",
	}
	sub := []struct {
		use     string
		short   string
		trigger controller.Trigger
	}{
		{"add", "Add an item to the shopcart.", controller.TriggerCreate},
		{"get", "Load an item into the form.", controller.TriggerRetrieve},
		{"update", "Update the item named by the form's id.", controller.TriggerUpdate},
		{"delete", "Remove the item named by the form's id.", controller.TriggerDelete},
		{"list", "List the items of the shopcart.", controller.TriggerSearch},
	}
	for _, s := range sub {
		cmd.AddCommand(formcmd.New(formcmd.Spec{
			Use:       s.use,
			Short:     s.short,
			Trigger:   s.trigger,
			Schema:    &form.Items,
			Shortcuts: shortcuts,
		}))
	}
	return cmd
}
