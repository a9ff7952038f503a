package commands

import (
	"fmt"

	"shopcart-console/cmd/shopcart-cli/globals"
	"shopcart-console/cmd/shopcart-cli/utils"
	"shopcart-console/internal/form"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var roleNames = map[form.Role]string{
	form.RoleAttribute:  "attribute",
	form.RoleIdentifier: "identifier",
	form.RoleParent:     "parent",
	form.RoleDerived:    "derived",
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [resource]",
		Short: "Show the fields of a resource's form.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := globals.Get(cmd.Context()).Config.Schema()
			if len(args) == 1 {
				var ok bool
				s, ok = form.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown resource %q", args[0])
				}
			}

			t := utils.NewTable(cmd.OutOrStdout())
			t.SetTitle("/" + s.Name)
			t.AppendHeader(table.Row{"Field", "Label", "Kind", "Role", "Filter"})
			for _, f := range s.Fields {
				t.AppendRow(table.Row{f.Name, f.Label, f.Kind, roleNames[f.Role], f.Filter})
			}
			t.Render()
			return nil
		},
	}
}
