// Package formcmd builds cobra commands that fill form fields from flags and
// fire one trigger.
package formcmd

import (
	"fmt"
	"strings"

	"shopcart-console/cmd/shopcart-cli/globals"
	"shopcart-console/cmd/shopcart-cli/utils"
	"shopcart-console/internal/controller"
	"shopcart-console/internal/form"

	"github.com/spf13/cobra"
)

// Shortcut is a flag that sets one form field.
type Shortcut struct {
	Flag  string
	Field string
	Usage string
}

// FieldShortcuts derives one flag per editable field of schemas, named after
// the field with dashes. A field name shared by several schemas gets one flag.
func FieldShortcuts(schemas ...form.Schema) []Shortcut {
	var out []Shortcut
	index := map[string]int{}
	resources := map[string][]string{}
	for _, s := range schemas {
		for _, f := range s.Fields {
			if f.Role == form.RoleDerived {
				continue
			}
			if _, ok := index[f.Name]; !ok {
				index[f.Name] = len(out)
				out = append(out, Shortcut{
					Flag:  strings.ReplaceAll(f.Name, "_", "-"),
					Field: f.Name,
				})
			}
			resources[f.Name] = append(resources[f.Name], s.Name)
		}
	}
	for name, i := range index {
		out[i].Usage = fmt.Sprintf("Set the %s field (%s).", name, strings.Join(resources[name], ", "))
	}
	return out
}

type Spec struct {
	Use     string
	Short   string
	Trigger controller.Trigger
	// Schema overrides the configured resource.
	Schema    *form.Schema
	Shortcuts []Shortcut
}

func New(spec Spec) *cobra.Command {
	values := map[string]*string{}
	var sets []string

	cmd := &cobra.Command{
		Use:   spec.Use,
		Short: spec.Short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := globals.Get(cmd.Context())
			s := v.Config.Schema()
			if spec.Schema != nil {
				s = *spec.Schema
			}
			c, err := v.Controller(s)
			if err != nil {
				return err
			}

			for _, sc := range spec.Shortcuts {
				if !cmd.Flags().Changed(sc.Flag) {
					continue
				}
				if _, ok := s.Field(sc.Field); !ok {
					return fmt.Errorf("--%s does not apply to resource %s", sc.Flag, s.Name)
				}
				if err := c.SetField(sc.Field, *values[sc.Flag]); err != nil {
					return err
				}
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set expects field=value, got %q", kv)
				}
				if err := c.SetField(strings.TrimSpace(name), value); err != nil {
					return err
				}
			}

			fireErr := c.Fire(cmd.Context(), spec.Trigger)
			if err := v.Save(c); err != nil {
				return err
			}
			utils.PrintOutcome(cmd.OutOrStdout(), c, spec.Trigger, v.HTML)
			return fireErr
		},
	}

	for _, sc := range spec.Shortcuts {
		values[sc.Flag] = cmd.Flags().String(sc.Flag, "", sc.Usage)
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a form field before firing, as field=value (repeatable).")
	return cmd
}
