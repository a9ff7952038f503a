package commands

import (
	"shopcart-console/cmd/shopcart-cli/formcmd"
	"shopcart-console/internal/controller"
	"shopcart-console/internal/form"

	"github.com/spf13/cobra"
)

// resourceShortcuts covers every resource the form can be bound to; a flag
// is rejected at run time when the bound resource lacks its field.
func resourceShortcuts() []formcmd.Shortcut {
	schemas := make([]form.Schema, 0, len(form.Names()))
	for _, name := range form.Names() {
		s, _ := form.Lookup(name)
		schemas = append(schemas, s)
	}
	return formcmd.FieldShortcuts(schemas...)
}

func triggerCmds() []*cobra.Command {
	shortcuts := resourceShortcuts()
	return []*cobra.Command{
		formcmd.New(formcmd.Spec{
			Use:       "create",
			Short:     "Create a resource from the form (never sends the id).",
			Trigger:   controller.TriggerCreate,
			Shortcuts: shortcuts,
		}),
		formcmd.New(formcmd.Spec{
			Use:       "update",
			Short:     "Update the resource named by the form's id.",
			Trigger:   controller.TriggerUpdate,
			Shortcuts: shortcuts,
		}),
		formcmd.New(formcmd.Spec{
			Use:       "retrieve",
			Short:     "Load the resource named by the form's id into the form.",
			Trigger:   controller.TriggerRetrieve,
			Shortcuts: shortcuts,
		}),
		formcmd.New(formcmd.Spec{
			Use:       "delete",
			Short:     "Delete the resource named by the form's id and clear the form.",
			Trigger:   controller.TriggerDelete,
			Shortcuts: shortcuts,
		}),
		formcmd.New(formcmd.Spec{
			Use:       "search",
			Short:     "List resources matching the form's filter fields.",
			Trigger:   controller.TriggerSearch,
			Shortcuts: shortcuts,
		}),
		formcmd.New(formcmd.Spec{
			Use:     "clear",
			Short:   "Reset the form without contacting the service.",
			Trigger: controller.TriggerClear,
		}),
		formcmd.New(formcmd.Spec{
			Use:       "empty",
			Short:     "Remove every item from the shopcart named by the form's id.",
			Trigger:   controller.TriggerEmpty,
			Shortcuts: shortcuts,
		}),
	}
}
