package commands

import (
	"log/slog"

	"shopcart-console/cmd/shopcart-cli/globals"
	"shopcart-console/internal/controller"
	"shopcart-console/internal/prompt"
	"shopcart-console/internal/shell"

	"github.com/spf13/cobra"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit the form and fire triggers interactively.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := globals.Get(cmd.Context())
			c, err := v.Controller(v.Config.Schema())
			if err != nil {
				return err
			}
			session := &shell.Session{
				Controller: c,
				Driver:     prompt.NewSurveyDriver(),
				Out:        cmd.OutOrStdout(),
				HTML:       v.HTML,
				AfterFire: func(c *controller.Controller) {
					if err := v.Save(c); err != nil {
						slog.Warn("failed to save form state", "err", err)
					}
				},
			}
			if err := session.Run(cmd.Context()); err != nil {
				return err
			}
			return v.Save(c)
		},
	}
}
