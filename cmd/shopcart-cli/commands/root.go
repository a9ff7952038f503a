package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"shopcart-console/cmd/shopcart-cli/commands/items"
	"shopcart-console/cmd/shopcart-cli/globals"
	"shopcart-console/internal/components/telemetry"
	"shopcart-console/internal/config"
	"shopcart-console/internal/dispatch"
	"shopcart-console/internal/formstate"
	"shopcart-console/lib/restyutil"
	"shopcart-console/lib/serviceutil"
	libtelemetry "shopcart-console/lib/telemetry"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	config   string
	baseUrl  string
	resource string
	state    string
	dumpHttp string
	verbose  bool
	html     bool
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "shopcart-cli",
		Short: "shopcart-cli is a form-style client for the shopcart REST service.",
		Long: `shopcart-cli keeps one form per resource between invocations. Each command
fills fields from its flags, fires one trigger against the REST service and
prints the resulting form, the status message and, for searches, the results.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "Path to a shopcart.json5 config (default: searched upwards from the working directory).")
	pf.StringVar(&flags.baseUrl, "base-url", "", "Base url of the REST service (overrides config and "+config.EnvBaseUrl+").")
	pf.StringVar(&flags.resource, "resource", "", "Resource the form is bound to: shopcarts, pets or items.")
	pf.StringVar(&flags.state, "state", "", "Path to the form state file (default ~/.shopcart/form.json).")
	pf.StringVar(&flags.dumpHttp, "dump-http", "", "Directory to write every HTTP exchange to.")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging.")
	pf.BoolVar(&flags.html, "html", false, "Print result tables as HTML.")

	cmd.AddCommand(triggerCmds()...)
	cmd.AddCommand(newShellCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(items.NewRootCmd())
	return cmd
}

func setup(cmd *cobra.Command, flags *rootFlags) error {
	libtelemetry.InitSlog(flags.verbose)

	cfg, err := config.Load(flags.config)
	if err != nil {
		return err
	}
	if flags.baseUrl != "" {
		cfg.BaseUrl = flags.baseUrl
	}
	if flags.resource != "" {
		cfg.Resource = flags.resource
	}
	if flags.state != "" {
		cfg.StateFile = flags.state
	}
	if flags.dumpHttp != "" {
		cfg.DumpHttp = flags.dumpHttp
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	v := globals.Get(cmd.Context())
	v.Exporters, err = libtelemetry.Setup(cmd.Context(), "shopcart-cli", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}

	var dump restyutil.Output
	if cfg.DumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(cfg.DumpHttp)
		if err != nil {
			return err
		}
		dump = output
	}

	tel := telemetry.SlogAPI{}
	d, err := dispatch.New(dispatch.Options{
		BaseUrl:    cfg.BaseUrl,
		Timeout:    timeout,
		Telemetry:  tel,
		DumpOutput: dump,
	})
	if err != nil {
		return err
	}
	state, err := formstate.Load(cfg.StateFile)
	if err != nil {
		return err
	}

	v.Config = cfg
	v.State = state
	v.Dispatcher = d
	v.Telemetry = tel
	v.HTML = flags.html
	slog.Debug("configured", "base_url", cfg.BaseUrl, "resource", cfg.Resource, "state", cfg.StateFile)
	return nil
}

// Execute runs the CLI with args. Output goes to out; the returned error has
// not been printed yet.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	value := &globals.Value{}
	ctx = globals.Set(ctx, value)

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	err := cmd.ExecuteContext(ctx)

	if shutdownErr := value.Close(context.WithoutCancel(ctx)); shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}
	return err
}

func ExecuteContext(ctx context.Context) {
	err := Execute(ctx, os.Args[1:], os.Stdout)
	if err == nil {
		return
	}
	// trigger failures were already printed as the status message
	var derr *dispatch.Error
	if errors.As(err, &derr) {
		os.Exit(1)
	}
	serviceutil.Fatal("shopcart-cli failed", err)
}
