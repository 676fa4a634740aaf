// Package cli implements nsgctl, an operator tool that runs registry lookups
// through the same wiring as the server without starting it.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"nsg/internal/app"
	"nsg/internal/platform/config"
	"nsg/internal/platform/logger"
	"nsg/pkg/platform/httputil"
	"nsg/pkg/requestcontext"
)

// Execute runs nsgctl with the process arguments.
func Execute() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}

type deps struct {
	loadConfig func() (config.Config, error)
	verbose    bool
}

func newRootCmd(loadConfig func() (config.Config, error)) *cobra.Command {
	d := &deps{loadConfig: loadConfig}

	cmd := &cobra.Command{
		Use:          "nsgctl",
		Short:        "Query the Nordic company registries through the gateway wiring",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&d.verbose, "verbose", "v", false, "log upstream activity to stderr")

	cmd.AddCommand(lookupCmd(d), basicCmd(d), configCmd(d))
	return cmd
}

func (d *deps) build(cmd *cobra.Command) (*app.App, error) {
	cfg, err := d.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if d.verbose {
		log = logger.NewWithWriter(cmd.ErrOrStderr(), config.Log{Level: "debug", Format: "text"})
	}
	return app.Build(cmd.Context(), cfg, log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printFailure writes the error envelope the HTTP API would have returned.
func printFailure(cmd *cobra.Command, err error) error {
	env := httputil.EnvelopeFor(err)
	env.Timestamp = requestcontext.Now(cmd.Context()).UTC()
	_ = printJSON(cmd.ErrOrStderr(), env)
	return fmt.Errorf("lookup failed: %s", env.Title)
}
