/*
main.go - Application entry point

PURPOSE:
  The vr command runs the monthly meal-benefit consolidation, either once
  from a directory of spreadsheet exports or as an HTTP service.

COMMANDS:
  vr run    Consolidate one month and write the technical and export CSVs
  vr serve  Start the HTTP API

CONFIGURATION:
  Defaults, then ./config/<name>.yaml or /etc/vr/<name>.yaml, then VR_*
  environment variables (VR_RULES_ROUNDING, VR_STORE_PATH, ...), then flags.

EXIT CODES:
  0  success
  1  runtime failure (unwritable output, broken invariant)
  2  invalid configuration or input (bad rounding mode, no roster)

EXAMPLES:
  vr run --input ./data/FORM_OK --output ./data/OUT --period 05/2025
  vr run --rounding floor --basis calendar --no-store
  vr serve --port 3000 --db ":memory:"

SEE ALSO:
  - config/config.go: Configuration keys
  - batch/runner.go: What a run does
  - api/server.go: Routes
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/vr-engine/generic"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

type rootOptions struct {
	configName string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if generic.IsClientError(err) {
			os.Exit(exitUsage)
		}
		os.Exit(exitFailure)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "vr",
		Short:         "Monthly meal-benefit (VR) consolidation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configName, "config", "vr", "Config file name (without .yaml) looked up in ./config and /etc/vr")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	cmd.AddCommand(newRunCmd(&opts), newServeCmd(&opts))
	return cmd
}
