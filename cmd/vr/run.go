package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/vr-engine/batch"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
)

type runOptions struct {
	inputDir  string
	outputDir string
	period    string
	rounding  string
	basis     string
	noStore   bool
	flat      bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Consolidate one month from a directory of CSV exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, appOptions{
				noStore: opts.noStore,
				rules:   opts.override(cmd),
			})
			if err != nil {
				return err
			}
			defer a.Close()

			in, out := opts.inputDir, opts.outputDir
			if in == "" {
				in = a.cfg.Paths.InputDir
			}
			if out == "" {
				out = a.cfg.Paths.OutputDir
			}

			outcome, err := a.runner.Run(cmd.Context(), batch.Request{
				InputDir:    in,
				OutputDir:   out,
				PeriodLabel: opts.period,
			})
			if err != nil {
				return err
			}

			id := outcome.Run.ID
			if id == "" {
				id = "(not stored)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d employees, total %s (empresa %s, profissional %s)\n",
				id, outcome.Run.Employees, outcome.Run.Gross, outcome.Run.EmployerShare, outcome.Run.EmployeeShare)
			fmt.Fprintf(cmd.OutOrStdout(), "technical: %s\nexport:    %s\n", outcome.Run.TechnicalPath, outcome.Run.ExportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.inputDir, "input", "", "Input directory with the header-normalized CSVs (default: paths.input_dir)")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory (default: paths.output_dir)")
	cmd.Flags().StringVar(&opts.period, "period", "", "Period label when the roster has no COMPETENCIA column, e.g. 05/2025")
	cmd.Flags().StringVar(&opts.rounding, "rounding", "", "Override rules.rounding (nearest, floor, ceil)")
	cmd.Flags().StringVar(&opts.basis, "basis", "", "Override rules.basis (business, calendar)")
	cmd.Flags().BoolVar(&opts.flat, "no-proportional", false, "Grant full days to exits after the 15th")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "Do not record the run in the store")

	return cmd
}

// override applies the rule flags the user actually set.
func (o *runOptions) override(cmd *cobra.Command) func(*vr.Rules) {
	return func(r *vr.Rules) {
		if cmd.Flags().Changed("rounding") {
			r.Rounding = generic.RoundingMode(o.rounding)
		}
		if cmd.Flags().Changed("basis") {
			r.Basis = generic.DayBasis(o.basis)
		}
		if o.flat {
			r.ProportionalTermination = false
		}
	}
}
