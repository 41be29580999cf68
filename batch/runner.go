/*
Package batch runs one monthly consolidation end to end.

PURPOSE:
  The engine is pure; this package is the orchestration around it. It is
  shared by the CLI ("vr run") and the API (POST /api/runs) so both paths
  produce identical artifacts, run records and events.

FLOW:
  1. Load sources (from a directory, or given in memory)
  2. Run the engine with the configured rules
  3. Project the export layout
  4. Encode both CSVs, then write them (safe write, _NEW fallback)
  5. Persist the run (header, records, audit)
  6. Notify ("vr.run.completed")

  Steps 4 to 6 are optional: no output dir means no files, a nil store
  means nothing persisted. A failed notification is logged, never fatal.

SEE ALSO:
  - vr/engine.go: The pipeline
  - source/loader.go: Directory loading
  - store/sqlite/sqlite.go: Run persistence
*/
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/warp/vr-engine/factory"
	"github.com/warp/vr-engine/logger"
	"github.com/warp/vr-engine/messaging"
	"github.com/warp/vr-engine/source"
	"github.com/warp/vr-engine/store/sqlite"
	"github.com/warp/vr-engine/vr"
)

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *sqlite.Run, records []vr.TechnicalRecord, adjustments []vr.Adjustment) error
}

// Notifier announces finished runs.
type Notifier interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

// Publish does nothing.
func (NopNotifier) Publish(context.Context, string, any) error { return nil }

// Options configures a Runner.
type Options struct {
	Rules         vr.Rules
	Layout        *factory.Layout // nil means the canonical layout
	TechnicalFile string
	ExportFile    string
	Store         RunStore // optional
	Notifier      Notifier // optional
	Logger        *logger.Logger
}

// Request describes one run.
type Request struct {
	// InputDir is read when Sources is empty.
	InputDir string
	Sources  []vr.Source

	// OutputDir receives the technical and export files. Empty skips writing.
	OutputDir string

	// PeriodLabel overrides the configured label for this run.
	PeriodLabel string

	// Origin is recorded with the run; defaults to InputDir.
	Origin string
}

// Outcome is what a run produced.
type Outcome struct {
	Run    *sqlite.Run
	Result *vr.Result
	Export *factory.ExportTable
}

// Runner executes requests.
type Runner struct {
	opts Options
	log  *logger.Logger
}

// NewRunner validates the rules and layout up front.
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Layout == nil {
		opts.Layout = factory.DefaultLayout()
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.TechnicalFile == "" {
		opts.TechnicalFile = "VR_MENSAL_RESULT.csv"
	}
	if opts.ExportFile == "" {
		opts.ExportFile = "VR_MENSAL_LAYOUT.csv"
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Runner{opts: opts, log: opts.Logger.WithComponent("batch")}, nil
}

// Rules returns the runner's configured rules.
func (r *Runner) Rules() vr.Rules { return r.opts.Rules }

// Run executes one request.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	sources := req.Sources
	if len(sources) == 0 {
		if req.InputDir == "" {
			return nil, fmt.Errorf("no sources and no input dir")
		}
		loaded, err := source.LoadDir(req.InputDir, r.log)
		if err != nil {
			return nil, err
		}
		sources = loaded
	}

	rules := r.opts.Rules
	if req.PeriodLabel != "" {
		rules.PeriodLabel = req.PeriodLabel
	}
	engine, err := vr.NewEngine(rules, r.log)
	if err != nil {
		return nil, err
	}

	result, err := engine.Run(sources)
	if err != nil {
		return nil, err
	}

	export, err := r.opts.Layout.Project(result.Technical)
	if err != nil {
		return nil, err
	}

	gross, employer, employee := result.Employees.Totals()
	run := &sqlite.Run{
		Competencia:   competencia(result, rules),
		Origin:        req.Origin,
		Rounding:      string(rules.Rounding),
		Basis:         string(rules.Basis),
		Proportional:  rules.ProportionalTermination,
		Employees:     len(result.Employees),
		Gross:         gross.StringFixed(2),
		EmployerShare: employer.StringFixed(2),
		EmployeeShare: employee.StringFixed(2),
	}
	if run.Origin == "" {
		run.Origin = req.InputDir
	}

	if req.OutputDir != "" {
		if err := r.writeArtifacts(req.OutputDir, run, result.Technical, export); err != nil {
			return nil, err
		}
		r.log.Info().
			Str("technical", run.TechnicalPath).
			Str("export", run.ExportPath).
			Msg("artifacts written")
	}

	if r.opts.Store != nil {
		if err := r.opts.Store.SaveRun(ctx, run, result.Technical, result.Audit.Adjustments); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	event := messaging.RunCompleted{
		RunID:         run.ID,
		Competencia:   run.Competencia,
		Employees:     run.Employees,
		Gross:         run.Gross,
		EmployerShare: run.EmployerShare,
		EmployeeShare: run.EmployeeShare,
		TechnicalPath: run.TechnicalPath,
		ExportPath:    run.ExportPath,
	}
	log := r.log.WithRunID(run.ID)
	if err := r.opts.Notifier.Publish(ctx, messaging.EventRunCompleted, event); err != nil {
		log.WithError(err).Warn().Msg("run notification failed")
	}

	log.Info().
		Str("competencia", run.Competencia).
		Int("employees", run.Employees).
		Str("gross", run.Gross).
		Msg("run completed")

	return &Outcome{Run: run, Result: result, Export: export}, nil
}

// writeArtifacts encodes both tables before touching the disk, so an
// encoding failure leaves no file behind. The output dir is created when
// missing; only a real write failure falls back to the _NEW path.
func (r *Runner) writeArtifacts(dir string, run *sqlite.Run, technical []vr.TechnicalRecord, export *factory.ExportTable) error {
	techData, err := source.EncodeTechnical(technical)
	if err != nil {
		return err
	}
	exportData, err := source.EncodeExportBytes(export)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	run.TechnicalPath, err = source.WriteFileSafe(filepath.Join(dir, r.opts.TechnicalFile), techData)
	if err != nil {
		return err
	}
	run.ExportPath, err = source.WriteFileSafe(filepath.Join(dir, r.opts.ExportFile), exportData)
	if err != nil {
		os.Remove(run.TechnicalPath)
		run.TechnicalPath = ""
		return err
	}
	return nil
}

// competencia is the first employee's period label, else the configured one.
func competencia(res *vr.Result, rules vr.Rules) string {
	if len(res.Employees) > 0 {
		return res.Employees[0].Competencia
	}
	return rules.PeriodLabel
}
