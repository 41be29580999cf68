/*
Package factory provides YAML/JSON to Go export layout conversion.

PURPOSE:
  Converts declarative export layouts into a Layout that projects technical
  records into the fixed-schema spreadsheet payroll consumes. Payroll can
  rename, reorder or default a column without a code change.

SCHEMA (YAML shown, JSON accepted with the same keys):
  export_columns: [Matricula, Admissão, ..., OBS GERAL]
  mapping:
    Matricula:  {from: MATRICULA}
    Admissão:   {from: ADMISSAO, format: date}
    OBS GERAL:  {default: ""}

RULES:
  - A target copies its "from" technical column when that column exists,
    else it takes "default" (empty when unset)
  - format "date" renders dd/mm/yyyy, empty when there is no date
  - UNNAMED placeholder columns are rejected, never emitted

USAGE:
  f := factory.NewLayoutFactory()
  layout, err := f.Load("layout.yaml")   // or factory.DefaultLayout()
  export, err := layout.Project(result.Technical)

SEE ALSO:
  - vr/projection.go: Technical record and column names
  - source/writer.go: Writes the projected table
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// FieldMapping says where one export column comes from.
type FieldMapping struct {
	From    string `json:"from,omitempty" yaml:"from,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"`
}

// FormatDate renders an ISO technical date as dd/mm/yyyy.
const FormatDate = "date"

// Layout is an ordered export schema.
type Layout struct {
	Columns []string                `json:"export_columns" yaml:"export_columns"`
	Mapping map[string]FieldMapping `json:"mapping" yaml:"mapping"`
}

// ExportTable is a projected table ready to be written.
type ExportTable struct {
	Header []string
	Rows   [][]string
}

// Canonical export headers.
const (
	ColMatricula   = "Matricula"
	ColAdmissao    = "Admissão"
	ColSindicato   = "Sindicato do Colaborador"
	ColCompetencia = "Competência"
	ColDias        = "Dias"
	ColValorDiario = "VALOR DIÁRIO VR"
	ColTotal       = "TOTAL"
	ColCusto       = "Custo empresa"
	ColDesconto    = "Desconto profissional"
	ColObs         = "OBS GERAL"
)

// DefaultLayout is the canonical export consumed by payroll.
func DefaultLayout() *Layout {
	return &Layout{
		Columns: []string{
			ColMatricula, ColAdmissao, ColSindicato, ColCompetencia, ColDias,
			ColValorDiario, ColTotal, ColCusto, ColDesconto, ColObs,
		},
		Mapping: map[string]FieldMapping{
			ColMatricula:   {From: vr.TechMatricula},
			ColAdmissao:    {From: vr.TechAdmissao, Format: FormatDate},
			ColSindicato:   {From: vr.TechSindicato},
			ColCompetencia: {From: vr.TechCompetencia},
			ColDias:        {From: vr.TechDiasElegiv},
			ColValorDiario: {From: vr.TechValorUnit},
			ColTotal:       {From: vr.TechVRColab},
			ColCusto:       {From: vr.TechVREmpresa},
			ColDesconto:    {From: vr.TechVRProf},
			ColObs:         {Default: ""},
		},
	}
}

// =============================================================================
// FACTORY
// =============================================================================

// LayoutFactory parses layout definitions.
type LayoutFactory struct{}

// NewLayoutFactory creates a new layout factory.
func NewLayoutFactory() *LayoutFactory {
	return &LayoutFactory{}
}

// Load reads a layout file. An empty path yields the default layout.
func (f *LayoutFactory) Load(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	return f.Parse(data)
}

// Parse accepts JSON (a document starting with '{') or YAML.
func (f *LayoutFactory) Parse(data []byte) (*Layout, error) {
	var l Layout
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &l); err != nil {
			return nil, fmt.Errorf("invalid layout JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &l); err != nil {
			return nil, fmt.Errorf("invalid layout YAML: %w", err)
		}
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// ToYAML renders the layout in the same schema Parse reads.
func (f *LayoutFactory) ToYAML(l *Layout) ([]byte, error) {
	return yaml.Marshal(l)
}

// Validate rejects empty, duplicate and placeholder columns.
func (l *Layout) Validate() error {
	if len(l.Columns) == 0 {
		return &generic.ConfigError{Field: "export_columns", Value: "", Hint: "at least one column is required"}
	}
	seen := make(map[string]bool, len(l.Columns))
	for _, col := range l.Columns {
		if col == "" || generic.IsUnnamed(col) {
			return fmt.Errorf("%w: target %q", generic.ErrUnnamedColumn, col)
		}
		if seen[col] {
			return &generic.ConfigError{Field: "export_columns", Value: col, Hint: "duplicate column"}
		}
		seen[col] = true
		if m, ok := l.Mapping[col]; ok && generic.IsUnnamed(m.From) {
			return fmt.Errorf("%w: %q reads from %q", generic.ErrUnnamedColumn, col, m.From)
		}
		if m, ok := l.Mapping[col]; ok && m.Format != "" && m.Format != FormatDate {
			return &generic.ConfigError{Field: "mapping." + col + ".format", Value: m.Format, Hint: "only \"date\" is supported"}
		}
	}
	return nil
}

// =============================================================================
// PROJECTION
// =============================================================================

// Project maps technical records into the layout, in record order.
func (l *Layout) Project(records []vr.TechnicalRecord) (*ExportTable, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	out := &ExportTable{Header: append([]string(nil), l.Columns...)}
	for _, rec := range records {
		values := rec.Values()
		row := make([]string, len(l.Columns))
		for i, col := range l.Columns {
			row[i] = l.cell(col, values)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (l *Layout) cell(col string, values map[string]string) string {
	m := l.Mapping[col]
	v, ok := values[m.From]
	if m.From == "" || !ok {
		return m.Default
	}
	if m.Format == FormatDate {
		d, ok := generic.ParseDate(v)
		if !ok {
			return ""
		}
		return d.BR()
	}
	return v
}
