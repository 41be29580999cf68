package vr

// =============================================================================
// TECHNICAL PROJECTION
// =============================================================================

// Technical column names, in output order.
const (
	TechMatricula    = "MATRICULA"
	TechEmpresa      = "EMPRESA"
	TechSindicato    = "SINDICATO"
	TechUF           = "UF_BASE"
	TechDiasUteis    = "DIAS_UTEIS"
	TechDiasFerias   = "DIAS_DE_FERIAS"
	TechDiasElegiv   = "DIAS_ELEGIVEIS"
	TechValorUnit    = "VALOR_UNITARIO"
	TechVRColab      = "VR_COLAB"
	TechVREmpresa    = "VR_EMPRESA"
	TechVRProf       = "VR_PROFISSIONAL"
	TechDesligamento = "DATA_DESLIGAMENTO"
	TechRegra        = "REGRA_DESLIGADOS_APLICADA"
	TechAdmissao     = "ADMISSAO"
	TechCompetencia  = "COMPETENCIA"
)

// TechnicalColumns lists every technical column in output order.
var TechnicalColumns = []string{
	TechMatricula, TechEmpresa, TechSindicato, TechUF, TechDiasUteis,
	TechDiasFerias, TechDiasElegiv, TechValorUnit, TechVRColab, TechVREmpresa,
	TechVRProf, TechDesligamento, TechRegra, TechAdmissao, TechCompetencia,
}

// TechnicalRecord is the audit-grade rendering of an Employee: every derived
// column as text. Dates are ISO (empty when absent), money has two places.
type TechnicalRecord struct {
	Matricula    string `csv:"MATRICULA" db:"matricula" json:"matricula"`
	Empresa      string `csv:"EMPRESA" db:"empresa" json:"empresa"`
	Sindicato    string `csv:"SINDICATO" db:"sindicato" json:"sindicato"`
	UF           string `csv:"UF_BASE" db:"uf" json:"uf"`
	WorkingDays  string `csv:"DIAS_UTEIS" db:"working_days" json:"working_days"`
	VacationDays string `csv:"DIAS_DE_FERIAS" db:"vacation_days" json:"vacation_days"`
	EligibleDays string `csv:"DIAS_ELEGIVEIS" db:"eligible_days" json:"eligible_days"`
	DailyRate    string `csv:"VALOR_UNITARIO" db:"daily_rate" json:"daily_rate"`
	Gross        string `csv:"VR_COLAB" db:"gross" json:"gross"`
	Employer     string `csv:"VR_EMPRESA" db:"employer_share" json:"employer_share"`
	Employee     string `csv:"VR_PROFISSIONAL" db:"employee_share" json:"employee_share"`
	Termination  string `csv:"DATA_DESLIGAMENTO" db:"termination" json:"termination"`
	Rule         string `csv:"REGRA_DESLIGADOS_APLICADA" db:"rule" json:"rule"`
	Admission    string `csv:"ADMISSAO" db:"admission" json:"admission"`
	Competencia  string `csv:"COMPETENCIA" db:"competencia" json:"competencia"`
}

// Technical renders the table. Output order follows the table.
func Technical(t Table) []TechnicalRecord {
	out := make([]TechnicalRecord, 0, len(t))
	for _, e := range t {
		out = append(out, TechnicalRecord{
			Matricula:    e.Matricula,
			Empresa:      e.Empresa,
			Sindicato:    e.Sindicato,
			UF:           e.UF,
			WorkingDays:  e.WorkingDays.String(),
			VacationDays: e.VacationDays.String(),
			EligibleDays: e.EligibleDays.String(),
			DailyRate:    e.DailyRate.StringFixed(2),
			Gross:        e.Gross.StringFixed(2),
			Employer:     e.EmployerShare.StringFixed(2),
			Employee:     e.EmployeeShare.StringFixed(2),
			Termination:  e.Termination.String(),
			Rule:         string(e.Rule),
			Admission:    e.Admission.String(),
			Competencia:  e.Competencia,
		})
	}
	return out
}

// Values returns the record keyed by technical column name.
func (r TechnicalRecord) Values() map[string]string {
	return map[string]string{
		TechMatricula:    r.Matricula,
		TechEmpresa:      r.Empresa,
		TechSindicato:    r.Sindicato,
		TechUF:           r.UF,
		TechDiasUteis:    r.WorkingDays,
		TechDiasFerias:   r.VacationDays,
		TechDiasElegiv:   r.EligibleDays,
		TechValorUnit:    r.DailyRate,
		TechVRColab:      r.Gross,
		TechVREmpresa:    r.Employer,
		TechVRProf:       r.Employee,
		TechDesligamento: r.Termination,
		TechRegra:        r.Rule,
		TechAdmissao:     r.Admission,
		TechCompetencia:  r.Competencia,
	}
}
