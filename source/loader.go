package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/logger"
	"github.com/warp/vr-engine/vr"
)

// roleRule maps a file-name fragment to a role. Fragments are matched
// against the folded file stem with underscores turned into spaces.
type roleRule struct {
	fragments []string // all must be present
	role      vr.Role
}

// roleRules are checked in order; admission comes first because admission
// files are named after the month, which may collide with anything.
var roleRules = []roleRule{
	{[]string{"ADMISS"}, vr.RoleAdmission},
	{[]string{"ATIVOS"}, vr.RoleRoster},
	{[]string{"APRENDIZ"}, vr.RoleApprentice},
	{[]string{"ESTAGIO"}, vr.RoleIntern},
	{[]string{"EXTERIOR"}, vr.RoleExpatriate},
	{[]string{"AFASTAMENTO"}, vr.RoleAbsence},
	{[]string{"SINDICATO", "VALOR"}, vr.RoleRate},
	{[]string{"DIAS UTEIS"}, vr.RoleCalendar},
	{[]string{"FERIAS"}, vr.RoleVacation},
	{[]string{"DESLIGADO"}, vr.RoleTermination},
}

// RoleFor infers a role from a file name ("Base sindicato x valor_FORM_OK.csv",
// "ADMISSÃO ABRIL.csv"). ok is false for files that play no role.
func RoleFor(filename string) (vr.Role, bool) {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	key := strings.ReplaceAll(generic.Fold(stem), "_", " ")
	for _, rule := range roleRules {
		if containsAll(key, rule.fragments) {
			return rule.role, true
		}
	}
	return "", false
}

func containsAll(s string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}

// LoadDir reads every CSV in dir and tags it by file name. Files that match
// no role are skipped. A second file for a single-table role is skipped too;
// admission files accumulate. Missing files are simply absent sources.
func LoadDir(dir string, log *logger.Logger) ([]vr.Source, error) {
	if log == nil {
		log = logger.Nop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var sources []vr.Source
	taken := map[vr.Role]string{}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		role, ok := RoleFor(entry.Name())
		if !ok {
			log.Debug().Str("file", entry.Name()).Msg("no role for file, skipped")
			continue
		}
		if prev, dup := taken[role]; dup && role != vr.RoleAdmission {
			log.Warn().Str("file", entry.Name()).Str("kept", prev).Str("role", string(role)).Msg("duplicate source, skipped")
			continue
		}

		table, err := ReadCSV(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		taken[role] = entry.Name()

		event := log.Info()
		if table.Empty() {
			event = log.Warn()
		}
		event.
			Str("file", entry.Name()).
			Str("role", string(role)).
			Int("rows", table.Len()).
			Strs("columns", table.Columns).
			Msg("source loaded")

		sources = append(sources, vr.Source{Name: table.Name, Role: role, Table: table})
	}
	return sources, nil
}
