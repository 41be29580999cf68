/*
Package source is the file boundary of the engine.

PURPOSE:
  Reads the header-normalized CSV exports of the monthly spreadsheets into
  generic.Table values, tags them with a role by file name, and writes the
  technical and export tables back out. The engine itself never touches
  the filesystem.

KEY CONCEPTS:
  - ReadCSV: one file -> one table (UNNAMED columns dropped)
  - LoadDir: a directory -> role-tagged sources, admission files 0..n
  - WriteFileSafe: write, or fall back to <stem>_NEW<ext> when the target
    is held by another process

SEE ALSO:
  - vr/types.go: Source and Role
  - factory/layout.go: Export projection
*/
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/warp/vr-engine/generic"
)

const bom = "\ufeff"

// ReadCSV reads one CSV file into a table named after the file stem.
func ReadCSV(path string) (*generic.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadCSVFrom(name, f)
}

// ReadCSVFrom reads CSV text into a table. The first record is the header.
// Quotes are parsed lazily and ragged rows are accepted, as spreadsheet
// exports often have both.
func ReadCSVFrom(name string, r io.Reader) (*generic.Table, error) {
	reader := gocsv.LazyCSVReader(r)
	if cr, ok := reader.(*csv.Reader); ok {
		cr.FieldsPerRecord = -1
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return generic.NewTable(name, nil, nil), nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	return generic.NewTable(name, header, records[1:]), nil
}
