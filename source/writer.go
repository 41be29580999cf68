package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/warp/vr-engine/factory"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
)

// AlternatePath returns <stem>_NEW<ext> next to path.
func AlternatePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_NEW" + ext
}

// WriteFileSafe writes data to path. When path can't be written (locked,
// read-only, a directory) it writes to AlternatePath instead and returns
// that path. Only when both fail is the result a WriteConflictError.
func WriteFileSafe(path string, data []byte) (string, error) {
	if err := os.WriteFile(path, data, 0o644); err == nil {
		return path, nil
	}
	alt := AlternatePath(path)
	if err := os.WriteFile(alt, data, 0o644); err != nil {
		return "", &generic.WriteConflictError{Path: path, Alternate: alt, Err: err}
	}
	return alt, nil
}

// EncodeTechnical renders technical records as CSV with the technical
// column names as header.
func EncodeTechnical(records []vr.TechnicalRecord) ([]byte, error) {
	if len(records) == 0 {
		return []byte(strings.Join(vr.TechnicalColumns, ",") + "\n"), nil
	}
	data, err := gocsv.MarshalBytes(records)
	if err != nil {
		return nil, fmt.Errorf("encode technical table: %w", err)
	}
	return data, nil
}

// EncodeExport writes a projected export table as CSV.
func EncodeExport(w io.Writer, t *factory.ExportTable) error {
	cw := gocsv.DefaultCSVWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeExportBytes renders a projected export table as CSV bytes.
func EncodeExportBytes(t *factory.ExportTable) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeExport(&buf, t); err != nil {
		return nil, fmt.Errorf("encode export table: %w", err)
	}
	return buf.Bytes(), nil
}
