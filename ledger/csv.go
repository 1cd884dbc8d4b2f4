package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// AppendCSV appends rec to the ledger at path, writing the header first when the file
// is new or empty.
func AppendCSV(path string, rec Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("AppendCSV: mkdir: %w", err)
	}

	needHeader := false
	st, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		needHeader = true
	case err != nil:
		return fmt.Errorf("AppendCSV: stat: %w", err)
	case st.Size() == 0:
		needHeader = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("AppendCSV: open: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("AppendCSV: header: %w", err)
		}
	}
	if err := w.Write(rec.csvRow()); err != nil {
		return fmt.Errorf("AppendCSV: row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("AppendCSV: flush: %w", err)
	}
	return f.Close()
}
