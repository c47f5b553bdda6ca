package encoding

import (
	"encoding/csv"
	"fmt"
	"os"
)

// utf8BOM is written ahead of CSV content when spreadsheet tools need to
// detect UTF-8 (Excel misreads CJK text without it).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a header row followed by records to path.
func WriteCSV(path string, header []string, records [][]string) error {
	return writeCSV(path, header, records, false)
}

// WriteCSVWithBOM writes CSV content prefixed with a UTF-8 byte order mark.
func WriteCSVWithBOM(path string, header []string, records [][]string) error {
	return writeCSV(path, header, records, true)
}

func writeCSV(path string, header []string, records [][]string, bom bool) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if bom {
		if _, err := f.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM to %s: %w", path, err)
		}
	}

	w := csv.NewWriter(f)

	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header to %s: %w", path, err)
		}
	}

	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record to %s: %w", path, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV to %s: %w", path, err)
	}

	return f.Close()
}
