package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// ReadTable loads a CSV file into a Table. The first record is the header.
func ReadTable(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read table: %w", err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("table %s has no header", path)
	}

	return Table{Columns: records[0], Rows: records[1:]}, nil
}

// writeTable persists a table as CSV via a temp file and rename, so readers
// never observe a partially written file.
func writeTable(t Table, path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create table tmp: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Columns); err != nil {
		file.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush table: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close table tmp: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename table: %w", err)
	}
	return nil
}
