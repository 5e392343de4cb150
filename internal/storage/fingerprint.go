package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"sort"
)

// EmptyFingerprint is the sentinel returned for a zero-row table.
const EmptyFingerprint = ""

// Fingerprint computes a stable content hash of a table. Columns are sorted
// alphabetically before serialization so the hash is independent of column
// order; rows keep their original order. The serialized form uses the same
// cell rendering as the persisted CSV, so byte-identical output files always
// share a fingerprint.
func Fingerprint(t Table) (string, error) {
	if t.Empty() {
		return EmptyFingerprint, nil
	}

	order := make([]int, len(t.Columns))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return t.Columns[order[i]] < t.Columns[order[j]]
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(order))
	for i, col := range order {
		header[i] = t.Columns[col]
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("serialize header: %w", err)
	}

	record := make([]string, len(order))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return "", fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
		for j, col := range order {
			record[j] = row[col]
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("serialize row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("serialize table: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
