package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Outcome reports what SaveIfChanged did with a table.
type Outcome int

const (
	// Skipped means the table was empty and nothing was written.
	Skipped Outcome = iota
	// Unchanged means the stored fingerprint matched and nothing was written.
	Unchanged
	// Changed means the table and its fingerprint were written.
	Changed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// SaveIfChanged persists the table to path only when its fingerprint differs
// from the one stored in the sidecar at hashPath. A missing or unreadable
// sidecar counts as no prior fingerprint, not a fatal error.
func SaveIfChanged(t Table, path, hashPath string) (Outcome, error) {
	if t.Empty() {
		return Skipped, nil
	}

	fingerprint, err := Fingerprint(t)
	if err != nil {
		return Skipped, fmt.Errorf("fingerprint table: %w", err)
	}

	if stored, ok := readFingerprint(path, hashPath); ok && stored == fingerprint {
		return Unchanged, nil
	}

	if err := writeTable(t, path); err != nil {
		return Skipped, err
	}
	if err := writeFingerprint(fingerprint, hashPath); err != nil {
		return Skipped, err
	}
	return Changed, nil
}

// readFingerprint returns the stored fingerprint only when both the data file
// and the sidecar exist and the sidecar is readable.
func readFingerprint(path, hashPath string) (string, bool) {
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	data, err := os.ReadFile(hashPath)
	if err != nil {
		return "", false
	}
	stored := strings.TrimSpace(string(data))
	if stored == "" {
		return "", false
	}
	return stored, true
}

func writeFingerprint(fingerprint, hashPath string) error {
	dir := filepath.Dir(hashPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sidecar dir: %w", err)
		}
	}
	tmpPath := hashPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(fingerprint+"\n"), 0o644); err != nil {
		return fmt.Errorf("write sidecar tmp: %w", err)
	}
	if err := os.Rename(tmpPath, hashPath); err != nil {
		return fmt.Errorf("rename sidecar: %w", err)
	}
	return nil
}
