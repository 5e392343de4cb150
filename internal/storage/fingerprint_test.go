package storage

import (
	"testing"
)

func sampleTable() Table {
	return Table{
		Columns: []string{"page", "base", "volume_usd"},
		Rows: [][]string{
			{"1", "WETH", "1000"},
			{"1", "USDC", "500"},
		},
	}
}

func TestFingerprintStable(t *testing.T) {
	first, err := Fingerprint(sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Fingerprint(sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("fingerprint not stable: %s != %s", first, second)
	}
}

func TestFingerprintChangesOnCellChange(t *testing.T) {
	base, err := Fingerprint(sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed := sampleTable()
	changed.Rows[1][2] = "501"
	got, err := Fingerprint(changed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == base {
		t.Fatalf("fingerprint unchanged after cell edit")
	}
}

func TestFingerprintColumnOrderIndependent(t *testing.T) {
	base, err := Fingerprint(sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reordered := Table{
		Columns: []string{"volume_usd", "page", "base"},
		Rows: [][]string{
			{"1000", "1", "WETH"},
			{"500", "1", "USDC"},
		},
	}
	got, err := Fingerprint(reordered)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != base {
		t.Fatalf("fingerprint depends on column order: %s != %s", got, base)
	}
}

func TestFingerprintRowOrderSensitive(t *testing.T) {
	base, err := Fingerprint(sampleTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	swapped := sampleTable()
	swapped.Rows[0], swapped.Rows[1] = swapped.Rows[1], swapped.Rows[0]
	got, err := Fingerprint(swapped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == base {
		t.Fatalf("fingerprint ignores row order")
	}
}

func TestFingerprintEmptyTable(t *testing.T) {
	got, err := Fingerprint(Table{Columns: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != EmptyFingerprint {
		t.Fatalf("empty table fingerprint = %q, want sentinel", got)
	}
}

func TestFingerprintRaggedRow(t *testing.T) {
	bad := sampleTable()
	bad.Rows[0] = []string{"1", "WETH"}
	if _, err := Fingerprint(bad); err == nil {
		t.Fatalf("expected error for ragged row")
	}
}
