package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestInsertAndListScans(t *testing.T) {
	d := openTestDB(t)

	id, err := d.InsertScan(96, 3, 2, 150.5, 1200)
	if err != nil {
		t.Fatalf("InsertScan: %v", err)
	}
	if id <= 0 {
		t.Errorf("id = %d, want > 0", id)
	}
	if _, err := d.InsertScan(32, 1, 0, 40, 800); err != nil {
		t.Fatalf("InsertScan: %v", err)
	}

	scans, err := d.RecentScans(10)
	if err != nil {
		t.Fatalf("RecentScans: %v", err)
	}
	if len(scans) != 2 {
		t.Fatalf("len = %d, want 2", len(scans))
	}
	// Newest first.
	if scans[0].ShipSCU != 32 || scans[1].ShipSCU != 96 {
		t.Errorf("order = %+v", scans)
	}
	if scans[1].LegalCount != 3 || scans[1].IllegalCount != 2 || scans[1].TopROI != 150.5 {
		t.Errorf("scans[1] = %+v", scans[1])
	}
}

func TestRecentScans_Limit(t *testing.T) {
	d := openTestDB(t)
	for i := 0; i < 5; i++ {
		if _, err := d.InsertScan(float64(i+1), 0, 0, 0, 0); err != nil {
			t.Fatalf("InsertScan: %v", err)
		}
	}

	scans, err := d.RecentScans(3)
	if err != nil {
		t.Fatalf("RecentScans: %v", err)
	}
	if len(scans) != 3 {
		t.Errorf("len = %d, want 3", len(scans))
	}
}
