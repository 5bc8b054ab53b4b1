package db

import (
	"time"
)

// ScanRecord is one summarized recommendation request.
type ScanRecord struct {
	ID           int64   `json:"id"`
	Timestamp    string  `json:"timestamp"`
	ShipSCU      float64 `json:"shipScu"`
	LegalCount   int     `json:"legalCount"`
	IllegalCount int     `json:"illegalCount"`
	TopROI       float64 `json:"topRoi"`
	DurationMs   int64   `json:"durationMs"`
}

// InsertScan records one completed recommendation request.
func (d *DB) InsertScan(shipSCU float64, legalCount, illegalCount int, topROI float64, durationMs int64) (int64, error) {
	res, err := d.sql.Exec(
		`INSERT INTO scan_history (timestamp, ship_scu, legal_count, illegal_count, top_roi, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), shipSCU, legalCount, illegalCount, topROI, durationMs,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentScans returns the newest limit scan summaries, newest first.
func (d *DB) RecentScans(limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.Query(
		`SELECT id, timestamp, ship_scu, legal_count, illegal_count, top_roi, duration_ms
		 FROM scan_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var r ScanRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.ShipSCU, &r.LegalCount, &r.IllegalCount, &r.TopROI, &r.DurationMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
