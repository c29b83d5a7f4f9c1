// Package results persists the outcome of a run as a JSON report and,
// optionally, as a row in PostgreSQL.
package results

import (
	"encoding/json"
	"os"
	"time"

	"main/internal/obs"
	"main/internal/pnl"
)

// RunResult is the record written per completed run.
type RunResult struct {
	ID         uint64    `json:"-" gorm:"primaryKey;autoIncrement"`
	RunAt      time.Time `json:"runAt"`
	JournalDir string    `json:"journalDir"`
	Strategy   string    `json:"strategy"`
	Options    string    `json:"options"`

	OrdersPlaced   int     `json:"ordersPlaced"`
	FillCount      int     `json:"fillCount"`
	SharesTraded   int64   `json:"sharesTraded"`
	OpenOrderCount int     `json:"openOrderCount"`
	SharesHeld     int64   `json:"sharesHeld"`
	AvgFillPrice   float64 `json:"avgFillPrice"`
	MaxDrawdown    float64 `json:"maxDrawdown"`
	TotalPnL       float64 `json:"totalPnl"`

	EventCount uint64 `json:"eventCount"`
	QueueDrops uint64 `json:"queueDrops"`

	DurationMillis int64 `json:"durationMillis"`
}

// Build assembles a run result from the report and metrics snapshot.
func Build(journalDir, strategyName, options string, report pnl.Report, snap obs.Snapshot, duration time.Duration) RunResult {
	var eventCount uint64
	for _, v := range snap.EventCounts {
		eventCount += v
	}
	return RunResult{
		RunAt:          time.Now().UTC(),
		JournalDir:     journalDir,
		Strategy:       strategyName,
		Options:        options,
		OrdersPlaced:   report.OrdersPlaced,
		FillCount:      report.FillCount,
		SharesTraded:   report.SharesTraded,
		OpenOrderCount: report.OpenOrderCount,
		SharesHeld:     report.SharesHeld,
		AvgFillPrice:   report.AvgFillPrice,
		MaxDrawdown:    report.MaxDrawdown,
		TotalPnL:       report.TotalPnL,
		EventCount:     eventCount,
		QueueDrops:     snap.QueueDrops,
		DurationMillis: duration.Milliseconds(),
	}
}

// WriteFile serializes the result as indented JSON.
func WriteFile(path string, result RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
