// internal/syncer/windows.go
package syncer

import (
	"errors"
	"fmt"
	"time"

	"github-handler/internal/model"
)

// Default historical boundaries. Before the threshold the platform is sparse enough
// for coarse windows; after it, daily windows keep each search under the result cap.
const (
	DefaultStartDate     = "2011-01-01"
	DefaultEndDate       = "2025-04-01"
	DefaultThresholdDate = "2015-01-01"
	DefaultCoarseDays    = 60
	DefaultFineDays      = 1
)

// Partition divides [Start, End) into sync windows.
type Partition struct {
	Start      time.Time
	End        time.Time
	Threshold  time.Time
	CoarseDays int
	FineDays   int
}

// DefaultPartition returns the 2011-01-01..2025-04-01 partition with a 2015-01-01 threshold.
func DefaultPartition() Partition {
	p, err := ParsePartition(DefaultStartDate, DefaultEndDate, DefaultThresholdDate, DefaultCoarseDays, DefaultFineDays)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePartition builds a Partition from YYYY-MM-DD boundaries.
func ParsePartition(start, end, threshold string, coarseDays, fineDays int) (Partition, error) {
	var p Partition
	var err error
	if p.Start, err = time.Parse(model.DateLayout, start); err != nil {
		return Partition{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	if p.End, err = time.Parse(model.DateLayout, end); err != nil {
		return Partition{}, fmt.Errorf("parse end date %q: %w", end, err)
	}
	if p.Threshold, err = time.Parse(model.DateLayout, threshold); err != nil {
		return Partition{}, fmt.Errorf("parse threshold date %q: %w", threshold, err)
	}
	p.CoarseDays, p.FineDays = coarseDays, fineDays
	return p, p.Validate()
}

// Validate checks that the partition describes a non-empty range with positive window sizes.
func (p Partition) Validate() error {
	if !p.End.After(p.Start) {
		return errors.New("sync end date must be after start date")
	}
	if p.CoarseDays <= 0 || p.FineDays <= 0 {
		return errors.New("sync window sizes must be positive")
	}
	return nil
}

// nextEnd returns the end of the window starting at start, clamped to p.End.
func (p Partition) nextEnd(start time.Time) time.Time {
	days := p.FineDays
	if start.Before(p.Threshold) {
		days = p.CoarseDays
	}
	next := start.AddDate(0, 0, days)
	if next.After(p.End) {
		return p.End
	}
	return next
}

// Windows returns the contiguous, non-overlapping windows covering [Start, End) in order.
func (p Partition) Windows() []model.Window {
	var windows []model.Window
	for start := p.Start; start.Before(p.End); {
		next := p.nextEnd(start)
		windows = append(windows, model.Window{Start: start, End: next})
		start = next
	}
	return windows
}
