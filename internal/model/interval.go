package model

import (
	"time"

	"github.com/google/uuid"
)

// Interval is a half-open time range [Start, End) within one day.
// Invariant: Start < End.
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Overlaps reports whether two half-open intervals share any time.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Adjacent reports whether o starts exactly where i ends, or vice versa.
func (i Interval) Adjacent(o Interval) bool {
	return i.End == o.Start || o.End == i.Start
}

// Covers reports whether i entirely contains o.
func (i Interval) Covers(o Interval) bool {
	return i.Start <= o.Start && o.End <= i.End
}

// Minutes returns the interval length.
func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

// IntervalSet is an ordered sequence of non-overlapping, non-adjacent
// intervals for one day, sorted ascending by start. Construct and mutate it
// through the schedule package so the invariant holds.
type IntervalSet []Interval

// WeeklyAvailability maps each weekday to a normalized IntervalSet. A missing
// day means no availability that day.
type WeeklyAvailability map[DayOfWeek]IntervalSet

// AvailabilityInterval is one stored availability window, the persisted form
// of a member of a WeeklyAvailability.
type AvailabilityInterval struct {
	ID        int64     `json:"id"`
	Person    PersonRef `json:"person"`
	Day       DayOfWeek `json:"day_of_week"`
	Interval  Interval  `json:"interval"`
	Revision  uuid.UUID `json:"revision"` // identifies the batch replace that wrote it
	CreatedAt time.Time `json:"created_at"`
}
