package schedule

import (
	"fmt"
	"sort"

	"github.com/schedulai/scheduler/internal/model"
)

// The editing grid covers 08:00-21:00 in 30-minute buckets, matching the
// weekly availability editor.
const (
	GridStartHour = 8
	GridEndHour   = 21
	BucketMinutes = 30
)

// GridBuckets returns the start time of every selectable bucket in order.
func GridBuckets() []model.TimeOfDay {
	var buckets []model.TimeOfDay
	for m := GridStartHour * 60; m < GridEndHour*60; m += BucketMinutes {
		buckets = append(buckets, model.TimeOfDay(m))
	}
	return buckets
}

func bucketAligned(t model.TimeOfDay) bool {
	return int(t)%BucketMinutes == 0 &&
		t >= model.TimeOfDay(GridStartHour*60) &&
		t < model.TimeOfDay(GridEndHour*60)
}

// GridToIntervals run-length-encodes a set of selected bucket start times
// into a normalized IntervalSet. Contiguous buckets collapse into one
// interval; gaps start a new one. Buckets outside the grid or off the
// 30-minute boundary are rejected.
func GridToIntervals(selected []model.TimeOfDay) (model.IntervalSet, error) {
	if len(selected) == 0 {
		return model.IntervalSet{}, nil
	}

	buckets := make([]model.TimeOfDay, 0, len(selected))
	seen := make(map[model.TimeOfDay]bool, len(selected))
	for _, b := range selected {
		if !bucketAligned(b) {
			return nil, fmt.Errorf("%w: %s is not a grid bucket", ErrValidation, b)
		}
		if !seen[b] {
			seen[b] = true
			buckets = append(buckets, b)
		}
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })

	out := model.IntervalSet{}
	runStart := buckets[0]
	prev := buckets[0]
	for _, b := range buckets[1:] {
		if b == prev.Add(BucketMinutes) {
			prev = b
			continue
		}
		out = append(out, model.Interval{Start: runStart, End: prev.Add(BucketMinutes)})
		runStart, prev = b, b
	}
	out = append(out, model.Interval{Start: runStart, End: prev.Add(BucketMinutes)})
	return out, nil
}

// IntervalsToGrid marks every bucket whose full [start, start+30m) range lies
// inside some member interval. Intervals whose boundaries are off the bucket
// grid (entered via explicit start/end editing) are effectively clamped: the
// partially covered edge buckets stay unselected.
func IntervalsToGrid(set model.IntervalSet) map[model.TimeOfDay]bool {
	grid := make(map[model.TimeOfDay]bool)
	for _, b := range GridBuckets() {
		bucket := model.Interval{Start: b, End: b.Add(BucketMinutes)}
		if ContainsFully(set, bucket) {
			grid[b] = true
		}
	}
	return grid
}

// SelectedBuckets flattens a selection map back to ordered bucket starts.
func SelectedBuckets(grid map[model.TimeOfDay]bool) []model.TimeOfDay {
	var out []model.TimeOfDay
	for _, b := range GridBuckets() {
		if grid[b] {
			out = append(out, b)
		}
	}
	return out
}
