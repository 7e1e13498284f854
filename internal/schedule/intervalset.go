package schedule

import (
	"fmt"
	"sort"

	"github.com/schedulai/scheduler/internal/model"
)

// ValidateInterval checks the Start < End invariant and day bounds.
func ValidateInterval(iv model.Interval) error {
	if iv.Start >= iv.End {
		return fmt.Errorf("%w: %s-%s", ErrInvalidInterval, iv.Start, iv.End)
	}
	if iv.Start < 0 || iv.End > model.MinutesPerDay {
		return fmt.Errorf("%w: %s-%s outside day bounds", ErrInvalidInterval, iv.Start, iv.End)
	}
	return nil
}

// Normalize sorts the set and merges overlapping or adjacent intervals.
// Idempotent: Normalize(Normalize(s)) == Normalize(s). The input is not
// modified.
func Normalize(set model.IntervalSet) model.IntervalSet {
	if len(set) == 0 {
		return model.IntervalSet{}
	}

	sorted := make(model.IntervalSet, len(set))
	copy(sorted, set)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := model.IntervalSet{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		// Merge on overlap or exact adjacency.
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Insert adds an interval to the set and re-merges in one pass. Fails with
// ErrInvalidInterval when the interval is malformed.
func Insert(set model.IntervalSet, iv model.Interval) (model.IntervalSet, error) {
	if err := ValidateInterval(iv); err != nil {
		return nil, err
	}
	return Normalize(append(append(model.IntervalSet{}, set...), iv)), nil
}

// ContainsFully reports whether a single member interval covers iv entirely.
// Partial coverage across two separate members is not sufficient, even when
// their union covers iv; availability windows are only usable one at a time.
func ContainsFully(set model.IntervalSet, iv model.Interval) bool {
	for _, member := range set {
		if member.Covers(iv) {
			return true
		}
		if member.Start > iv.Start {
			break // sorted, no later member can start early enough
		}
	}
	return false
}

// Intersect computes all pairwise overlaps of two normalized sets with a
// two-pointer sweep, O(|a|+|b|). The result is normalized by construction.
func Intersect(a, b model.IntervalSet) model.IntervalSet {
	out := model.IntervalSet{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start > start {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End < end {
			end = b[j].End
		}
		if start < end {
			out = append(out, model.Interval{Start: start, End: end})
		}
		// Advance whichever interval ends first.
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}

// NormalizeWeek normalizes every day of a weekly availability, validating
// each interval. Returns ErrValidation wrapping the first malformed entry so
// a batch replace can reject the whole payload up front.
func NormalizeWeek(week model.WeeklyAvailability) (model.WeeklyAvailability, error) {
	out := make(model.WeeklyAvailability, len(week))
	for day, set := range week {
		if !day.Valid() {
			return nil, fmt.Errorf("%w: invalid day %d", ErrValidation, int(day))
		}
		for _, iv := range set {
			if err := ValidateInterval(iv); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrValidation, day, err)
			}
		}
		out[day] = Normalize(set)
	}
	return out, nil
}
