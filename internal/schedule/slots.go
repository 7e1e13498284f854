package schedule

import (
	"fmt"
	"time"

	"github.com/schedulai/scheduler/internal/model"
)

// CommonFreeTime intersects two people's availability for one weekday.
// Inputs are assumed normalized; a missing day yields an empty set.
func CommonFreeTime(a, b model.WeeklyAvailability, day model.DayOfWeek) model.IntervalSet {
	return Intersect(a[day], b[day])
}

// DateRange is an inclusive range of calendar dates. Only the date parts of
// From and To are significant.
type DateRange struct {
	From time.Time
	To   time.Time
}

// CandidateSlot is a concrete dated time range proposed for booking.
// Fragment is the common free-time window the slot was cut from; the slack
// between slot and fragment lets callers rank candidates deterministically.
type CandidateSlot struct {
	Day      model.DayOfWeek
	Start    time.Time
	End      time.Time
	Fragment model.Interval
}

// EachCandidate walks candidate slots in deterministic order (date, then
// start time) and calls yield for each. Returning false from yield stops the
// walk; the sequence is finite and restartable by calling again.
//
// For each date in the range the two weeks are intersected, fragments shorter
// than the duration are discarded, and each remaining fragment of length L
// yields floor(L/duration) back-to-back candidates aligned to the fragment
// start. Candidates overlapping a blocking lesson of either person are
// dropped; availability containment holds by construction.
func EachCandidate(
	availA, availB model.WeeklyAvailability,
	durationMinutes int,
	dates DateRange,
	lessonsA, lessonsB []model.Lesson,
	yield func(CandidateSlot) bool,
) error {
	if durationMinutes <= 0 {
		return fmt.Errorf("%w: duration %d minutes", ErrValidation, durationMinutes)
	}
	from := truncateToDay(dates.From)
	to := truncateToDay(dates.To)
	if to.Before(from) {
		return fmt.Errorf("%w: date range ends before it starts", ErrValidation)
	}

	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		day := model.DayOfDate(date)
		for _, fragment := range CommonFreeTime(availA, availB, day) {
			if fragment.Minutes() < durationMinutes {
				continue
			}
			n := fragment.Minutes() / durationMinutes
			for i := 0; i < n; i++ {
				startOfDay := fragment.Start.Add(i * durationMinutes)
				slot := CandidateSlot{
					Day:      day,
					Start:    atTime(date, startOfDay),
					End:      atTime(date, startOfDay.Add(durationMinutes)),
					Fragment: fragment,
				}
				if overlapsAnyLesson(slot, lessonsA) || overlapsAnyLesson(slot, lessonsB) {
					continue
				}
				if !yield(slot) {
					return nil
				}
			}
		}
	}
	return nil
}

// CandidateSlots collects up to limit candidates; limit <= 0 means all.
func CandidateSlots(
	availA, availB model.WeeklyAvailability,
	durationMinutes int,
	dates DateRange,
	lessonsA, lessonsB []model.Lesson,
	limit int,
) ([]CandidateSlot, error) {
	var out []CandidateSlot
	err := EachCandidate(availA, availB, durationMinutes, dates, lessonsA, lessonsB,
		func(s CandidateSlot) bool {
			out = append(out, s)
			return limit <= 0 || len(out) < limit
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func overlapsAnyLesson(slot CandidateSlot, lessons []model.Lesson) bool {
	for i := range lessons {
		if lessons[i].Status.Blocks() && lessons[i].OverlapsRange(slot.Start, slot.End) {
			return true
		}
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func atTime(date time.Time, tod model.TimeOfDay) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(tod) * time.Minute)
}
