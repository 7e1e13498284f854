package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedulai/scheduler/internal/model"
)

func TestCommonFreeTime(t *testing.T) {
	teacher := model.WeeklyAvailability{
		model.Monday: model.IntervalSet{iv(t, "09:00", "12:00")},
	}
	student := model.WeeklyAvailability{
		model.Monday: model.IntervalSet{iv(t, "10:00", "11:00")},
	}

	got := CommonFreeTime(teacher, student, model.Monday)
	assert.Equal(t, model.IntervalSet{iv(t, "10:00", "11:00")}, got)

	// A day missing from either side has no common time.
	assert.Empty(t, CommonFreeTime(teacher, student, model.Tuesday))
}

func TestCandidateSlotsCutsFragmentsToDuration(t *testing.T) {
	teacher := model.WeeklyAvailability{
		model.Monday: model.IntervalSet{iv(t, "09:00", "12:00")},
	}
	student := model.WeeklyAvailability{
		model.Monday: model.IntervalSet{iv(t, "10:00", "11:00")},
	}
	monday := mondayAt(0, 0)

	slots, err := CandidateSlots(teacher, student, 30,
		DateRange{From: monday, To: monday}, nil, nil, 0)
	require.NoError(t, err)

	require.Len(t, slots, 2)
	assert.Equal(t, mondayAt(10, 0), slots[0].Start)
	assert.Equal(t, mondayAt(10, 30), slots[0].End)
	assert.Equal(t, mondayAt(10, 30), slots[1].Start)
	assert.Equal(t, mondayAt(11, 0), slots[1].End)
	assert.Equal(t, model.Monday, slots[0].Day)
	assert.Equal(t, iv(t, "10:00", "11:00"), slots[0].Fragment)
}

func TestCandidateSlotsDiscardsShortFragments(t *testing.T) {
	teacher := model.WeeklyAvailability{
		model.Monday: model.IntervalSet{iv(t, "09:00", "09:45")},
	}
	monday := mondayAt(0, 0)

	slots, err := CandidateSlots(teacher, teacher, 60,
		DateRange{From: monday, To: monday}, nil, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestCandidateSlotsDropsLessonOverlaps(t *testing.T) {
	week := model.WeeklyAvailability{
		model.Monday: model.IntervalSet{iv(t, "09:00", "11:00")},
	}
	monday := mondayAt(0, 0)

	busy := []model.Lesson{
		lesson(1, 10, 20, mondayAt(9, 0), mondayAt(10, 0)),
	}
	slots, err := CandidateSlots(week, week, 60,
		DateRange{From: monday, To: monday}, busy, nil, 0)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, mondayAt(10, 0), slots[0].Start)

	// Cancelling the lesson frees its slot again.
	busy[0].Status = model.LessonCancelledByTeacher
	slots, err = CandidateSlots(week, week, 60,
		DateRange{From: monday, To: monday}, busy, nil, 0)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestCandidateSlotsWalksDateRangeInOrder(t *testing.T) {
	week := model.WeeklyAvailability{
		model.Monday:  model.IntervalSet{iv(t, "09:00", "10:00")},
		model.Tuesday: model.IntervalSet{iv(t, "14:00", "15:00")},
	}
	monday := mondayAt(0, 0)

	slots, err := CandidateSlots(week, week, 60,
		DateRange{From: monday, To: monday.AddDate(0, 0, 6)}, nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, model.Monday, slots[0].Day)
	assert.Equal(t, model.Tuesday, slots[1].Day)
	assert.True(t, slots[0].Start.Before(slots[1].Start))
}

func TestEachCandidateStopsEarly(t *testing.T) {
	week := model.WeeklyAvailability{
		model.Monday: model.IntervalSet{iv(t, "08:00", "20:00")},
	}
	monday := mondayAt(0, 0)

	var seen int
	err := EachCandidate(week, week, 30,
		DateRange{From: monday, To: monday}, nil, nil,
		func(CandidateSlot) bool {
			seen++
			return seen < 3
		})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)

	slots, err := CandidateSlots(week, week, 30,
		DateRange{From: monday, To: monday}, nil, nil, 5)
	require.NoError(t, err)
	assert.Len(t, slots, 5)
}

func TestCandidateSlotsValidatesInput(t *testing.T) {
	monday := mondayAt(0, 0)

	_, err := CandidateSlots(nil, nil, 0, DateRange{From: monday, To: monday}, nil, nil, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = CandidateSlots(nil, nil, 30,
		DateRange{From: monday, To: monday.AddDate(0, 0, -1)}, nil, nil, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDayOfDateMapping(t *testing.T) {
	// 2024-06-03 is a Monday, 2024-06-09 a Sunday.
	assert.Equal(t, model.Monday, model.DayOfDate(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, model.Sunday, model.DayOfDate(time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)))
}
