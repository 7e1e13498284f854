package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/schedulai/scheduler/internal/model"
)

// 2024-06-03 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2024, time.June, 3, hour, minute, 0, 0, time.Local)
}

func lesson(id, teacherID, studentID int64, start, end time.Time) model.Lesson {
	return model.Lesson{
		ID:           id,
		TeacherID:    teacherID,
		StudentID:    studentID,
		StartTime:    start,
		EndTime:      end,
		Status:       model.LessonScheduled,
		LocationKind: model.LocationOnline,
	}
}

func fullWeek(t *testing.T) model.WeeklyAvailability {
	week := model.WeeklyAvailability{}
	for _, day := range model.AllDays() {
		week[day] = model.IntervalSet{iv(t, "08:00", "21:00")}
	}
	return week
}

func TestDetectConflictTeacherOverlap(t *testing.T) {
	existing := []model.Lesson{
		lesson(1, 10, 20, mondayAt(9, 0), mondayAt(10, 0)),
	}
	candidate := lesson(0, 10, 21, mondayAt(9, 30), mondayAt(10, 30))

	v := DetectConflict(ConflictInput{
		Candidate:   candidate,
		Existing:    existing,
		TeacherWeek: fullWeek(t),
		StudentWeek: fullWeek(t),
	})
	assert.True(t, v.Conflict)
	assert.Equal(t, model.ConflictTeacher, v.Type)
	assert.Equal(t, int64(1), v.AffectedLessonID)
}

func TestDetectConflictStudentOverlap(t *testing.T) {
	// Same student, different teacher: student conflict.
	existing := []model.Lesson{
		lesson(1, 10, 20, mondayAt(9, 0), mondayAt(10, 0)),
	}
	candidate := lesson(0, 11, 20, mondayAt(9, 30), mondayAt(10, 30))

	v := DetectConflict(ConflictInput{
		Candidate:   candidate,
		Existing:    existing,
		TeacherWeek: fullWeek(t),
		StudentWeek: fullWeek(t),
	})
	assert.True(t, v.Conflict)
	assert.Equal(t, model.ConflictStudent, v.Type)

	// Different teacher and student: no conflict at all.
	candidate = lesson(0, 11, 21, mondayAt(9, 30), mondayAt(10, 30))
	v = DetectConflict(ConflictInput{
		Candidate:   candidate,
		Existing:    existing,
		TeacherWeek: fullWeek(t),
		StudentWeek: fullWeek(t),
	})
	assert.False(t, v.Conflict)
}

func TestDetectConflictPrecedenceTeacherFirst(t *testing.T) {
	// The candidate violates both teacher and student constraints; the
	// reported type must be the teacher conflict.
	existing := []model.Lesson{
		lesson(1, 10, 20, mondayAt(9, 0), mondayAt(10, 0)),
	}
	candidate := lesson(0, 10, 20, mondayAt(9, 0), mondayAt(10, 0))

	v := DetectConflict(ConflictInput{
		Candidate:   candidate,
		Existing:    existing,
		TeacherWeek: fullWeek(t),
		StudentWeek: fullWeek(t),
	})
	assert.Equal(t, model.ConflictTeacher, v.Type)
}

func TestDetectConflictLocation(t *testing.T) {
	existing := []model.Lesson{
		func() model.Lesson {
			l := lesson(1, 10, 20, mondayAt(9, 0), mondayAt(10, 0))
			l.Location = "Room 2"
			l.LocationKind = model.LocationPhysical
			return l
		}(),
	}
	candidate := lesson(0, 11, 21, mondayAt(9, 30), mondayAt(10, 30))
	candidate.Location = "Room 2"
	candidate.LocationKind = model.LocationPhysical

	v := DetectConflict(ConflictInput{
		Candidate:   candidate,
		Existing:    existing,
		TeacherWeek: fullWeek(t),
		StudentWeek: fullWeek(t),
	})
	assert.Equal(t, model.ConflictLocation, v.Type)

	// The same clash online never conflicts on location.
	candidate.LocationKind = model.LocationOnline
	v = DetectConflict(ConflictInput{
		Candidate:   candidate,
		Existing:    existing,
		TeacherWeek: fullWeek(t),
		StudentWeek: fullWeek(t),
	})
	assert.False(t, v.Conflict)
}

func TestDetectConflictAvailability(t *testing.T) {
	teacherWeek := model.WeeklyAvailability{
		model.Monday: model.IntervalSet{iv(t, "09:00", "11:00")},
	}

	// Fully inside the window: fine.
	candidate := lesson(0, 10, 20, mondayAt(9, 0), mondayAt(10, 0))
	v := DetectConflict(ConflictInput{
		Candidate:   candidate,
		TeacherWeek: teacherWeek,
		StudentWeek: fullWeek(t),
	})
	assert.False(t, v.Conflict)

	// Exceeds the window: availability conflict.
	candidate = lesson(0, 10, 20, mondayAt(10, 30), mondayAt(11, 30))
	v = DetectConflict(ConflictInput{
		Candidate:   candidate,
		TeacherWeek: teacherWeek,
		StudentWeek: fullWeek(t),
	})
	assert.True(t, v.Conflict)
	assert.Equal(t, model.ConflictAvailability, v.Type)

	// Both parties must be available, not just one.
	v = DetectConflict(ConflictInput{
		Candidate:   lesson(0, 10, 20, mondayAt(9, 0), mondayAt(10, 0)),
		TeacherWeek: fullWeek(t),
		StudentWeek: model.WeeklyAvailability{},
	})
	assert.Equal(t, model.ConflictAvailability, v.Type)
}

func TestDetectConflictIgnoresCancelledLessons(t *testing.T) {
	cancelled := lesson(1, 10, 20, mondayAt(9, 0), mondayAt(10, 0))
	cancelled.Status = model.LessonCancelledByStudent

	v := DetectConflict(ConflictInput{
		Candidate:   lesson(0, 10, 20, mondayAt(9, 0), mondayAt(10, 0)),
		Existing:    []model.Lesson{cancelled},
		TeacherWeek: fullWeek(t),
		StudentWeek: fullWeek(t),
	})
	assert.False(t, v.Conflict)
}

func TestDetectConflictExcludesEditedLesson(t *testing.T) {
	existing := []model.Lesson{
		lesson(5, 10, 20, mondayAt(9, 0), mondayAt(10, 0)),
	}
	// Rescheduling lesson 5 within its own old range must not self-conflict.
	candidate := lesson(5, 10, 20, mondayAt(9, 30), mondayAt(10, 30))

	v := DetectConflict(ConflictInput{
		Candidate:       candidate,
		ExcludeLessonID: 5,
		Existing:        existing,
		TeacherWeek:     fullWeek(t),
		StudentWeek:     fullWeek(t),
	})
	assert.False(t, v.Conflict)
}

func TestDetectConflictBackToBackLessonsDoNotOverlap(t *testing.T) {
	existing := []model.Lesson{
		lesson(1, 10, 20, mondayAt(9, 0), mondayAt(10, 0)),
	}
	// Half-open ranges: a lesson starting exactly when another ends is fine.
	v := DetectConflict(ConflictInput{
		Candidate:   lesson(0, 10, 20, mondayAt(10, 0), mondayAt(11, 0)),
		Existing:    existing,
		TeacherWeek: fullWeek(t),
		StudentWeek: fullWeek(t),
	})
	assert.False(t, v.Conflict)
}
