package schedule

import (
	"fmt"
	"time"

	"github.com/schedulai/scheduler/internal/model"
)

// ConflictInput is everything the detector needs: the candidate lesson, the
// set of other lessons to check against, and both parties' availability.
// For an edited lesson set ExcludeLessonID to the previous version's id so it
// is not compared against itself.
type ConflictInput struct {
	Candidate       model.Lesson
	ExcludeLessonID int64
	Existing        []model.Lesson
	TeacherWeek     model.WeeklyAvailability
	StudentWeek     model.WeeklyAvailability
}

// DetectConflict checks a proposed or edited lesson and returns a classified
// verdict. Checks run in fixed order and the first match wins:
// teacher overlap, student overlap, physical-location overlap, availability
// containment. Pure function: callers persist the lesson only after a
// non-conflicting verdict, re-validated inside the committing transaction.
func DetectConflict(in ConflictInput) model.ConflictVerdict {
	c := in.Candidate

	for _, other := range in.Existing {
		if other.ID == in.ExcludeLessonID && in.ExcludeLessonID != 0 {
			continue
		}
		if !other.Status.Blocks() || !other.OverlapsRange(c.StartTime, c.EndTime) {
			continue
		}
		if other.TeacherID == c.TeacherID {
			return model.ConflictVerdict{
				Conflict:         true,
				Type:             model.ConflictTeacher,
				Message:          fmt.Sprintf("teacher %d already has lesson %d in this time range", c.TeacherID, other.ID),
				AffectedLessonID: other.ID,
			}
		}
	}

	for _, other := range in.Existing {
		if other.ID == in.ExcludeLessonID && in.ExcludeLessonID != 0 {
			continue
		}
		if !other.Status.Blocks() || !other.OverlapsRange(c.StartTime, c.EndTime) {
			continue
		}
		if other.StudentID == c.StudentID {
			return model.ConflictVerdict{
				Conflict:         true,
				Type:             model.ConflictStudent,
				Message:          fmt.Sprintf("student %d already has lesson %d in this time range", c.StudentID, other.ID),
				AffectedLessonID: other.ID,
			}
		}
	}

	// Only physical locations can collide; virtual rooms are unbounded.
	if c.LocationKind == model.LocationPhysical && c.Location != "" {
		for _, other := range in.Existing {
			if other.ID == in.ExcludeLessonID && in.ExcludeLessonID != 0 {
				continue
			}
			if !other.Status.Blocks() || !other.OverlapsRange(c.StartTime, c.EndTime) {
				continue
			}
			if other.LocationKind == model.LocationPhysical && other.Location == c.Location {
				return model.ConflictVerdict{
					Conflict:         true,
					Type:             model.ConflictLocation,
					Message:          fmt.Sprintf("location %q is occupied by lesson %d in this time range", c.Location, other.ID),
					AffectedLessonID: other.ID,
				}
			}
		}
	}

	if v, ok := availabilityConflict(c, in.TeacherWeek, in.StudentWeek); ok {
		return v
	}

	return model.NoConflict()
}

// availabilityConflict checks strict single-window containment of the
// candidate's local time range in both parties' weekly availability.
func availabilityConflict(c model.Lesson, teacherWeek, studentWeek model.WeeklyAvailability) (model.ConflictVerdict, bool) {
	day := model.DayOfDate(c.StartTime)
	iv, ok := lessonInterval(c)
	if !ok {
		// Spans midnight: no single availability window can contain it.
		return model.ConflictVerdict{
			Conflict: true,
			Type:     model.ConflictAvailability,
			Message:  "lesson crosses midnight and cannot fit a single availability window",
		}, true
	}

	if !ContainsFully(teacherWeek[day], iv) {
		return model.ConflictVerdict{
			Conflict: true,
			Type:     model.ConflictAvailability,
			Message:  fmt.Sprintf("lesson time %s %s-%s is outside the teacher's availability", day, iv.Start, iv.End),
		}, true
	}
	if !ContainsFully(studentWeek[day], iv) {
		return model.ConflictVerdict{
			Conflict: true,
			Type:     model.ConflictAvailability,
			Message:  fmt.Sprintf("lesson time %s %s-%s is outside the student's availability", day, iv.Start, iv.End),
		}, true
	}
	return model.ConflictVerdict{}, false
}

// lessonInterval maps the lesson's date-times onto a same-day wall-clock
// interval. ok is false when the lesson crosses a day boundary. A lesson
// ending exactly at midnight maps to an interval ending at 24:00.
func lessonInterval(l model.Lesson) (model.Interval, bool) {
	start := model.TimeOfDayOf(l.StartTime)
	end := model.TimeOfDayOf(l.EndTime)

	sy, sm, sd := l.StartTime.Date()
	ey, em, ed := l.EndTime.Date()
	sameDay := sy == ey && sm == em && sd == ed

	if sameDay {
		return model.Interval{Start: start, End: end}, true
	}
	// Allow an end of exactly 00:00 on the next day.
	if end == 0 && l.EndTime.Sub(l.StartTime) <= 24*time.Hour {
		next := l.StartTime.AddDate(0, 0, 1)
		ny, nm, nd := next.Date()
		if ny == ey && nm == em && nd == ed {
			return model.Interval{Start: start, End: model.MinutesPerDay}, true
		}
	}
	return model.Interval{}, false
}
