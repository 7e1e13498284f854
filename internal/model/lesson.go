package model

import "time"

type LessonStatus string

const (
	LessonScheduled          LessonStatus = "scheduled"
	LessonInProgress         LessonStatus = "in_progress"
	LessonCompleted          LessonStatus = "completed"
	LessonCancelledByTeacher LessonStatus = "cancelled_by_teacher"
	LessonCancelledByStudent LessonStatus = "cancelled_by_student"
	LessonNoShow             LessonStatus = "no_show"
	LessonPendingPayment     LessonStatus = "pending_payment"
)

// Terminal reports whether the status ends the scheduling lifecycle: no
// further time or location edits are permitted.
func (s LessonStatus) Terminal() bool {
	switch s {
	case LessonScheduled, LessonInProgress:
		return false
	}
	return true
}

// Cancelled reports whether the status is one of the cancelled terminal
// states. Cancelled lessons free their time range from conflict checks.
func (s LessonStatus) Cancelled() bool {
	return s == LessonCancelledByTeacher || s == LessonCancelledByStudent
}

// Blocks reports whether a lesson in this status still occupies its time
// range for conflict detection.
func (s LessonStatus) Blocks() bool {
	return !s.Cancelled()
}

// LocationKind marks a location as physical or virtual explicitly; the engine
// never infers it from the free-text location value.
type LocationKind string

const (
	LocationOnline   LocationKind = "online"
	LocationPhysical LocationKind = "physical"
)

type Lesson struct {
	ID           int64        `json:"id"`
	EnrollmentID int64        `json:"enrollment_id"`
	StudentID    int64        `json:"student_id"`
	TeacherID    int64        `json:"teacher_id"`
	CourseID     int64        `json:"course_id"`
	StartTime    time.Time    `json:"start_time"`
	EndTime      time.Time    `json:"end_time"`
	Location     string       `json:"location"`
	LocationKind LocationKind `json:"location_kind"`
	Status       LessonStatus `json:"status"`
	Notes        string       `json:"notes"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// OverlapsRange applies the half-open interval rule to the lesson's
// date-times.
func (l *Lesson) OverlapsRange(start, end time.Time) bool {
	return l.StartTime.Before(end) && start.Before(l.EndTime)
}
