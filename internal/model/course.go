package model

import "time"

type Course struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"` // default lesson length
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Enrollment is the (student, teacher, course) triple a lesson must
// reference.
type Enrollment struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	TeacherID int64     `json:"teacher_id"`
	CourseID  int64     `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`

	// Populated by joined reads, not stored on the row itself.
	Student *Student `json:"student,omitempty"`
	Teacher *Teacher `json:"teacher,omitempty"`
	Course  *Course  `json:"course,omitempty"`
}
