package model

// ConflictType classifies a booking conflict. The wire names match what the
// scheduling UI displays to users.
type ConflictType string

const (
	ConflictTeacher      ConflictType = "TEACHER_CONFLICT"
	ConflictStudent      ConflictType = "STUDENT_CONFLICT"
	ConflictLocation     ConflictType = "LOCATION_CONFLICT"
	ConflictAvailability ConflictType = "AVAILABILITY_CONFLICT"
)

// ConflictVerdict is the result of checking a proposed lesson. It is computed
// on demand and never persisted. AffectedLessonID is zero when the conflict
// does not involve a specific existing lesson.
type ConflictVerdict struct {
	Conflict         bool         `json:"conflict"`
	Type             ConflictType `json:"conflict_type,omitempty"`
	Message          string       `json:"message,omitempty"`
	AffectedLessonID int64        `json:"affected_lesson_id,omitempty"`
}

// NoConflict is the verdict for a lesson that passes every check.
func NoConflict() ConflictVerdict {
	return ConflictVerdict{Conflict: false}
}
