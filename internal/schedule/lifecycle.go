package schedule

import (
	"fmt"

	"github.com/schedulai/scheduler/internal/model"
)

// allowedTransitions is the lesson lifecycle table. SCHEDULED is the initial
// status; everything except SCHEDULED and IN_PROGRESS is terminal for
// scheduling purposes.
var allowedTransitions = map[model.LessonStatus]map[model.LessonStatus]bool{
	model.LessonScheduled: {
		model.LessonInProgress:         true, // time reached / explicit start
		model.LessonCompleted:          true,
		model.LessonCancelledByTeacher: true,
		model.LessonCancelledByStudent: true,
		model.LessonNoShow:             true,
		model.LessonPendingPayment:     true,
	},
	model.LessonInProgress: {
		model.LessonCompleted:      true,
		model.LessonPendingPayment: true,
	},
}

// CanTransition reports whether the lifecycle permits moving a lesson from
// one status to another.
func CanTransition(from, to model.LessonStatus) bool {
	return allowedTransitions[from][to]
}

// Transition moves the lesson to the target status, failing with
// ErrInvalidState when the lifecycle forbids it.
func Transition(l *model.Lesson, to model.LessonStatus) error {
	if !CanTransition(l.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, l.Status, to)
	}
	l.Status = to
	return nil
}

// CanReschedule reports whether time/location edits are permitted. Only a
// SCHEDULED lesson may be moved.
func CanReschedule(status model.LessonStatus) bool {
	return status == model.LessonScheduled
}
