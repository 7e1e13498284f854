package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schedulai/scheduler/internal/model"
)

func allStatuses() []model.LessonStatus {
	return []model.LessonStatus{
		model.LessonScheduled,
		model.LessonInProgress,
		model.LessonCompleted,
		model.LessonCancelledByTeacher,
		model.LessonCancelledByStudent,
		model.LessonNoShow,
		model.LessonPendingPayment,
	}
}

func TestTransitionTable(t *testing.T) {
	allowed := map[[2]model.LessonStatus]bool{
		{model.LessonScheduled, model.LessonInProgress}:         true,
		{model.LessonScheduled, model.LessonCompleted}:          true,
		{model.LessonScheduled, model.LessonCancelledByTeacher}: true,
		{model.LessonScheduled, model.LessonCancelledByStudent}: true,
		{model.LessonScheduled, model.LessonNoShow}:             true,
		{model.LessonScheduled, model.LessonPendingPayment}:     true,
		{model.LessonInProgress, model.LessonCompleted}:         true,
		{model.LessonInProgress, model.LessonPendingPayment}:    true,
	}

	// Every pair not in the table must be rejected, including transitions
	// out of terminal statuses.
	for _, from := range allStatuses() {
		for _, to := range allStatuses() {
			l := model.Lesson{Status: from}
			err := Transition(&l, to)
			if allowed[[2]model.LessonStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, l.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidState, "%s -> %s", from, to)
				assert.Equal(t, from, l.Status, "status must not change on a rejected transition")
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, model.LessonScheduled.Terminal())
	assert.False(t, model.LessonInProgress.Terminal())
	assert.True(t, model.LessonCompleted.Terminal())
	assert.True(t, model.LessonCancelledByTeacher.Terminal())
	assert.True(t, model.LessonCancelledByStudent.Terminal())
	assert.True(t, model.LessonNoShow.Terminal())
	assert.True(t, model.LessonPendingPayment.Terminal())
}

func TestCancelledStatusesStopBlocking(t *testing.T) {
	assert.False(t, model.LessonCancelledByTeacher.Blocks())
	assert.False(t, model.LessonCancelledByStudent.Blocks())
	assert.True(t, model.LessonScheduled.Blocks())
	assert.True(t, model.LessonCompleted.Blocks())
	assert.True(t, model.LessonNoShow.Blocks())
}

func TestCanReschedule(t *testing.T) {
	assert.True(t, CanReschedule(model.LessonScheduled))
	for _, s := range allStatuses()[1:] {
		assert.False(t, CanReschedule(s), string(s))
	}
}
