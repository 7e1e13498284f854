package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/repository"
	"github.com/schedulai/scheduler/internal/schedule"
)

// Maintenance runs the background housekeeping tasks.
type Maintenance struct {
	lessonRepo *repository.LessonRepository
	interval   time.Duration
	logger     *zap.Logger
	stopChan   chan struct{}
}

func NewMaintenance(lessonRepo *repository.LessonRepository, interval time.Duration, logger *zap.Logger) *Maintenance {
	return &Maintenance{
		lessonRepo: lessonRepo,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the background tasks.
func (m *Maintenance) Start(ctx context.Context) {
	m.logger.Info("starting background maintenance", zap.Duration("interval", m.interval))
	go m.runOverdueTask(ctx)
}

// Stop terminates the background tasks.
func (m *Maintenance) Stop() {
	m.logger.Info("stopping background maintenance")
	close(m.stopChan)
}

func (m *Maintenance) runOverdueTask(ctx context.Context) {
	// First pass right away, then on the ticker.
	m.advanceOverdueLessons(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.advanceOverdueLessons(ctx)
		case <-m.stopChan:
			m.logger.Info("overdue lesson task stopped")
			return
		case <-ctx.Done():
			m.logger.Info("overdue lesson task cancelled")
			return
		}
	}
}

// advanceOverdueLessons moves SCHEDULED lessons whose start time has passed
// into IN_PROGRESS so stale bookings do not linger in the initial status.
func (m *Maintenance) advanceOverdueLessons(ctx context.Context) {
	overdue, err := m.lessonRepo.ListOverdueScheduled(ctx, time.Now())
	if err != nil {
		m.logger.Error("failed to list overdue lessons", zap.Error(err))
		return
	}

	var advanced int
	for i := range overdue {
		lesson := &overdue[i]
		if err := schedule.Transition(lesson, model.LessonInProgress); err != nil {
			m.logger.Warn("skipping overdue lesson",
				zap.Int64("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		if err := m.lessonRepo.UpdateStatus(ctx, lesson.ID, model.LessonInProgress); err != nil {
			m.logger.Error("failed to advance overdue lesson",
				zap.Int64("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		advanced++
	}

	if advanced > 0 {
		m.logger.Info("advanced overdue lessons", zap.Int("count", advanced))
	}
}
