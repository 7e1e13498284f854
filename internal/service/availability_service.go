package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/repository"
	"github.com/schedulai/scheduler/internal/schedule"
)

// IntervalInput is one availability window in a batch payload, with times in
// HH:MM wall-clock form.
type IntervalInput struct {
	Day   string `json:"day" validate:"required"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// WeekInput is a whole-week availability payload. Applying it replaces
// everything previously stored for the person.
type WeekInput struct {
	Intervals []IntervalInput `json:"intervals" validate:"dive"`
}

type AvailabilityService struct {
	pool        *pgxpool.Pool
	availRepo   *repository.AvailabilityRepository
	studentRepo *repository.StudentRepository
	teacherRepo *repository.TeacherRepository
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewAvailabilityService(
	pool *pgxpool.Pool,
	availRepo *repository.AvailabilityRepository,
	studentRepo *repository.StudentRepository,
	teacherRepo *repository.TeacherRepository,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		pool:        pool,
		availRepo:   availRepo,
		studentRepo: studentRepo,
		teacherRepo: teacherRepo,
		validate:    validator.New(),
		logger:      logger,
	}
}

// ParseWeek validates a batch payload and converts it into a normalized
// weekly availability. The whole payload is rejected on the first malformed
// entry; nothing is partially parsed.
func (s *AvailabilityService) ParseWeek(input WeekInput) (model.WeeklyAvailability, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", schedule.ErrValidation, err)
	}

	week := model.WeeklyAvailability{}
	for _, in := range input.Intervals {
		day, err := model.ParseDayOfWeek(in.Day)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schedule.ErrValidation, err)
		}
		start, err := model.ParseTimeOfDay(in.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", schedule.ErrValidation, in.Day, err)
		}
		end, err := model.ParseTimeOfDay(in.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", schedule.ErrValidation, in.Day, err)
		}
		week[day] = append(week[day], model.Interval{Start: start, End: end})
	}

	return schedule.NormalizeWeek(week)
}

// ReplaceAll replaces the person's entire stored availability with the
// payload, atomically, under a fresh revision id. Returns the normalized week
// as stored.
func (s *AvailabilityService) ReplaceAll(ctx context.Context, person model.PersonRef, input WeekInput) (model.WeeklyAvailability, uuid.UUID, error) {
	if err := s.checkPersonExists(ctx, person); err != nil {
		return nil, uuid.Nil, err
	}

	week, err := s.ParseWeek(input)
	if err != nil {
		return nil, uuid.Nil, err
	}

	revision := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.availRepo.ReplaceWeek(ctx, tx, person, week, revision); err != nil {
		return nil, uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, uuid.Nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("availability week replaced",
		zap.String("person_kind", string(person.Kind)),
		zap.Int64("person_id", person.ID),
		zap.String("revision", revision.String()))

	return week, revision, nil
}

// Upsert adds one window to the person's stored availability, merging it with
// overlapping or adjacent windows of the same day.
func (s *AvailabilityService) Upsert(ctx context.Context, person model.PersonRef, day model.DayOfWeek, interval model.Interval) (model.IntervalSet, error) {
	if err := s.checkPersonExists(ctx, person); err != nil {
		return nil, err
	}
	if !day.Valid() {
		return nil, fmt.Errorf("%w: invalid day %d", schedule.ErrValidation, int(day))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	week, err := s.availRepo.GetWeek(ctx, tx, person)
	if err != nil {
		return nil, err
	}

	merged, err := schedule.Insert(week[day], interval)
	if err != nil {
		return nil, err
	}

	if err := s.availRepo.ReplaceDay(ctx, tx, person, day, merged, uuid.New()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return merged, nil
}

// Remove deletes one stored window by id. Missing ids fail with ErrNotFound.
func (s *AvailabilityService) Remove(ctx context.Context, person model.PersonRef, intervalID int64) error {
	record, err := s.availRepo.GetIntervalByID(ctx, intervalID)
	if err != nil {
		return err
	}
	if record == nil || record.Person != person {
		return fmt.Errorf("%w: availability interval %d", schedule.ErrNotFound, intervalID)
	}

	affected, err := s.availRepo.DeleteInterval(ctx, intervalID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: availability interval %d", schedule.ErrNotFound, intervalID)
	}

	return nil
}

// GetWeek returns the person's stored weekly availability.
func (s *AvailabilityService) GetWeek(ctx context.Context, person model.PersonRef) (model.WeeklyAvailability, error) {
	if err := s.checkPersonExists(ctx, person); err != nil {
		return nil, err
	}
	return s.availRepo.WeekFromPool(ctx, person)
}

// ListIntervals returns the stored windows with their ids, for editors that
// delete individual windows.
func (s *AvailabilityService) ListIntervals(ctx context.Context, person model.PersonRef) ([]*model.AvailabilityInterval, error) {
	if err := s.checkPersonExists(ctx, person); err != nil {
		return nil, err
	}
	return s.availRepo.ListIntervals(ctx, person)
}

// SetDayFromGrid replaces one day's availability from grid bucket selections.
func (s *AvailabilityService) SetDayFromGrid(ctx context.Context, person model.PersonRef, day model.DayOfWeek, selected []model.TimeOfDay) (model.IntervalSet, error) {
	if err := s.checkPersonExists(ctx, person); err != nil {
		return nil, err
	}
	if !day.Valid() {
		return nil, fmt.Errorf("%w: invalid day %d", schedule.ErrValidation, int(day))
	}

	set, err := schedule.GridToIntervals(selected)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.availRepo.ReplaceDay(ctx, tx, person, day, set, uuid.New()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return set, nil
}

// DayGrid renders one stored day as grid bucket selections.
func (s *AvailabilityService) DayGrid(ctx context.Context, person model.PersonRef, day model.DayOfWeek) (map[model.TimeOfDay]bool, error) {
	week, err := s.GetWeek(ctx, person)
	if err != nil {
		return nil, err
	}
	return schedule.IntervalsToGrid(week[day]), nil
}

func (s *AvailabilityService) checkPersonExists(ctx context.Context, person model.PersonRef) error {
	switch person.Kind {
	case model.PersonStudent:
		student, err := s.studentRepo.GetByID(ctx, person.ID)
		if err != nil {
			return err
		}
		if student == nil {
			return fmt.Errorf("%w: student %d", schedule.ErrNotFound, person.ID)
		}
	case model.PersonTeacher:
		teacher, err := s.teacherRepo.GetByID(ctx, person.ID)
		if err != nil {
			return err
		}
		if teacher == nil {
			return fmt.Errorf("%w: teacher %d", schedule.ErrNotFound, person.ID)
		}
	default:
		return fmt.Errorf("%w: unknown person kind %q", schedule.ErrValidation, person.Kind)
	}
	return nil
}
