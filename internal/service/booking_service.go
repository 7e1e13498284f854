package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/repository"
	"github.com/schedulai/scheduler/internal/repository/base"
	"github.com/schedulai/scheduler/internal/schedule"
)

// BookLessonInput is a booking request. Times are full local date-times; the
// lesson must not cross midnight or it fails availability containment.
type BookLessonInput struct {
	EnrollmentID int64              `json:"enrollment_id" validate:"required"`
	StartTime    time.Time          `json:"start_time" validate:"required"`
	EndTime      time.Time          `json:"end_time" validate:"required"`
	Location     string             `json:"location"`
	LocationKind model.LocationKind `json:"location_kind"`
	Notes        string             `json:"notes"`
}

// DB is the database surface the booking service needs: plain queries for
// advisory checks plus transactions for the serialized commit. Satisfied by
// *pgxpool.Pool.
type DB interface {
	base.Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type BookingService struct {
	db             DB
	lessonRepo     *repository.LessonRepository
	enrollmentRepo *repository.EnrollmentRepository
	availRepo      *repository.AvailabilityRepository
	lockTimeout    time.Duration
	logger         *zap.Logger
}

func NewBookingService(
	db DB,
	lessonRepo *repository.LessonRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	availRepo *repository.AvailabilityRepository,
	lockTimeout time.Duration,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		db:             db,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		availRepo:      availRepo,
		lockTimeout:    lockTimeout,
		logger:         logger,
	}
}

// BookLesson validates the request and performs a check-and-insert: a single
// transaction takes row locks on both parties, re-runs the conflict check
// against committed state and inserts the lesson only on a clean verdict. A
// conflicting verdict is a result, not an error; the lesson is nil then.
// Lock waits beyond the configured timeout fail with ErrConflictCheckTimeout
// after bounded retries with exponential backoff.
func (s *BookingService) BookLesson(ctx context.Context, input BookLessonInput) (*model.Lesson, model.ConflictVerdict, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, model.ConflictVerdict{}, fmt.Errorf("%w: lesson end must be after start", schedule.ErrInvalidInterval)
	}
	if input.LocationKind != model.LocationOnline && input.LocationKind != model.LocationPhysical {
		return nil, model.ConflictVerdict{}, fmt.Errorf("%w: unknown location kind %q", schedule.ErrValidation, input.LocationKind)
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return nil, model.ConflictVerdict{}, err
	}
	if enrollment == nil {
		return nil, model.ConflictVerdict{}, fmt.Errorf("%w: enrollment %d", schedule.ErrNotFound, input.EnrollmentID)
	}

	candidate := model.Lesson{
		EnrollmentID: enrollment.ID,
		StudentID:    enrollment.StudentID,
		TeacherID:    enrollment.TeacherID,
		CourseID:     enrollment.CourseID,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Location:     input.Location,
		LocationKind: input.LocationKind,
		Status:       model.LessonScheduled,
		Notes:        input.Notes,
	}

	verdict, err := s.commitChecked(ctx, &candidate, 0, func(ctx context.Context, tx base.Querier) error {
		return s.lessonRepo.Create(ctx, tx, &candidate)
	})
	if err != nil {
		return nil, model.ConflictVerdict{}, err
	}
	if verdict.Conflict {
		return nil, verdict, nil
	}

	s.logger.Info("lesson booked",
		zap.Int64("lesson_id", candidate.ID),
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Time("start_time", candidate.StartTime))

	return &candidate, verdict, nil
}

// Reschedule moves a SCHEDULED lesson to a new time and location under the
// same check-and-insert discipline, excluding the lesson's own previous slot
// from the conflict check.
func (s *BookingService) Reschedule(ctx context.Context, lessonID int64, start, end time.Time, location string, kind model.LocationKind) (*model.Lesson, model.ConflictVerdict, error) {
	if !end.After(start) {
		return nil, model.ConflictVerdict{}, fmt.Errorf("%w: lesson end must be after start", schedule.ErrInvalidInterval)
	}

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, model.ConflictVerdict{}, err
	}
	if lesson == nil {
		return nil, model.ConflictVerdict{}, fmt.Errorf("%w: lesson %d", schedule.ErrNotFound, lessonID)
	}
	if !schedule.CanReschedule(lesson.Status) {
		return nil, model.ConflictVerdict{}, fmt.Errorf("%w: cannot reschedule a %s lesson", schedule.ErrInvalidState, lesson.Status)
	}

	moved := *lesson
	moved.StartTime = start
	moved.EndTime = end
	moved.Location = location
	moved.LocationKind = kind

	verdict, err := s.commitChecked(ctx, &moved, lesson.ID, func(ctx context.Context, tx base.Querier) error {
		return s.lessonRepo.UpdateSchedule(ctx, tx, lesson.ID, start, end, location, kind)
	})
	if err != nil {
		return nil, model.ConflictVerdict{}, err
	}
	if verdict.Conflict {
		return nil, verdict, nil
	}

	s.logger.Info("lesson rescheduled",
		zap.Int64("lesson_id", lesson.ID),
		zap.Time("start_time", start))

	return &moved, verdict, nil
}

// CheckConflict runs the conflict check against current state without any
// locks. Advisory only: the verdict can be stale by the time a booking is
// attempted, which re-checks inside its transaction.
func (s *BookingService) CheckConflict(ctx context.Context, candidate model.Lesson, excludeLessonID int64) (model.ConflictVerdict, error) {
	existing, err := s.lessonRepo.ListForConflictCheck(ctx, s.db,
		candidate.TeacherID, candidate.StudentID, candidate.Location,
		candidate.StartTime, candidate.EndTime, excludeLessonID)
	if err != nil {
		return model.ConflictVerdict{}, err
	}

	teacherWeek, err := s.availRepo.GetWeek(ctx, s.db, model.PersonRef{ID: candidate.TeacherID, Kind: model.PersonTeacher})
	if err != nil {
		return model.ConflictVerdict{}, err
	}
	studentWeek, err := s.availRepo.GetWeek(ctx, s.db, model.PersonRef{ID: candidate.StudentID, Kind: model.PersonStudent})
	if err != nil {
		return model.ConflictVerdict{}, err
	}

	return schedule.DetectConflict(schedule.ConflictInput{
		Candidate:       candidate,
		ExcludeLessonID: excludeLessonID,
		Existing:        existing,
		TeacherWeek:     teacherWeek,
		StudentWeek:     studentWeek,
	}), nil
}

// applyFunc performs the write of a successfully checked booking inside the
// checking transaction.
type applyFunc func(ctx context.Context, tx base.Querier) error

// commitChecked is the serialized core shared by booking and rescheduling:
// lock both parties, re-run the conflict check on committed state, apply the
// write, commit. Retried with backoff when the lock wait times out.
func (s *BookingService) commitChecked(ctx context.Context, candidate *model.Lesson, excludeLessonID int64, apply applyFunc) (model.ConflictVerdict, error) {
	var verdict model.ConflictVerdict

	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := s.attemptChecked(ctx, candidate, excludeLessonID, apply)
		if err != nil {
			if errors.Is(err, schedule.ErrConflictCheckTimeout) {
				return retry.RetryableError(err)
			}
			return err
		}
		verdict = v
		return nil
	})
	if err != nil {
		return model.ConflictVerdict{}, err
	}
	return verdict, nil
}

func (s *BookingService) attemptChecked(ctx context.Context, candidate *model.Lesson, excludeLessonID int64, apply applyFunc) (model.ConflictVerdict, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	tx, err := s.db.Begin(lockCtx)
	if err != nil {
		return model.ConflictVerdict{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Teacher first, then student, always. Consistent ordering keeps
	// concurrent bookings from deadlocking on each other's locks.
	if err := s.lessonRepo.LockParties(lockCtx, tx, candidate.TeacherID, candidate.StudentID); err != nil {
		if lockCtx.Err() != nil {
			return model.ConflictVerdict{}, fmt.Errorf("%w: %v", schedule.ErrConflictCheckTimeout, err)
		}
		return model.ConflictVerdict{}, err
	}

	existing, err := s.lessonRepo.ListForConflictCheck(ctx, tx,
		candidate.TeacherID, candidate.StudentID, candidate.Location,
		candidate.StartTime, candidate.EndTime, excludeLessonID)
	if err != nil {
		return model.ConflictVerdict{}, err
	}

	teacherWeek, err := s.availRepo.GetWeek(ctx, tx, model.PersonRef{ID: candidate.TeacherID, Kind: model.PersonTeacher})
	if err != nil {
		return model.ConflictVerdict{}, err
	}
	studentWeek, err := s.availRepo.GetWeek(ctx, tx, model.PersonRef{ID: candidate.StudentID, Kind: model.PersonStudent})
	if err != nil {
		return model.ConflictVerdict{}, err
	}

	verdict := schedule.DetectConflict(schedule.ConflictInput{
		Candidate:       *candidate,
		ExcludeLessonID: excludeLessonID,
		Existing:        existing,
		TeacherWeek:     teacherWeek,
		StudentWeek:     studentWeek,
	})
	if verdict.Conflict {
		return verdict, nil
	}

	if err := apply(ctx, tx); err != nil {
		return model.ConflictVerdict{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.ConflictVerdict{}, fmt.Errorf("commit transaction: %w", err)
	}
	return verdict, nil
}

// Start marks a SCHEDULED lesson as running.
func (s *BookingService) Start(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.transition(ctx, lessonID, model.LessonInProgress)
}

// Complete marks a lesson as held.
func (s *BookingService) Complete(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.transition(ctx, lessonID, model.LessonCompleted)
}

// CancelByTeacher cancels a lesson on the teacher's initiative, freeing its
// time range for new bookings.
func (s *BookingService) CancelByTeacher(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.transition(ctx, lessonID, model.LessonCancelledByTeacher)
}

// CancelByStudent cancels a lesson on the student's initiative.
func (s *BookingService) CancelByStudent(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.transition(ctx, lessonID, model.LessonCancelledByStudent)
}

// MarkNoShow records that the student did not attend. The time range stays
// blocked.
func (s *BookingService) MarkNoShow(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.transition(ctx, lessonID, model.LessonNoShow)
}

// RequirePayment parks the lesson until it is paid for.
func (s *BookingService) RequirePayment(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.transition(ctx, lessonID, model.LessonPendingPayment)
}

func (s *BookingService) transition(ctx context.Context, lessonID int64, to model.LessonStatus) (*model.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, fmt.Errorf("%w: lesson %d", schedule.ErrNotFound, lessonID)
	}

	if err := schedule.Transition(lesson, to); err != nil {
		return nil, err
	}

	if err := s.lessonRepo.UpdateStatus(ctx, lessonID, to); err != nil {
		return nil, err
	}

	s.logger.Info("lesson status changed",
		zap.Int64("lesson_id", lessonID),
		zap.String("status", string(to)))

	return lesson, nil
}
