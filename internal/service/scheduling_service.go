package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/repository"
	"github.com/schedulai/scheduler/internal/schedule"
)

type SchedulingService struct {
	enrollmentRepo *repository.EnrollmentRepository
	courseRepo     *repository.CourseRepository
	availRepo      *repository.AvailabilityRepository
	lessonRepo     *repository.LessonRepository
	logger         *zap.Logger
}

func NewSchedulingService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	availRepo *repository.AvailabilityRepository,
	lessonRepo *repository.LessonRepository,
	logger *zap.Logger,
) *SchedulingService {
	return &SchedulingService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		availRepo:      availRepo,
		lessonRepo:     lessonRepo,
		logger:         logger,
	}
}

// CommonFreeTime intersects a teacher's and a student's stored availability
// for one weekday.
func (s *SchedulingService) CommonFreeTime(ctx context.Context, teacherID, studentID int64, day model.DayOfWeek) (model.IntervalSet, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("%w: invalid day %d", schedule.ErrValidation, int(day))
	}

	teacherWeek, err := s.availRepo.WeekFromPool(ctx, model.PersonRef{ID: teacherID, Kind: model.PersonTeacher})
	if err != nil {
		return nil, err
	}
	studentWeek, err := s.availRepo.WeekFromPool(ctx, model.PersonRef{ID: studentID, Kind: model.PersonStudent})
	if err != nil {
		return nil, err
	}

	return schedule.CommonFreeTime(teacherWeek, studentWeek, day), nil
}

// SuggestLessons proposes bookable slots for an enrollment over a date range:
// candidates cut from the pair's common free time, skipping times already
// taken by either party's lessons. durationMinutes of 0 falls back to the
// course's default duration. limit <= 0 returns all candidates.
func (s *SchedulingService) SuggestLessons(ctx context.Context, enrollmentID int64, durationMinutes int, dates schedule.DateRange, limit int) ([]schedule.CandidateSlot, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, fmt.Errorf("%w: enrollment %d", schedule.ErrNotFound, enrollmentID)
	}

	if durationMinutes == 0 {
		course, err := s.courseRepo.GetByID(ctx, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		if course == nil {
			return nil, fmt.Errorf("%w: course %d", schedule.ErrNotFound, enrollment.CourseID)
		}
		durationMinutes = course.DurationMinutes
	}

	teacherWeek, err := s.availRepo.WeekFromPool(ctx, model.PersonRef{ID: enrollment.TeacherID, Kind: model.PersonTeacher})
	if err != nil {
		return nil, err
	}
	studentWeek, err := s.availRepo.WeekFromPool(ctx, model.PersonRef{ID: enrollment.StudentID, Kind: model.PersonStudent})
	if err != nil {
		return nil, err
	}

	// Widen the window by a day on each side so lessons straddling the range
	// edges still block their slots.
	from := dates.From.AddDate(0, 0, -1)
	to := dates.To.AddDate(0, 0, 2)
	teacherLessons, err := s.lessonRepo.ListByTeacherInRange(ctx, enrollment.TeacherID, from, to)
	if err != nil {
		return nil, err
	}
	studentLessons, err := s.lessonRepo.ListByStudentInRange(ctx, enrollment.StudentID, from, to)
	if err != nil {
		return nil, err
	}

	slots, err := schedule.CandidateSlots(teacherWeek, studentWeek, durationMinutes, dates, teacherLessons, studentLessons, limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("lesson slots suggested",
		zap.Int64("enrollment_id", enrollmentID),
		zap.Int("duration_minutes", durationMinutes),
		zap.Int("count", len(slots)))

	return slots, nil
}
