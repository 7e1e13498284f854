package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/repository"
	"github.com/schedulai/scheduler/internal/schedule"
)

type EnrollmentService struct {
	studentRepo    *repository.StudentRepository
	teacherRepo    *repository.TeacherRepository
	courseRepo     *repository.CourseRepository
	enrollmentRepo *repository.EnrollmentRepository
	logger         *zap.Logger
}

func NewEnrollmentService(
	studentRepo *repository.StudentRepository,
	teacherRepo *repository.TeacherRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	logger *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		studentRepo:    studentRepo,
		teacherRepo:    teacherRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// Enroll links a student, a teacher and a course. All three must exist, the
// teacher and the course must be active, and the exact triple must not be
// enrolled already.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, teacherID, courseID int64) (*model.Enrollment, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("%w: student %d", schedule.ErrNotFound, studentID)
	}

	teacher, err := s.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if teacher == nil {
		return nil, fmt.Errorf("%w: teacher %d", schedule.ErrNotFound, teacherID)
	}
	if !teacher.IsActive {
		return nil, fmt.Errorf("teacher %d is not active", teacherID)
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("%w: course %d", schedule.ErrNotFound, courseID)
	}
	if !course.IsActive {
		return nil, fmt.Errorf("course %d is not active", courseID)
	}

	exists, err := s.enrollmentRepo.Exists(ctx, studentID, teacherID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("student %d is already enrolled with teacher %d for course %d", studentID, teacherID, courseID)
	}

	enrollment := &model.Enrollment{
		StudentID: studentID,
		TeacherID: teacherID,
		CourseID:  courseID,
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info("enrollment created",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("teacher_id", teacherID),
		zap.Int64("course_id", courseID))

	return enrollment, nil
}

// GetByID returns the enrollment, failing with ErrNotFound when missing.
func (s *EnrollmentService) GetByID(ctx context.Context, id int64) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, fmt.Errorf("%w: enrollment %d", schedule.ErrNotFound, id)
	}
	return enrollment, nil
}

// ListByStudent returns all enrollments of a student.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID int64) ([]*model.Enrollment, error) {
	return s.enrollmentRepo.GetByStudentID(ctx, studentID)
}

// ListByTeacher returns all enrollments taught by a teacher.
func (s *EnrollmentService) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.Enrollment, error) {
	return s.enrollmentRepo.GetByTeacherID(ctx, teacherID)
}

// Remove deletes an enrollment that has no lessons yet. Enrollments with
// lesson history keep their record.
func (s *EnrollmentService) Remove(ctx context.Context, id int64) error {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if enrollment == nil {
		return fmt.Errorf("%w: enrollment %d", schedule.ErrNotFound, id)
	}

	count, err := s.enrollmentRepo.CountLessons(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("enrollment %d has %d lessons and cannot be removed", id, count)
	}

	return s.enrollmentRepo.Delete(ctx, id)
}
