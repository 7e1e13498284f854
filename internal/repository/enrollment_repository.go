package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/schedule"
)

type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Create inserts a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	query := `
		INSERT INTO enrollments (student_id, teacher_id, course_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		enrollment.StudentID,
		enrollment.TeacherID,
		enrollment.CourseID,
	).Scan(&enrollment.ID, &enrollment.CreatedAt)

	if err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

// GetByID returns the enrollment or nil when missing.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*model.Enrollment, error) {
	query := `
		SELECT id, student_id, teacher_id, course_id, created_at
		FROM enrollments
		WHERE id = $1
	`

	var enrollment model.Enrollment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&enrollment.ID,
		&enrollment.StudentID,
		&enrollment.TeacherID,
		&enrollment.CourseID,
		&enrollment.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment by id: %w", err)
	}

	return &enrollment, nil
}

// Exists checks whether the exact (student, teacher, course) triple is
// already enrolled.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, teacherID, courseID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND teacher_id = $2 AND course_id = $3
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, studentID, teacherID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}

	return exists, nil
}

// GetByStudentID returns all enrollments of a student.
func (r *EnrollmentRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*model.Enrollment, error) {
	query := `
		SELECT id, student_id, teacher_id, course_id, created_at
		FROM enrollments
		WHERE student_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get enrollments by student: %w", err)
	}
	defer rows.Close()

	return scanEnrollments(rows)
}

// GetByTeacherID returns all enrollments taught by a teacher.
func (r *EnrollmentRepository) GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.Enrollment, error) {
	query := `
		SELECT id, student_id, teacher_id, course_id, created_at
		FROM enrollments
		WHERE teacher_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get enrollments by teacher: %w", err)
	}
	defer rows.Close()

	return scanEnrollments(rows)
}

func scanEnrollments(rows pgx.Rows) ([]*model.Enrollment, error) {
	var enrollments []*model.Enrollment
	for rows.Next() {
		var enrollment model.Enrollment
		err := rows.Scan(
			&enrollment.ID,
			&enrollment.StudentID,
			&enrollment.TeacherID,
			&enrollment.CourseID,
			&enrollment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, &enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}

	return enrollments, nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM enrollments WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: enrollment %d", schedule.ErrNotFound, id)
	}

	return nil
}

// CountLessons reports how many lessons reference the enrollment.
func (r *EnrollmentRepository) CountLessons(ctx context.Context, id int64) (int64, error) {
	query := `SELECT count(*) FROM lessons WHERE enrollment_id = $1`

	var count int64
	err := r.pool.QueryRow(ctx, query, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count enrollment lessons: %w", err)
	}

	return count, nil
}
