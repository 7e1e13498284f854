package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/schedule"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (name, description, duration_minutes, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		course.Name,
		course.Description,
		course.DurationMinutes,
		course.IsActive,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID returns the course or nil when missing.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	query := `
		SELECT id, name, description, duration_minutes, is_active, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var course model.Course
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.Description,
		&course.DurationMinutes,
		&course.IsActive,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return &course, nil
}

// GetActive returns all active courses.
func (r *CourseRepository) GetActive(ctx context.Context) ([]*model.Course, error) {
	query := `
		SELECT id, name, description, duration_minutes, is_active, created_at, updated_at
		FROM courses
		WHERE is_active = true
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		var course model.Course
		err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.Description,
			&course.DurationMinutes,
			&course.IsActive,
			&course.CreatedAt,
			&course.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, &course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

// Update rewrites a course.
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	query := `
		UPDATE courses
		SET name = $1, description = $2, duration_minutes = $3, is_active = $4, updated_at = now()
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		course.Name, course.Description, course.DurationMinutes, course.IsActive, course.ID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: course %d", schedule.ErrNotFound, course.ID)
	}

	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM courses WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: course %d", schedule.ErrNotFound, id)
	}

	return nil
}
