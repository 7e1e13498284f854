package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/repository/base"
	"github.com/schedulai/scheduler/internal/schedule"
)

const lessonColumns = `
	id, enrollment_id, student_id, teacher_id, course_id,
	start_time, end_time, location, location_kind, status, notes,
	created_at, updated_at
`

type LessonRepository struct {
	pool *pgxpool.Pool
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

// Create inserts a new lesson. Accepts a Querier so the booking service can
// insert inside the same transaction that re-validated the conflict check.
func (r *LessonRepository) Create(ctx context.Context, q base.Querier, lesson *model.Lesson) error {
	query := `
		INSERT INTO lessons (enrollment_id, student_id, teacher_id, course_id,
			start_time, end_time, location, location_kind, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(
		ctx, query,
		lesson.EnrollmentID,
		lesson.StudentID,
		lesson.TeacherID,
		lesson.CourseID,
		lesson.StartTime,
		lesson.EndTime,
		lesson.Location,
		lesson.LocationKind,
		lesson.Status,
		lesson.Notes,
	).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// GetByID returns the lesson or nil when missing.
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// ListForConflictCheck returns every lesson that could collide with a
// candidate in the given window: same teacher, same student, or same
// physical location. Cancelled lessons are excluded here so the detector
// never sees them; excludeID skips the lesson being edited.
func (r *LessonRepository) ListForConflictCheck(ctx context.Context, q base.Querier, teacherID, studentID int64, location string, from, to time.Time, excludeID int64) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE start_time < $1
		  AND end_time > $2
		  AND id <> $3
		  AND status NOT IN ('cancelled_by_teacher', 'cancelled_by_student')
		  AND (
			teacher_id = $4
			OR student_id = $5
			OR (location_kind = 'physical' AND location <> '' AND location = $6)
		  )
		ORDER BY start_time
	`

	rows, err := q.Query(ctx, query, to, from, excludeID, teacherID, studentID, location)
	if err != nil {
		return nil, fmt.Errorf("list lessons for conflict check: %w", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListByTeacherInRange returns a teacher's non-cancelled lessons overlapping
// the window.
func (r *LessonRepository) ListByTeacherInRange(ctx context.Context, teacherID int64, from, to time.Time) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE teacher_id = $1
		  AND start_time < $3
		  AND end_time > $2
		  AND status NOT IN ('cancelled_by_teacher', 'cancelled_by_student')
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, teacherID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list lessons by teacher: %w", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListByStudentInRange returns a student's non-cancelled lessons overlapping
// the window.
func (r *LessonRepository) ListByStudentInRange(ctx context.Context, studentID int64, from, to time.Time) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE student_id = $1
		  AND start_time < $3
		  AND end_time > $2
		  AND status NOT IN ('cancelled_by_teacher', 'cancelled_by_student')
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, studentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list lessons by student: %w", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListByEnrollment returns all lessons booked under an enrollment.
func (r *LessonRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE enrollment_id = $1
		ORDER BY start_time DESC
	`

	rows, err := r.pool.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("list lessons by enrollment: %w", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListOverdueScheduled returns lessons still SCHEDULED whose start time has
// passed, for the background maintenance loop.
func (r *LessonRepository) ListOverdueScheduled(ctx context.Context, before time.Time) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE status = 'scheduled' AND start_time <= $1
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("list overdue lessons: %w", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

// UpdateStatus rewrites the lesson status. Lifecycle legality is the
// service's responsibility.
func (r *LessonRepository) UpdateStatus(ctx context.Context, id int64, status model.LessonStatus) error {
	query := `
		UPDATE lessons
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update lesson status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: lesson %d", schedule.ErrNotFound, id)
	}

	return nil
}

// UpdateSchedule rewrites a lesson's time and location inside the caller's
// transaction.
func (r *LessonRepository) UpdateSchedule(ctx context.Context, q base.Querier, id int64, start, end time.Time, location string, kind model.LocationKind) error {
	query := `
		UPDATE lessons
		SET start_time = $1, end_time = $2, location = $3, location_kind = $4, updated_at = now()
		WHERE id = $5
	`

	result, err := q.Exec(ctx, query, start, end, location, kind, id)
	if err != nil {
		return fmt.Errorf("update lesson schedule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: lesson %d", schedule.ErrNotFound, id)
	}

	return nil
}

// LockParties takes row locks on the teacher and the student, always in that
// order so concurrent bookings cannot deadlock. Held until the transaction
// ends, this serializes every booking touching either party.
func (r *LessonRepository) LockParties(ctx context.Context, q base.Querier, teacherID, studentID int64) error {
	var id int64

	err := q.QueryRow(ctx, `SELECT id FROM teachers WHERE id = $1 FOR UPDATE`, teacherID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("teacher %d not found", teacherID)
		}
		return fmt.Errorf("lock teacher row: %w", err)
	}

	err = q.QueryRow(ctx, `SELECT id FROM students WHERE id = $1 FOR UPDATE`, studentID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("student %d not found", studentID)
		}
		return fmt.Errorf("lock student row: %w", err)
	}

	return nil
}

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var lesson model.Lesson
	err := row.Scan(
		&lesson.ID,
		&lesson.EnrollmentID,
		&lesson.StudentID,
		&lesson.TeacherID,
		&lesson.CourseID,
		&lesson.StartTime,
		&lesson.EndTime,
		&lesson.Location,
		&lesson.LocationKind,
		&lesson.Status,
		&lesson.Notes,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func collectLessons(rows pgx.Rows) ([]model.Lesson, error) {
	var lessons []model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, *lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}
