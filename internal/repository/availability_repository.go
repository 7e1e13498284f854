package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/repository/base"
)

type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// GetWeek loads a person's whole weekly availability. Times are stored as
// minutes from midnight, days as the canonical enum names.
func (r *AvailabilityRepository) GetWeek(ctx context.Context, q base.Querier, person model.PersonRef) (model.WeeklyAvailability, error) {
	query := `
		SELECT day_of_week, start_min, end_min
		FROM availability_intervals
		WHERE person_kind = $1 AND person_id = $2
		ORDER BY day_of_week, start_min
	`

	rows, err := q.Query(ctx, query, person.Kind, person.ID)
	if err != nil {
		return nil, fmt.Errorf("get availability week: %w", err)
	}
	defer rows.Close()

	week := model.WeeklyAvailability{}
	for rows.Next() {
		var dayName string
		var startMin, endMin int
		if err := rows.Scan(&dayName, &startMin, &endMin); err != nil {
			return nil, fmt.Errorf("scan availability interval: %w", err)
		}
		day, err := model.ParseDayOfWeek(dayName)
		if err != nil {
			return nil, fmt.Errorf("stored availability interval: %w", err)
		}
		week[day] = append(week[day], model.Interval{
			Start: model.TimeOfDay(startMin),
			End:   model.TimeOfDay(endMin),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability intervals: %w", err)
	}

	return week, nil
}

// WeekFromPool is GetWeek on the shared pool, for callers outside a
// transaction.
func (r *AvailabilityRepository) WeekFromPool(ctx context.Context, person model.PersonRef) (model.WeeklyAvailability, error) {
	return r.GetWeek(ctx, r.pool, person)
}

// ListIntervals returns the stored rows with their ids, for editing UIs that
// address individual windows.
func (r *AvailabilityRepository) ListIntervals(ctx context.Context, person model.PersonRef) ([]*model.AvailabilityInterval, error) {
	query := `
		SELECT id, person_kind, person_id, day_of_week, start_min, end_min, revision, created_at
		FROM availability_intervals
		WHERE person_kind = $1 AND person_id = $2
		ORDER BY array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY','SUNDAY'], day_of_week), start_min
	`

	rows, err := r.pool.Query(ctx, query, person.Kind, person.ID)
	if err != nil {
		return nil, fmt.Errorf("list availability intervals: %w", err)
	}
	defer rows.Close()

	var intervals []*model.AvailabilityInterval
	for rows.Next() {
		record, err := scanAvailabilityInterval(rows)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability intervals: %w", err)
	}

	return intervals, nil
}

// GetIntervalByID returns one stored interval or nil when missing.
func (r *AvailabilityRepository) GetIntervalByID(ctx context.Context, id int64) (*model.AvailabilityInterval, error) {
	query := `
		SELECT id, person_kind, person_id, day_of_week, start_min, end_min, revision, created_at
		FROM availability_intervals
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	record, err := scanAvailabilityInterval(row)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAvailabilityInterval(row rowScanner) (*model.AvailabilityInterval, error) {
	var record model.AvailabilityInterval
	var kind string
	var dayName string
	var startMin, endMin int

	err := row.Scan(
		&record.ID,
		&kind,
		&record.Person.ID,
		&dayName,
		&startMin,
		&endMin,
		&record.Revision,
		&record.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan availability interval: %w", err)
	}

	day, err := model.ParseDayOfWeek(dayName)
	if err != nil {
		return nil, fmt.Errorf("stored availability interval: %w", err)
	}
	record.Person.Kind = model.PersonKind(kind)
	record.Day = day
	record.Interval = model.Interval{Start: model.TimeOfDay(startMin), End: model.TimeOfDay(endMin)}
	return &record, nil
}

// ReplaceWeek deletes every stored interval of the person and inserts the
// new week under one revision. Run it on a transaction so the replace is
// all-or-nothing.
func (r *AvailabilityRepository) ReplaceWeek(ctx context.Context, q base.Querier, person model.PersonRef, week model.WeeklyAvailability, revision uuid.UUID) error {
	deleteQuery := `
		DELETE FROM availability_intervals
		WHERE person_kind = $1 AND person_id = $2
	`

	if _, err := q.Exec(ctx, deleteQuery, person.Kind, person.ID); err != nil {
		return fmt.Errorf("clear availability week: %w", err)
	}

	for _, day := range model.AllDays() {
		for _, interval := range week[day] {
			if err := r.InsertInterval(ctx, q, person, day, interval, revision); err != nil {
				return err
			}
		}
	}

	return nil
}

// InsertInterval stores one availability window.
func (r *AvailabilityRepository) InsertInterval(ctx context.Context, q base.Querier, person model.PersonRef, day model.DayOfWeek, interval model.Interval, revision uuid.UUID) error {
	query := `
		INSERT INTO availability_intervals (person_kind, person_id, day_of_week, start_min, end_min, revision)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query,
		person.Kind, person.ID, day.String(), int(interval.Start), int(interval.End), revision)
	if err != nil {
		return fmt.Errorf("insert availability interval: %w", err)
	}

	return nil
}

// ReplaceDay rewrites the stored intervals of one day only.
func (r *AvailabilityRepository) ReplaceDay(ctx context.Context, q base.Querier, person model.PersonRef, day model.DayOfWeek, set model.IntervalSet, revision uuid.UUID) error {
	deleteQuery := `
		DELETE FROM availability_intervals
		WHERE person_kind = $1 AND person_id = $2 AND day_of_week = $3
	`

	if _, err := q.Exec(ctx, deleteQuery, person.Kind, person.ID, day.String()); err != nil {
		return fmt.Errorf("clear availability day: %w", err)
	}

	for _, interval := range set {
		if err := r.InsertInterval(ctx, q, person, day, interval, revision); err != nil {
			return err
		}
	}

	return nil
}

// DeleteInterval removes one stored window. Returns the number of rows
// removed so the caller can map zero to its not-found error.
func (r *AvailabilityRepository) DeleteInterval(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM availability_intervals WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete availability interval: %w", err)
	}

	return result.RowsAffected(), nil
}
