package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schedulai/scheduler/internal/model"
	"github.com/schedulai/scheduler/internal/repository"
	"github.com/schedulai/scheduler/internal/repository/base"
	"github.com/schedulai/scheduler/internal/schedule"
)

func TestBookLessonRejectsInvertedTimes(t *testing.T) {
	s := NewBookingService(nil, nil, nil, nil, time.Second, zap.NewNop())

	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	_, _, err := s.BookLesson(context.Background(), BookLessonInput{
		EnrollmentID: 1,
		StartTime:    start,
		EndTime:      start.Add(-30 * time.Minute),
		LocationKind: model.LocationOnline,
	})

	assert.ErrorIs(t, err, schedule.ErrInvalidInterval)
}

func TestBookLessonRejectsZeroLength(t *testing.T) {
	s := NewBookingService(nil, nil, nil, nil, time.Second, zap.NewNop())

	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	_, _, err := s.BookLesson(context.Background(), BookLessonInput{
		EnrollmentID: 1,
		StartTime:    start,
		EndTime:      start,
		LocationKind: model.LocationOnline,
	})

	assert.ErrorIs(t, err, schedule.ErrInvalidInterval)
}

func TestBookLessonRejectsUnknownLocationKind(t *testing.T) {
	s := NewBookingService(nil, nil, nil, nil, time.Second, zap.NewNop())

	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	_, _, err := s.BookLesson(context.Background(), BookLessonInput{
		EnrollmentID: 1,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		LocationKind: "somewhere",
	})

	assert.ErrorIs(t, err, schedule.ErrValidation)
}

// stubDB stands in for the pool: the first `timeouts` transactions block on
// the party row locks until the caller's deadline expires, the rest answer
// with an always-available Monday.
type stubDB struct {
	timeouts int
	begins   int
	commits  int
}

func (d *stubDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.begins++
	return &stubTx{db: d, blocked: d.begins <= d.timeouts}, nil
}

func (d *stubDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return stubRow{}
}

func (d *stubDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &stubRows{}, nil
}

func (d *stubDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

type stubTx struct {
	db      *stubDB
	blocked bool
}

func (t *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if t.blocked {
		// Simulates a lock held by a concurrent booking.
		<-ctx.Done()
		return stubRow{err: ctx.Err()}
	}
	return stubRow{}
}

func (t *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if strings.Contains(sql, "availability_intervals") {
		return &stubRows{week: true}, nil
	}
	return &stubRows{}, nil
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.db.commits++
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error { return nil }

func (t *stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *stubTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *stubTx) Conn() *pgx.Conn { return nil }

type stubRow struct{ err error }

func (r stubRow) Scan(dest ...any) error { return r.err }

// stubRows yields no lessons; with week set it yields one all-day Monday
// availability window.
type stubRows struct {
	week bool
	done bool
}

func (r *stubRows) Next() bool {
	if !r.week || r.done {
		return false
	}
	r.done = true
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	*dest[0].(*string) = "MONDAY"
	*dest[1].(*int) = 0
	*dest[2].(*int) = 1440
	return nil
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func newStubBookingService(db *stubDB, lockTimeout time.Duration) *BookingService {
	return NewBookingService(db,
		repository.NewLessonRepository(nil),
		nil,
		repository.NewAvailabilityRepository(nil),
		lockTimeout, zap.NewNop())
}

func mondayLesson() model.Lesson {
	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC) // a Monday
	return model.Lesson{
		TeacherID:    1,
		StudentID:    2,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		LocationKind: model.LocationOnline,
		Status:       model.LessonScheduled,
	}
}

func TestBookingLockWaitTimesOutAndRetriesBounded(t *testing.T) {
	db := &stubDB{timeouts: 100} // never unblocks
	s := newStubBookingService(db, 5*time.Millisecond)

	candidate := mondayLesson()
	var applied bool
	_, err := s.commitChecked(context.Background(), &candidate, 0,
		func(ctx context.Context, tx base.Querier) error {
			applied = true
			return nil
		})

	require.ErrorIs(t, err, schedule.ErrConflictCheckTimeout)
	assert.False(t, applied)
	// First attempt plus three backoff retries, then the error surfaces.
	assert.Equal(t, 4, db.begins)
	assert.Zero(t, db.commits)
}

func TestBookingRecoversOnceLockIsReleased(t *testing.T) {
	db := &stubDB{timeouts: 1}
	s := newStubBookingService(db, 5*time.Millisecond)

	candidate := mondayLesson()
	var applied bool
	verdict, err := s.commitChecked(context.Background(), &candidate, 0,
		func(ctx context.Context, tx base.Querier) error {
			applied = true
			return nil
		})

	require.NoError(t, err)
	assert.False(t, verdict.Conflict)
	assert.True(t, applied)
	assert.Equal(t, 2, db.begins)
	assert.Equal(t, 1, db.commits)
}

func TestBookingRechecksInsideTransaction(t *testing.T) {
	db := &stubDB{}
	s := newStubBookingService(db, time.Second)

	// Tuesday is outside the stub's Monday-only availability, so the re-check
	// inside the transaction must veto the booking without applying it.
	candidate := mondayLesson()
	candidate.StartTime = candidate.StartTime.AddDate(0, 0, 1)
	candidate.EndTime = candidate.EndTime.AddDate(0, 0, 1)

	var applied bool
	verdict, err := s.commitChecked(context.Background(), &candidate, 0,
		func(ctx context.Context, tx base.Querier) error {
			applied = true
			return nil
		})

	require.NoError(t, err)
	assert.True(t, verdict.Conflict)
	assert.Equal(t, model.ConflictAvailability, verdict.Type)
	assert.False(t, applied)
	assert.Zero(t, db.commits)
}
