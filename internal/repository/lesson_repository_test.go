package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenRows reports a stream error after yielding nothing, the way pgx rows
// behave when the connection drops mid-read.
type brokenRows struct {
	err error
}

func (r *brokenRows) Next() bool                                   { return false }
func (r *brokenRows) Err() error                                   { return r.err }
func (r *brokenRows) Scan(dest ...any) error                       { return nil }
func (r *brokenRows) Close()                                       {}
func (r *brokenRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *brokenRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *brokenRows) Values() ([]any, error)                       { return nil, nil }
func (r *brokenRows) RawValues() [][]byte                          { return nil }
func (r *brokenRows) Conn() *pgx.Conn                              { return nil }

func TestCollectLessonsSurfacesStreamError(t *testing.T) {
	streamErr := errors.New("unexpected EOF")

	lessons, err := collectLessons(&brokenRows{err: streamErr})

	require.ErrorIs(t, err, streamErr)
	assert.Nil(t, lessons)
}

func TestCollectLessonsEmptyResult(t *testing.T) {
	lessons, err := collectLessons(&brokenRows{})

	require.NoError(t, err)
	assert.Empty(t, lessons)
}

func TestScanEnrollmentsSurfacesStreamError(t *testing.T) {
	streamErr := errors.New("connection reset")

	enrollments, err := scanEnrollments(&brokenRows{err: streamErr})

	require.ErrorIs(t, err, streamErr)
	assert.Nil(t, enrollments)
}
