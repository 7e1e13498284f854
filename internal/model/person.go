package model

import "time"

type PersonKind string

const (
	PersonStudent PersonKind = "student"
	PersonTeacher PersonKind = "teacher"
)

// PersonRef identifies the owner of an availability set. The engine treats
// students and teachers symmetrically.
type PersonRef struct {
	ID   int64      `json:"id"`
	Kind PersonKind `json:"kind"`
}

type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Student) Ref() PersonRef {
	return PersonRef{ID: s.ID, Kind: PersonStudent}
}

type Teacher struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Teacher) Ref() PersonRef {
	return PersonRef{ID: t.ID, Kind: PersonTeacher}
}
