package models

import (
	"time"

	"github.com/google/uuid"
)

type Batch struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Department string    `db:"department" json:"department"`
	Year       int       `db:"year" json:"year"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Class struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Semester  int           `db:"semester" json:"semester"`
	Section   *string       `db:"section" json:"section,omitempty"`
	BatchID   uuid.NullUUID `db:"batch_id" json:"batch_id"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// FacultyAssignment: пара (преподаватель, предмет) в составе класса.
type FacultyAssignment struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	ClassID   uuid.NullUUID `db:"class_id" json:"class_id"`
	FacultyID uuid.NullUUID `db:"faculty_id" json:"faculty_id"`
	Subject   string        `db:"subject" json:"subject"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

type Subject struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	ClassID   uuid.NullUUID `db:"class_id" json:"class_id"`
	Code      string        `db:"code" json:"code"`
	Name      string        `db:"name" json:"name"`
	Credits   int           `db:"credits" json:"credits"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

type Course struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	Department    string    `db:"department" json:"department"`
	Description   *string   `db:"description" json:"description,omitempty"`
	DurationYears int       `db:"duration_years" json:"duration_years"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
