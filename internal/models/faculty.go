package models

import (
	"time"

	"github.com/google/uuid"
)

type FacultyStatus string

const (
	FacultyActive   FacultyStatus = "active"
	FacultyInactive FacultyStatus = "inactive"
	FacultyOnLeave  FacultyStatus = "on_leave"
)

func (s FacultyStatus) Valid() bool {
	switch s {
	case FacultyActive, FacultyInactive, FacultyOnLeave:
		return true
	}
	return false
}

type FacultyMember struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	FacultyCode string        `db:"faculty_id" json:"faculty_id"`
	ProfileID   uuid.NullUUID `db:"user_id" json:"user_id"`
	Department  string        `db:"department" json:"department"`
	Designation *string       `db:"designation" json:"designation,omitempty"`
	Status      FacultyStatus `db:"status" json:"status"`
	JoiningDate time.Time     `db:"joining_date" json:"joining_date"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}
