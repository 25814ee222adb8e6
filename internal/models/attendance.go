package models

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
)

func (s AttendanceStatus) Valid() bool {
	return s == Present || s == Absent
}

type Attendance struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	StudentID uuid.NullUUID    `db:"student_id" json:"student_id"`
	ClassID   uuid.NullUUID    `db:"class_id" json:"class_id"`
	FacultyID uuid.NullUUID    `db:"faculty_id" json:"faculty_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Remarks   *string          `db:"remarks" json:"remarks,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}
