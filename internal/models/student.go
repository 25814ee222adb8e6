package models

import (
	"time"

	"github.com/google/uuid"
)

type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentGraduated StudentStatus = "graduated"
)

func (s StudentStatus) Valid() bool {
	switch s {
	case StudentActive, StudentInactive, StudentGraduated:
		return true
	}
	return false
}

type Student struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	StudentCode    string        `db:"student_id" json:"student_id"`
	ProfileID      uuid.NullUUID `db:"user_id" json:"user_id"`
	BatchID        uuid.NullUUID `db:"batch_id" json:"batch_id"`
	ClassID        uuid.NullUUID `db:"class_id" json:"class_id"`
	Status         StudentStatus `db:"status" json:"status"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}
