package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Grades: от лучшей к худшей.
var Grades = []Grade{GradeAPlus, GradeA, GradeBPlus, GradeB, GradeC, GradeD, GradeF}

type Result struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	StudentID     uuid.NullUUID   `db:"student_id" json:"student_id"`
	ClassID       uuid.NullUUID   `db:"class_id" json:"class_id"`
	SubjectID     uuid.NullUUID   `db:"subject_id" json:"subject_id"`
	ExamType      string          `db:"exam_type" json:"exam_type"`
	AcademicYear  string          `db:"academic_year" json:"academic_year"`
	Semester      int             `db:"semester" json:"semester"`
	MarksObtained decimal.Decimal `db:"marks_obtained" json:"marks_obtained"`
	MaxMarks      decimal.Decimal `db:"max_marks" json:"max_marks"`
	Grade         *Grade          `db:"grade" json:"grade"`
	UploadedBy    uuid.NullUUID   `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
