package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/models"
)

// StudentPatch: только переданные (не-nil) поля попадают в UPDATE.
type StudentPatch struct {
	StudentCode    *string
	ProfileID      *uuid.NullUUID
	BatchID        *uuid.NullUUID
	ClassID        *uuid.NullUUID
	Status         *models.StudentStatus
	EnrollmentDate *time.Time
}

func (s *Store) CreateStudent(ctx context.Context, st models.Student) (*models.Student, error) {
	enrolled := st.EnrollmentDate
	if enrolled.IsZero() {
		enrolled = time.Now()
	}
	status := st.Status
	if status == "" {
		status = models.StudentActive
	}
	return returning[models.Student](ctx, s, "db.CreateStudent", `
		INSERT INTO students (student_id, user_id, batch_id, class_id, status, enrollment_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`,
		st.StudentCode, st.ProfileID, st.BatchID, st.ClassID, string(status), enrolled)
}

func (s *Store) UpdateStudent(ctx context.Context, id uuid.UUID, p StudentPatch) (*models.Student, error) {
	var b setBuilder
	if p.StudentCode != nil {
		b.add("student_id", *p.StudentCode)
	}
	if p.ProfileID != nil {
		b.add("user_id", *p.ProfileID)
	}
	if p.BatchID != nil {
		b.add("batch_id", *p.BatchID)
	}
	if p.ClassID != nil {
		b.add("class_id", *p.ClassID)
	}
	if p.Status != nil {
		b.add("status", string(*p.Status))
	}
	if p.EnrollmentDate != nil {
		b.add("enrollment_date", *p.EnrollmentDate)
	}
	if b.empty() {
		st, err := s.GetStudent(ctx, id)
		return ensureFound(st, err, "db.UpdateStudent", "student", id)
	}
	q, args := b.query("students", id)
	return returning[models.Student](ctx, s, "db.UpdateStudent", q, args...)
}

func (s *Store) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "db.DeleteStudent", `DELETE FROM students WHERE id = $1`, id)
}

func (s *Store) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return getOne[models.Student](ctx, s, "db.GetStudent", `SELECT * FROM students WHERE id = $1`, id)
}

func (s *Store) GetStudentByProfile(ctx context.Context, profileID uuid.UUID) (*models.Student, error) {
	return getOne[models.Student](ctx, s, "db.GetStudentByProfile",
		`SELECT * FROM students WHERE user_id = $1`, profileID)
}

// ListStudents: при status == nil без фильтра по статусу.
func (s *Store) ListStudents(ctx context.Context, status *models.StudentStatus) ([]models.Student, error) {
	if status == nil {
		return selectAll[models.Student](ctx, s, "db.ListStudents",
			`SELECT * FROM students ORDER BY student_id`)
	}
	return selectAll[models.Student](ctx, s, "db.ListStudents",
		`SELECT * FROM students WHERE status = $1 ORDER BY student_id`, string(*status))
}

// ActiveStudentsInClass: состав класса для отметки посещаемости.
func (s *Store) ActiveStudentsInClass(ctx context.Context, classID uuid.UUID) ([]models.Student, error) {
	return selectAll[models.Student](ctx, s, "db.ActiveStudentsInClass", `
		SELECT * FROM students
		WHERE class_id = $1 AND status = 'active'
		ORDER BY student_id`, classID)
}

func (s *Store) StudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Student, error) {
	return selectByIDs[models.Student](ctx, s, "db.StudentsByIDs",
		`SELECT * FROM students WHERE id = ANY($1::uuid[])`, ids)
}
