package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/models"
)

func (s *Store) CreateBatch(ctx context.Context, b models.Batch) (*models.Batch, error) {
	return returning[models.Batch](ctx, s, "db.CreateBatch", `
		INSERT INTO batches (name, department, year) VALUES ($1, $2, $3)
		RETURNING *`, b.Name, b.Department, b.Year)
}

func (s *Store) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "db.DeleteBatch", `DELETE FROM batches WHERE id = $1`, id)
}

func (s *Store) ListBatches(ctx context.Context) ([]models.Batch, error) {
	return selectAll[models.Batch](ctx, s, "db.ListBatches", `SELECT * FROM batches ORDER BY name`)
}

func (s *Store) BatchesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Batch, error) {
	return selectByIDs[models.Batch](ctx, s, "db.BatchesByIDs",
		`SELECT * FROM batches WHERE id = ANY($1::uuid[])`, ids)
}

func (s *Store) CreateCourse(ctx context.Context, c models.Course) (*models.Course, error) {
	years := c.DurationYears
	if years == 0 {
		years = 4
	}
	return returning[models.Course](ctx, s, "db.CreateCourse", `
		INSERT INTO courses (code, name, department, description, duration_years)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`, c.Code, c.Name, c.Department, c.Description, years)
}

func (s *Store) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "db.DeleteCourse", `DELETE FROM courses WHERE id = $1`, id)
}

func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	return selectAll[models.Course](ctx, s, "db.ListCourses", `SELECT * FROM courses ORDER BY code`)
}

func (s *Store) CreateClass(ctx context.Context, c models.Class) (*models.Class, error) {
	return returning[models.Class](ctx, s, "db.CreateClass", `
		INSERT INTO classes (name, semester, section, batch_id) VALUES ($1, $2, $3, $4)
		RETURNING *`, c.Name, c.Semester, c.Section, c.BatchID)
}

func (s *Store) DeleteClass(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "db.DeleteClass", `DELETE FROM classes WHERE id = $1`, id)
}

func (s *Store) GetClass(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	return getOne[models.Class](ctx, s, "db.GetClass", `SELECT * FROM classes WHERE id = $1`, id)
}

func (s *Store) ListClasses(ctx context.Context) ([]models.Class, error) {
	return selectAll[models.Class](ctx, s, "db.ListClasses", `SELECT * FROM classes ORDER BY name`)
}

func (s *Store) ClassesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Class, error) {
	return selectByIDs[models.Class](ctx, s, "db.ClassesByIDs",
		`SELECT * FROM classes WHERE id = ANY($1::uuid[])`, ids)
}

func (s *Store) CreateSubject(ctx context.Context, sub models.Subject) (*models.Subject, error) {
	credits := sub.Credits
	if credits == 0 {
		credits = 3
	}
	return returning[models.Subject](ctx, s, "db.CreateSubject", `
		INSERT INTO subjects (class_id, code, name, credits) VALUES ($1, $2, $3, $4)
		RETURNING *`, sub.ClassID, sub.Code, sub.Name, credits)
}

func (s *Store) SubjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Subject, error) {
	return selectByIDs[models.Subject](ctx, s, "db.SubjectsByIDs",
		`SELECT * FROM subjects WHERE id = ANY($1::uuid[])`, ids)
}

func (s *Store) SubjectsByClass(ctx context.Context, classID uuid.UUID) ([]models.Subject, error) {
	return selectAll[models.Subject](ctx, s, "db.SubjectsByClass",
		`SELECT * FROM subjects WHERE class_id = $1 ORDER BY code`, classID)
}

// AssignFaculty: повтор той же тройки (класс, преподаватель, предмет) даёт Conflict.
func (s *Store) AssignFaculty(ctx context.Context, classID, facultyID uuid.UUID, subject string) (*models.FacultyAssignment, error) {
	return returning[models.FacultyAssignment](ctx, s, "db.AssignFaculty", `
		INSERT INTO faculty_classes (class_id, faculty_id, subject) VALUES ($1, $2, $3)
		RETURNING *`, classID, facultyID, subject)
}

func (s *Store) UnassignFaculty(ctx context.Context, assignmentID uuid.UUID) error {
	return s.execOne(ctx, "db.UnassignFaculty", `DELETE FROM faculty_classes WHERE id = $1`, assignmentID)
}

func (s *Store) AssignmentsByClassIDs(ctx context.Context, classIDs []uuid.UUID) ([]models.FacultyAssignment, error) {
	return selectByIDs[models.FacultyAssignment](ctx, s, "db.AssignmentsByClassIDs", `
		SELECT * FROM faculty_classes WHERE class_id = ANY($1::uuid[])
		ORDER BY created_at`, classIDs)
}

func (s *Store) AssignmentsByFaculty(ctx context.Context, facultyID uuid.UUID) ([]models.FacultyAssignment, error) {
	return selectAll[models.FacultyAssignment](ctx, s, "db.AssignmentsByFaculty",
		`SELECT * FROM faculty_classes WHERE faculty_id = $1 ORDER BY created_at`, facultyID)
}

// IsAssigned: ведёт ли преподаватель хоть один предмет в классе.
func (s *Store) IsAssigned(ctx context.Context, facultyID, classID uuid.UUID) (bool, error) {
	v, err := getOne[bool](ctx, s, "db.IsAssigned", `
		SELECT EXISTS(SELECT 1 FROM faculty_classes WHERE faculty_id = $1 AND class_id = $2)`,
		facultyID, classID)
	if err != nil || v == nil {
		return false, err
	}
	return *v, nil
}
