package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/models"
)

func (s *Store) count(ctx context.Context, op, query string, args ...any) (int, error) {
	n, err := getOne[int](ctx, s, op, query, args...)
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

// CountStudents: nil status считает всех.
func (s *Store) CountStudents(ctx context.Context, status *models.StudentStatus) (int, error) {
	if status == nil {
		return s.count(ctx, "db.CountStudents", `SELECT COUNT(*) FROM students`)
	}
	return s.count(ctx, "db.CountStudents", `SELECT COUNT(*) FROM students WHERE status = $1`, string(*status))
}

func (s *Store) CountFaculty(ctx context.Context) (int, error) {
	return s.count(ctx, "db.CountFaculty", `SELECT COUNT(*) FROM faculty`)
}

func (s *Store) CountCourses(ctx context.Context) (int, error) {
	return s.count(ctx, "db.CountCourses", `SELECT COUNT(*) FROM courses`)
}

func (s *Store) CountClasses(ctx context.Context) (int, error) {
	return s.count(ctx, "db.CountClasses", `SELECT COUNT(*) FROM classes`)
}

func (s *Store) CountBatches(ctx context.Context) (int, error) {
	return s.count(ctx, "db.CountBatches", `SELECT COUNT(*) FROM batches`)
}

// CountActiveStudentsInClasses: пустой список даёт ноль без запроса.
func (s *Store) CountActiveStudentsInClasses(ctx context.Context, classIDs []uuid.UUID) (int, error) {
	if len(classIDs) == 0 {
		return 0, nil
	}
	return s.count(ctx, "db.CountActiveStudentsInClasses", `
		SELECT COUNT(*) FROM students
		WHERE status = 'active' AND class_id = ANY($1::uuid[])`, idArray(classIDs))
}
