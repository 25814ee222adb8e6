package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/college-portal/internal/models"
)

// InsertResults: пачка результатов экзамена одной транзакцией.
func (s *Store) InsertResults(ctx context.Context, rows []models.Result) ([]models.Result, error) {
	const op = "db.InsertResults"
	out := make([]models.Result, 0, len(rows))
	err := s.InTx(ctx, func(tx *Store) error {
		for _, r := range rows {
			var grade *string
			if r.Grade != nil {
				g := string(*r.Grade)
				grade = &g
			}
			saved, err := returning[models.Result](ctx, tx, op, `
				INSERT INTO results (student_id, class_id, subject_id, exam_type, academic_year,
				                     semester, marks_obtained, max_marks, grade, uploaded_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING *`,
				r.StudentID, r.ClassID, r.SubjectID, r.ExamType, r.AcademicYear,
				r.Semester, r.MarksObtained, r.MaxMarks, grade, r.UploadedBy)
			if err != nil {
				return err
			}
			out = append(out, *saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetResult(ctx context.Context, id uuid.UUID) (*models.Result, error) {
	return getOne[models.Result](ctx, s, "db.GetResult", `SELECT * FROM results WHERE id = $1`, id)
}

// UpdateResultMarks: оценку пересчитывает вызывающий.
func (s *Store) UpdateResultMarks(ctx context.Context, id uuid.UUID, obtained, max decimal.Decimal, grade models.Grade) (*models.Result, error) {
	return returning[models.Result](ctx, s, "db.UpdateResultMarks", `
		UPDATE results SET marks_obtained = $1, max_marks = $2, grade = $3, updated_at = now()
		WHERE id = $4
		RETURNING *`, obtained, max, string(grade), id)
}

func (s *Store) DeleteResult(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "db.DeleteResult", `DELETE FROM results WHERE id = $1`, id)
}

func (s *Store) RecentResults(ctx context.Context, limit int) ([]models.Result, error) {
	return selectAll[models.Result](ctx, s, "db.RecentResults",
		`SELECT * FROM results ORDER BY created_at DESC LIMIT $1`, limit)
}

// AllGrades: для распределения оценок.
func (s *Store) AllGrades(ctx context.Context) ([]models.Grade, error) {
	return selectAll[models.Grade](ctx, s, "db.AllGrades", `SELECT grade FROM results WHERE grade IS NOT NULL`)
}

func (s *Store) ResultsByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Result, error) {
	return selectByIDs[models.Result](ctx, s, "db.ResultsByStudentIDs", `
		SELECT * FROM results WHERE student_id = ANY($1::uuid[])
		ORDER BY created_at DESC`, ids)
}
