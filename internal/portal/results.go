package portal

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/stats"
)

const defaultExamType = "mid_term"

type MarkEntry struct {
	StudentID uuid.UUID       `json:"student_id" validate:"required"`
	Obtained  decimal.Decimal `json:"marks_obtained"`
}

type UploadResultsInput struct {
	ClassID      uuid.UUID       `json:"class_id" validate:"required"`
	SubjectID    *uuid.UUID      `json:"subject_id"`
	ExamType     string          `json:"exam_type" validate:"omitempty,max=64"`
	AcademicYear string          `json:"academic_year" validate:"omitempty,max=16"`
	Semester     int             `json:"semester" validate:"min=1,max=8"`
	MaxMarks     decimal.Decimal `json:"max_marks"`
	Marks        []MarkEntry     `json:"marks" validate:"required,min=1,dive"`
}

// UploadResults: оценка считается для каждой строки; max_marks <= 0 отклоняется целиком.
func (s *Service) UploadResults(ctx context.Context, sess models.Session, in UploadResultsInput) ([]models.Result, error) {
	const op = "portal.UploadResults"
	if err := access.Require(sess, access.UploadResults); err != nil {
		return nil, err
	}
	if err := check(op, in); err != nil {
		return nil, err
	}
	uploader, err := s.canTeach(ctx, sess, in.ClassID)
	if err != nil {
		return nil, err
	}
	if in.ExamType == "" {
		in.ExamType = defaultExamType
	}
	if in.AcademicYear == "" {
		in.AcademicYear = strconv.Itoa(s.today().Year())
	}

	rows := make([]models.Result, 0, len(in.Marks))
	for _, m := range in.Marks {
		g, err := stats.GradeFromPercentage(m.Obtained, in.MaxMarks)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.Result{
			StudentID:     uuid.NullUUID{UUID: m.StudentID, Valid: true},
			ClassID:       uuid.NullUUID{UUID: in.ClassID, Valid: true},
			SubjectID:     nullable(in.SubjectID),
			ExamType:      in.ExamType,
			AcademicYear:  in.AcademicYear,
			Semester:      in.Semester,
			MarksObtained: m.Obtained,
			MaxMarks:      in.MaxMarks,
			Grade:         &g,
			UploadedBy:    uploader,
		})
	}
	return s.store.InsertResults(ctx, rows)
}

// UpdateResultMarks пересчитывает оценку вместе с баллами.
func (s *Service) UpdateResultMarks(ctx context.Context, sess models.Session, id uuid.UUID, obtained, max decimal.Decimal) (*models.Result, error) {
	if err := access.Require(sess, access.UploadResults); err != nil {
		return nil, err
	}
	g, err := stats.GradeFromPercentage(obtained, max)
	if err != nil {
		return nil, err
	}
	if err := s.canEditResult(ctx, sess, "portal.UpdateResultMarks", id); err != nil {
		return nil, err
	}
	return s.store.UpdateResultMarks(ctx, id, obtained, max, g)
}

func (s *Service) DeleteResult(ctx context.Context, sess models.Session, id uuid.UUID) error {
	if err := access.Require(sess, access.UploadResults); err != nil {
		return err
	}
	if err := s.canEditResult(ctx, sess, "portal.DeleteResult", id); err != nil {
		return err
	}
	return s.store.DeleteResult(ctx, id)
}

// canEditResult: преподаватель правит только результаты своих классов.
// Результат без класса (класс удалён) доступен только админу.
func (s *Service) canEditResult(ctx context.Context, sess models.Session, op string, id uuid.UUID) error {
	if sess.Role == models.RoleAdmin {
		return nil
	}
	r, err := s.store.GetResult(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return apperr.NotFound(op, "result %s not found", id)
	}
	if !r.ClassID.Valid {
		return apperr.Forbidden(op, "result %s is not attached to a class", id)
	}
	_, err = s.canTeach(ctx, sess, r.ClassID.UUID)
	return err
}
