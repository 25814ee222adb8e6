package portal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/stats"
)

type MarkAttendanceInput struct {
	ClassID uuid.UUID   `json:"class_id" validate:"required"`
	Date    time.Time   `json:"date" validate:"required"`
	Present []uuid.UUID `json:"present"`
}

// canTeach: админ может всё, преподаватель только в классах, где ведёт предмет.
func (s *Service) canTeach(ctx context.Context, sess models.Session, classID uuid.UUID) (uuid.NullUUID, error) {
	if sess.Role == models.RoleAdmin {
		return uuid.NullUUID{}, nil
	}
	f, err := s.facultyFor(ctx, sess)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	ok, err := s.store.IsAssigned(ctx, f.ID, classID)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	if !ok {
		return uuid.NullUUID{}, apperr.Forbidden("portal.canTeach", "faculty %s is not assigned to class %s", f.FacultyCode, classID)
	}
	return uuid.NullUUID{UUID: f.ID, Valid: true}, nil
}

// MarkAttendance заменяет отметки класса за день целиком. Все активные студенты
// класса получают отметку: из Present получают present, остальные absent.
func (s *Service) MarkAttendance(ctx context.Context, sess models.Session, in MarkAttendanceInput) (*stats.AttendanceSummary, error) {
	const op = "portal.MarkAttendance"
	if err := access.Require(sess, access.MarkAttendance); err != nil {
		return nil, err
	}
	if err := check(op, in); err != nil {
		return nil, err
	}
	day := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(s.today()) {
		return nil, apperr.Validation(op, "date %s is in the future", day.Format(time.DateOnly))
	}
	facultyID, err := s.canTeach(ctx, sess, in.ClassID)
	if err != nil {
		return nil, err
	}

	roster, err := s.store.ActiveStudentsInClass(ctx, in.ClassID)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, apperr.Validation(op, "class %s has no active students", in.ClassID)
	}
	present := make(map[uuid.UUID]bool, len(in.Present))
	for _, id := range in.Present {
		present[id] = true
	}
	marks := make(map[uuid.UUID]models.AttendanceStatus, len(roster))
	for _, st := range roster {
		marks[st.ID] = models.Absent
		if present[st.ID] {
			marks[st.ID] = models.Present
			delete(present, st.ID)
		}
	}
	if len(present) > 0 {
		return nil, apperr.Validation(op, "%d student(s) are not active members of the class", len(present))
	}

	saved, err := s.store.ReplaceAttendance(ctx, in.ClassID, day, facultyID, marks)
	if err != nil {
		return nil, err
	}
	sum := stats.SummarizeAttendance(saved)
	return &sum, nil
}
