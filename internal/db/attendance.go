package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
)

const dateLayout = "2006-01-02"

// ReplaceAttendance: отметки класса за день заменяются целиком (delete + insert в одной транзакции).
// Advisory-lock по (класс, дата) сериализует параллельные сохранения: побеждает последний.
func (s *Store) ReplaceAttendance(ctx context.Context, classID uuid.UUID, date time.Time, facultyID uuid.NullUUID, marks map[uuid.UUID]models.AttendanceStatus) ([]models.Attendance, error) {
	const op = "db.ReplaceAttendance"
	day := date.Format(dateLayout)
	var out []models.Attendance

	err := s.InTx(ctx, func(tx *Store) error {
		if _, err := tx.exec(ctx, op,
			`SELECT pg_advisory_xact_lock(hashtext($1::text || '/' || $2::text))`, classID.String(), day); err != nil {
			return err
		}
		if _, err := tx.exec(ctx, op,
			`DELETE FROM attendance WHERE class_id = $1 AND date = $2`, classID, day); err != nil {
			return err
		}
		out = make([]models.Attendance, 0, len(marks))
		for studentID, status := range marks {
			if !status.Valid() {
				return apperr.Validation(op, "bad status %q", status)
			}
			a, err := returning[models.Attendance](ctx, tx, op, `
				INSERT INTO attendance (student_id, class_id, faculty_id, date, status)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING *`, studentID, classID, facultyID, day, string(status))
			if err != nil {
				return err
			}
			out = append(out, *a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) AttendanceByClassDate(ctx context.Context, classID uuid.UUID, date time.Time) ([]models.Attendance, error) {
	return selectAll[models.Attendance](ctx, s, "db.AttendanceByClassDate",
		`SELECT * FROM attendance WHERE class_id = $1 AND date = $2`, classID, date.Format(dateLayout))
}

// RecentAttendance: новые сверху, не больше limit.
func (s *Store) RecentAttendance(ctx context.Context, limit int) ([]models.Attendance, error) {
	return selectAll[models.Attendance](ctx, s, "db.RecentAttendance",
		`SELECT * FROM attendance ORDER BY date DESC, created_at DESC LIMIT $1`, limit)
}

// AllAttendanceStatuses: для общего процента посещаемости на дашборде.
func (s *Store) AllAttendanceStatuses(ctx context.Context) ([]models.AttendanceStatus, error) {
	return selectAll[models.AttendanceStatus](ctx, s, "db.AllAttendanceStatuses", `SELECT status FROM attendance`)
}

func (s *Store) AttendanceByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Attendance, error) {
	return selectByIDs[models.Attendance](ctx, s, "db.AttendanceByStudentIDs", `
		SELECT * FROM attendance WHERE student_id = ANY($1::uuid[])
		ORDER BY date DESC`, ids)
}
