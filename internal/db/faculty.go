package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/models"
)

type FacultyPatch struct {
	FacultyCode *string
	ProfileID   *uuid.NullUUID
	Department  *string
	Designation *string
	Status      *models.FacultyStatus
	JoiningDate *time.Time
}

func (s *Store) CreateFaculty(ctx context.Context, f models.FacultyMember) (*models.FacultyMember, error) {
	joined := f.JoiningDate
	if joined.IsZero() {
		joined = time.Now()
	}
	status := f.Status
	if status == "" {
		status = models.FacultyActive
	}
	return returning[models.FacultyMember](ctx, s, "db.CreateFaculty", `
		INSERT INTO faculty (faculty_id, user_id, department, designation, status, joining_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`,
		f.FacultyCode, f.ProfileID, f.Department, f.Designation, string(status), joined)
}

func (s *Store) UpdateFaculty(ctx context.Context, id uuid.UUID, p FacultyPatch) (*models.FacultyMember, error) {
	var b setBuilder
	if p.FacultyCode != nil {
		b.add("faculty_id", *p.FacultyCode)
	}
	if p.ProfileID != nil {
		b.add("user_id", *p.ProfileID)
	}
	if p.Department != nil {
		b.add("department", *p.Department)
	}
	if p.Designation != nil {
		b.add("designation", *p.Designation)
	}
	if p.Status != nil {
		b.add("status", string(*p.Status))
	}
	if p.JoiningDate != nil {
		b.add("joining_date", *p.JoiningDate)
	}
	if b.empty() {
		f, err := s.GetFaculty(ctx, id)
		return ensureFound(f, err, "db.UpdateFaculty", "faculty", id)
	}
	q, args := b.query("faculty", id)
	return returning[models.FacultyMember](ctx, s, "db.UpdateFaculty", q, args...)
}

func (s *Store) DeleteFaculty(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "db.DeleteFaculty", `DELETE FROM faculty WHERE id = $1`, id)
}

func (s *Store) GetFaculty(ctx context.Context, id uuid.UUID) (*models.FacultyMember, error) {
	return getOne[models.FacultyMember](ctx, s, "db.GetFaculty", `SELECT * FROM faculty WHERE id = $1`, id)
}

func (s *Store) GetFacultyByProfile(ctx context.Context, profileID uuid.UUID) (*models.FacultyMember, error) {
	return getOne[models.FacultyMember](ctx, s, "db.GetFacultyByProfile",
		`SELECT * FROM faculty WHERE user_id = $1`, profileID)
}

func (s *Store) ListFaculty(ctx context.Context) ([]models.FacultyMember, error) {
	return selectAll[models.FacultyMember](ctx, s, "db.ListFaculty", `SELECT * FROM faculty ORDER BY faculty_id`)
}

func (s *Store) FacultyByIDs(ctx context.Context, ids []uuid.UUID) ([]models.FacultyMember, error) {
	return selectByIDs[models.FacultyMember](ctx, s, "db.FacultyByIDs",
		`SELECT * FROM faculty WHERE id = ANY($1::uuid[])`, ids)
}
