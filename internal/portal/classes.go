package portal

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/resolve"
	"github.com/Spok95/college-portal/internal/stats"
)

// ClassRoster: админ видит все классы, преподаватель только свои.
func (s *Service) ClassRoster(ctx context.Context, sess models.Session) ([]resolve.ClassView, error) {
	if err := access.Require(sess, access.ViewStudents); err != nil {
		return nil, err
	}
	var classes []models.Class
	if sess.Role == models.RoleAdmin {
		rows, err := s.store.ListClasses(ctx)
		if err != nil {
			return nil, err
		}
		classes = rows
	} else {
		f, err := s.facultyFor(ctx, sess)
		if err != nil {
			return nil, err
		}
		as, err := s.store.AssignmentsByFaculty(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		rows, err := s.store.ClassesByIDs(ctx, assignedClasses(as))
		if err != nil {
			return nil, err
		}
		classes = rows
	}
	views, warn := s.res.Classes(ctx, classes)
	s.warn("portal.ClassRoster", warn)
	return views, nil
}

// assignedClasses: классы из назначений без повторов, в порядке назначения.
func assignedClasses(as []models.FacultyAssignment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(as))
	seen := map[uuid.UUID]bool{}
	for _, a := range as {
		if a.ClassID.Valid && !seen[a.ClassID.UUID] {
			seen[a.ClassID.UUID] = true
			ids = append(ids, a.ClassID.UUID)
		}
	}
	return ids
}

// Teaching: сводка преподавателя по его классам.
func (s *Service) Teaching(ctx context.Context, sess models.Session) (*stats.TeachingLoad, error) {
	if err := access.Require(sess, access.ViewOwnClasses); err != nil {
		return nil, err
	}
	f, err := s.facultyFor(ctx, sess)
	if err != nil {
		return nil, err
	}
	as, err := s.store.AssignmentsByFaculty(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	ids := assignedClasses(as)
	n, err := s.store.CountActiveStudentsInClasses(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &stats.TeachingLoad{Classes: len(ids), Students: n}, nil
}

type AssignInput struct {
	ClassID   uuid.UUID `json:"class_id" validate:"required"`
	FacultyID uuid.UUID `json:"faculty_id" validate:"required"`
	Subject   string    `json:"subject" validate:"notblank,max=100"`
}

// AssignFaculty: повтор той же тройки возвращает Conflict.
func (s *Service) AssignFaculty(ctx context.Context, sess models.Session, in AssignInput) (*models.FacultyAssignment, error) {
	const op = "portal.AssignFaculty"
	if err := access.Require(sess, access.ManageClasses); err != nil {
		return nil, err
	}
	if err := check(op, in); err != nil {
		return nil, err
	}
	return s.store.AssignFaculty(ctx, in.ClassID, in.FacultyID, in.Subject)
}

func (s *Service) UnassignFaculty(ctx context.Context, sess models.Session, assignmentID uuid.UUID) error {
	if err := access.Require(sess, access.ManageClasses); err != nil {
		return err
	}
	return s.store.UnassignFaculty(ctx, assignmentID)
}

type NewBatch struct {
	Name       string `json:"name" validate:"notblank"`
	Department string `json:"department" validate:"notblank"`
	Year       int    `json:"year" validate:"min=1950,max=2100"`
}

func (s *Service) CreateBatch(ctx context.Context, sess models.Session, in NewBatch) (*models.Batch, error) {
	if err := access.Require(sess, access.ManageBatches); err != nil {
		return nil, err
	}
	if err := check("portal.CreateBatch", in); err != nil {
		return nil, err
	}
	return s.store.CreateBatch(ctx, models.Batch{Name: in.Name, Department: in.Department, Year: in.Year})
}

type NewCourse struct {
	Code          string  `json:"code" validate:"notblank,max=32"`
	Name          string  `json:"name" validate:"notblank"`
	Department    string  `json:"department" validate:"notblank"`
	Description   *string `json:"description"`
	DurationYears int     `json:"duration_years" validate:"omitempty,min=1,max=8"`
}

func (s *Service) CreateCourse(ctx context.Context, sess models.Session, in NewCourse) (*models.Course, error) {
	if err := access.Require(sess, access.ManageCourses); err != nil {
		return nil, err
	}
	if err := check("portal.CreateCourse", in); err != nil {
		return nil, err
	}
	return s.store.CreateCourse(ctx, models.Course{
		Code: in.Code, Name: in.Name, Department: in.Department,
		Description: in.Description, DurationYears: in.DurationYears,
	})
}

type NewClass struct {
	Name     string     `json:"name" validate:"notblank"`
	Semester int        `json:"semester" validate:"min=1,max=8"`
	Section  *string    `json:"section"`
	BatchID  *uuid.UUID `json:"batch_id"`
}

func (s *Service) CreateClass(ctx context.Context, sess models.Session, in NewClass) (*models.Class, error) {
	if err := access.Require(sess, access.ManageClasses); err != nil {
		return nil, err
	}
	if err := check("portal.CreateClass", in); err != nil {
		return nil, err
	}
	return s.store.CreateClass(ctx, models.Class{
		Name: in.Name, Semester: in.Semester, Section: in.Section, BatchID: nullable(in.BatchID),
	})
}
