package portal

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/resolve"
)

// Справочники админа: потоки, курсы, классы с предметами, список преподавателей.

func (s *Service) Batches(ctx context.Context, sess models.Session) ([]models.Batch, error) {
	if err := access.Require(sess, access.ManageBatches); err != nil {
		return nil, err
	}
	return s.store.ListBatches(ctx)
}

func (s *Service) DeleteBatch(ctx context.Context, sess models.Session, id uuid.UUID) error {
	if err := access.Require(sess, access.ManageBatches); err != nil {
		return err
	}
	return s.store.DeleteBatch(ctx, id)
}

func (s *Service) Courses(ctx context.Context, sess models.Session) ([]models.Course, error) {
	if err := access.Require(sess, access.ManageCourses); err != nil {
		return nil, err
	}
	return s.store.ListCourses(ctx)
}

func (s *Service) DeleteCourse(ctx context.Context, sess models.Session, id uuid.UUID) error {
	if err := access.Require(sess, access.ManageCourses); err != nil {
		return err
	}
	return s.store.DeleteCourse(ctx, id)
}

func (s *Service) DeleteClass(ctx context.Context, sess models.Session, id uuid.UUID) error {
	if err := access.Require(sess, access.ManageClasses); err != nil {
		return err
	}
	return s.store.DeleteClass(ctx, id)
}

type ClassDetail struct {
	resolve.ClassView
	Subjects []models.Subject `json:"subjects"`
	Warnings resolve.Warnings `json:"-"`
}

// ClassDetail: класс с потоком, преподавателями и предметами. Преподаватель видит только свои классы.
func (s *Service) ClassDetail(ctx context.Context, sess models.Session, id uuid.UUID) (*ClassDetail, error) {
	const op = "portal.ClassDetail"
	if err := access.Require(sess, access.ViewStudents); err != nil {
		return nil, err
	}
	if _, err := s.canTeach(ctx, sess, id); err != nil {
		return nil, err
	}
	c, err := s.store.GetClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound(op, "class %s not found", id)
	}
	subjects, err := s.store.SubjectsByClass(ctx, id)
	if err != nil {
		return nil, err
	}
	views, warn := s.res.Classes(ctx, []models.Class{*c})
	s.warn(op, warn)
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return &ClassDetail{ClassView: views[0], Subjects: subjects, Warnings: warn}, nil
}

type NewSubject struct {
	Code    string `json:"code" validate:"notblank,max=32"`
	Name    string `json:"name" validate:"notblank,max=200"`
	Credits int    `json:"credits" validate:"omitempty,min=1,max=10"`
}

func (s *Service) CreateSubject(ctx context.Context, sess models.Session, classID uuid.UUID, in NewSubject) (*models.Subject, error) {
	if err := access.Require(sess, access.ManageClasses); err != nil {
		return nil, err
	}
	if err := check("portal.CreateSubject", in); err != nil {
		return nil, err
	}
	return s.store.CreateSubject(ctx, models.Subject{
		ClassID: uuid.NullUUID{UUID: classID, Valid: true},
		Code:    in.Code,
		Name:    in.Name,
		Credits: in.Credits,
	})
}

func (s *Service) FacultyDirectory(ctx context.Context, sess models.Session) ([]models.FacultyMember, error) {
	if err := access.Require(sess, access.ManageFaculty); err != nil {
		return nil, err
	}
	return s.store.ListFaculty(ctx)
}

// LinkTelegram привязывает чат к профилю; после этого бот узнаёт пользователя по chat id.
func (s *Service) LinkTelegram(ctx context.Context, sess models.Session, profileID uuid.UUID, telegramID int64) error {
	if err := access.Require(sess, access.ManageStudents); err != nil {
		return err
	}
	if telegramID == 0 {
		return apperr.Validation("portal.LinkTelegram", "telegram_id is required")
	}
	return s.store.LinkTelegram(ctx, profileID, telegramID)
}
