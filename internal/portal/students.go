package portal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/db"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/resolve"
	"github.com/Spok95/college-portal/internal/stats"
)

// StudentDetail: полный вид студента со сводками.
type StudentDetail struct {
	resolve.StudentView
	AttendanceSummary stats.AttendanceSummary `json:"attendance_summary"`
	FeeTotals         stats.FeeTotals         `json:"fee_totals"`
	Warnings          resolve.Warnings        `json:"-"`
}

func (s *Service) detail(ctx context.Context, id uuid.UUID) (*StudentDetail, error) {
	v, warn, err := s.res.Student(ctx, id, resolve.AllStudentRelations...)
	if err != nil {
		return nil, err
	}
	s.warn("portal.StudentView", warn)
	return &StudentDetail{
		StudentView:       *v,
		AttendanceSummary: stats.SummarizeAttendance(v.Attendance),
		FeeTotals:         stats.Fees(v.Fees),
		Warnings:          warn,
	}, nil
}

// StudentView: для админа и преподавателя любой студент, для студента только он сам.
func (s *Service) StudentView(ctx context.Context, sess models.Session, id uuid.UUID) (*StudentDetail, error) {
	if sess.Role == models.RoleStudent {
		me, err := s.studentFor(ctx, sess)
		if err != nil {
			return nil, err
		}
		if me.ID != id {
			return nil, apperr.Forbidden("portal.StudentView", "students may only view themselves")
		}
	} else if err := access.Require(sess, access.ViewStudents); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

func (s *Service) Me(ctx context.Context, sess models.Session) (*StudentDetail, error) {
	me, err := s.studentFor(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, me.ID)
}

type MyAttendance struct {
	Summary  stats.AttendanceSummary  `json:"summary"`
	Records  []resolve.AttendanceView `json:"records"`
	Warnings resolve.Warnings         `json:"-"`
}

func (s *Service) MyAttendance(ctx context.Context, sess models.Session) (*MyAttendance, error) {
	if err := access.Require(sess, access.ViewOwnAttendance); err != nil {
		return nil, err
	}
	me, err := s.studentFor(ctx, sess)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.AttendanceByStudentIDs(ctx, []uuid.UUID{me.ID})
	if err != nil {
		return nil, err
	}
	views, warn := s.res.Attendance(ctx, rows)
	s.warn("portal.MyAttendance", warn)
	return &MyAttendance{Summary: stats.SummarizeAttendance(rows), Records: views, Warnings: warn}, nil
}

type MyResults struct {
	Records  []resolve.ResultView
	Warnings resolve.Warnings
}

func (s *Service) MyResults(ctx context.Context, sess models.Session) (*MyResults, error) {
	if err := access.Require(sess, access.ViewOwnResults); err != nil {
		return nil, err
	}
	me, err := s.studentFor(ctx, sess)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ResultsByStudentIDs(ctx, []uuid.UUID{me.ID})
	if err != nil {
		return nil, err
	}
	views, warn := s.res.Results(ctx, rows)
	s.warn("portal.MyResults", warn)
	return &MyResults{Records: views, Warnings: warn}, nil
}

type MyFees struct {
	Totals   stats.FeeTotals     `json:"totals"`
	Invoices []models.FeeInvoice `json:"invoices"`
}

func (s *Service) MyFees(ctx context.Context, sess models.Session) (*MyFees, error) {
	if err := access.Require(sess, access.ViewOwnFees); err != nil {
		return nil, err
	}
	me, err := s.studentFor(ctx, sess)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.InvoicesByStudentIDs(ctx, []uuid.UUID{me.ID})
	if err != nil {
		return nil, err
	}
	return &MyFees{Totals: stats.Fees(rows), Invoices: rows}, nil
}

// Identity: учётная запись, создаваемая вместе со студентом или преподавателем.
type Identity struct {
	FullName string  `json:"full_name" validate:"notblank,max=200"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type NewStudent struct {
	Identity
	StudentCode    string     `json:"student_id" validate:"notblank,max=32"`
	BatchID        *uuid.UUID `json:"batch_id"`
	ClassID        *uuid.UUID `json:"class_id"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
}

func nullable(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// provision: профиль с ролью и bcrypt-хешем пароля; вызывается внутри транзакции.
func provision(ctx context.Context, tx *db.Store, id Identity, role models.Role) (*models.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(id.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	p, err := tx.CreateProfile(ctx, models.Profile{FullName: id.FullName, Email: id.Email, Phone: id.Phone, Role: role})
	if err != nil {
		return nil, err
	}
	if err := tx.SetCredentials(ctx, p.ID, string(hash)); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) CreateStudent(ctx context.Context, sess models.Session, in NewStudent) (*models.Student, error) {
	const op = "portal.CreateStudent"
	if err := access.Require(sess, access.ManageStudents); err != nil {
		return nil, err
	}
	if err := check(op, in); err != nil {
		return nil, err
	}
	var out *models.Student
	err := s.store.InTx(ctx, func(tx *db.Store) error {
		p, err := provision(ctx, tx, in.Identity, models.RoleStudent)
		if err != nil {
			return err
		}
		st := models.Student{
			StudentCode: in.StudentCode,
			ProfileID:   uuid.NullUUID{UUID: p.ID, Valid: true},
			BatchID:     nullable(in.BatchID),
			ClassID:     nullable(in.ClassID),
		}
		if in.EnrollmentDate != nil {
			st.EnrollmentDate = *in.EnrollmentDate
		}
		out, err = tx.CreateStudent(ctx, st)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) UpdateStudent(ctx context.Context, sess models.Session, id uuid.UUID, p db.StudentPatch) (*models.Student, error) {
	if err := access.Require(sess, access.ManageStudents); err != nil {
		return nil, err
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, apperr.Validation("portal.UpdateStudent", "bad status %q", *p.Status)
	}
	return s.store.UpdateStudent(ctx, id, p)
}

func (s *Service) DeleteStudent(ctx context.Context, sess models.Session, id uuid.UUID) error {
	if err := access.Require(sess, access.ManageStudents); err != nil {
		return err
	}
	return s.store.DeleteStudent(ctx, id)
}

type NewFaculty struct {
	Identity
	FacultyCode string     `json:"faculty_id" validate:"notblank,max=32"`
	Department  string     `json:"department" validate:"notblank"`
	Designation *string    `json:"designation"`
	JoiningDate *time.Time `json:"joining_date"`
}

func (s *Service) CreateFaculty(ctx context.Context, sess models.Session, in NewFaculty) (*models.FacultyMember, error) {
	const op = "portal.CreateFaculty"
	if err := access.Require(sess, access.ManageFaculty); err != nil {
		return nil, err
	}
	if err := check(op, in); err != nil {
		return nil, err
	}
	var out *models.FacultyMember
	err := s.store.InTx(ctx, func(tx *db.Store) error {
		p, err := provision(ctx, tx, in.Identity, models.RoleFaculty)
		if err != nil {
			return err
		}
		f := models.FacultyMember{
			FacultyCode: in.FacultyCode,
			ProfileID:   uuid.NullUUID{UUID: p.ID, Valid: true},
			Department:  in.Department,
			Designation: in.Designation,
		}
		if in.JoiningDate != nil {
			f.JoiningDate = *in.JoiningDate
		}
		out, err = tx.CreateFaculty(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) UpdateFaculty(ctx context.Context, sess models.Session, id uuid.UUID, p db.FacultyPatch) (*models.FacultyMember, error) {
	if err := access.Require(sess, access.ManageFaculty); err != nil {
		return nil, err
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, apperr.Validation("portal.UpdateFaculty", "bad status %q", *p.Status)
	}
	return s.store.UpdateFaculty(ctx, id, p)
}

func (s *Service) DeleteFaculty(ctx context.Context, sess models.Session, id uuid.UUID) error {
	if err := access.Require(sess, access.ManageFaculty); err != nil {
		return err
	}
	return s.store.DeleteFaculty(ctx, id)
}
