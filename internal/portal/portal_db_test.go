//go:build testutil
// +build testutil

package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/report"
	"github.com/Spok95/college-portal/internal/testutil/testdb"
)

func TestPortalFlow(t *testing.T) {
	h, err := testdb.Start(context.Background())
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()
	s := New(h.Store, nil, Options{RowLimit: 100})
	s.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

	batch, err := s.CreateBatch(ctx, admin, NewBatch{Name: "2024-CSE", Department: "CSE", Year: 2024})
	require.NoError(t, err)
	class, err := s.CreateClass(ctx, admin, NewClass{Name: "CSE-A", Semester: 3, BatchID: &batch.ID})
	require.NoError(t, err)

	john, err := s.CreateStudent(ctx, admin, NewStudent{
		Identity:    Identity{FullName: "Doe, John", Email: "John@College.test", Password: "password123"},
		StudentCode: "S-001",
		ClassID:     &class.ID,
		BatchID:     &batch.ID,
	})
	require.NoError(t, err)
	ann, err := s.CreateStudent(ctx, admin, NewStudent{
		Identity:    Identity{FullName: "Ann Lee", Email: "ann@college.test", Password: "password123"},
		StudentCode: "S-002",
		ClassID:     &class.ID,
	})
	require.NoError(t, err)

	_, err = s.CreateStudent(ctx, admin, NewStudent{
		Identity:    Identity{FullName: "Dup", Email: "john@college.test", Password: "password123"},
		StudentCode: "S-003",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "duplicate email: %v", err)

	// профиль должен откатиться вместе со студентом
	_, err = s.CreateStudent(ctx, admin, NewStudent{
		Identity:    Identity{FullName: "Other", Email: "other@college.test", Password: "password123"},
		StudentCode: "S-001",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "duplicate code: %v", err)
	_, err = s.CreateStudent(ctx, admin, NewStudent{
		Identity:    Identity{FullName: "Other", Email: "other@college.test", Password: "password123"},
		StudentCode: "S-004",
	})
	require.NoError(t, err)

	rao, err := s.CreateFaculty(ctx, admin, NewFaculty{
		Identity:    Identity{FullName: "Dr. Rao", Email: "rao@college.test", Password: "password123"},
		FacultyCode: "F-1",
		Department:  "CSE",
	})
	require.NoError(t, err)
	raoSession := models.Session{ProfileID: rao.ProfileID.UUID, Role: models.RoleFaculty}

	// без назначения преподаватель не отмечает посещаемость
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err = s.MarkAttendance(ctx, raoSession, MarkAttendanceInput{ClassID: class.ID, Date: day, Present: []uuid.UUID{john.ID}})
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "%v", err)

	_, err = s.AssignFaculty(ctx, admin, AssignInput{ClassID: class.ID, FacultyID: rao.ID, Subject: "Algorithms"})
	require.NoError(t, err)

	sum, err := s.MarkAttendance(ctx, raoSession, MarkAttendanceInput{ClassID: class.ID, Date: day, Present: []uuid.UUID{john.ID, ann.ID}})
	require.NoError(t, err)
	assert.Equal(t, 100, sum.Percentage)

	// повторная отметка за тот же день заменяет, а не добавляет
	sum, err = s.MarkAttendance(ctx, raoSession, MarkAttendanceInput{ClassID: class.ID, Date: day, Present: []uuid.UUID{john.ID}})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 50, sum.Percentage)

	results, err := s.UploadResults(ctx, raoSession, UploadResultsInput{
		ClassID:  class.ID,
		Semester: 3,
		MaxMarks: decimal.NewFromInt(100),
		Marks: []MarkEntry{
			{StudentID: john.ID, Obtained: decimal.NewFromInt(45)},
			{StudentID: ann.ID, Obtained: decimal.NewFromInt(90)},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.GradeD, *results[0].Grade)
	assert.Equal(t, "mid_term", results[0].ExamType)
	assert.Equal(t, "2024", results[0].AcademicYear)

	updated, err := s.UpdateResultMarks(ctx, raoSession, results[0].ID, decimal.NewFromInt(80), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, *updated.Grade)

	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	inv, err := s.CreateInvoice(ctx, admin, NewInvoice{StudentID: john.ID, Semester: 3, Amount: decimal.NewFromInt(500), DueDate: &due})
	require.NoError(t, err)
	_, err = s.CreateInvoice(ctx, admin, NewInvoice{StudentID: ann.ID, Semester: 3, Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)
	_, err = s.MarkInvoicePaid(ctx, admin, inv.ID)
	require.NoError(t, err)

	d, err := s.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Counts.Students)
	assert.Equal(t, 1, d.Counts.Faculty)
	assert.Equal(t, "500", d.Fees.Paid.String())
	assert.Equal(t, "300", d.Fees.Pending.String())

	// преподаватель видит только свои классы и не видит оплат
	_, err = s.Dashboard(ctx, raoSession)
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "%v", err)
	load, err := s.Teaching(ctx, raoSession)
	require.NoError(t, err)
	assert.Equal(t, 1, load.Classes)
	assert.Equal(t, 2, load.Students)

	fees, err := s.Report(ctx, admin, report.Fees)
	require.NoError(t, err)
	assert.Empty(t, fees.Warnings)
	require.Len(t, fees.Rows, 2)

	exp, err := s.Export(ctx, admin, report.Students, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "students_report_2024-03-15.csv", exp.Filename)
	header, rows, err := report.ParseCSV(string(exp.Data))
	require.NoError(t, err)
	assert.Equal(t, report.Students.Header(), header)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Doe, John", rows[0][1])
	assert.Equal(t, "john@college.test", rows[0][2])

	johnSession := models.Session{ProfileID: john.ProfileID.UUID, Role: models.RoleStudent}
	me, err := s.Me(ctx, johnSession)
	require.NoError(t, err)
	assert.Equal(t, "Doe, John", me.Name())
	require.NotNil(t, me.ClassBatch)
	assert.Equal(t, 100, me.AttendanceSummary.Percentage)

	_, err = s.StudentView(ctx, johnSession, ann.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "%v", err)

	classes, err := s.ClassRoster(ctx, raoSession)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Dr. Rao (Algorithms)", classes[0].FacultySummary())

	// справочники
	sub, err := s.CreateSubject(ctx, admin, class.ID, NewSubject{Code: "CS301", Name: "Algorithms"})
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Credits)
	detail, err := s.ClassDetail(ctx, raoSession, class.ID)
	require.NoError(t, err)
	require.Len(t, detail.Subjects, 1)
	assert.Equal(t, "2024-CSE", detail.Batch.Name)
	_, err = s.ClassDetail(ctx, admin, uuid.New())
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "%v", err)

	staff, err := s.FacultyDirectory(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, staff, 1)

	require.NoError(t, s.LinkTelegram(ctx, admin, john.ProfileID.UUID, 777))
	linked, err := h.Store.GetProfileByTelegramID(ctx, 777)
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, john.ProfileID.UUID, linked.ID)

	require.NoError(t, s.DeleteResult(ctx, raoSession, results[1].ID))
	assert.True(t, errors.Is(s.DeleteResult(ctx, admin, results[1].ID), apperr.ErrNotFound))

	c, err := s.PublishCircular(ctx, admin, NewCircular{Title: "Exams", Content: "Schedule attached"})
	require.NoError(t, err)
	off := false
	c, err = s.UpdateCircular(ctx, admin, c.ID, CircularUpdate{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, c.IsActive)
	assert.Equal(t, "Exams", c.Title)

	// после удаления класса результат остаётся без класса, править его может только админ
	require.NoError(t, s.DeleteClass(ctx, admin, class.ID))
	_, err = s.UpdateResultMarks(ctx, raoSession, results[0].ID, decimal.NewFromInt(10), decimal.NewFromInt(100))
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "%v", err)
	assert.True(t, errors.Is(s.DeleteResult(ctx, raoSession, results[0].ID), apperr.ErrForbidden))
	_, err = s.UpdateResultMarks(ctx, admin, results[0].ID, decimal.NewFromInt(10), decimal.NewFromInt(100))
	require.NoError(t, err)
}
