package stats

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Spok95/college-portal/internal/models"
)

// Counter: источник данных дашборда. Реализуется *db.Store.
type Counter interface {
	CountStudents(ctx context.Context, status *models.StudentStatus) (int, error)
	CountFaculty(ctx context.Context) (int, error)
	CountCourses(ctx context.Context) (int, error)
	CountClasses(ctx context.Context) (int, error)
	CountBatches(ctx context.Context) (int, error)
	AllAttendanceStatuses(ctx context.Context) ([]models.AttendanceStatus, error)
	ListInvoices(ctx context.Context) ([]models.FeeInvoice, error)
	AllGrades(ctx context.Context) ([]models.Grade, error)
}

type Counts struct {
	Students       int `json:"students"`
	ActiveStudents int `json:"active_students"`
	Faculty        int `json:"faculty"`
	Courses        int `json:"courses"`
	Classes        int `json:"classes"`
	Batches        int `json:"batches"`
}

type Dashboard struct {
	Counts     Counts            `json:"counts"`
	Attendance AttendanceSummary `json:"attendance"`
	Fees       FeeTotals         `json:"fees"`
	Grades     []GradeCount      `json:"grades"`
}

// EntityCounts: плитки дашборда. ActiveStudents учитывает фильтр по статусу.
func EntityCounts(ctx context.Context, c Counter) (Counts, error) {
	var out Counts
	active := models.StudentActive
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Students, err = c.CountStudents(ctx, nil)
		return
	})
	g.Go(func() (err error) {
		out.ActiveStudents, err = c.CountStudents(ctx, &active)
		return
	})
	g.Go(func() (err error) {
		out.Faculty, err = c.CountFaculty(ctx)
		return
	})
	g.Go(func() (err error) {
		out.Courses, err = c.CountCourses(ctx)
		return
	})
	g.Go(func() (err error) {
		out.Classes, err = c.CountClasses(ctx)
		return
	})
	g.Go(func() (err error) {
		out.Batches, err = c.CountBatches(ctx)
		return
	})
	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return out, nil
}

func BuildDashboard(ctx context.Context, c Counter) (*Dashboard, error) {
	var (
		d        Dashboard
		statuses []models.AttendanceStatus
		invoices []models.FeeInvoice
		grades   []models.Grade
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Counts, err = EntityCounts(gctx, c)
		return
	})
	g.Go(func() (err error) {
		statuses, err = c.AllAttendanceStatuses(gctx)
		return
	})
	g.Go(func() (err error) {
		invoices, err = c.ListInvoices(gctx)
		return
	})
	g.Go(func() (err error) {
		grades, err = c.AllGrades(gctx)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.Attendance = SummarizeStatuses(statuses)
	d.Fees = Fees(invoices)
	d.Grades = GradeDistribution(grades)
	return &d, nil
}

// TeachingLoad: сводка преподавателя. Только свои классы, без оплат и общих оценок.
type TeachingLoad struct {
	Classes  int `json:"classes"`
	Students int `json:"students"`
}
