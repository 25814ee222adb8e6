package portal

import (
	"bytes"
	"context"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/export"
	"github.com/Spok95/college-portal/internal/metrics"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/report"
	"github.com/Spok95/college-portal/internal/resolve"
)

type ReportResult struct {
	report.Table
	Warnings resolve.Warnings `json:"-"`
}

// Report: выборка, разрешение связей и проекция. Посещаемость и результаты
// ограничены RowLimit, новые сверху.
func (s *Service) Report(ctx context.Context, sess models.Session, typ report.Type) (*ReportResult, error) {
	if err := access.Require(sess, access.ViewReports); err != nil {
		return nil, err
	}
	res, err := s.project(ctx, typ)
	if err != nil {
		return nil, err
	}
	metrics.Reports.WithLabelValues(string(typ), "json").Inc()
	return res, nil
}

func (s *Service) project(ctx context.Context, typ report.Type) (*ReportResult, error) {
	const op = "portal.Report"
	o := s.opts.Report
	switch typ {
	case report.Students:
		rows, err := s.store.ListStudents(ctx, nil)
		if err != nil {
			return nil, err
		}
		views, warn := s.res.Students(ctx, rows, resolve.RelProfile)
		s.warn(op, warn)
		return &ReportResult{Table: report.StudentDirectory(views, o), Warnings: warn}, nil
	case report.Attendance:
		rows, err := s.store.RecentAttendance(ctx, s.opts.RowLimit)
		if err != nil {
			return nil, err
		}
		views, warn := s.res.Attendance(ctx, rows)
		s.warn(op, warn)
		return &ReportResult{Table: report.AttendanceLog(views, o), Warnings: warn}, nil
	case report.Results:
		rows, err := s.store.RecentResults(ctx, s.opts.RowLimit)
		if err != nil {
			return nil, err
		}
		views, warn := s.res.Results(ctx, rows)
		s.warn(op, warn)
		return &ReportResult{Table: report.ResultsLog(views, o), Warnings: warn}, nil
	case report.Fees:
		rows, err := s.store.ListInvoices(ctx)
		if err != nil {
			return nil, err
		}
		views, warn := s.res.Invoices(ctx, rows)
		s.warn(op, warn)
		return &ReportResult{Table: report.FeeLedger(views, o), Warnings: warn}, nil
	}
	return nil, apperr.Validation(op, "unknown report type %q", typ)
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	}
	return "", apperr.Validation("portal.ParseFormat", "unknown export format %q", s)
}

type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	Warnings    resolve.Warnings
}

func (s *Service) Export(ctx context.Context, sess models.Session, typ report.Type, format Format) (*Export, error) {
	if err := access.Require(sess, access.ExportReports); err != nil {
		return nil, err
	}
	res, err := s.project(ctx, typ)
	if err != nil {
		return nil, err
	}
	out := &Export{
		Filename: report.Filename(typ, s.now(), s.opts.Report.Location, string(format)),
		Warnings: res.Warnings,
	}
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, res.Table); err != nil {
			return nil, err
		}
		out.ContentType = "text/csv; charset=utf-8"
		out.Data = buf.Bytes()
	case FormatXLSX:
		data, err := export.Bytes(res.Table)
		if err != nil {
			return nil, err
		}
		out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		out.Data = data
	default:
		return nil, apperr.Validation("portal.Export", "unknown export format %q", format)
	}
	metrics.Reports.WithLabelValues(string(typ), string(format)).Inc()
	return out, nil
}
