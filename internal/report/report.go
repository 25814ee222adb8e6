// Package report проецирует разрешённые записи в четыре фиксированные таблицы.
package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/resolve"
)

type Type string

const (
	Students   Type = "students"
	Attendance Type = "attendance"
	Results    Type = "results"
	Fees       Type = "fees"
)

var Types = []Type{Students, Attendance, Results, Fees}

var headers = map[Type][]string{
	Students:   {"Student ID", "Name", "Email", "Status", "Enrollment Date"},
	Attendance: {"Date", "Student ID", "Name", "Class", "Status"},
	Results:    {"Student ID", "Name", "Subject", "Marks", "Grade", "Exam Type"},
	Fees:       {"Student ID", "Name", "Semester", "Amount", "Status", "Due Date"},
}

var titles = map[Type]string{
	Students:   "Student Directory",
	Attendance: "Attendance",
	Results:    "Results",
	Fees:       "Fees",
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := headers[t]; !ok {
		return "", apperr.Validation("report.ParseType", "unknown report type %q", s)
	}
	return t, nil
}

func (t Type) Title() string { return titles[t] }

// Header: копия, чтобы вызывающий не испортил общий порядок колонок.
func (t Type) Header() []string {
	return append([]string(nil), headers[t]...)
}

// Placeholder: значение для отсутствующей связи или пустого поля.
const Placeholder = "-"

// Table: заголовок и строки одинаковой длины.
type Table struct {
	Type   Type       `json:"type"`
	Title  string     `json:"title"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

type Options struct {
	Currency string
	Location *time.Location
}

func (o Options) currency() string {
	if o.Currency == "" {
		return "₹"
	}
	return o.Currency
}

func newTable(t Type, n int) Table {
	return Table{Type: t, Title: t.Title(), Header: t.Header(), Rows: make([][]string, 0, n)}
}

// orDash: пустое значение заменяется прочерком; переводы строк приводятся к "\n",
// иначе ParseCSV вернёт ячейку не в том виде, в каком она записана.
func orDash(s string) string {
	if s == "" {
		return Placeholder
	}
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// day: календарные даты хранятся без зоны; выводим как есть.
func day(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(time.DateOnly)
}

func StudentDirectory(views []resolve.StudentView, _ Options) Table {
	tb := newTable(Students, len(views))
	for _, v := range views {
		email := ""
		if v.Profile != nil {
			email = v.Profile.Email
		}
		tb.Rows = append(tb.Rows, []string{
			orDash(v.StudentCode),
			orDash(v.Name()),
			orDash(email),
			orDash(string(v.Status)),
			day(v.EnrollmentDate),
		})
	}
	return tb
}

func AttendanceLog(views []resolve.AttendanceView, _ Options) Table {
	tb := newTable(Attendance, len(views))
	for _, v := range views {
		class := ""
		if v.Class != nil {
			class = v.Class.Name
		}
		tb.Rows = append(tb.Rows, []string{
			day(v.Date),
			orDash(v.Code()),
			orDash(v.Name()),
			orDash(class),
			orDash(string(v.Status)),
		})
	}
	return tb
}

func ResultsLog(views []resolve.ResultView, _ Options) Table {
	tb := newTable(Results, len(views))
	for _, v := range views {
		subject, grade := "", ""
		if v.Subject != nil {
			subject = v.Subject.Name
		}
		if v.Grade != nil {
			grade = string(*v.Grade)
		}
		tb.Rows = append(tb.Rows, []string{
			orDash(v.Code()),
			orDash(v.Name()),
			orDash(subject),
			v.MarksObtained.String() + "/" + v.MaxMarks.String(),
			orDash(grade),
			orDash(v.ExamType),
		})
	}
	return tb
}

func FeeLedger(views []resolve.FeeView, o Options) Table {
	tb := newTable(Fees, len(views))
	for _, v := range views {
		due := Placeholder
		if v.DueDate != nil {
			due = day(*v.DueDate)
		}
		tb.Rows = append(tb.Rows, []string{
			orDash(v.Code()),
			orDash(v.Name()),
			"Sem " + strconv.Itoa(v.Semester),
			o.currency() + v.Amount.String(),
			orDash(string(v.PaymentStatus)),
			due,
		})
	}
	return tb
}
