package httpapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/portal"
	"github.com/Spok95/college-portal/internal/report"
	"github.com/Spok95/college-portal/internal/resolve"
)

func chiParam(r *http.Request, name string) string { return chi.URLParam(r, name) }

func joinSorted(ss []string) string {
	sort.Strings(ss)
	return strings.Join(ss, ",")
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleReport: /reports/fees: JSON, /reports/fees.csv и /reports/fees.xlsx: файлы.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := chiParam(r, "name")
	format := ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name, format = name[:i], name[i+1:]
	}
	typ, err := report.ParseType(name)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	sess := sessionFrom(r.Context())

	if format == "" {
		res, err := s.svc.Report(r.Context(), sess, typ)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		withWarnings(w, res.Table, res.Warnings)
		return
	}

	f, err := portal.ParseFormat(format)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	exp, err := s.svc.Export(r.Context(), sess, typ, f)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	setPartial(w, exp.Warnings)
	_, _ = w.Write(exp.Data)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Me(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	withWarnings(w, d, d.Warnings)
}

func (s *Server) handleMyAttendance(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.MyAttendance(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	withWarnings(w, a, a.Warnings)
}

func (s *Server) handleMyResults(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.MyResults(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	withWarnings(w, res.Records, res.Warnings)
}

func (s *Server) handleMyFees(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.MyFees(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	d, err := s.svc.StudentView(r.Context(), sessionFrom(r.Context()), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	withWarnings(w, d, d.Warnings)
}

type classJSON struct {
	ID       uuid.UUID             `json:"id"`
	Name     string                `json:"name"`
	Semester int                   `json:"semester"`
	Batch    string                `json:"batch"`
	Faculty  string                `json:"faculty"`
	Roster   []resolve.RosterEntry `json:"roster"`
	Subjects []models.Subject      `json:"subjects,omitempty"`
}

func classOut(v resolve.ClassView, subjects []models.Subject) classJSON {
	batch := report.Placeholder
	if v.Batch != nil {
		batch = v.Batch.Name
	}
	return classJSON{
		ID:       v.ID,
		Name:     v.Name,
		Semester: v.Semester,
		Batch:    batch,
		Faculty:  v.FacultySummary(),
		Roster:   v.Roster,
		Subjects: subjects,
	}
}

func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.ClassRoster(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	out := make([]classJSON, 0, len(views))
	for _, v := range views {
		out = append(out, classOut(v, nil))
	}
	writeJSON(w, http.StatusOK, out)
}

type attendanceRequest struct {
	ClassID uuid.UUID   `json:"class_id"`
	Date    string      `json:"date"`
	Present []uuid.UUID `json:"present"`
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := decode(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	day, err := parseDay("httpapi.MarkAttendance", "date", req.Date)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	sum, err := s.svc.MarkAttendance(r.Context(), sessionFrom(r.Context()), portal.MarkAttendanceInput{
		ClassID: req.ClassID, Date: day, Present: req.Present,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type invoiceRequest struct {
	StudentID   uuid.UUID       `json:"student_id"`
	Semester    int             `json:"semester"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
	Description *string         `json:"description"`
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decode(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	in := portal.NewInvoice{StudentID: req.StudentID, Semester: req.Semester, Amount: req.Amount, Description: req.Description}
	if req.DueDate != "" {
		due, err := parseDay("httpapi.CreateInvoice", "due_date", req.DueDate)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		in.DueDate = &due
	}
	inv, err := s.svc.CreateInvoice(r.Context(), sessionFrom(r.Context()), in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleInvoicePaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	inv, err := s.svc.MarkInvoicePaid(r.Context(), sessionFrom(r.Context()), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleCirculars(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeErr(w, r, apperr.Validation("httpapi.Circulars", "bad limit %q", v))
			return
		}
		limit = n
	}
	cs, err := s.svc.Circulars(r.Context(), sessionFrom(r.Context()), limit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

