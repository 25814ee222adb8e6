package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/db"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/portal"
)

// list: GET без параметров: f(ctx, session).
func list[Out any](s *Server, fn func(context.Context, models.Session) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context(), sessionFrom(r.Context()))
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// create: POST с телом In, ответ 201.
func create[In, Out any](s *Server, fn func(context.Context, models.Session, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decode(r, &in); err != nil {
			s.writeErr(w, r, err)
			return
		}
		out, err := fn(r.Context(), sessionFrom(r.Context()), in)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// remove: DELETE /{id}, ответ 204.
func remove(s *Server, fn func(context.Context, models.Session, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		if err := fn(r.Context(), sessionFrom(r.Context()), id); err != nil {
			s.writeErr(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// update: PATCH /{id}: тело decode-ится в Req и переводится в аргумент операции.
func update[Req, Arg, Out any](s *Server, conv func(Req) (Arg, error), fn func(context.Context, models.Session, uuid.UUID, Arg) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		var req Req
		if err := decode(r, &req); err != nil {
			s.writeErr(w, r, err)
			return
		}
		arg, err := conv(req)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		out, err := fn(r.Context(), sessionFrom(r.Context()), id, arg)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func same[T any](v T) (T, error) { return v, nil }

func nullID(id *uuid.UUID) *uuid.NullUUID {
	if id == nil {
		return nil
	}
	n := uuid.NullUUID{UUID: *id, Valid: *id != uuid.Nil}
	return &n
}

func parseDay(op, field, v string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, apperr.Validation(op, "%s must be YYYY-MM-DD", field)
	}
	return d, nil
}

// studentPatch: нулевой UUID в class_id/batch_id снимает привязку.
type studentPatch struct {
	StudentCode *string               `json:"student_id"`
	ClassID     *uuid.UUID            `json:"class_id"`
	BatchID     *uuid.UUID            `json:"batch_id"`
	Status      *models.StudentStatus `json:"status"`
}

func (p studentPatch) toDB() (db.StudentPatch, error) {
	return db.StudentPatch{
		StudentCode: p.StudentCode,
		ClassID:     nullID(p.ClassID),
		BatchID:     nullID(p.BatchID),
		Status:      p.Status,
	}, nil
}

type facultyPatch struct {
	Department  *string               `json:"department"`
	Designation *string               `json:"designation"`
	Status      *models.FacultyStatus `json:"status"`
}

func (p facultyPatch) toDB() (db.FacultyPatch, error) {
	return db.FacultyPatch{Department: p.Department, Designation: p.Designation, Status: p.Status}, nil
}

type invoicePatch struct {
	Semester      *int                  `json:"semester"`
	Amount        *decimal.Decimal      `json:"amount"`
	PaymentStatus *models.PaymentStatus `json:"payment_status"`
	DueDate       *string               `json:"due_date"`
	Description   *string               `json:"description"`
}

// toDB: пустая строка в due_date сбрасывает срок.
func (p invoicePatch) toDB() (db.InvoicePatch, error) {
	out := db.InvoicePatch{Semester: p.Semester, Amount: p.Amount, PaymentStatus: p.PaymentStatus}
	if p.Description != nil {
		out.Description = &p.Description
	}
	if p.DueDate != nil {
		var due *time.Time
		if *p.DueDate != "" {
			d, err := parseDay("httpapi.UpdateInvoice", "due_date", *p.DueDate)
			if err != nil {
				return out, err
			}
			due = &d
		}
		out.DueDate = &due
	}
	return out, nil
}

type marksPatch struct {
	Obtained decimal.Decimal `json:"marks_obtained"`
	Max      decimal.Decimal `json:"max_marks"`
}

func (s *Server) updateMarks(ctx context.Context, sess models.Session, id uuid.UUID, p marksPatch) (*models.Result, error) {
	return s.svc.UpdateResultMarks(ctx, sess, id, p.Obtained, p.Max)
}

func (s *Server) handleClass(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	d, err := s.svc.ClassDetail(r.Context(), sessionFrom(r.Context()), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	withWarnings(w, classOut(d.ClassView, d.Subjects), d.Warnings)
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	classID, err := pathID(r, "id")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var in portal.NewSubject
	if err := decode(r, &in); err != nil {
		s.writeErr(w, r, err)
		return
	}
	sub, err := s.svc.CreateSubject(r.Context(), sessionFrom(r.Context()), classID, in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type telegramLink struct {
	TelegramID int64 `json:"telegram_id"`
}

func (s *Server) handleLinkTelegram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var req telegramLink
	if err := decode(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.svc.LinkTelegram(r.Context(), sessionFrom(r.Context()), id, req.TelegramID); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
