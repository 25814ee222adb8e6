package portal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/db"
	"github.com/Spok95/college-portal/internal/models"
)

type NewInvoice struct {
	StudentID   uuid.UUID       `json:"student_id" validate:"required"`
	Semester    int             `json:"semester" validate:"min=1,max=8"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *time.Time      `json:"due_date"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
}

func (s *Service) CreateInvoice(ctx context.Context, sess models.Session, in NewInvoice) (*models.FeeInvoice, error) {
	const op = "portal.CreateInvoice"
	if err := access.Require(sess, access.ManageFees); err != nil {
		return nil, err
	}
	if err := check(op, in); err != nil {
		return nil, err
	}
	if in.Amount.IsNegative() {
		return nil, apperr.Validation(op, "amount must not be negative")
	}
	return s.store.CreateInvoice(ctx, models.FeeInvoice{
		StudentID:   uuid.NullUUID{UUID: in.StudentID, Valid: true},
		Semester:    in.Semester,
		Amount:      in.Amount,
		DueDate:     in.DueDate,
		Description: in.Description,
	})
}

func (s *Service) UpdateInvoice(ctx context.Context, sess models.Session, id uuid.UUID, p db.InvoicePatch) (*models.FeeInvoice, error) {
	const op = "portal.UpdateInvoice"
	if err := access.Require(sess, access.ManageFees); err != nil {
		return nil, err
	}
	if p.PaymentStatus != nil && !p.PaymentStatus.Valid() {
		return nil, apperr.Validation(op, "bad payment status %q", *p.PaymentStatus)
	}
	if p.Amount != nil && p.Amount.IsNegative() {
		return nil, apperr.Validation(op, "amount must not be negative")
	}
	return s.store.UpdateInvoice(ctx, id, p)
}

func (s *Service) MarkInvoicePaid(ctx context.Context, sess models.Session, id uuid.UUID) (*models.FeeInvoice, error) {
	if err := access.Require(sess, access.ManageFees); err != nil {
		return nil, err
	}
	return s.store.MarkPaid(ctx, id, s.now())
}

func (s *Service) DeleteInvoice(ctx context.Context, sess models.Session, id uuid.UUID) error {
	if err := access.Require(sess, access.ManageFees); err != nil {
		return err
	}
	return s.store.DeleteInvoice(ctx, id)
}
