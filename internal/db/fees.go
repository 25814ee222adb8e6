package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/college-portal/internal/models"
)

type InvoicePatch struct {
	Semester      *int
	Amount        *decimal.Decimal
	PaymentStatus *models.PaymentStatus
	DueDate       **time.Time
	Description   **string
}

func (s *Store) CreateInvoice(ctx context.Context, f models.FeeInvoice) (*models.FeeInvoice, error) {
	status := f.PaymentStatus
	if status == "" {
		status = models.PaymentPending
	}
	return returning[models.FeeInvoice](ctx, s, "db.CreateInvoice", `
		INSERT INTO fee_invoices (student_id, semester, amount, payment_status, due_date, payment_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`,
		f.StudentID, f.Semester, f.Amount, string(status), f.DueDate, f.PaymentDate, f.Description)
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*models.FeeInvoice, error) {
	return getOne[models.FeeInvoice](ctx, s, "db.GetInvoice", `SELECT * FROM fee_invoices WHERE id = $1`, id)
}

func (s *Store) UpdateInvoice(ctx context.Context, id uuid.UUID, p InvoicePatch) (*models.FeeInvoice, error) {
	var b setBuilder
	if p.Semester != nil {
		b.add("semester", *p.Semester)
	}
	if p.Amount != nil {
		b.add("amount", *p.Amount)
	}
	if p.PaymentStatus != nil {
		b.add("payment_status", string(*p.PaymentStatus))
	}
	if p.DueDate != nil {
		b.add("due_date", *p.DueDate)
	}
	if p.Description != nil {
		b.add("description", *p.Description)
	}
	if b.empty() {
		f, err := s.GetInvoice(ctx, id)
		return ensureFound(f, err, "db.UpdateInvoice", "invoice", id)
	}
	q, args := b.query("fee_invoices", id)
	return returning[models.FeeInvoice](ctx, s, "db.UpdateInvoice", q, args...)
}

// MarkPaid: статус paid и дата оплаты.
func (s *Store) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (*models.FeeInvoice, error) {
	return returning[models.FeeInvoice](ctx, s, "db.MarkPaid", `
		UPDATE fee_invoices SET payment_status = 'paid', payment_date = $1, updated_at = now()
		WHERE id = $2
		RETURNING *`, at, id)
}

func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "db.DeleteInvoice", `DELETE FROM fee_invoices WHERE id = $1`, id)
}

// ListInvoices: новые сверху.
func (s *Store) ListInvoices(ctx context.Context) ([]models.FeeInvoice, error) {
	return selectAll[models.FeeInvoice](ctx, s, "db.ListInvoices",
		`SELECT * FROM fee_invoices ORDER BY created_at DESC`)
}

func (s *Store) InvoicesByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.FeeInvoice, error) {
	return selectByIDs[models.FeeInvoice](ctx, s, "db.InvoicesByStudentIDs", `
		SELECT * FROM fee_invoices WHERE student_id = ANY($1::uuid[])
		ORDER BY created_at DESC`, ids)
}

// MarkOverdue переводит pending со сроком раньше today в overdue. Возвращает число строк.
func (s *Store) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	return s.exec(ctx, "db.MarkOverdue", `
		UPDATE fee_invoices SET payment_status = 'overdue', updated_at = now()
		WHERE payment_status = 'pending' AND due_date IS NOT NULL AND due_date < $1`,
		today.Format(dateLayout))
}
