package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue:
		return true
	}
	return false
}

type FeeInvoice struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	StudentID     uuid.NullUUID   `db:"student_id" json:"student_id"`
	Semester      int             `db:"semester" json:"semester"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"payment_status"`
	DueDate       *time.Time      `db:"due_date" json:"due_date,omitempty"`
	PaymentDate   *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
	Description   *string         `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
