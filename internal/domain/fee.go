package domain

import (
	"time"

	"github.com/segyhp/feedesk/pkg/utils"
	"github.com/shopspring/decimal"
)

const (
	FeeStatusPending = "pending"
	FeeStatusPaid    = "paid"
)

// FeePayment is one fee line recorded against a student
type FeePayment struct {
	ID            string           `json:"id" db:"id"`
	StudentID     string           `json:"studentId" db:"student_id"`
	Status        string           `json:"status" db:"status"`
	Amount        decimal.Decimal  `json:"amount" db:"amount"`
	PaidAmount    *decimal.Decimal `json:"paidAmount,omitempty" db:"paid_amount"`
	PaidDate      *time.Time       `json:"paidDate,omitempty" db:"paid_date"`
	DueDate       *time.Time       `json:"dueDate,omitempty" db:"due_date"`
	FeeType       string           `json:"feeType" db:"fee_type"`
	PaymentMethod string           `json:"paymentMethod" db:"payment_method"`
	Description   string           `json:"description" db:"description"`
	CreatedAt     *time.Time       `json:"createdAt,omitempty" db:"created_at"`
}

// IsPaid reports whether the payment counts towards the student's paid total
func (p FeePayment) IsPaid() bool {
	return p.Status == FeeStatusPaid
}

// Settled returns paidAmount, falling back to amount when paidAmount is absent
func (p FeePayment) Settled() decimal.Decimal {
	return utils.DecimalOrDefault(p.PaidAmount, p.Amount)
}

type CreateFeeRequest struct {
	StudentID   string          `json:"studentId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	DueDate     time.Time       `json:"dueDate" validate:"required"`
	Description string          `json:"description" validate:"max=255"`
	Status      string          `json:"status" validate:"required,oneof=pending paid"`
}

// PaymentView is a fee payment joined with its student for display
type PaymentView struct {
	Payment     FeePayment `json:"payment"`
	StudentName string     `json:"studentName"`
	RollNumber  string     `json:"rollNumber"`
	Orphan      bool       `json:"orphan"`
}
