package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/feedesk/internal/domain"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

func (r *postgresStore) ListFees(ctx context.Context) ([]domain.FeePayment, error) {
	query := `
		SELECT id, student_id, status, amount, paid_amount, paid_date, due_date,
		       fee_type, payment_method, description, created_at
		FROM fees
		ORDER BY created_at
	`

	fees := make([]domain.FeePayment, 0)
	if err := r.db.SelectContext(ctx, &fees, query); err != nil {
		return nil, r.dbError(ctx, "list_fees", err)
	}

	return fees, nil
}

// CreateFee records the fee line. A fee created as paid is settled in full at creation time.
// Amounts are rounded to the cent the NUMERIC(14,2) columns store.
func (r *postgresStore) CreateFee(ctx context.Context, request *domain.CreateFeeRequest) (*domain.FeePayment, error) {
	query := `
		INSERT INTO fees (id, student_id, status, amount, paid_amount, paid_date, due_date, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now().UTC()
	dueDate := request.DueDate
	amount := request.Amount.Round(2)
	fee := &domain.FeePayment{
		ID:          uuid.New().String(),
		StudentID:   request.StudentID,
		Status:      request.Status,
		Amount:      amount,
		DueDate:     &dueDate,
		Description: request.Description,
		CreatedAt:   &now,
	}
	if fee.IsPaid() {
		paid := amount
		fee.PaidAmount = &paid
		fee.PaidDate = &now
	}

	_, err := r.db.ExecContext(ctx, query,
		fee.ID,
		fee.StudentID,
		fee.Status,
		fee.Amount,
		fee.PaidAmount,
		fee.PaidDate,
		fee.DueDate,
		fee.Description,
		now,
	)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation, pqInvalidTextRepr:
			return nil, customError.WrapStudentNotFound(request.StudentID)
		}
		return nil, r.dbError(ctx, "create_fee", err)
	}

	return fee, nil
}
