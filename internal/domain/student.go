package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Placeholder shown for payments whose student cannot be resolved
const UnknownStudent = "Unknown"

// Student represents an admitted student as served by the backend
type Student struct {
	ID           string          `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	RollNumber   string          `json:"rollNumber" db:"roll_number"`
	DepartmentID string          `json:"departmentId" db:"department_id"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty" db:"created_at"`
	TotalFee     decimal.Decimal `json:"totalFee" db:"total_fee"`
}

// DTOs for requests and responses

type CreateStudentRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	RollNumber   string          `json:"rollNumber" validate:"required,max=40"`
	DepartmentID string          `json:"departmentId" validate:"required"`
	TotalFee     decimal.Decimal `json:"totalFee" validate:"gte=0"`
}

// DueRecord is a student with an outstanding balance
type DueRecord struct {
	Student    Student         `json:"student"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	DueAmount  decimal.Decimal `json:"dueAmount"`
}
