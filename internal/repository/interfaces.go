package repository

import (
	"context"

	"github.com/segyhp/feedesk/internal/domain"
)

// Source is the read side the dashboard needs
type Source interface {
	// ListStudents returns every student snapshot
	ListStudents(ctx context.Context) ([]domain.Student, error)

	// ListFees returns every fee payment snapshot
	ListFees(ctx context.Context) ([]domain.FeePayment, error)
}

// Store is a Source that also accepts the panel's form submissions.
// Implemented by the backend API client and by the Postgres store.
type Store interface {
	Source

	// CreateFee records a new fee payment for a student
	CreateFee(ctx context.Context, request *domain.CreateFeeRequest) (*domain.FeePayment, error)

	// CreateStudent registers a new student
	CreateStudent(ctx context.Context, request *domain.CreateStudentRequest) (*domain.Student, error)

	// CreateDepartment creates a department with its specialities
	CreateDepartment(ctx context.Context, request *domain.DepartmentRequest) (*domain.Department, error)

	// UpdateDepartment replaces a department's fields
	UpdateDepartment(ctx context.Context, id string, request *domain.DepartmentRequest) (*domain.Department, error)

	// CreateEmployee creates an employee account with departments and permission flags
	CreateEmployee(ctx context.Context, request *domain.CreateEmployeeRequest) (*domain.Employee, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error
}
