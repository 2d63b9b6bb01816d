package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/segyhp/feedesk/internal/domain"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

func (r *postgresStore) CreateEmployee(ctx context.Context, request *domain.CreateEmployeeRequest) (*domain.Employee, error) {
	query := `
		INSERT INTO employees (id, name, email, phone, designation, departments, access_permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	employee := &domain.Employee{
		ID:                uuid.New().String(),
		Name:              request.Name,
		Email:             request.Email,
		Phone:             request.Phone,
		Designation:       request.Designation,
		Departments:       nonNil(request.Departments),
		AccessPermissions: nonNil(request.AccessPermissions),
	}

	_, err := r.db.ExecContext(ctx, query,
		employee.ID,
		employee.Name,
		employee.Email,
		employee.Phone,
		employee.Designation,
		pq.Array(employee.Departments),
		pq.Array(employee.AccessPermissions),
	)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return nil, customError.WrapConflict(fmt.Sprintf("Employee with email %s already exists", request.Email))
		}
		return nil, r.dbError(ctx, "create_employee", err)
	}

	return employee, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
