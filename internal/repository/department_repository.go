package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/segyhp/feedesk/internal/domain"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

func (r *postgresStore) CreateDepartment(ctx context.Context, request *domain.DepartmentRequest) (*domain.Department, error) {
	query := `
		INSERT INTO departments (id, name, code, specialities)
		VALUES ($1, $2, $3, $4)
	`

	department := &domain.Department{
		ID:           uuid.New().String(),
		Name:         request.Name,
		Code:         request.Code,
		Specialities: nonNil(request.Specialities),
	}

	_, err := r.db.ExecContext(ctx, query,
		department.ID,
		department.Name,
		department.Code,
		pq.Array(department.Specialities),
	)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return nil, customError.WrapConflict(fmt.Sprintf("Department code %s already exists", request.Code))
		}
		return nil, r.dbError(ctx, "create_department", err)
	}

	return department, nil
}

func (r *postgresStore) UpdateDepartment(ctx context.Context, id string, request *domain.DepartmentRequest) (*domain.Department, error) {
	query := `
		UPDATE departments
		SET name = $2, code = $3, specialities = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, code, specialities
	`

	var department domain.Department
	err := r.db.QueryRowxContext(ctx, query, id, request.Name, request.Code, pq.Array(nonNil(request.Specialities))).
		Scan(&department.ID, &department.Name, &department.Code, pq.Array(&department.Specialities))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidTextRepr {
			return nil, customError.WrapDepartmentNotFound(id)
		}
		if pqCode(err) == pqUniqueViolation {
			return nil, customError.WrapConflict(fmt.Sprintf("Department code %s already exists", request.Code))
		}
		return nil, r.dbError(ctx, "update_department", err)
	}

	return &department, nil
}
