package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/feedesk/internal/domain"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

func (r *postgresStore) ListStudents(ctx context.Context) ([]domain.Student, error) {
	query := `
		SELECT id, name, roll_number, department_id, created_at, total_fee
		FROM students
		ORDER BY created_at, roll_number
	`

	students := make([]domain.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, r.dbError(ctx, "list_students", err)
	}

	return students, nil
}

func (r *postgresStore) CreateStudent(ctx context.Context, request *domain.CreateStudentRequest) (*domain.Student, error) {
	query := `
		INSERT INTO students (id, name, roll_number, department_id, total_fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()
	student := &domain.Student{
		ID:           uuid.New().String(),
		Name:         request.Name,
		RollNumber:   request.RollNumber,
		DepartmentID: request.DepartmentID,
		CreatedAt:    &now,
		TotalFee:     request.TotalFee,
	}

	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.Name,
		student.RollNumber,
		student.DepartmentID,
		student.TotalFee,
		now,
	)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation, pqInvalidTextRepr:
			return nil, customError.WrapDepartmentNotFound(request.DepartmentID)
		case pqUniqueViolation:
			return nil, customError.WrapConflict(fmt.Sprintf("Roll number %s is already assigned", request.RollNumber))
		}
		return nil, r.dbError(ctx, "create_student", err)
	}

	return student, nil
}
