package mocks

import (
	"context"

	"github.com/segyhp/feedesk/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListStudents(ctx context.Context) ([]domain.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

func (m *MockStore) ListFees(ctx context.Context) ([]domain.FeePayment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeePayment), args.Error(1)
}

func (m *MockStore) CreateFee(ctx context.Context, request *domain.CreateFeeRequest) (*domain.FeePayment, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeePayment), args.Error(1)
}

func (m *MockStore) CreateStudent(ctx context.Context, request *domain.CreateStudentRequest) (*domain.Student, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStore) CreateDepartment(ctx context.Context, request *domain.DepartmentRequest) (*domain.Department, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}

func (m *MockStore) UpdateDepartment(ctx context.Context, id string, request *domain.DepartmentRequest) (*domain.Department, error) {
	args := m.Called(ctx, id, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}

func (m *MockStore) CreateEmployee(ctx context.Context, request *domain.CreateEmployeeRequest) (*domain.Employee, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
