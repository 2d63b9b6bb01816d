package mocks

import (
	"context"

	"github.com/segyhp/feedesk/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockDigestStore struct {
	mock.Mock
}

func (m *MockDigestStore) Save(ctx context.Context, digest *domain.Digest) error {
	args := m.Called(ctx, digest)
	return args.Error(0)
}

func (m *MockDigestStore) Latest(ctx context.Context) (*domain.Digest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Digest), args.Error(1)
}

func (m *MockDigestStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// NewMockDigestStore creates a new mock digest store instance
func NewMockDigestStore() *MockDigestStore {
	return &MockDigestStore{}
}
