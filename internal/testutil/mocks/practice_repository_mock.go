package mocks

import (
	"context"

	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockPracticeRepository is a mock implementation of repository.PracticeRepository
type MockPracticeRepository struct {
	mock.Mock
}

func (m *MockPracticeRepository) Insert(ctx context.Context, session models.PracticeSession) (int64, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPracticeRepository) List(ctx context.Context, filter models.PracticeFilter) ([]models.PracticeSession, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PracticeSession), args.Error(1)
}

func (m *MockPracticeRepository) Count(ctx context.Context, filter models.PracticeFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockPracticeRepository) ListAll(ctx context.Context, studentID int64) ([]models.PracticeSession, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PracticeSession), args.Error(1)
}
