package mocks

import (
	"context"
	"time"

	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) ListLevels(ctx context.Context, studentID int64) ([]models.LevelProgress, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LevelProgress), args.Error(1)
}

func (m *MockProgressRepository) UpsertLevel(ctx context.Context, studentID int64, level models.LevelProgress) error {
	args := m.Called(ctx, studentID, level)
	return args.Error(0)
}

func (m *MockProgressRepository) RecordCompletions(ctx context.Context, studentID int64, levelID int, classIDs []int, at time.Time) (int, error) {
	args := m.Called(ctx, studentID, levelID, classIDs, at)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressRepository) Completions(ctx context.Context, studentID int64) ([]models.ClassCompletion, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ClassCompletion), args.Error(1)
}
