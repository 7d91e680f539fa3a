package services

import (
	"context"
	"testing"
	"time"

	"github.com/abacusquest/abacusquest/internal/kvstore"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGamificationService(kv kvstore.Store) (*gamificationService, *mocks.MockProgressRepository, *mocks.MockPracticeRepository) {
	progressRepo := new(mocks.MockProgressRepository)
	practiceRepo := new(mocks.MockPracticeRepository)
	svc := NewGamificationService(kv, progressRepo, practiceRepo).(*gamificationService)
	svc.now = func() time.Time { return fixedNow }
	return svc, progressRepo, practiceRepo
}

func TestGamificationService_Evaluate(t *testing.T) {
	ctx := context.Background()
	svc, progressRepo, practiceRepo := newGamificationService(kvstore.NewMemory())
	progressRepo.On("ListLevels", mock.Anything, int64(1)).Return(sampleLevels(), nil)
	practiceRepo.On("ListAll", mock.Anything, int64(1)).Return([]models.PracticeSession{}, nil)

	unlocked, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	ids := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		ids = append(ids, a.ID)
		require.NotNil(t, a.UnlockedAt)
		assert.True(t, a.UnlockedAt.Equal(fixedNow))
	}
	assert.Equal(t, []string{"first-class", "first-level"}, ids)

	state, err := svc.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 60, state.Coins)
	assert.Equal(t, 2, state.Streak.Current)

	again, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, again)

	state, err = svc.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 60, state.Coins)
}

func TestGamificationService_StudentsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc, progressRepo, practiceRepo := newGamificationService(kvstore.NewMemory())
	progressRepo.On("ListLevels", mock.Anything, int64(1)).Return(sampleLevels(), nil)
	practiceRepo.On("ListAll", mock.Anything, int64(1)).Return([]models.PracticeSession{}, nil)

	_, err := svc.Evaluate(ctx, 1)
	require.NoError(t, err)

	state, err := svc.GetState(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, state.Coins)
	assert.Len(t, state.Achievements, 8)
	for _, a := range state.Achievements {
		assert.Nil(t, a.UnlockedAt)
	}
}

func TestGamificationService_RecordPracticeAndReset(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newGamificationService(kvstore.NewMemory())

	require.NoError(t, svc.RecordPractice(ctx, 1, fixedNow, 1200))
	require.NoError(t, svc.RecordPractice(ctx, 1, fixedNow.AddDate(0, 0, 1), 30))

	state, err := svc.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Experience{XP: 1230, Level: 2}, state.Experience)
	assert.Equal(t, 2, state.Streak.Current)

	require.NoError(t, svc.Reset(ctx, 1))
	state, err = svc.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Experience{XP: 0, Level: 1}, state.Experience)
	assert.Zero(t, state.Streak.Current)
}
