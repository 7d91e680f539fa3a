package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/kvstore"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPracticeService() (*practiceService, *mocks.MockPracticeRepository, *mocks.MockJobQueue, GamificationService) {
	practiceRepo := new(mocks.MockPracticeRepository)
	queue := new(mocks.MockJobQueue)
	rewards, _, _ := newGamificationService(kvstore.NewMemory())
	svc := NewPracticeService(practiceRepo, rewards, queue).(*practiceService)
	svc.now = func() time.Time { return fixedNow }
	return svc, practiceRepo, queue, rewards
}

func TestPracticeService_SubmitSession(t *testing.T) {
	ctx := context.Background()
	svc, practiceRepo, queue, rewards := newPracticeService()

	practiceRepo.On("Insert", mock.Anything, mock.MatchedBy(func(s models.PracticeSession) bool {
		return s.StudentID == 1 && s.Score == 2 && s.NumberOfQuestions != nil && *s.NumberOfQuestions == 3 &&
			s.TotalTime == 30 && s.CompletedAt.Equal(fixedNow)
	})).Return(int64(11), nil)
	queue.On("EnqueueEvaluation", int64(1)).Return(nil)

	saved, err := svc.SubmitSession(ctx, 1, models.PracticeSession{
		PracticeType: " timed ",
		Operation:    "addition",
		Score:        99,
		ProblemTimes: []models.ProblemTime{
			{QuestionID: "a", TimeSpent: 10, IsCorrect: true},
			{QuestionID: "b", TimeSpent: 12, IsCorrect: true},
			{QuestionID: "c", TimeSpent: 8, IsSkipped: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), saved.ID)
	assert.Equal(t, models.PracticeTimed, saved.PracticeType)
	assert.Equal(t, 10.0, saved.AverageTime)

	state, err := rewards.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2*XPPerCorrectAnswer, state.Experience.XP)
	assert.Equal(t, 1, state.Streak.Current)

	practiceRepo.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestPracticeService_SubmitSession_Validation(t *testing.T) {
	n := 2
	cases := map[string]models.PracticeSession{
		"unknown type":         {PracticeType: "speedrun"},
		"negative score":       {PracticeType: models.PracticeSet, Score: -1},
		"score over questions": {PracticeType: models.PracticeSet, Score: 3, NumberOfQuestions: &n},
		"negative time":        {PracticeType: models.PracticeSet, TotalTime: -1},
		"correct and skipped":  {PracticeType: models.PracticeSet, ProblemTimes: []models.ProblemTime{{IsCorrect: true, IsSkipped: true}}},
		"end before start": {PracticeType: models.PracticeSet, ProblemTimes: []models.ProblemTime{
			{StartTime: fixedNow, EndTime: fixedNow.Add(-time.Second)},
		}},
	}
	for name, session := range cases {
		t.Run(name, func(t *testing.T) {
			svc, practiceRepo, _, _ := newPracticeService()
			_, err := svc.SubmitSession(context.Background(), 1, session)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeValidation, errors.As(err).Code)
			practiceRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestPracticeService_SubmitSession_StorageError(t *testing.T) {
	svc, practiceRepo, queue, _ := newPracticeService()
	practiceRepo.On("Insert", mock.Anything, mock.Anything).Return(int64(0), stderrors.New("locked"))

	_, err := svc.SubmitSession(context.Background(), 1, models.PracticeSession{PracticeType: models.PracticeUntimed})
	assert.Equal(t, errors.ErrCodeInternal, errors.As(err).Code)
	queue.AssertNotCalled(t, "EnqueueEvaluation", mock.Anything)
}

func TestPracticeService_ListSessions(t *testing.T) {
	svc, practiceRepo, _, _ := newPracticeService()
	filter := models.PracticeFilter{StudentID: 1, PracticeType: models.PracticeTimed, Limit: 10}
	practiceRepo.On("List", mock.Anything, filter).Return([]models.PracticeSession{{ID: 1}}, nil)
	practiceRepo.On("Count", mock.Anything, filter).Return(4, nil)

	sessions, total, err := svc.ListSessions(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, 4, total)

	_, _, err = svc.ListSessions(context.Background(), models.PracticeFilter{StudentID: 1, Limit: 1000})
	assert.Equal(t, errors.ErrCodeValidation, errors.As(err).Code)
	_, _, err = svc.ListSessions(context.Background(), models.PracticeFilter{StudentID: 1, PracticeType: "nope"})
	assert.Equal(t, errors.ErrCodeValidation, errors.As(err).Code)
}

func TestPracticeService_GetStats(t *testing.T) {
	svc, practiceRepo, _, _ := newPracticeService()
	practiceRepo.On("ListAll", mock.Anything, int64(1)).Return([]models.PracticeSession{
		{Score: 3, NumberOfQuestions: intPtr(4), TotalTime: 120, CompletedAt: fixedNow.AddDate(0, 0, -8)},
		{Score: 1, NumberOfQuestions: intPtr(4), TotalTime: 60, CompletedAt: fixedNow},
	}, nil)

	all, err := svc.GetStats(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PracticeSummary{Accuracy: 50, TimeSpent: "0h 3m", ProblemsSolved: 4, TotalQuestions: 8, PracticeMinutes: 3, Sessions: 2}, *all)

	since := fixedNow.AddDate(0, 0, -1)
	recent, err := svc.GetStats(context.Background(), 1, &since)
	require.NoError(t, err)
	assert.Equal(t, 1, recent.Sessions)
	assert.Equal(t, 25, recent.Accuracy)
}
