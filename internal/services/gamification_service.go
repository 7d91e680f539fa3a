package services

import (
	"context"
	"time"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/gamification"
	"github.com/abacusquest/abacusquest/internal/kvstore"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/practice"
	"github.com/abacusquest/abacusquest/internal/progress"
	"github.com/abacusquest/abacusquest/internal/repository"
)

// XPPerCorrectAnswer is the experience credited for each correct practice answer.
const XPPerCorrectAnswer = 10

// GamificationService handles achievements, coins, streaks and experience
type GamificationService interface {
	GetState(ctx context.Context, studentID int64) (*models.GamificationState, error)
	// Evaluate unlocks every achievement the student currently qualifies for
	// and returns the ones unlocked by this call.
	Evaluate(ctx context.Context, studentID int64) ([]models.Achievement, error)
	// RecordPractice counts day towards the streak and credits xp.
	RecordPractice(ctx context.Context, studentID int64, day time.Time, xp int) error
	Reset(ctx context.Context, studentID int64) error
}

type gamificationService struct {
	kv           kvstore.Store
	progressRepo repository.ProgressRepository
	practiceRepo repository.PracticeRepository
	trigger      *gamification.Trigger
	now          func() time.Time
}

// NewGamificationService creates a new GamificationService
func NewGamificationService(kv kvstore.Store, progressRepo repository.ProgressRepository, practiceRepo repository.PracticeRepository) GamificationService {
	return &gamificationService{
		kv:           kv,
		progressRepo: progressRepo,
		practiceRepo: practiceRepo,
		trigger:      gamification.NewTrigger(nil),
		now:          time.Now,
	}
}

func (s *gamificationService) open(ctx context.Context, studentID int64) (*gamification.Store, error) {
	store := gamification.NewStore(s.kv, kvstore.StudentScope(studentID))
	if err := store.Init(ctx); err != nil {
		logger.FromContext(ctx).Error("failed to load rewards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return store, nil
}

func (s *gamificationService) GetState(ctx context.Context, studentID int64) (*models.GamificationState, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting gamification state: student_id=%d", studentID)

	store, err := s.open(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer store.Dispose()

	state := store.State()
	return &state, nil
}

func (s *gamificationService) Evaluate(ctx context.Context, studentID int64) ([]models.Achievement, error) {
	log := logger.FromContext(ctx)
	log.Debug("evaluating achievements: student_id=%d", studentID)

	levels, err := s.progressRepo.ListLevels(ctx, studentID)
	if err != nil {
		log.Error("failed to list levels: %v", err)
		return nil, errors.NewInternalError(err)
	}
	sessions, err := s.practiceRepo.ListAll(ctx, studentID)
	if err != nil {
		log.Error("failed to list practice sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	snapshot := gamification.Snapshot{
		Progress: progress.CalculateStats(levels),
		Practice: practice.CalculateStats(practice.Detailed{Sessions: sessions}),
	}

	store, err := s.open(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer store.Dispose()

	now := s.now()
	won := map[string]bool{}
	for _, id := range s.trigger.Evaluate(snapshot) {
		ok, err := store.UnlockAchievement(ctx, id, now)
		if err != nil {
			log.Error("failed to unlock %s: %v", id, err)
			return nil, errors.NewInternalError(err)
		}
		won[id] = ok
	}

	unlocked := []models.Achievement{}
	for _, a := range store.Achievements() {
		if won[a.ID] {
			unlocked = append(unlocked, a)
		}
	}
	log.Debug("unlocked %d achievements", len(unlocked))
	return unlocked, nil
}

func (s *gamificationService) RecordPractice(ctx context.Context, studentID int64, day time.Time, xp int) error {
	log := logger.FromContext(ctx)
	log.Debug("recording practice: student_id=%d, xp=%d", studentID, xp)

	store, err := s.open(ctx, studentID)
	if err != nil {
		return err
	}
	defer store.Dispose()

	if err := store.RecordActivity(ctx, day); err != nil {
		log.Error("failed to record activity: %v", err)
		return errors.NewInternalError(err)
	}
	if err := store.AddExperience(ctx, xp); err != nil {
		log.Error("failed to add experience: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *gamificationService) Reset(ctx context.Context, studentID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("resetting rewards: student_id=%d", studentID)

	store, err := s.open(ctx, studentID)
	if err != nil {
		return err
	}
	defer store.Dispose()

	if err := store.Reset(ctx); err != nil {
		log.Error("failed to reset rewards: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
