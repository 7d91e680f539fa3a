package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/jobs"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/practice"
	"github.com/abacusquest/abacusquest/internal/repository"
)

const maxPracticePageSize = 200

var practiceTypes = map[string]bool{
	models.PracticeTimed:      true,
	models.PracticeUntimed:    true,
	models.PracticeFlashcards: true,
	models.PracticeSet:        true,
}

// PracticeService handles practice session submission and statistics
type PracticeService interface {
	SubmitSession(ctx context.Context, studentID int64, session models.PracticeSession) (*models.PracticeSession, error)
	ListSessions(ctx context.Context, filter models.PracticeFilter) ([]models.PracticeSession, int, error)
	// GetStats summarizes every session, or only those completed at or after
	// since when it is set.
	GetStats(ctx context.Context, studentID int64, since *time.Time) (*models.PracticeSummary, error)
}

type practiceService struct {
	practiceRepo repository.PracticeRepository
	rewards      GamificationService
	queue        jobs.JobQueue
	now          func() time.Time
}

// NewPracticeService creates a new PracticeService
func NewPracticeService(practiceRepo repository.PracticeRepository, rewards GamificationService, queue jobs.JobQueue) PracticeService {
	return &practiceService{
		practiceRepo: practiceRepo,
		rewards:      rewards,
		queue:        queue,
		now:          time.Now,
	}
}

func (s *practiceService) SubmitSession(ctx context.Context, studentID int64, session models.PracticeSession) (*models.PracticeSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting practice session: student_id=%d, type=%s, problems=%d", studentID, session.PracticeType, len(session.ProblemTimes))

	session.ID = 0
	session.StudentID = studentID
	session.PracticeType = strings.TrimSpace(session.PracticeType)
	session.Operation = strings.TrimSpace(session.Operation)
	if err := validateSession(session); err != nil {
		return nil, err
	}
	practice.Summarize(&session)
	if session.CompletedAt.IsZero() {
		session.CompletedAt = s.now()
	}
	session.CompletedAt = session.CompletedAt.UTC()

	id, err := s.practiceRepo.Insert(ctx, session)
	if err != nil {
		log.Error("failed to insert practice session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	session.ID = id

	if s.rewards != nil {
		if err := s.rewards.RecordPractice(ctx, studentID, session.CompletedAt, session.Score*XPPerCorrectAnswer); err != nil {
			log.Warn("failed to record practice rewards: %v", err)
		}
	}
	if s.queue != nil {
		if err := s.queue.EnqueueEvaluation(studentID); err != nil {
			log.Warn("failed to enqueue achievement evaluation: %v", err)
		}
	}
	return &session, nil
}

func (s *practiceService) ListSessions(ctx context.Context, filter models.PracticeFilter) ([]models.PracticeSession, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing practice sessions: student_id=%d", filter.StudentID)

	if filter.Limit < 0 || filter.Limit > maxPracticePageSize {
		return nil, 0, errors.NewValidationError("limit", fmt.Sprintf("must be between 0 and %d", maxPracticePageSize))
	}
	if filter.Offset < 0 {
		return nil, 0, errors.NewValidationError("offset", "cannot be negative")
	}
	if filter.PracticeType != "" && !practiceTypes[filter.PracticeType] {
		return nil, 0, errors.NewValidationError("practiceType", "unknown practice type")
	}

	sessions, err := s.practiceRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list practice sessions: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.practiceRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count practice sessions: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return sessions, total, nil
}

func (s *practiceService) GetStats(ctx context.Context, studentID int64, since *time.Time) (*models.PracticeSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting practice stats: student_id=%d", studentID)

	sessions, err := s.practiceRepo.ListAll(ctx, studentID)
	if err != nil {
		log.Error("failed to list practice sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	var stats practice.Stats = practice.Detailed{Sessions: sessions}
	if since != nil {
		stats = practice.FilterSince(stats, *since)
	}
	summary := practice.CalculateStats(stats)
	return &summary, nil
}

func validateSession(s models.PracticeSession) error {
	if !practiceTypes[s.PracticeType] {
		return errors.NewValidationError("practiceType", "must be one of timed, untimed, flashcards, set")
	}
	if s.Score < 0 {
		return errors.NewValidationError("score", "cannot be negative")
	}
	if s.NumberOfQuestions != nil {
		if *s.NumberOfQuestions < 0 {
			return errors.NewValidationError("numberOfQuestions", "cannot be negative")
		}
		if len(s.ProblemTimes) == 0 && s.Score > *s.NumberOfQuestions {
			return errors.NewValidationError("score", "cannot exceed numberOfQuestions")
		}
	}
	if err := validateSeconds("totalTime", s.TotalTime); err != nil {
		return err
	}
	if err := validateSeconds("averageTime", s.AverageTime); err != nil {
		return err
	}
	for i, p := range s.ProblemTimes {
		if err := validateSeconds(fmt.Sprintf("problemTimes[%d].timeSpent", i), p.TimeSpent); err != nil {
			return err
		}
		if p.IsCorrect && p.IsSkipped {
			return errors.NewValidationError(fmt.Sprintf("problemTimes[%d]", i), "cannot be both correct and skipped")
		}
		if !p.StartTime.IsZero() && !p.EndTime.IsZero() && p.EndTime.Before(p.StartTime) {
			return errors.NewValidationError(fmt.Sprintf("problemTimes[%d].endTime", i), "is before startTime")
		}
	}
	return nil
}
