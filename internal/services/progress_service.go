package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/goals"
	"github.com/abacusquest/abacusquest/internal/jobs"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/practice"
	"github.com/abacusquest/abacusquest/internal/progress"
	"github.com/abacusquest/abacusquest/internal/repository"
)

// ProgressService handles level progress and the dashboard summary
type ProgressService interface {
	GetProgress(ctx context.Context, studentID int64) (*models.ProgressPayload, error)
	SaveLevel(ctx context.Context, studentID int64, level models.LevelProgress) (*models.LevelSummary, error)
	GetSummary(ctx context.Context, studentID int64) (*models.ProgressSummary, error)
}

type progressService struct {
	progressRepo repository.ProgressRepository
	practiceRepo repository.PracticeRepository
	queue        jobs.JobQueue
	scope        goals.Scope
	now          func() time.Time
}

// NewProgressService creates a new ProgressService. queue may be nil, in which
// case no achievement evaluation is scheduled after saves.
func NewProgressService(progressRepo repository.ProgressRepository, practiceRepo repository.PracticeRepository, queue jobs.JobQueue, scope goals.Scope) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		practiceRepo: practiceRepo,
		queue:        queue,
		scope:        scope,
		now:          time.Now,
	}
}

func (s *progressService) GetProgress(ctx context.Context, studentID int64) (*models.ProgressPayload, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting progress: student_id=%d", studentID)

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

	return &models.ProgressPayload{
		Levels:        levels,
		PracticeStats: practice.ToWire(practice.Detailed{Sessions: sessions}),
	}, nil
}

func (s *progressService) SaveLevel(ctx context.Context, studentID int64, level models.LevelProgress) (*models.LevelSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("saving level: student_id=%d, level_id=%d", studentID, level.LevelID)

	if err := validateLevel(level); err != nil {
		return nil, err
	}
	if err := s.progressRepo.UpsertLevel(ctx, studentID, level); err != nil {
		log.Error("failed to save level: %v", err)
		return nil, errors.NewInternalError(err)
	}

	n, err := s.progressRepo.RecordCompletions(ctx, studentID, level.LevelID, progress.CompletedClassIDs(level), s.now())
	if err != nil {
		log.Error("failed to record class completions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if n > 0 {
		log.Info("student %d completed %d new classes in level %d", studentID, n, level.LevelID)
	}

	s.scheduleEvaluation(ctx, studentID)

	summary := progress.SummarizeLevels([]models.LevelProgress{level})[0]
	return &summary, nil
}

func (s *progressService) GetSummary(ctx context.Context, studentID int64) (*models.ProgressSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting summary: student_id=%d", studentID)

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

	opts := goals.Options{Now: s.now(), Scope: s.scope}
	if s.scope == goals.ScopeCalendarWeek {
		completions, err := s.progressRepo.Completions(ctx, studentID)
		if err != nil {
			log.Error("failed to list class completions: %v", err)
			return nil, errors.NewInternalError(err)
		}
		opts.CompletedAt = make(map[goals.ClassKey]time.Time, len(completions))
		for _, c := range completions {
			opts.CompletedAt[goals.ClassKey{LevelID: c.LevelID, ClassID: c.ClassID}] = c.FirstCompletedAt
		}
	}

	stats := practice.Detailed{Sessions: sessions}
	return &models.ProgressSummary{
		Progress:    progress.CalculateStats(levels),
		Levels:      progress.SummarizeLevels(levels),
		Practice:    practice.CalculateStats(stats),
		WeeklyGoals: goals.CalculateWeekly(stats, levels, opts),
	}, nil
}

func (s *progressService) scheduleEvaluation(ctx context.Context, studentID int64) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueEvaluation(studentID); err != nil {
		logger.FromContext(ctx).Warn("failed to enqueue achievement evaluation: %v", err)
	}
}

func validateLevel(l models.LevelProgress) error {
	if l.LevelID <= 0 {
		return errors.NewValidationError("levelId", "must be positive")
	}
	if err := validateScore("FinalTest", l.FinalTest); err != nil {
		return err
	}
	if err := validateScore("OralTest", l.OralTest); err != nil {
		return err
	}
	if err := validateSeconds("FinalTestTime", l.FinalTestTime); err != nil {
		return err
	}
	if err := validateSeconds("OralTestTime", l.OralTestTime); err != nil {
		return err
	}

	seen := map[int]bool{}
	for i, c := range l.Classes {
		prefix := fmt.Sprintf("classes[%d].", i)
		if c.ClassID <= 0 {
			return errors.NewValidationError(prefix+"classId", "must be positive")
		}
		if seen[c.ClassID] {
			return errors.NewValidationError(prefix+"classId", "duplicate class")
		}
		seen[c.ClassID] = true
		if err := validateScore(prefix+"Test", c.Test); err != nil {
			return err
		}
		if err := validateSeconds(prefix+"Time", c.Time); err != nil {
			return err
		}
		for j, t := range c.Topics {
			tp := fmt.Sprintf("%stopics[%d].", prefix, j)
			if err := validateScore(tp+"Classwork", t.Classwork); err != nil {
				return err
			}
			if err := validateScore(tp+"Homework", t.Homework); err != nil {
				return err
			}
			if err := validateSeconds(tp+"ClassworkTime", t.ClassworkTime); err != nil {
				return err
			}
			if err := validateSeconds(tp+"HomeworkTime", t.HomeworkTime); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateScore(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return errors.NewValidationError(field, "must be between 0 and 100")
	}
	return nil
}

func validateSeconds(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errors.NewValidationError(field, "must be a non-negative number of seconds")
	}
	return nil
}
