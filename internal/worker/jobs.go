package worker

import (
	"context"

	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
)

// AchievementEvaluator unlocks whatever a student has earned.
// Declared here so the worker package does not import services.
type AchievementEvaluator interface {
	Evaluate(ctx context.Context, studentID int64) ([]models.Achievement, error)
}

// EvaluateAchievementsJob re-runs the achievement trigger after new progress lands.
type EvaluateAchievementsJob struct {
	Evaluator AchievementEvaluator
	StudentID int64
}

func (j *EvaluateAchievementsJob) Name() string { return "evaluate_achievements" }

func (j *EvaluateAchievementsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("student_id", j.StudentID)
	unlocked, err := j.Evaluator.Evaluate(ctx, j.StudentID)
	if err != nil {
		return err
	}
	if len(unlocked) > 0 {
		log.Info("unlocked %d achievements", len(unlocked))
	}
	return nil
}
