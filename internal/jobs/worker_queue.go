package jobs

import (
	"github.com/abacusquest/abacusquest/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool      *worker.Pool
	evaluator worker.AchievementEvaluator
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, evaluator worker.AchievementEvaluator) *WorkerQueue {
	return &WorkerQueue{pool: pool, evaluator: evaluator}
}

func (q *WorkerQueue) EnqueueEvaluation(studentID int64) error {
	return q.pool.Submit(&worker.EvaluateAchievementsJob{
		Evaluator: q.evaluator,
		StudentID: studentID,
	})
}
