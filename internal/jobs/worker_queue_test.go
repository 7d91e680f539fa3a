package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEvaluator struct {
	mu  sync.Mutex
	ids []int64
}

func (r *recordingEvaluator) Evaluate(_ context.Context, studentID int64) ([]models.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, studentID)
	return nil, nil
}

func TestWorkerQueue_EnqueueEvaluation(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	ev := &recordingEvaluator{}

	var q JobQueue = NewWorkerQueue(pool, ev)
	require.NoError(t, q.EnqueueEvaluation(3))
	require.NoError(t, q.EnqueueEvaluation(4))
	pool.Stop()

	assert.Equal(t, []int64{3, 4}, ev.ids)
	assert.ErrorIs(t, q.EnqueueEvaluation(5), worker.ErrPoolStopped)
}
