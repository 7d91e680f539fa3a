package practice

import (
	"time"

	"github.com/abacusquest/abacusquest/internal/models"
)

// Tracker times the problems of one practice run.
type Tracker struct {
	now     func() time.Time
	current *models.ProblemTime
	times   []models.ProblemTime
}

// NewTracker returns a Tracker reading time from now (time.Now when nil).
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// Start opens a problem. A problem still open is closed as skipped first.
func (t *Tracker) Start(questionID string) {
	if t.current != nil {
		t.Skip()
	}
	t.current = &models.ProblemTime{QuestionID: questionID, StartTime: t.now()}
}

// Answer closes the open problem with the given result.
func (t *Tracker) Answer(correct bool) (models.ProblemTime, bool) {
	return t.finish(correct, false)
}

// Skip closes the open problem as skipped.
func (t *Tracker) Skip() (models.ProblemTime, bool) {
	return t.finish(false, true)
}

func (t *Tracker) finish(correct, skipped bool) (models.ProblemTime, bool) {
	if t.current == nil {
		return models.ProblemTime{}, false
	}
	p := *t.current
	t.current = nil

	p.EndTime = t.now()
	p.TimeSpent = p.EndTime.Sub(p.StartTime).Seconds()
	if p.TimeSpent < 0 {
		p.TimeSpent = 0
	}
	p.IsCorrect = correct && !skipped
	p.IsSkipped = skipped
	t.times = append(t.times, p)
	return p, true
}

// Times returns a copy of the closed problems in order.
func (t *Tracker) Times() []models.ProblemTime {
	out := make([]models.ProblemTime, len(t.times))
	copy(out, t.times)
	return out
}

// Session closes any open problem as skipped and packages the run for submission.
func (t *Tracker) Session(practiceType, operation string) models.PracticeSession {
	if t.current != nil {
		t.Skip()
	}
	s := models.PracticeSession{
		PracticeType: practiceType,
		Operation:    operation,
		ProblemTimes: t.Times(),
		CompletedAt:  t.now(),
	}
	Summarize(&s)
	return s
}

// Summarize derives score, question count, total and average time from the
// session's problem timings. Sessions without timings are left untouched.
func Summarize(s *models.PracticeSession) {
	if len(s.ProblemTimes) == 0 {
		return
	}
	var correct int
	var total float64
	for _, p := range s.ProblemTimes {
		if p.IsCorrect {
			correct++
		}
		total += nonNegative(p.TimeSpent)
	}
	n := len(s.ProblemTimes)
	s.Score = correct
	s.NumberOfQuestions = &n
	s.TotalTime = total
	s.AverageTime = total / float64(n)
}
