// Package practice reduces practice history into accuracy, time and volume figures.
package practice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/models"
)

// Stats is practice statistics in one of three shapes, from richest to poorest:
// Detailed, Aggregate or Empty.
type Stats interface {
	isStats()
}

// Detailed carries every session, optionally with per-problem timings.
type Detailed struct {
	Sessions []models.PracticeSession
}

// Aggregate carries only the flat totals older backends report.
type Aggregate struct {
	TotalQuestions      int
	TotalCorrectAnswers int
	TotalTimeSpent      float64
	TotalSessions       int
}

// Empty means no practice data at all.
type Empty struct{}

func (Detailed) isStats()  {}
func (Aggregate) isStats() {}
func (Empty) isStats()     {}

// FromWire classifies the wire shape. A practiceSessions array, even an empty
// one, wins over flat totals.
func FromWire(w *models.PracticeStats) Stats {
	if w == nil {
		return Empty{}
	}
	if w.PracticeSessions != nil {
		return Detailed{Sessions: w.PracticeSessions}
	}
	if w.TotalQuestions == nil && w.TotalCorrectAnswers == nil && w.TotalTimeSpent == nil && w.TotalSessions == nil {
		return Empty{}
	}
	return Aggregate{
		TotalQuestions:      derefInt(w.TotalQuestions),
		TotalCorrectAnswers: derefInt(w.TotalCorrectAnswers),
		TotalTimeSpent:      derefFloat(w.TotalTimeSpent),
		TotalSessions:       derefInt(w.TotalSessions),
	}
}

// ToWire is the inverse of FromWire.
func ToWire(s Stats) *models.PracticeStats {
	switch v := s.(type) {
	case Detailed:
		sessions := v.Sessions
		if sessions == nil {
			sessions = []models.PracticeSession{}
		}
		return &models.PracticeStats{PracticeSessions: sessions}
	case Aggregate:
		return &models.PracticeStats{
			TotalQuestions:      &v.TotalQuestions,
			TotalCorrectAnswers: &v.TotalCorrectAnswers,
			TotalTimeSpent:      &v.TotalTimeSpent,
			TotalSessions:       &v.TotalSessions,
		}
	default:
		return nil
	}
}

// ParseStats validates raw practice statistics JSON. Absent or null input is
// Empty; anything that is not a JSON object is rejected.
func ParseStats(raw json.RawMessage) (Stats, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Empty{}, nil
	}
	if trimmed[0] != '{' {
		return nil, errors.NewValidationError("practiceStats", "must be a JSON object")
	}
	var w models.PracticeStats
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, errors.NewValidationError("practiceStats", err.Error())
	}
	return FromWire(&w), nil
}

type totals struct {
	questions int
	correct   int
	seconds   float64
	sessions  int
}

func collect(s Stats) totals {
	var t totals
	switch v := s.(type) {
	case Detailed:
		t.sessions = len(v.Sessions)
		for _, session := range v.Sessions {
			if len(session.ProblemTimes) > 0 {
				for _, p := range session.ProblemTimes {
					t.questions++
					if p.IsCorrect {
						t.correct++
					}
					t.seconds += nonNegative(p.TimeSpent)
				}
				continue
			}
			t.questions += derefInt(session.NumberOfQuestions)
			t.correct += session.Score
			t.seconds += nonNegative(session.TotalTime)
		}
	case Aggregate:
		t.questions = v.TotalQuestions
		t.correct = v.TotalCorrectAnswers
		t.seconds = nonNegative(v.TotalTimeSpent)
		t.sessions = v.TotalSessions
	}
	return t
}

// CalculateStats reduces practice statistics into a PracticeSummary. Within a
// session per-problem timings take precedence over session-level totals.
func CalculateStats(s Stats) models.PracticeSummary {
	t := collect(s)
	summary := models.PracticeSummary{
		TimeSpent:       FormatDuration(t.seconds),
		ProblemsSolved:  t.correct,
		TotalQuestions:  t.questions,
		PracticeMinutes: int(math.Round(t.seconds / 60)),
		Sessions:        t.sessions,
	}
	if t.questions > 0 {
		summary.Accuracy = int(math.Round(float64(t.correct) / float64(t.questions) * 100))
	}
	return summary
}

// FormatDuration renders seconds as "<hours>h <minutes>m", truncating seconds.
func FormatDuration(seconds float64) string {
	total := int(nonNegative(seconds))
	return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
}

// FilterSince keeps only sessions completed at or after since. Aggregate
// totals carry no dates and cannot be attributed to a period, so they yield Empty.
func FilterSince(s Stats, since time.Time) Stats {
	d, ok := s.(Detailed)
	if !ok {
		return Empty{}
	}
	kept := make([]models.PracticeSession, 0, len(d.Sessions))
	for _, session := range d.Sessions {
		if !session.CompletedAt.Before(since) {
			kept = append(kept, session)
		}
	}
	return Detailed{Sessions: kept}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
