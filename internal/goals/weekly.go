// Package goals derives the fixed-target weekly goal view.
package goals

import (
	"time"

	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/practice"
	"github.com/abacusquest/abacusquest/internal/progress"
)

// Weekly targets.
const (
	SessionsTarget        = 5
	PracticeMinutesTarget = 240
	ProblemsTarget        = 300
)

// Scope selects which completions count towards this week's goals.
type Scope string

const (
	// ScopeAllTime counts every completion ever recorded.
	ScopeAllTime Scope = "all-time"
	// ScopeCalendarWeek counts only completions since Monday 00:00.
	ScopeCalendarWeek Scope = "calendar-week"
)

// ClassKey identifies a class within a level.
type ClassKey struct {
	LevelID int
	ClassID int
}

type Options struct {
	Now   time.Time
	Scope Scope
	// CompletedAt holds the first time each class was seen completed.
	// Only consulted for ScopeCalendarWeek; classes missing from it are not counted.
	CompletedAt map[ClassKey]time.Time
}

// WeekStart returns Monday 00:00 of the week containing now, in now's location.
func WeekStart(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7 // Monday = 0
	y, m, d := now.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
}

// CalculateWeekly computes progress towards the weekly targets. Every current
// value is clamped to its target.
func CalculateWeekly(stats practice.Stats, levels []models.LevelProgress, opts Options) models.WeeklyGoals {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Scope == "" {
		opts.Scope = ScopeAllTime
	}
	start := WeekStart(opts.Now)

	conquests := 0
	for _, l := range levels {
		for _, c := range l.Classes {
			if !progress.IsClassCompleted(c) {
				continue
			}
			if opts.Scope == ScopeCalendarWeek {
				at, ok := opts.CompletedAt[ClassKey{LevelID: l.LevelID, ClassID: c.ClassID}]
				if !ok || at.Before(start) {
					continue
				}
			}
			conquests++
		}
	}

	if opts.Scope == ScopeCalendarWeek {
		stats = practice.FilterSince(stats, start)
	}
	summary := practice.CalculateStats(stats)

	return models.WeeklyGoals{
		WeekStart:       start,
		Scope:           string(opts.Scope),
		Conquests:       clamp(conquests, SessionsTarget),
		PracticeMinutes: clamp(summary.PracticeMinutes, PracticeMinutesTarget),
		Problems:        clamp(summary.ProblemsSolved, ProblemsTarget),
	}
}

func clamp(value, target int) models.GoalProgress {
	if value > target {
		value = target
	}
	if value < 0 {
		value = 0
	}
	return models.GoalProgress{Current: value, Target: target}
}
