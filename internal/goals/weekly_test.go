package goals_test

import (
	"testing"
	"time"

	"github.com/abacusquest/abacusquest/internal/goals"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/practice"
	"github.com/stretchr/testify/assert"
)

// Wednesday.
var now = time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, goals.WeekStart(now))
	assert.Equal(t, monday, goals.WeekStart(monday))
	assert.Equal(t, monday, goals.WeekStart(time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC)), "sunday belongs to the week before")
	assert.Equal(t, time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC), goals.WeekStart(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func manyLevels(classes int) []models.LevelProgress {
	l := models.LevelProgress{LevelID: 1}
	for i := 0; i < classes; i++ {
		l.Classes = append(l.Classes, models.ClassProgress{ClassID: i + 1, Test: 50})
	}
	return []models.LevelProgress{l}
}

func TestCalculateWeekly_ClampsToTargets(t *testing.T) {
	stats := practice.Aggregate{TotalQuestions: 10000, TotalCorrectAnswers: 9000, TotalTimeSpent: 100000, TotalSessions: 50}

	got := goals.CalculateWeekly(stats, manyLevels(40), goals.Options{Now: now})

	assert.Equal(t, models.GoalProgress{Current: 5, Target: 5}, got.Conquests)
	assert.Equal(t, models.GoalProgress{Current: 240, Target: 240}, got.PracticeMinutes)
	assert.Equal(t, models.GoalProgress{Current: 300, Target: 300}, got.Problems)
	assert.Equal(t, "all-time", got.Scope)
}

func TestCalculateWeekly_BelowTargets(t *testing.T) {
	levels := []models.LevelProgress{{
		LevelID: 1,
		Classes: []models.ClassProgress{
			{ClassID: 1, Test: 90},
			{ClassID: 2, Topics: []models.TopicProgress{{Classwork: 10}}},
			{ClassID: 3},
		},
	}}
	stats := practice.Detailed{Sessions: []models.PracticeSession{{Score: 12, TotalTime: 1800}}}

	got := goals.CalculateWeekly(stats, levels, goals.Options{Now: now})
	assert.Equal(t, 2, got.Conquests.Current)
	assert.Equal(t, 30, got.PracticeMinutes.Current)
	assert.Equal(t, 12, got.Problems.Current)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), got.WeekStart)
}

func TestCalculateWeekly_CalendarWeek(t *testing.T) {
	start := goals.WeekStart(now)
	levels := []models.LevelProgress{{
		LevelID: 2,
		Classes: []models.ClassProgress{
			{ClassID: 1, Test: 90},
			{ClassID: 2, Test: 80},
			{ClassID: 3, Test: 70},
		},
	}}
	completed := map[goals.ClassKey]time.Time{
		{LevelID: 2, ClassID: 1}: start.Add(-time.Hour),
		{LevelID: 2, ClassID: 2}: start.Add(time.Hour),
		// class 3 has no recorded completion
	}
	stats := practice.Detailed{Sessions: []models.PracticeSession{
		{Score: 10, TotalTime: 600, CompletedAt: start.Add(-24 * time.Hour)},
		{Score: 4, TotalTime: 120, CompletedAt: start.Add(48 * time.Hour)},
	}}

	got := goals.CalculateWeekly(stats, levels, goals.Options{Now: now, Scope: goals.ScopeCalendarWeek, CompletedAt: completed})
	assert.Equal(t, 1, got.Conquests.Current)
	assert.Equal(t, 4, got.Problems.Current)
	assert.Equal(t, 2, got.PracticeMinutes.Current)
	assert.Equal(t, "calendar-week", got.Scope)
}

func TestCalculateWeekly_Empty(t *testing.T) {
	got := goals.CalculateWeekly(practice.Empty{}, nil, goals.Options{Now: now})
	assert.Zero(t, got.Conquests.Current)
	assert.Zero(t, got.PracticeMinutes.Current)
	assert.Zero(t, got.Problems.Current)
	assert.Equal(t, goals.ProblemsTarget, got.Problems.Target)
}
