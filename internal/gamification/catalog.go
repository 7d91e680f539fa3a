// Package gamification turns progress into achievements, coins, streaks and experience.
package gamification

import "github.com/abacusquest/abacusquest/internal/models"

// Snapshot is the freshly computed state the trigger table is evaluated against.
type Snapshot struct {
	Progress models.ProgressStats
	Practice models.PracticeSummary
}

// Definition is a static achievement. Definitions are never persisted; only
// unlock timestamps are.
type Definition struct {
	ID           string
	Title        string
	Description  string
	CoinsReward  int
	StreakReward int
	Condition    func(Snapshot) bool
}

// Catalog lists every achievement in display order.
var Catalog = []Definition{
	{
		ID: "first-class", Title: "First Steps", Description: "Complete your first class",
		CoinsReward: 10, StreakReward: 1,
		Condition: func(s Snapshot) bool { return s.Progress.CompletedClasses >= 1 },
	},
	{
		ID: "first-level", Title: "Realm Breaker", Description: "Finish the final and oral test of a level",
		CoinsReward: 50, StreakReward: 1,
		Condition: func(s Snapshot) bool { return s.Progress.CompletedLevels >= 1 },
	},
	{
		ID: "halfway", Title: "Halfway Hero", Description: "Complete five levels",
		CoinsReward: 150, StreakReward: 2,
		Condition: func(s Snapshot) bool { return s.Progress.CompletedLevels >= 5 },
	},
	{
		ID: "champion", Title: "Abacus Champion", Description: "Complete every level",
		CoinsReward: 500, StreakReward: 5,
		Condition: func(s Snapshot) bool { return s.Progress.TotalLevels > 0 && s.Progress.OverallProgress >= 100 },
	},
	{
		ID: "sharp-mind", Title: "Sharp Mind", Description: "Keep an average test score of 90 or more",
		CoinsReward: 100, StreakReward: 1,
		Condition: func(s Snapshot) bool { return s.Progress.CompletedLevels >= 1 && s.Progress.AverageScore >= 90 },
	},
	{
		ID: "first-practice", Title: "Warming Up", Description: "Finish a practice session",
		CoinsReward: 10, StreakReward: 1,
		Condition: func(s Snapshot) bool { return s.Practice.Sessions >= 1 },
	},
	{
		ID: "century", Title: "Century", Description: "Solve 100 practice problems",
		CoinsReward: 75, StreakReward: 1,
		Condition: func(s Snapshot) bool { return s.Practice.ProblemsSolved >= 100 },
	},
	{
		ID: "marathon", Title: "Marathon", Description: "Practice for ten hours in total",
		CoinsReward: 200, StreakReward: 3,
		Condition: func(s Snapshot) bool { return s.Practice.PracticeMinutes >= 600 },
	},
}

var catalogIndex = func() map[string]Definition {
	m := make(map[string]Definition, len(Catalog))
	for _, d := range Catalog {
		m[d.ID] = d
	}
	return m
}()

// Lookup returns the definition for id.
func Lookup(id string) (Definition, bool) {
	d, ok := catalogIndex[id]
	return d, ok
}

// Trigger evaluates a definition table against snapshots.
type Trigger struct {
	defs []Definition
}

// NewTrigger returns a Trigger over defs, or over Catalog when defs is nil.
func NewTrigger(defs []Definition) *Trigger {
	if defs == nil {
		defs = Catalog
	}
	return &Trigger{defs: defs}
}

// Evaluate returns, in table order, the ids whose condition holds for s.
// It does not look at unlock state; Store.UnlockAchievement is idempotent.
func (t *Trigger) Evaluate(s Snapshot) []string {
	var ids []string
	for _, d := range t.defs {
		if d.Condition(s) {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
