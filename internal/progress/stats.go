// Package progress reduces level/class/topic progress into dashboard statistics.
package progress

import (
	"math"

	"github.com/abacusquest/abacusquest/internal/models"
)

// IsLevelCompleted reports whether both the final and the oral test were attempted.
func IsLevelCompleted(l models.LevelProgress) bool {
	return l.FinalTest > 0 && l.OralTest > 0
}

// IsClassCompleted is the one completion rule for classes: a passed class test,
// or any classwork or homework handed in for one of its topics.
func IsClassCompleted(c models.ClassProgress) bool {
	if c.Test > 0 {
		return true
	}
	for _, t := range c.Topics {
		if t.Classwork > 0 || t.Homework > 0 {
			return true
		}
	}
	return false
}

// CalculateStats rolls a list of level records up into ProgressStats.
// Unfinished levels count as 0 towards the average score.
func CalculateStats(levels []models.LevelProgress) models.ProgressStats {
	if len(levels) == 0 {
		return models.ProgressStats{}
	}

	var stats models.ProgressStats
	var scoreSum float64
	stats.TotalLevels = len(levels)

	for _, l := range levels {
		if IsLevelCompleted(l) {
			stats.CompletedLevels++
			scoreSum += levelScore(l)
		}
		stats.TotalClasses += len(l.Classes)
		for _, c := range l.Classes {
			if IsClassCompleted(c) {
				stats.CompletedClasses++
			}
		}
	}

	stats.AverageScore = scoreSum / float64(stats.TotalLevels)
	stats.OverallProgress = percent(stats.CompletedLevels, stats.TotalLevels)
	return stats
}

// SummarizeLevels builds one LevelSummary per input level, preserving order.
func SummarizeLevels(levels []models.LevelProgress) []models.LevelSummary {
	out := make([]models.LevelSummary, 0, len(levels))
	for _, l := range levels {
		s := models.LevelSummary{
			LevelID:      l.LevelID,
			TotalClasses: len(l.Classes),
			Completed:    IsLevelCompleted(l),
		}
		for _, c := range l.Classes {
			if IsClassCompleted(c) {
				s.CompletedClasses++
			}
		}
		s.Progress = percent(s.CompletedClasses, s.TotalClasses)
		if s.Completed {
			s.AverageScore = levelScore(l)
		}
		out = append(out, s)
	}
	return out
}

// CompletedClassIDs lists the ids of the classes of l that count as completed.
func CompletedClassIDs(l models.LevelProgress) []int {
	var ids []int
	for _, c := range l.Classes {
		if IsClassCompleted(c) {
			ids = append(ids, c.ClassID)
		}
	}
	return ids
}

func levelScore(l models.LevelProgress) float64 {
	return (clampScore(l.FinalTest) + clampScore(l.OralTest)) / 2
}

func clampScore(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
