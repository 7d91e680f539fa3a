package models

import "time"

// LevelProgress is one realm of the curriculum as reported by the progress endpoint.
// A score of 0 means "not attempted".
type LevelProgress struct {
	LevelID       int             `json:"levelId"`
	Classes       []ClassProgress `json:"classes"`
	FinalTest     float64         `json:"FinalTest"`
	FinalTestTime float64         `json:"FinalTestTime"`
	OralTest      float64         `json:"OralTest"`
	OralTestTime  float64         `json:"OralTestTime"`
}

type ClassProgress struct {
	ClassID int             `json:"classId"`
	Test    float64         `json:"Test"`
	Time    float64         `json:"Time"`
	Topics  []TopicProgress `json:"topics"`
}

type TopicProgress struct {
	TopicID       int     `json:"topicId"`
	Classwork     float64 `json:"Classwork"`
	ClassworkTime float64 `json:"ClassworkTime"`
	Homework      float64 `json:"Homework"`
	HomeworkTime  float64 `json:"HomeworkTime"`
}

// ProgressStats is the dashboard roll-up of a student's level progress.
type ProgressStats struct {
	TotalLevels      int     `json:"totalLevels"`
	CompletedLevels  int     `json:"completedLevels"`
	TotalClasses     int     `json:"totalClasses"`
	CompletedClasses int     `json:"completedClasses"`
	AverageScore     float64 `json:"averageScore"`
	OverallProgress  int     `json:"overallProgress"`
}

// LevelSummary is the per-level view shown on a realm card.
type LevelSummary struct {
	LevelID          int     `json:"levelId"`
	TotalClasses     int     `json:"totalClasses"`
	CompletedClasses int     `json:"completedClasses"`
	Progress         int     `json:"progress"`
	AverageScore     float64 `json:"averageScore"`
	Completed        bool    `json:"completed"`
}

// ClassCompletion records when the service first saw a class completed.
type ClassCompletion struct {
	StudentID        int64     `json:"studentId"`
	LevelID          int       `json:"levelId"`
	ClassID          int       `json:"classId"`
	FirstCompletedAt time.Time `json:"firstCompletedAt"`
}

// ProgressPayload is the body of the progress fetch endpoint.
type ProgressPayload struct {
	Levels        []LevelProgress `json:"levels"`
	PracticeStats *PracticeStats  `json:"practiceStats,omitempty"`
}

// ProgressSummary bundles every reduction the dashboard needs in one response.
type ProgressSummary struct {
	Progress    ProgressStats   `json:"progress"`
	Levels      []LevelSummary  `json:"levels"`
	Practice    PracticeSummary `json:"practice"`
	WeeklyGoals WeeklyGoals     `json:"weeklyGoals"`
}

// GoalProgress is one clamped weekly target.
type GoalProgress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

type WeeklyGoals struct {
	WeekStart       time.Time    `json:"weekStart"`
	Scope           string       `json:"scope"`
	Conquests       GoalProgress `json:"conquests"`
	PracticeMinutes GoalProgress `json:"practiceMinutes"`
	Problems        GoalProgress `json:"problems"`
}
