package models

import "time"

// Practice modes offered by the front-end.
const (
	PracticeTimed      = "timed"
	PracticeUntimed    = "untimed"
	PracticeFlashcards = "flashcards"
	PracticeSet        = "set"
)

// PracticeSession is one finished practice run. Score is the number of correct answers.
type PracticeSession struct {
	ID                int64         `json:"id,omitempty"`
	StudentID         int64         `json:"studentId,omitempty"`
	PracticeType      string        `json:"practiceType"`
	Operation         string        `json:"operation"`
	Score             int           `json:"score"`
	TotalTime         float64       `json:"totalTime"`
	AverageTime       float64       `json:"averageTime"`
	NumberOfQuestions *int          `json:"numberOfQuestions,omitempty"`
	ProblemTimes      []ProblemTime `json:"problemTimes,omitempty"`
	CompletedAt       time.Time     `json:"completedAt"`
}

// ProblemTime is the timing of a single problem inside a practice run.
type ProblemTime struct {
	QuestionID string    `json:"questionId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	TimeSpent  float64   `json:"timeSpent"`
	IsCorrect  bool      `json:"isCorrect"`
	IsSkipped  bool      `json:"isSkipped"`
}

// PracticeStats is the wire shape of practice statistics. Depending on the
// backend version it carries detailed sessions or only flat totals.
type PracticeStats struct {
	PracticeSessions    []PracticeSession `json:"practiceSessions,omitzero"`
	TotalQuestions      *int              `json:"totalQuestions,omitempty"`
	TotalCorrectAnswers *int              `json:"totalCorrectAnswers,omitempty"`
	TotalTimeSpent      *float64          `json:"totalTimeSpent,omitempty"`
	TotalSessions       *int              `json:"totalSessions,omitempty"`
}

// PracticeSummary is the reduced view of practice statistics.
type PracticeSummary struct {
	Accuracy        int    `json:"accuracy"`
	TimeSpent       string `json:"timeSpent"`
	ProblemsSolved  int    `json:"problemsSolved"`
	TotalQuestions  int    `json:"totalQuestions"`
	PracticeMinutes int    `json:"practiceMinutes"`
	Sessions        int    `json:"sessions"`
}

type PracticeFilter struct {
	StudentID    int64
	PracticeType string
	Operation    string
	Since        *time.Time
	Limit        int
	Offset       int
}
