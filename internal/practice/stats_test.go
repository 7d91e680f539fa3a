package practice_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/practice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCalculateStats_Empty(t *testing.T) {
	want := models.PracticeSummary{TimeSpent: "0h 0m"}
	assert.Equal(t, want, practice.CalculateStats(practice.Empty{}))
	assert.Equal(t, want, practice.CalculateStats(practice.FromWire(nil)))
}

func TestCalculateStats_ProblemTimes(t *testing.T) {
	stats := practice.Detailed{Sessions: []models.PracticeSession{{
		ProblemTimes: []models.ProblemTime{
			{IsCorrect: true, TimeSpent: 10},
			{IsCorrect: false, TimeSpent: 5},
		},
	}}}

	got := practice.CalculateStats(stats)
	assert.Equal(t, 2, got.TotalQuestions)
	assert.Equal(t, 1, got.ProblemsSolved)
	assert.Equal(t, 50, got.Accuracy)
	assert.Equal(t, 0, got.PracticeMinutes)
	assert.Equal(t, 1, got.Sessions)
	assert.Equal(t, "0h 0m", got.TimeSpent)
}

func TestCalculateStats_MixedSessions(t *testing.T) {
	stats := practice.Detailed{Sessions: []models.PracticeSession{
		{
			// problem timings override the session-level figures
			Score:             9,
			NumberOfQuestions: intPtr(9),
			TotalTime:         900,
			ProblemTimes: []models.ProblemTime{
				{IsCorrect: true, TimeSpent: 30},
				{IsSkipped: true, TimeSpent: 30},
			},
		},
		{Score: 7, NumberOfQuestions: intPtr(10), TotalTime: 3600},
		{Score: 3, TotalTime: 120},
	}}

	got := practice.CalculateStats(stats)
	assert.Equal(t, 12, got.TotalQuestions)
	assert.Equal(t, 11, got.ProblemsSolved)
	assert.Equal(t, 92, got.Accuracy)
	assert.Equal(t, 63, got.PracticeMinutes)
	assert.Equal(t, "1h 3m", got.TimeSpent)
	assert.Equal(t, 3, got.Sessions)
}

func TestCalculateStats_Aggregate(t *testing.T) {
	got := practice.CalculateStats(practice.Aggregate{
		TotalQuestions:      40,
		TotalCorrectAnswers: 30,
		TotalTimeSpent:      7530,
		TotalSessions:       4,
	})

	assert.Equal(t, models.PracticeSummary{
		Accuracy:        75,
		TimeSpent:       "2h 5m",
		ProblemsSolved:  30,
		TotalQuestions:  40,
		PracticeMinutes: 126,
		Sessions:        4,
	}, got)
}

func TestParseStats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want practice.Stats
	}{
		{"absent", "", practice.Empty{}},
		{"null", "null", practice.Empty{}},
		{"empty object", "{}", practice.Empty{}},
		{"sessions", `{"practiceSessions":[{"score":2,"numberOfQuestions":3}]}`,
			practice.Detailed{Sessions: []models.PracticeSession{{Score: 2, NumberOfQuestions: intPtr(3)}}}},
		{"empty sessions beat totals", `{"practiceSessions":[],"totalQuestions":5}`,
			practice.Detailed{Sessions: []models.PracticeSession{}}},
		{"totals", `{"totalQuestions":5,"totalCorrectAnswers":4}`,
			practice.Aggregate{TotalQuestions: 5, TotalCorrectAnswers: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := practice.ParseStats(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStats_Rejects(t *testing.T) {
	for _, raw := range []string{`[1,2]`, `"stats"`, `{"totalQuestions":"many"}`} {
		_, err := practice.ParseStats(json.RawMessage(raw))
		assert.Error(t, err, raw)
	}
}

func TestWireRoundTrip(t *testing.T) {
	agg := practice.Aggregate{TotalQuestions: 3, TotalCorrectAnswers: 2, TotalTimeSpent: 12.5, TotalSessions: 1}
	assert.Equal(t, agg, practice.FromWire(practice.ToWire(agg)))
	assert.Nil(t, practice.ToWire(practice.Empty{}))
}

func TestWireRoundTrip_JSON(t *testing.T) {
	for name, tc := range map[string]struct {
		stats practice.Stats
		wire  string
	}{
		"empty sessions": {practice.Detailed{Sessions: []models.PracticeSession{}}, `{"practiceSessions":[]}`},
		"nil sessions":   {practice.Detailed{}, `{"practiceSessions":[]}`},
		"aggregate": {
			practice.Aggregate{TotalQuestions: 3, TotalCorrectAnswers: 2, TotalTimeSpent: 12.5, TotalSessions: 1},
			`{"totalQuestions":3,"totalCorrectAnswers":2,"totalTimeSpent":12.5,"totalSessions":1}`,
		},
		"empty": {practice.Empty{}, `null`},
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := json.Marshal(practice.ToWire(tc.stats))
			require.NoError(t, err)
			assert.JSONEq(t, tc.wire, string(raw))

			got, err := practice.ParseStats(raw)
			require.NoError(t, err)
			if d, ok := tc.stats.(practice.Detailed); ok && d.Sessions == nil {
				assert.Equal(t, practice.Detailed{Sessions: []models.PracticeSession{}}, got)
				return
			}
			assert.Equal(t, tc.stats, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h 0m", practice.FormatDuration(0))
	assert.Equal(t, "0h 0m", practice.FormatDuration(-20))
	assert.Equal(t, "0h 1m", practice.FormatDuration(119))
	assert.Equal(t, "25h 0m", practice.FormatDuration(90000))
}

func TestFilterSince(t *testing.T) {
	cut := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	stats := practice.Detailed{Sessions: []models.PracticeSession{
		{Score: 1, CompletedAt: cut.Add(-time.Second)},
		{Score: 2, CompletedAt: cut},
		{Score: 3, CompletedAt: cut.Add(time.Hour)},
	}}

	got := practice.FilterSince(stats, cut).(practice.Detailed)
	require.Len(t, got.Sessions, 2)
	assert.Equal(t, 2, got.Sessions[0].Score)

	assert.Equal(t, practice.Empty{}, practice.FilterSince(practice.Aggregate{TotalSessions: 3}, cut))
}
