package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abacusquest/abacusquest/internal/auth"
	"github.com/abacusquest/abacusquest/internal/db"
	"github.com/abacusquest/abacusquest/internal/kvstore"
	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/abacusquest/abacusquest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummarize_Detailed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	payload := `{
		"levels": [{"levelId": 1, "classes": [{"classId": 1, "Test": 90}, {"classId": 2}], "FinalTest": 80}],
		"practiceStats": {"practiceSessions": [{"practiceType": "timed", "operation": "addition", "score": 9, "numberOfQuestions": 10, "totalTime": 600}]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	out, err := run(t, "", "summarize", path, "--at", "2026-03-04")
	require.NoError(t, err)

	var summary models.ProgressSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Progress.TotalLevels)
	assert.Equal(t, 1, summary.Progress.CompletedClasses)
	assert.Equal(t, 90, summary.Practice.Accuracy)
	assert.Equal(t, 10, summary.Practice.PracticeMinutes)
	assert.Equal(t, "0h 10m", summary.Practice.TimeSpent)
	assert.Equal(t, 1, summary.WeeklyGoals.Conquests.Current)
	assert.True(t, summary.WeeklyGoals.WeekStart.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestSummarize_AggregateFromStdin(t *testing.T) {
	out, err := run(t, `{"levels": [], "practiceStats": {"totalQuestions": 4, "totalCorrectAnswers": 3, "totalTimeSpent": 3600, "totalSessions": 2}}`, "summarize", "-")
	require.NoError(t, err)

	var summary models.ProgressSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 75, summary.Practice.Accuracy)
	assert.Equal(t, "1h 0m", summary.Practice.TimeSpent)
	assert.Equal(t, 2, summary.Practice.Sessions)
	assert.Zero(t, summary.Progress.OverallProgress)
}

func TestSummarize_Errors(t *testing.T) {
	_, err := run(t, `{`, "summarize", "-")
	assert.Error(t, err)

	_, err = run(t, `{}`, "summarize", "-", "--at", "tomorrow")
	assert.Error(t, err)

	_, err = run(t, "", "summarize", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	secret := "cli-secret-0123456789"
	out, err := run(t, "", "token", "42", "--secret", secret, "--ttl", "1h")
	require.NoError(t, err)

	id, err := auth.NewIssuer(secret, time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = run(t, "", "token", "abc", "--secret", secret)
	assert.Error(t, err)
	_, err = run(t, "", "token", "1", "--secret", "short")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "abacus.db")

	database, err := db.Open(path)
	require.NoError(t, err)
	kv := kvstore.NewSQLite(database.DB)
	scope := kvstore.StudentScope(7)
	_, err = kvstore.PutJSON(ctx, kv, scope, "coins-storage", map[string]int{"coins": 40})
	require.NoError(t, err)
	_, err = kvstore.PutJSON(ctx, kv, scope, "goals-storage", map[string]any{"items": []any{}})
	require.NoError(t, err)
	testutil.MustClose(t, database)

	out, err := run(t, "", "reset", "7", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "reset student 7")

	database, err = db.Open(path)
	require.NoError(t, err)
	defer testutil.MustClose(t, database)
	keys, err := kvstore.NewSQLite(database.DB).Keys(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []string{"goals-storage"}, keys)

	_, err = run(t, "", "reset", "7", "--db", path, "--all")
	require.NoError(t, err)
	keys, err = kvstore.NewSQLite(database.DB).Keys(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
