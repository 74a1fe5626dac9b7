package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/vita/internal/domain/lifestyle"
)

const answersYAML = `
age: 34
gender: female
sleepHours: 5.5
activityLevel: sedentary
stressLevel: moderate
eatingHabits: average
screenTime: 4
waterIntake: 0
commonIssues: [fatigue]
`

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify_YAMLFromStdinIsReproducibleWithSeed(t *testing.T) {
	first, err := runCmd(t, answersYAML, "classify", "--seed", "7")
	require.NoError(t, err)
	second, err := runCmd(t, answersYAML, "classify", "--seed", "7")
	require.NoError(t, err)
	require.Equal(t, first, second)

	var report classifyReport
	require.NoError(t, json.Unmarshal([]byte(first), &report))
	require.Equal(t, []lifestyle.RiskIndicator{lifestyle.RiskSleep, lifestyle.RiskHydration, lifestyle.RiskMovement}, report.Classification.RiskIndicators)
	require.NotEmpty(t, report.DailyTask)
	require.Equal(t, lifestyle.Suggestion(report.Classification), report.Suggestion)
}

func TestClassify_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	body := `{"age":30,"gender":"male","sleepHours":8,"activityLevel":"active","stressLevel":"low","eatingHabits":"good","screenTime":2,"waterIntake":8}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := runCmd(t, "", "classify", "--file", path)
	require.NoError(t, err)

	var report classifyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 5, report.Classification.BalanceScore)
	require.Empty(t, report.Classification.RiskIndicators)
}

func TestClassify_RejectsIncompleteAnswers(t *testing.T) {
	_, err := runCmd(t, "age: 30\n", "classify")
	require.Error(t, err)
	require.ErrorIs(t, err, lifestyle.ErrIncompleteInput)
}

func TestMigrate_PrintSchema(t *testing.T) {
	out, err := runCmd(t, "", "migrate", "--print")
	require.NoError(t, err)
	require.Contains(t, out, "CREATE TABLE IF NOT EXISTS daily_logs")
}

func TestTasks_PrintsCatalog(t *testing.T) {
	out, err := runCmd(t, "", "tasks")
	require.NoError(t, err)

	var catalog taskCatalog
	require.NoError(t, json.Unmarshal([]byte(out), &catalog))
	require.Len(t, catalog.ByIndicator, len(lifestyle.AllRiskIndicators()))
	require.Len(t, catalog.ByIndicator["hydration"], 2)
	require.Len(t, catalog.ByIndicator["screen time"], 2)
	require.Equal(t, lifestyle.DefaultTasks(), catalog.Default)
}
