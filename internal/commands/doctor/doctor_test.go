package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/hookbot/internal/core/config"
	"github.com/hay-kot/hookbot/pkg/executil"
)

type stubCheck struct {
	name  string
	items []CheckItem
	ran   bool
}

func (s *stubCheck) Name() string { return s.name }

func (s *stubCheck) Run(context.Context) Result {
	s.ran = true
	return Result{Name: s.name, Items: s.items}
}

func TestRun_Report(t *testing.T) {
	check := NewDownloadDirCheck(filepath.Join(t.TempDir(), "missing"), false)

	report := Run(context.Background(), []Check{check})
	require.Len(t, report.Checks, 1)
	require.Len(t, report.Checks[0].Items, 1)

	assert.True(t, report.Healthy)
	assert.Equal(t, Counts{Warned: 1, Fixable: 1}, report.Summary)
	assert.Equal(t, 0, report.ExitCode())

	data, err := json.Marshal(report.Checks[0].Items[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"warn"`)
	assert.Contains(t, string(data), `"fixable":true`)
}

func TestRun_FailureSetsExitCode(t *testing.T) {
	checks := []Check{
		&stubCheck{name: "a", items: []CheckItem{pass("one", ""), warn("two", "")}},
		&stubCheck{name: "b", items: []CheckItem{fail("three", "broken")}},
	}

	report := Run(context.Background(), checks)

	assert.False(t, report.Healthy)
	assert.Equal(t, Counts{Passed: 1, Warned: 1, Failed: 1}, report.Summary)
	assert.Equal(t, 1, report.ExitCode())
}

func TestRun_CancelledContextSkipsChecks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	check := &stubCheck{name: "tools", items: []CheckItem{pass("yt-dlp", "")}}
	report := Run(ctx, []Check{check})

	assert.False(t, check.ran)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, "Skipped", report.Checks[0].Items[0].Label)
	assert.Equal(t, 1, report.ExitCode())
}

func TestConfigCheck(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		result := NewConfigCheck(nil, "").Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})

	t.Run("valid", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.API.Key = "secret"
		cfg.Media.Dir = t.TempDir()

		result := NewConfigCheck(&cfg, filepath.Join(t.TempDir(), "none.yaml")).Run(context.Background())

		for _, item := range result.Items {
			assert.Equal(t, StatusPass, item.Status, item.Label)
		}
		assert.Equal(t, "Config valid", result.Items[len(result.Items)-1].Label)
	})

	t.Run("field errors and warnings", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Mode = config.ModeWishes
		cfg.API.RateLimit.RPS = 0

		result := NewConfigCheck(&cfg, "").Run(context.Background())

		labels := map[string]Status{}
		for _, item := range result.Items {
			labels[item.Label] = item.Status
		}

		assert.Equal(t, StatusFail, labels["api.key"])
		assert.Equal(t, StatusFail, labels["wishes.file"])
		assert.Equal(t, StatusWarn, labels["Wishes (state_file)"])
		assert.Equal(t, StatusWarn, labels["API (rate_limit)"])
	})
}

func TestToolsCheck(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{"yt-dlp": []byte("2025.01.15\n")},
		Errors:  map[string]error{"ffmpeg": errors.New("executable file not found in $PATH")},
	}

	result := NewToolsCheck(exec,
		Tool{Name: "yt-dlp", Path: "yt-dlp", Args: []string{"--version"}},
		Tool{Name: "ffmpeg", Path: "ffmpeg", Args: []string{"-version"}},
	).Run(context.Background())

	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "2025.01.15", result.Items[0].Detail)
	assert.Equal(t, StatusFail, result.Items[1].Status)

	require.Len(t, exec.Commands, 2)
	assert.Equal(t, []string{"--version"}, exec.Commands[0].Args)
}

func TestWishesCheck(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "wishes.txt")
	require.NoError(t, os.WriteFile(good, []byte("a\nb\nc\n"), 0o644))

	short := filepath.Join(dir, "short.txt")
	require.NoError(t, os.WriteFile(short, []byte("a\n"), 0o644))

	tests := []struct {
		name string
		file string
		want Status
	}{
		{"loads", good, StatusPass},
		{"too few", short, StatusFail},
		{"missing", filepath.Join(dir, "nope.txt"), StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewWishesCheck(tt.file).Run(context.Background())
			require.Len(t, result.Items, 1)
			assert.Equal(t, tt.want, result.Items[0].Status)
		})
	}
}

func TestDownloadDirCheck(t *testing.T) {
	t.Run("existing", func(t *testing.T) {
		result := NewDownloadDirCheck(t.TempDir(), false).Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, StatusPass, result.Items[1].Status)
	})

	t.Run("fix creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "downloads")

		result := NewDownloadDirCheck(dir, true).Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.DirExists(t, dir)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "write check should clean up after itself")
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		result := NewDownloadDirCheck(file, false).Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})
}
