package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/hookbot/internal/bot"
	"github.com/hay-kot/hookbot/internal/commands/doctor"
	"github.com/hay-kot/hookbot/internal/core/config"
	"github.com/hay-kot/hookbot/internal/core/messaging"
	"github.com/hay-kot/hookbot/internal/printer"
)

type registrar interface {
	Register(app *cli.Command) *cli.Command
}

// runCommand runs a single registered command and returns what it wrote to
// the root writer and to the context printer.
func runCommand(t *testing.T, cmd registrar, args ...string) (string, string, error) {
	t.Helper()

	var out, printed bytes.Buffer
	app := cmd.Register(&cli.Command{Name: "hookbot", Writer: &out})
	ctx := printer.NewContext(context.Background(), printer.New(&printed))

	err := app.Run(ctx, append([]string{"hookbot"}, args...))
	return out.String(), printed.String(), err
}

func TestDoctorCmd_ReportsMissingAPIKey(t *testing.T) {
	cfg, err := config.Read("", t.TempDir(), config.Overrides{Mode: "wishes"})
	require.NoError(t, err)
	cfg.Wishes.File = writeWishes(t)

	out, _, err := runCommand(t, NewDoctorCmd(&Flags{Config: cfg}), "doctor", "--format", "json")
	require.NoError(t, err)

	var report doctor.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.False(t, report.Healthy)
	assert.Equal(t, 1, report.ExitCode())

	require.NotEmpty(t, report.Checks)
	assert.Equal(t, "Configuration", report.Checks[0].Name)

	var found bool
	for _, item := range report.Checks[0].Items {
		if item.Label == "api.key" {
			found = true
			assert.Equal(t, doctor.StatusFail, item.Status)
		}
	}
	assert.True(t, found, "api.key item missing from %s", out)
}

func TestRequireValidConfig(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		f := testFlags(t, config.ModeAudio)
		f.Config.API.Key = ""
		assert.ErrorContains(t, f.RequireValidConfig(), "api.key")
	})

	t.Run("not loaded", func(t *testing.T) {
		assert.Error(t, (&Flags{}).RequireValidConfig())
	})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, testFlags(t, config.ModeAudio).RequireValidConfig())
	})
}

func TestPollCmd_RequiresAPIKey(t *testing.T) {
	f := testFlags(t, config.ModeAudio)
	f.Config.API.Key = ""

	_, _, err := runCommand(t, NewPollCmd(f), "poll")
	assert.ErrorContains(t, err, "invalid config")
}

func TestPollCmd_JSONSummary(t *testing.T) {
	var sent atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getUpdates":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []messaging.Update{
				{ChatID: "c1", Text: messaging.EncodeText("https://youtu.be/abc123")},
				{ChatID: "c2", Text: messaging.EncodeText("good morning")},
			}})
		case "/sendMessage":
			sent.Add(1)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := testFlags(t, config.ModeWishes)
	f.Config.Wishes.File = writeWishes(t)
	f.Config.API.BaseURL = srv.URL
	f.Config.API.RateLimit.RPS = 0

	out, _, err := runCommand(t, NewPollCmd(f), "poll", "--format", "json")
	require.NoError(t, err)

	var sum bot.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))

	assert.NotEmpty(t, sum.ID)
	assert.Equal(t, 2, sum.Fetched)
	assert.Equal(t, 1, sum.Matched)
	assert.Equal(t, 1, sum.Ignored)
	assert.Equal(t, 1, sum.Sent)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, int32(1), sent.Load())
}

func TestPruneCmd(t *testing.T) {
	setup := func(t *testing.T) (*Flags, []string) {
		t.Helper()

		f := testFlags(t, config.ModeAudio)
		require.NoError(t, os.MkdirAll(f.Config.Media.Dir, 0o755))

		old := time.Now().Add(-48 * time.Hour)
		var paths []string
		for _, name := range []string{"song.mp3", "clip.webm.part"} {
			path := filepath.Join(f.Config.Media.Dir, name)
			require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
			require.NoError(t, os.Chtimes(path, old, old))
			paths = append(paths, path)
		}

		return f, paths
	}

	t.Run("dry run keeps files", func(t *testing.T) {
		f, paths := setup(t)

		_, printed, err := runCommand(t, NewPruneCmd(f), "prune", "--dry-run", "--older-than", "24h")
		require.NoError(t, err)

		assert.Contains(t, printed, "Would remove 2 file(s)")
		for _, path := range paths {
			assert.FileExists(t, path)
			assert.Contains(t, printed, path)
		}
	})

	t.Run("removes old files", func(t *testing.T) {
		f, paths := setup(t)

		_, printed, err := runCommand(t, NewPruneCmd(f), "prune", "--older-than", "24h")
		require.NoError(t, err)

		assert.Contains(t, printed, "Pruned 2 file(s)")
		for _, path := range paths {
			assert.NoFileExists(t, path)
		}
	})
}
