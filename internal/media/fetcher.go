// Package media downloads linked videos as audio files using an external
// downloader (yt-dlp) and manages the download directory.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/hookbot/internal/core/config"
	"github.com/hay-kot/hookbot/pkg/executil"
)

// Reason classifies why a fetch failed.
type Reason string

const (
	ReasonNetwork     Reason = "network"
	ReasonUnsupported Reason = "unsupported"
	ReasonTranscode   Reason = "transcode"
	ReasonUnknown     Reason = "unknown"
)

// FetchError is returned by Fetch for every failure.
type FetchError struct {
	Reason Reason
	URL    string
	Output string // tool stderr, if any
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// intermediateExts are containers the downloader may report before the
// audio is extracted to the target codec.
var intermediateExts = []string{".webm", ".m4a", ".mp4", ".opus", ".ogg", ".aac", ".mka", ".weba"}

// Fetcher turns a video URL into a local audio file.
type Fetcher struct {
	cfg      config.MediaConfig
	executor executil.Executor
	log      zerolog.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(cfg config.MediaConfig, executor executil.Executor, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		cfg:      cfg,
		executor: executor,
		log:      log,
	}
}

// Fetch downloads the best audio stream of url, converts it to the configured
// codec and returns the path of the resulting file. Files are left in the
// download directory; see Pruner.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(f.cfg.Dir, 0o755); err != nil {
		return "", &FetchError{Reason: ReasonUnknown, URL: url, Err: fmt.Errorf("create download dir: %w", err)}
	}

	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	args := f.args(url)
	f.log.Debug().
		Str("tool", f.cfg.ToolPath).
		Strs("args", args).
		Msg("running downloader")

	out, err := f.executor.Capture(ctx, "", f.cfg.ToolPath, args...)
	if err != nil {
		fe := &FetchError{
			Reason: classify(ctx, string(out.Stderr), err),
			URL:    url,
			Output: strings.TrimSpace(string(out.Stderr)),
			Err:    err,
		}
		f.log.Error().
			Err(err).
			Str("url", url).
			Str("reason", string(fe.Reason)).
			Str("output", fe.Output).
			Msg("audio download failed")
		return "", fe
	}

	reported := lastLine(string(out.Stdout))
	if reported == "" {
		return "", &FetchError{Reason: ReasonUnknown, URL: url, Err: errors.New("downloader did not report an output file")}
	}

	path := ReplaceExt(reported, f.cfg.Codec)
	if _, err := os.Stat(path); err != nil {
		f.log.Error().
			Err(err).
			Str("url", url).
			Str("reported", reported).
			Msg("converted file missing")
		return "", &FetchError{Reason: ReasonTranscode, URL: url, Err: fmt.Errorf("converted file missing: %w", err)}
	}

	f.log.Debug().Str("url", url).Str("path", path).Msg("audio downloaded")
	return path, nil
}

// args builds the downloader command line. The URL always follows "--" so
// message text can never be read as an option.
func (f *Fetcher) args(url string) []string {
	args := []string{
		"--format", f.cfg.Format,
		"--extract-audio",
		"--audio-format", f.cfg.Codec,
		"--audio-quality", f.cfg.Quality,
		"--output", filepath.Join(f.cfg.Dir, f.cfg.OutputTemplate),
		"--no-playlist",
		"--no-progress",
		"--no-simulate",
		"--print", "filename",
	}

	if f.cfg.FFmpegPath != "" {
		args = append(args, "--ffmpeg-location", f.cfg.FFmpegPath)
	}

	return append(args, "--", url)
}

// ReplaceExt swaps a known intermediate container extension on path for
// codec. Paths with any other extension are returned unchanged.
func ReplaceExt(path, codec string) string {
	ext := filepath.Ext(path)
	for _, known := range intermediateExts {
		if strings.EqualFold(ext, known) {
			return strings.TrimSuffix(path, ext) + "." + codec
		}
	}
	return path
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// classify maps a downloader failure to a Reason using the context state and
// the tool's error output.
func classify(ctx context.Context, stderr string, err error) Reason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ReasonNetwork
	}

	if errors.Is(err, exec.ErrNotFound) {
		return ReasonUnknown
	}

	msg := strings.ToLower(stderr)

	switch {
	case containsAny(msg, "unsupported url", "is not a valid url", "video unavailable", "no video formats found", "private video"):
		return ReasonUnsupported
	case containsAny(msg, "postprocessing", "ffmpeg", "ffprobe", "conversion failed"):
		return ReasonTranscode
	case containsAny(msg, "unable to download", "http error", "timed out", "connection", "name resolution", "network is unreachable", "ssl"):
		return ReasonNetwork
	default:
		return ReasonUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
