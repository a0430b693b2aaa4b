package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/hookbot/pkg/tmpl"
)

// AudioReplyData defines available fields for the audio reply template.
type AudioReplyData struct {
	Title string
	Path  string
}

// WishesReplyData defines available fields for the wishes reply template.
type WishesReplyData struct {
	Wishes []string
	Count  int
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is valid. Problems are reported as
// criterio.FieldErrors keyed by the yaml path of the offending field.
func (c *Config) Validate() error {
	var errs criterio.FieldErrors
	add := func(field string, err error) {
		errs = append(errs, criterio.FieldErrors{{Field: field, Err: err}}...)
	}

	if strings.TrimSpace(c.API.Key) == "" {
		add("api.key", errors.New("API key is required (set YOAI_API_KEY)"))
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("api.base_url", fmt.Errorf("invalid URL %q", c.API.BaseURL))
	}

	if strings.TrimSpace(c.API.KeyHeader) == "" {
		add("api.key_header", errors.New("cannot be empty"))
	}

	if c.API.Timeout < 0 {
		add("api.timeout", errors.New("cannot be negative"))
	}

	if c.API.RateLimit.RPS < 0 {
		add("api.rate_limit.rps", errors.New("cannot be negative"))
	}

	if c.API.RateLimit.Burst < 1 {
		add("api.rate_limit.burst", errors.New("must be at least 1"))
	}

	if r := c.API.Breaker.FailureRatio; r <= 0 || r > 1 {
		add("api.breaker.failure_ratio", fmt.Errorf("must be in (0, 1], got %v", r))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port", fmt.Errorf("must be between 1 and 65535, got %d", c.Server.Port))
	}

	if err := tmpl.Check(c.Replies.AudioFailed, nil); err != nil {
		add("replies.audio_failed", fmt.Errorf("template error: %w", err))
	}

	switch c.Mode {
	case ModeAudio:
		c.validateMedia(add)
	case ModeWishes:
		c.validateWishes(add)
	default:
		add("mode", fmt.Errorf("unknown mode %q (use %q or %q)", c.Mode, ModeAudio, ModeWishes))
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (c *Config) validateMedia(add func(string, error)) {
	if c.Media.Dir == "" {
		add("media.dir", errors.New("download directory cannot be empty"))
	}
	if c.Media.ToolPath == "" {
		add("media.tool_path", errors.New("cannot be empty"))
	}
	if c.Media.Codec == "" {
		add("media.codec", errors.New("cannot be empty"))
	}
	if c.Media.Timeout < 0 {
		add("media.timeout", errors.New("cannot be negative"))
	}
	if err := tmpl.Check(c.Replies.Audio, AudioReplyData{}); err != nil {
		add("replies.audio", fmt.Errorf("template error: %w", err))
	}
}

func (c *Config) validateWishes(add func(string, error)) {
	if c.Wishes.File == "" {
		add("wishes.file", errors.New("wish list file is required in wishes mode"))
	}
	if _, err := c.Location(); err != nil {
		add("wishes.timezone", fmt.Errorf("unknown time zone %q", c.Wishes.Timezone))
	}
	if err := tmpl.Check(c.Replies.Wishes, WishesReplyData{}); err != nil {
		add("replies.wishes", fmt.Errorf("template error: %w", err))
	}
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Mode == ModeWishes && c.Wishes.StateFile == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Wishes",
			Item:     "state_file",
			Message:  "selection state is kept in memory and resets on restart",
		})
	}

	if c.API.RateLimit.RPS == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "rate_limit",
			Message:  "outbound calls are not rate limited",
		})
	}

	return warnings
}
