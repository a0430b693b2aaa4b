// Package config handles configuration loading and validation for hookbot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how the bot replies to a trigger link.
type Mode string

const (
	// ModeAudio downloads the linked video's audio and replies with the file.
	ModeAudio Mode = "audio"
	// ModeWishes replies with a random sample from the wish list.
	ModeWishes Mode = "wishes"
)

// DefaultBaseURL is the public bot API of the chat platform.
const DefaultBaseURL = "https://yoai.yophone.com/api/pub"

// Config holds the application configuration.
type Config struct {
	Mode    Mode          `yaml:"mode"`
	API     APIConfig     `yaml:"api"`
	Server  ServerConfig  `yaml:"server"`
	Media   MediaConfig   `yaml:"media"`
	Wishes  WishesConfig  `yaml:"wishes"`
	Replies RepliesConfig `yaml:"replies"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// APIConfig configures the chat platform client.
type APIConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Key       string          `yaml:"-"` // secret, only from env or flag
	KeyHeader string          `yaml:"key_header"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Breaker   BreakerConfig   `yaml:"breaker"`
}

// RateLimitConfig throttles outbound API calls. RPS of 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BreakerConfig configures the circuit breaker around API calls.
type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"max_requests"`  // requests allowed while half-open
	Interval     time.Duration `yaml:"interval"`      // closed-state count reset period
	Timeout      time.Duration `yaml:"timeout"`       // open-state duration
	MinRequests  uint32        `yaml:"min_requests"`  // requests before the ratio applies
	FailureRatio float64       `yaml:"failure_ratio"` // trip threshold
}

// ServerConfig configures the HTTP endpoint layer.
type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// MediaConfig configures the audio fetcher.
type MediaConfig struct {
	Dir            string        `yaml:"dir"`
	ToolPath       string        `yaml:"tool_path"`
	FFmpegPath     string        `yaml:"ffmpeg_path"`
	Format         string        `yaml:"format"`
	Codec          string        `yaml:"codec"`
	Quality        string        `yaml:"quality"`
	OutputTemplate string        `yaml:"output_template"`
	ContentType    string        `yaml:"content_type"`
	Timeout        time.Duration `yaml:"timeout"`
}

// WishesConfig configures the wish selector.
type WishesConfig struct {
	File      string `yaml:"file"`
	StateFile string `yaml:"state_file"` // empty keeps state in memory
	Timezone  string `yaml:"timezone"`   // IANA name, empty for local time
}

// RepliesConfig holds the reply text templates.
type RepliesConfig struct {
	Audio       string `yaml:"audio"`        // AudioReplyData
	AudioFailed string `yaml:"audio_failed"` // no data
	Wishes      string `yaml:"wishes"`       // WishesReplyData
}

// Overrides are values supplied on the command line or environment that take
// precedence over the config file. Zero values are ignored.
type Overrides struct {
	APIKey string
	Mode   string
	Port   int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mode: ModeAudio,
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			KeyHeader: "X-YoAI-API-Key",
			Timeout:   60 * time.Second,
			RateLimit: RateLimitConfig{
				RPS:   5,
				Burst: 5,
			},
			Breaker: BreakerConfig{
				MaxRequests:  1,
				Interval:     60 * time.Second,
				Timeout:      30 * time.Second,
				MinRequests:  5,
				FailureRatio: 0.6,
			},
		},
		Server: ServerConfig{
			Port:              5000,
			ReadHeaderTimeout: 10 * time.Second,
		},
		Media: MediaConfig{
			ToolPath:       "yt-dlp",
			Format:         "bestaudio/best",
			Codec:          "mp3",
			Quality:        "192K",
			OutputTemplate: "%(title)s.%(ext)s",
			ContentType:    "audio/mpeg",
			Timeout:        10 * time.Minute,
		},
		Replies: RepliesConfig{
			Audio:       "Here is your MP3 file:",
			AudioFailed: "Could not download the audio. Please check the link.",
			Wishes:      `{{ join .Wishes "\n" }}`,
		},
	}
}

// Load reads configuration from the given path, applies overrides and
// validates the result. If configPath is empty or doesn't exist, defaults are
// used.
func Load(configPath, dataDir string, overrides Overrides) (*Config, error) {
	cfg, err := Read(configPath, dataDir, overrides)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation. Only an unreadable or unparsable file is
// an error, so diagnostics can inspect a config that Validate rejects.
func Read(configPath, dataDir string, overrides Overrides) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.apply(overrides)
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.APIKey != "" {
		c.API.Key = o.APIKey
	}
	if o.Mode != "" {
		c.Mode = Mode(o.Mode)
	}
	if o.Port != 0 {
		c.Server.Port = o.Port
	}
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Mode == "" {
		c.Mode = defaults.Mode
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.KeyHeader == "" {
		c.API.KeyHeader = defaults.API.KeyHeader
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = defaults.API.RateLimit.Burst
	}
	if c.API.Breaker.MaxRequests == 0 {
		c.API.Breaker.MaxRequests = defaults.API.Breaker.MaxRequests
	}
	if c.API.Breaker.Timeout == 0 {
		c.API.Breaker.Timeout = defaults.API.Breaker.Timeout
	}
	if c.API.Breaker.MinRequests == 0 {
		c.API.Breaker.MinRequests = defaults.API.Breaker.MinRequests
	}
	if c.API.Breaker.FailureRatio == 0 {
		c.API.Breaker.FailureRatio = defaults.API.Breaker.FailureRatio
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = defaults.Server.ReadHeaderTimeout
	}
	if c.Media.Dir == "" && c.DataDir != "" {
		c.Media.Dir = filepath.Join(c.DataDir, "downloads")
	}
	if c.Media.ToolPath == "" {
		c.Media.ToolPath = defaults.Media.ToolPath
	}
	if c.Media.Format == "" {
		c.Media.Format = defaults.Media.Format
	}
	if c.Media.Codec == "" {
		c.Media.Codec = defaults.Media.Codec
	}
	if c.Media.Quality == "" {
		c.Media.Quality = defaults.Media.Quality
	}
	if c.Media.OutputTemplate == "" {
		c.Media.OutputTemplate = defaults.Media.OutputTemplate
	}
	if c.Media.ContentType == "" {
		c.Media.ContentType = defaults.Media.ContentType
	}
	if c.Media.Timeout == 0 {
		c.Media.Timeout = defaults.Media.Timeout
	}
	if c.Replies.Audio == "" {
		c.Replies.Audio = defaults.Replies.Audio
	}
	if c.Replies.AudioFailed == "" {
		c.Replies.AudioFailed = defaults.Replies.AudioFailed
	}
	if c.Replies.Wishes == "" {
		c.Replies.Wishes = defaults.Replies.Wishes
	}
}

// Location returns the time zone used for the wish selector's calendar day.
func (c *Config) Location() (*time.Location, error) {
	if c.Wishes.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Wishes.Timezone)
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Server.Port)
}
