package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/hookbot/internal/core/config"
	"github.com/hay-kot/hookbot/internal/core/messaging"
	"github.com/hay-kot/hookbot/pkg/tmpl"
)

// Strategy builds the reply for a message that matched a trigger.
type Strategy interface {
	Name() string
	Reply(ctx context.Context, chatID, text string) (messaging.Outbound, error)
}

// Fetcher downloads the audio of a linked video.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Selector picks wishes to send.
type Selector interface {
	Select(ctx context.Context) ([]string, error)
}

// AudioStrategy replies with the audio of the linked video. When the
// download fails it replies with an apology instead of the file.
type AudioStrategy struct {
	fetcher Fetcher
	replies config.RepliesConfig
	log     zerolog.Logger
}

// NewAudioStrategy creates an AudioStrategy.
func NewAudioStrategy(fetcher Fetcher, replies config.RepliesConfig, log zerolog.Logger) *AudioStrategy {
	return &AudioStrategy{fetcher: fetcher, replies: replies, log: log}
}

func (s *AudioStrategy) Name() string { return string(config.ModeAudio) }

func (s *AudioStrategy) Reply(ctx context.Context, chatID, text string) (messaging.Outbound, error) {
	url := ExtractURL(text)

	path, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.log.Warn().Err(err).Str("chat_id", chatID).Str("url", url).Msg("replying with download failure")

		msg, rerr := tmpl.Render(s.replies.AudioFailed, nil)
		if rerr != nil {
			return messaging.Outbound{}, fmt.Errorf("render failure reply: %w", rerr)
		}
		return messaging.Outbound{ChatID: chatID, Text: msg}, nil
	}

	msg, err := tmpl.Render(s.replies.Audio, config.AudioReplyData{
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:  path,
	})
	if err != nil {
		return messaging.Outbound{}, fmt.Errorf("render audio reply: %w", err)
	}

	return messaging.Outbound{ChatID: chatID, Text: msg, FilePath: path}, nil
}

// WishesStrategy replies with a random sample from the wish list.
type WishesStrategy struct {
	selector Selector
	replies  config.RepliesConfig
}

// NewWishesStrategy creates a WishesStrategy.
func NewWishesStrategy(selector Selector, replies config.RepliesConfig) *WishesStrategy {
	return &WishesStrategy{selector: selector, replies: replies}
}

func (s *WishesStrategy) Name() string { return string(config.ModeWishes) }

func (s *WishesStrategy) Reply(ctx context.Context, chatID, _ string) (messaging.Outbound, error) {
	items, err := s.selector.Select(ctx)
	if err != nil {
		return messaging.Outbound{}, fmt.Errorf("select wishes: %w", err)
	}

	msg, err := tmpl.Render(s.replies.Wishes, config.WishesReplyData{
		Wishes: items,
		Count:  len(items),
	})
	if err != nil {
		return messaging.Outbound{}, fmt.Errorf("render wishes reply: %w", err)
	}

	return messaging.Outbound{ChatID: chatID, Text: msg}, nil
}
