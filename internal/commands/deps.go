package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hay-kot/hookbot/internal/bot"
	"github.com/hay-kot/hookbot/internal/core/config"
	"github.com/hay-kot/hookbot/internal/core/wishes"
	"github.com/hay-kot/hookbot/internal/integration/yoai"
	"github.com/hay-kot/hookbot/internal/media"
	"github.com/hay-kot/hookbot/internal/store/jsonfile"
)

func component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func newFetcher(f *Flags) *media.Fetcher {
	return media.NewFetcher(f.Config.Media, f.Executor, component("media"))
}

// newSelector loads the wish list once and backs the selector with the
// configured state store.
func newSelector(cfg *config.Config) (*wishes.Selector, error) {
	list, err := wishes.LoadFile(cfg.Wishes.File)
	if err != nil {
		return nil, fmt.Errorf("load wish list: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	var store wishes.StateStore = wishes.NewMemoryStore()
	if cfg.Wishes.StateFile != "" {
		store = jsonfile.NewSelectionStore(cfg.Wishes.StateFile)
	}

	return wishes.NewSelector(list, store, component("wishes"), wishes.SelectorOptions{Location: loc}), nil
}

func newStrategy(f *Flags) (bot.Strategy, error) {
	switch f.Config.Mode {
	case config.ModeAudio:
		return bot.NewAudioStrategy(newFetcher(f), f.Config.Replies, component("audio")), nil
	case config.ModeWishes:
		sel, err := newSelector(f.Config)
		if err != nil {
			return nil, err
		}
		return bot.NewWishesStrategy(sel, f.Config.Replies), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", f.Config.Mode)
	}
}

// newRouter wires the platform client and the reply strategy for the
// configured mode.
func newRouter(f *Flags) (*bot.Router, error) {
	strategy, err := newStrategy(f)
	if err != nil {
		return nil, err
	}

	client := yoai.New(f.Config.API, component("yoai"), yoai.WithAttachmentType(f.Config.Media.ContentType))

	return bot.NewRouter(client, strategy, component("router")), nil
}
