package bot

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hay-kot/hookbot/internal/core/messaging"
)

type fakeClient struct {
	mu        sync.Mutex
	updates   []messaging.Update
	updateErr error
	sendErr   map[string]error // keyed by chat id
	sent      []messaging.Outbound
}

func (c *fakeClient) GetUpdates(context.Context) ([]messaging.Update, error) {
	return c.updates, c.updateErr
}

func (c *fakeClient) SendMessage(_ context.Context, m messaging.Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m)
	return c.sendErr[m.ChatID]
}

type fakeFetcher struct {
	path string
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.path, f.err
}

type fakeSelector struct {
	items []string
	err   error
}

func (s *fakeSelector) Select(context.Context) ([]string, error) {
	return s.items, s.err
}

var errBoom = errors.New("boom")

func update(chatID, text string) messaging.Update {
	return messaging.Update{ChatID: chatID, Text: messaging.EncodeText(text)}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
