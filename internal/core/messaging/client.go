package messaging

import "context"

// Source returns the pending updates for the bot.
type Source interface {
	GetUpdates(ctx context.Context) ([]Update, error)
}

// Sender delivers a reply to a chat.
type Sender interface {
	SendMessage(ctx context.Context, msg Outbound) error
}

// Client is a platform client that can both poll and reply.
type Client interface {
	Source
	Sender
}
