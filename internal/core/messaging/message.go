// Package messaging defines the chat platform message types and the
// interfaces used to receive and send them.
package messaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidText is returned when an update's text is not valid base64 UTF-8.
var ErrInvalidText = errors.New("invalid message text")

// Update is one pending inbound chat message. Text is base64 encoded on the wire.
type Update struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

// Decode returns the plain text of the update.
func (u Update) Decode() (string, error) {
	return DecodeText(u.Text)
}

// Outbound is a reply to a chat. FilePath is optional; when set the file is
// attached to the message.
type Outbound struct {
	ChatID   string
	Text     string
	FilePath string
}

// HasFile reports whether the message carries an attachment.
func (m Outbound) HasFile() bool {
	return m.FilePath != ""
}

// EncodeText encodes plain text for the wire.
func EncodeText(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeText decodes wire text. Unpadded input is accepted.
func DecodeText(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rawErr error
		raw, rawErr = base64.RawStdEncoding.DecodeString(s)
		if rawErr != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidText, err)
		}
	}

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: not utf-8", ErrInvalidText)
	}

	return string(raw), nil
}
