// Package yoai implements the chat platform's bot API: polling for pending
// updates and sending replies with optional file attachments.
package yoai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/hay-kot/hookbot/internal/core/config"
	"github.com/hay-kot/hookbot/internal/core/messaging"
)

const maxResponseSize = 10 << 20

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: http %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.Status, e.Body)
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithAttachmentType sets the content type of attached files.
func WithAttachmentType(contentType string) Option {
	return func(c *Client) {
		c.attachmentType = contentType
	}
}

// Client talks to the platform API. It implements messaging.Client.
type Client struct {
	http           *http.Client
	baseURL        string
	apiKey         string
	keyHeader      string
	attachmentType string
	limiter        *rate.Limiter
	log            zerolog.Logger

	// Polling and sending trip independently so a failing send path does not
	// stop updates from being fetched, and the reverse.
	pollBreaker *gobreaker.CircuitBreaker[[]byte]
	sendBreaker *gobreaker.CircuitBreaker[[]byte]
}

var _ messaging.Client = (*Client)(nil)

// New creates a Client from the API configuration.
func New(cfg config.APIConfig, log zerolog.Logger, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RateLimit.RPS > 0 {
		limit = rate.Limit(cfg.RateLimit.RPS)
	}
	burst := cfg.RateLimit.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		http:           &http.Client{Timeout: cfg.Timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.Key,
		keyHeader:      cfg.KeyHeader,
		attachmentType: "audio/mpeg",
		limiter:        rate.NewLimiter(limit, burst),
		log:            log,
	}

	c.pollBreaker = c.newBreaker("yoai-poll", cfg.Breaker)
	c.sendBreaker = c.newBreaker("yoai-send", cfg.Breaker)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) newBreaker(name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// isBreakerSuccess reports whether err leaves the breaker counts healthy.
// 4xx answers concern a single request (unknown chat, bad payload) and
// cancellation comes from the caller; only 5xx and transport errors trip.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status >= 400 && statusErr.Status < 500
	}

	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type updatesResponse struct {
	Data []messaging.Update `json:"data"`
}

// GetUpdates returns the pending updates.
func (c *Client) GetUpdates(ctx context.Context) ([]messaging.Update, error) {
	body, err := c.do(ctx, "getUpdates", c.pollBreaker, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/getUpdates", strings.NewReader("{}"))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var out updatesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}

	c.log.Debug().Int("count", len(out.Data)).Msg("fetched updates")
	return out.Data, nil
}

type sendMessageRequest struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

// SendMessage sends msg. Text is base64 encoded on the wire. With a file the
// request is multipart/form-data, otherwise JSON.
func (c *Client) SendMessage(ctx context.Context, msg messaging.Outbound) error {
	var build func() (*http.Request, error)

	if msg.HasFile() {
		if _, err := os.Stat(msg.FilePath); err != nil {
			c.log.Error().Err(err).Str("chat_id", msg.ChatID).Str("file", msg.FilePath).Msg("send message failed: attachment unavailable")
			return fmt.Errorf("attachment: %w", err)
		}
		build = func() (*http.Request, error) {
			return c.multipartRequest(ctx, msg)
		}
	} else {
		payload, err := json.Marshal(sendMessageRequest{
			ChatID: msg.ChatID,
			Text:   messaging.EncodeText(msg.Text),
		})
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		build = func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sendMessage", bytes.NewReader(payload))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		}
	}

	_, err := c.do(ctx, "sendMessage", c.sendBreaker, build)
	if err != nil {
		c.log.Error().Err(err).Str("chat_id", msg.ChatID).Bool("file", msg.HasFile()).Msg("send message failed")
		return err
	}

	c.log.Info().Str("chat_id", msg.ChatID).Bool("file", msg.HasFile()).Msg("message sent")
	return nil
}

// multipartRequest streams the attachment through a pipe so large audio files
// are not buffered in memory.
func (c *Client) multipartRequest(ctx context.Context, msg messaging.Outbound) (*http.Request, error) {
	f, err := os.Open(msg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer f.Close() //nolint:errcheck

		err := writeMultipart(mw, msg, f, c.attachmentType)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sendMessage", pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req, nil
}

func writeMultipart(mw *multipart.Writer, msg messaging.Outbound, file io.Reader, contentType string) error {
	if err := mw.WriteField("chatId", msg.ChatID); err != nil {
		return err
	}
	if err := mw.WriteField("text", messaging.EncodeText(msg.Text)); err != nil {
		return err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(msg.FilePath)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, file)
	return err
}

// do runs one API call through the rate limiter and the given circuit breaker
// and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, op string, breaker *gobreaker.CircuitBreaker[[]byte], build func() (*http.Request, error)) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit: %w", op, err)
	}

	start := time.Now()

	body, err := breaker.Execute(func() ([]byte, error) {
		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("%s: build request: %w", op, err)
		}
		req.Header.Set(c.keyHeader, c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		defer resp.Body.Close() //nolint:errcheck

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("%s: read response: %w", op, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		}

		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("op", op).Dur("took", time.Since(start)).Msg("api call complete")
	return body, nil
}
