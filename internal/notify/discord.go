// Package notify posts status messages and report attachments to a Discord
// channel through the bot API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/budget-csv/internal/logging"

	"github.com/avast/retry-go"
)

// DefaultBaseURL is the Discord REST API root.
const DefaultBaseURL = "https://discord.com/api/v10"

// Discord limits message content to 2000 characters.
const maxContentLength = 2000

// Message is one channel post.
type Message struct {
	Content string
	// Attachments are local file paths uploaded with the message.
	Attachments []string
}

// Notifier delivers messages.
type Notifier interface {
	Post(ctx context.Context, msg Message) error
}

// NopNotifier drops every message. It is used when Discord is not configured.
type NopNotifier struct {
	Logger logging.Logger
}

// Post logs and discards msg.
func (n NopNotifier) Post(_ context.Context, msg Message) error {
	if n.Logger != nil {
		n.Logger.Debug("Discord not configured, message not sent",
			logging.Field{Key: "content", Value: msg.Content})
	}
	return nil
}

// StatusError is a non-2xx answer from Discord.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("discord returned %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed when repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// DiscordOptions configures a Discord notifier.
type DiscordOptions struct {
	BotToken   string
	ChannelID  string
	BaseURL    string
	Attempts   uint
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// Discord posts messages to one channel.
type Discord struct {
	opts   DiscordOptions
	logger logging.Logger
}

// NewDiscord validates opts and creates the notifier.
func NewDiscord(opts DiscordOptions, logger logging.Logger) (*Discord, error) {
	if opts.BotToken == "" {
		return nil, errors.New("discord bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, errors.New("discord channel id is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Discord{opts: opts, logger: logger.WithField("component", "Discord")}, nil
}

// Post sends msg, retrying on rate limits, server errors and transport
// failures. Other client errors fail immediately.
func (d *Discord) Post(ctx context.Context, msg Message) error {
	for _, path := range msg.Attachments {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("attachment %s: %w", path, err)
		}
	}

	url := fmt.Sprintf("%s/channels/%s/messages", d.opts.BaseURL, d.opts.ChannelID)
	content := truncate(msg.Content, maxContentLength)

	err := retry.Do(
		func() error {
			return d.send(ctx, url, content, msg.Attachments)
		},
		retry.RetryIf(func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.Retryable()
			}
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			d.logger.WithError(err).Warn("Discord post failed, will retry",
				logging.Field{Key: logging.FieldAttempt, Value: n + 1},
				logging.Field{Key: logging.FieldChannel, Value: d.opts.ChannelID})
		}),
		retry.Attempts(d.opts.Attempts),
		retry.Delay(d.opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return fmt.Errorf("posting to discord: %w", err)
	}

	d.logger.Info("Message sent to Discord",
		logging.Field{Key: logging.FieldChannel, Value: d.opts.ChannelID},
		logging.Field{Key: logging.FieldCount, Value: len(msg.Attachments)})
	return nil
}

func (d *Discord) send(ctx context.Context, url, content string, attachments []string) error {
	body, contentType, err := encodeBody(content, attachments)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+d.opts.BotToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := d.opts.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// encodeBody builds a JSON body, or a multipart body with payload_json and
// one files[n] part per attachment.
func encodeBody(content string, attachments []string) (io.Reader, string, error) {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, "", fmt.Errorf("encoding payload: %w", err)
	}
	if len(attachments) == 0 {
		return bytes.NewReader(payload), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("payload_json", string(payload)); err != nil {
		return nil, "", err
	}
	for i, path := range attachments {
		if err := addFile(w, fmt.Sprintf("files[%d]", i), path); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func addFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening attachment: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading attachment: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
