package notify

import (
	"context"
	"strings"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/reviewer"
)

// StatusPrompt asks the model to turn an automated status into a short chat update.
const StatusPrompt = "You are a financial assistance bot reading an automated system status. " +
	"Write a brief update for the solo developer to post in an update chat about the status message. " +
	"Do not suggest you are fixing anything. Use a red emoticon if it is something bad. " +
	"Use a green emoticon if it is something good."

// RewritingNotifier rewrites message content with a language model before
// handing it to the next Notifier. The original text is kept when the model fails.
type RewritingNotifier struct {
	next   Notifier
	client reviewer.AIClient
	logger logging.Logger
}

// NewRewritingNotifier wraps next.
func NewRewritingNotifier(next Notifier, client reviewer.AIClient, logger logging.Logger) *RewritingNotifier {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &RewritingNotifier{next: next, client: client, logger: logger}
}

// Post rewrites msg.Content then forwards msg.
func (r *RewritingNotifier) Post(ctx context.Context, msg Message) error {
	if r.client != nil && msg.Content != "" {
		text, err := r.client.Generate(ctx, StatusPrompt, msg.Content)
		switch {
		case err != nil:
			r.logger.WithError(err).Warn("Status rewrite failed, sending original message")
		case strings.TrimSpace(text) != "":
			msg.Content = strings.TrimSpace(text)
		}
	}
	return r.next.Post(ctx, msg)
}
