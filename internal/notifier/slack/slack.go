package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/mauv0809/courtbooker/internal/metrics"
	"github.com/mauv0809/courtbooker/internal/notifier"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = (*Notifier)(nil)

// Notifier handles sending run outcome notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// SendRunResult posts a booking run outcome to the configured channel.
func (s *Notifier) SendRunResult(outcome notifier.RunOutcome, dryRun bool) error {
	message := FormatRunResult(outcome)
	return s.sendMessage(message, dryRun)
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		if s.metrics != nil {
			s.metrics.IncNotifFailed()
		}
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncNotifSent()
	}
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}

// FormatRunResult builds the Slack blocks for a run outcome.
func FormatRunResult(outcome notifier.RunOutcome) slack.Message {
	title := "Reservation booked :white_check_mark:"
	if !outcome.Succeeded() {
		title = "Reservation run failed :x:"
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
	}

	if outcome.Succeeded() {
		fields := []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Date:*\n%s", outcome.Date), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Hour:*\n%s", outcome.Hour), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Court:*\n%s (%s)", outcome.CourtName, outcome.CourtID), false, false),
		}
		blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
	} else {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Date:* %s\n*Error:* %s", outcome.Date, outcome.Err), false, false),
			nil, nil,
		))
	}

	var notes []string
	if outcome.TestMode {
		notes = append(notes, "test mode: no reservation was submitted")
	}
	if outcome.MockMode {
		notes = append(notes, "mock mode: no network calls were made")
	}
	if outcome.ConfigName != "" {
		notes = append(notes, "config: "+outcome.ConfigName)
	}
	for _, note := range notes {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, note, false, false),
		))
	}

	return slack.NewBlockMessage(blocks...)
}
