package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Slack webhook payloads
// Reference: https://api.slack.com/messaging/webhooks
type slackMessage struct {
	Text   string       `json:"text,omitempty"`
	Blocks []slackBlock `json:"blocks,omitempty"`
}

type slackBlock struct {
	Type   string            `json:"type"`
	Text   *slackTextObject  `json:"text,omitempty"`
	Fields []slackTextObject `json:"fields,omitempty"`
}

type slackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SlackNotifier posts urgent follow-ups to a Slack incoming webhook
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

// IsConfigured checks if Slack notifications are configured
func (s *SlackNotifier) IsConfigured() bool {
	return s.webhookURL != ""
}

// Name returns the sink name
func (s *SlackNotifier) Name() string {
	return "slack"
}

// Notify posts the event
func (s *SlackNotifier) Notify(ctx context.Context, e Event) error {
	jsonData, err := json.Marshal(buildSlackMessage(e))
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send to Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Slack API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func buildSlackMessage(e Event) slackMessage {
	title := fmt.Sprintf("Urgent follow-up: #%d %s", e.TrackingID, e.PatientName)

	fields := []slackTextObject{
		{Type: "mrkdwn", Text: fmt.Sprintf("*Tracking ID:*\n%d", e.TrackingID)},
		{Type: "mrkdwn", Text: fmt.Sprintf("*Patient:*\n%s", orDash(e.PatientName))},
		{Type: "mrkdwn", Text: fmt.Sprintf("*Ward:*\n%s", orDash(e.Ward))},
		{Type: "mrkdwn", Text: fmt.Sprintf("*Mobile:*\n%s", orDash(e.Mobile))},
		{Type: "mrkdwn", Text: fmt.Sprintf("*Source:*\n%s", orDash(e.Source))},
		{Type: "mrkdwn", Text: fmt.Sprintf("*Registrar:*\n%s", orDash(e.Registrar))},
	}

	var lines []string
	for _, t := range e.Triggers {
		lines = append(lines, fmt.Sprintf("• %s: `%v`", truncateForSlack(t.Question, 150), t.Answer))
	}

	return slackMessage{
		Text: title,
		Blocks: []slackBlock{
			{Type: "header", Text: &slackTextObject{Type: "plain_text", Text: truncateForSlack(title, 150)}},
			{Type: "section", Fields: fields},
			{Type: "section", Text: &slackTextObject{Type: "mrkdwn", Text: "*Answers needing attention:*\n" + strings.Join(lines, "\n")}},
		},
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncateForSlack(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	return string(r[:maxLen-3]) + "..."
}
