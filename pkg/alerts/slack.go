package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/airwatch/pkg/model"
)

// SlackNotifier posts alerts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, alert Alert) error {
	msg := slackMessage{
		Channel:     s.channel,
		Text:        alert.Message,
		Attachments: []slackAttachment{slackAttachmentFor(alert)},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

// slackAttachmentFor renders takeoffs in green and new flights in blue.
func slackAttachmentFor(alert Alert) slackAttachment {
	a := slackAttachment{
		Color:     "#2eb67d",
		Title:     alert.Registration + " is airborne",
		TitleLink: TrackURL(alert.ICAO),
		Fallback:  alert.Message,
		Footer:    "airwatch",
		Ts:        alert.Timestamp.Unix(),
		Fields: []slackField{
			{Title: "Registration", Value: alert.Registration, Short: true},
			{Title: "ICAO", Value: alert.ICAO, Short: true},
			{Title: "Flight", Value: alert.FlightID, Short: true},
			{Title: "Altitude", Value: fmt.Sprintf("%d ft", alert.AltitudeFt), Short: true},
			{Title: "Ground speed", Value: fmt.Sprintf("%d kts", alert.GroundSpeedKts), Short: true},
		},
	}
	if alert.Kind == model.AlertNewFlight {
		a.Color = "#1d9bd1"
		a.Title = alert.Registration + " started a new flight"
	}
	return a
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	TitleLink string       `json:"title_link,omitempty"`
	Fallback  string       `json:"fallback,omitempty"`
	Fields    []slackField `json:"fields"`
	Footer    string       `json:"footer"`
	Ts        int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
