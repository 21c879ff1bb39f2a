package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends performance alerts to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.AlertNotifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishAlert posts a Markdown message describing the alert.
func (n *Notifier) PublishAlert(ctx context.Context, alert domain.PerformanceAlert) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(n.apiBase, "/"), n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatAlert(alert))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatAlert renders the alert as a short Markdown message.
func FormatAlert(alert domain.PerformanceAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s performance alert*\n", strings.ToUpper(string(alert.Level)))
	fmt.Fprintf(&b, "Metric: `%s`\n", alert.Metric)
	fmt.Fprintf(&b, "Consecutive violations: %d\n", alert.ViolationCount)
	fmt.Fprintf(&b, "Action: %s\n", alert.Action)
	if alert.FeatureFlag != "" {
		fmt.Fprintf(&b, "Feature flag: `%s`\n", alert.FeatureFlag)
	}
	fmt.Fprintf(&b, "At: %s", alert.Timestamp.UTC().Format(time.RFC3339))
	return b.String()
}
