package telegram

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

var outcomeHeadlines = map[domain.RunOutcome]string{
	domain.OutcomePublished:  "New content suggestions published",
	domain.OutcomeNoArticles: "No articles found",
	domain.OutcomeNoEnriched: "No article could be enriched",
}

// Notifier reports finished pipeline runs to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyRun posts the run report as an HTML message. Runs that published
// nothing are sent silently.
func (n *Notifier) NotifyRun(ctx context.Context, report domain.RunReport) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatReport(report))
	form.Set("parse_mode", "HTML")
	if report.Outcome != domain.OutcomePublished {
		form.Set("disable_notification", "true")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send run report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	return nil
}

func formatReport(report domain.RunReport) string {
	headline, ok := outcomeHeadlines[report.Outcome]
	if !ok {
		headline = "Content pipeline run finished"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(headline))
	fmt.Fprintf(&sb, "run: <code>%s</code>\n", html.EscapeString(report.RunID))
	fmt.Fprintf(&sb, "collected: %d\n", report.Collected)
	if report.Outcome != domain.OutcomeNoArticles {
		fmt.Fprintf(&sb, "enriched: %d (dropped %d)\n", report.Enriched, report.Dropped)
	}
	if report.Outcome == domain.OutcomePublished {
		fmt.Fprintf(&sb, "inserted: %d\n", report.Inserted)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
