package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier posts resolution failures to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.ErrorReporter = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithAPIBase points the notifier at another bot API host.
func (n *Notifier) WithAPIBase(base string, client *http.Client) *Notifier {
	n.apiBase = strings.TrimSuffix(base, "/")
	if client != nil {
		n.client = client
	}
	return n
}

// ReportResourceError posts a short digest of the failure.
func (n *Notifier) ReportResourceError(ctx context.Context, ferr *domain.FetchError) error {
	if ferr == nil {
		return nil
	}
	return n.send(ctx, Digest(ferr))
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

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

// Digest renders the failure as plain text.
func Digest(ferr *domain.FetchError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resource error (%s)\n", ferr.Kind)
	fmt.Fprintf(&b, "Link: %s\n", ferr.Link)
	if ferr.HTTPStatus != 0 {
		fmt.Fprintf(&b, "Status: %d\n", ferr.HTTPStatus)
	}
	for _, u := range ferr.AttemptedURLs {
		fmt.Fprintf(&b, "URL: %s\n", u)
	}
	if ferr.Cause != nil {
		fmt.Fprintf(&b, "Cause: %v\n", ferr.Cause)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
