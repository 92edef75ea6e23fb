// Package pushover dispatches push notifications through the Pushover
// message API. One delivery attempt per call; retrying is the caller's
// decision and the caller treats failures as log-only.
package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tutorwatch/internal/ports"
)

const messagesPath = "/1/messages.json"

type Notifier struct {
	BaseURL        string
	Token          string
	User           string
	HTTPClient     *http.Client
	RequestTimeout time.Duration

	// Priority, Sound and TTL shape how the notification lands on the
	// operator's phone. Zero values fall back to a high-priority, hour-lived
	// message.
	Priority int
	Sound    string
	TTL      time.Duration
}

var _ ports.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(ctx context.Context, title, message string) error {
	fields := url.Values{}
	fields.Set("token", n.Token)
	fields.Set("user", n.User)
	fields.Set("message", message)
	if title != "" {
		fields.Set("title", title)
	}
	fields.Set("priority", strconv.Itoa(n.priority()))
	fields.Set("sound", n.sound())
	fields.Set("ttl", strconv.Itoa(int(n.ttl()/time.Second)))

	timeout := n.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	baseURL := n.BaseURL
	if baseURL == "" {
		baseURL = "https://api.pushover.net"
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, baseURL+messagesPath, strings.NewReader(fields.Encode()))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := n.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("send notification: status %d", resp.StatusCode)
	}

	return nil
}

func (n *Notifier) priority() int {
	if n.Priority != 0 {
		return n.Priority
	}
	return 1
}

func (n *Notifier) sound() string {
	if n.Sound != "" {
		return n.Sound
	}
	return "gamelan"
}

func (n *Notifier) ttl() time.Duration {
	if n.TTL > 0 {
		return n.TTL
	}
	return time.Hour
}
