// Package queueweb is the HTTP client for the mobile queue application:
// the personal status servlet and list activation.
package queueweb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"tutorwatch/internal/adapters/scrape"
	"tutorwatch/internal/ports"
)

const (
	statusPath       = "/servlet/GetPersonalQueueStatusServlet"
	listTeachersPath = "/servlet/GetListTeachersServlet"
	maxResponseBytes = 4 << 20
)

type Client struct {
	BaseURL        string
	CookieName     string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Headers        map[string]string
}

var _ ports.QueueService = (*Client)(nil)

// FetchStatus returns the raw status body. Any non-2xx answer is a transport
// error; session loss shows up inside a 2xx body and is classified upstream.
func (c *Client) FetchStatus(ctx context.Context, token string) (string, error) {
	body, status, err := c.get(ctx, c.BaseURL+statusPath, token)
	if err != nil {
		return "", fmt.Errorf("fetch queue status: %w", err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", fmt.Errorf("fetch queue status: status %d", status)
	}
	return body, nil
}

// ActivateAll re-activates every inactive list and returns how many
// activations succeeded. The overview only renders activation links when the
// operator is known to the service.
func (c *Client) ActivateAll(ctx context.Context, token string) (int, error) {
	body, status, err := c.get(ctx, c.BaseURL+listTeachersPath, token)
	if err != nil {
		return 0, fmt.Errorf("fetch list overview: %w", err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("fetch list overview: status %d", status)
	}

	links, err := scrape.ActivationLinks(body)
	if err != nil {
		return 0, fmt.Errorf("scan activation links: %w", err)
	}

	activated := 0
	for _, link := range links {
		_, status, err := c.get(ctx, c.BaseURL+link, token)
		if err != nil {
			return activated, fmt.Errorf("activate list: %w", err)
		}
		if status == http.StatusOK {
			activated++
		}
	}

	return activated, nil
}

func (c *Client) get(ctx context.Context, rawURL, token string) (string, int, error) {
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}
	req.AddCookie(&http.Cookie{Name: c.cookieName(), Value: token})

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) cookieName() string {
	if c.CookieName != "" {
		return c.CookieName
	}
	return "JSESSIONID"
}
