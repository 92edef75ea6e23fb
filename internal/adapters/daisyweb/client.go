// Package daisyweb is the HTTP client for the student directory.
package daisyweb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tutorwatch/internal/adapters/scrape"
	"tutorwatch/internal/domain"
	"tutorwatch/internal/ports"
)

const (
	searchPath       = "/sok/visastudent.jspa"
	maxResponseBytes = 4 << 20
)

type Client struct {
	BaseURL        string
	CookieName     string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Headers        map[string]string
}

var _ ports.StudentDirectory = (*Client)(nil)

// Search runs a directory search for a student name. A single token is the
// first name only when more follow; otherwise it is matched as a last name,
// mirroring the directory's own search form.
func (c *Client) Search(ctx context.Context, token, name string) ([]domain.Student, error) {
	firstName, lastName := splitSearchName(name)

	fields := url.Values{}
	fields.Set("efternamn", lastName)
	fields.Set("fornamn", firstName)
	fields.Set("action:sokstudent", "Sök")

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.BaseURL+searchPath, strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}
	req.AddCookie(&http.Cookie{Name: c.cookieName(), Value: token})

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search students: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	students, err := scrape.Students(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	return students, nil
}

func splitSearchName(name string) (firstName, lastName string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) >= 2 {
		return parts[0], strings.Join(parts[1:], " ")
	}
	return "", strings.TrimSpace(name)
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
