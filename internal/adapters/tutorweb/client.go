// Package tutorweb is the HTTP client for the desktop queue application:
// the teacher start page with planned schedules and per-list detail pages.
package tutorweb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"tutorwatch/internal/adapters/scrape"
	"tutorwatch/internal/domain"
	"tutorwatch/internal/ports"
)

const (
	teacherPath      = "/teacher/"
	ownSchedulesPath = "/teacher/?onlyown=yes"
	listDetailPath   = "/servlet/teacher/GetListServlet?listid="
	maxResponseBytes = 4 << 20
)

type Client struct {
	BaseURL        string
	CookieName     string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Headers        map[string]string
}

var _ ports.ListDirectory = (*Client)(nil)

// PlannedSchedules fetches the operator's own planned tutoring sessions.
func (c *Client) PlannedSchedules(ctx context.Context, token string) ([]domain.ScheduleEntry, error) {
	body, status, err := c.get(ctx, c.BaseURL+ownSchedulesPath, token)
	if err != nil {
		return nil, fmt.Errorf("fetch planned schedules: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch planned schedules: status %d", status)
	}

	entries, err := scrape.PlannedSchedules(body)
	if err != nil {
		return nil, fmt.Errorf("parse planned schedules: %w", err)
	}
	return entries, nil
}

// InfoForStudent locates the list a queued student is waiting on and fetches
// its detail page. The boolean is false when the student is not found on any
// of today's lists.
func (c *Client) InfoForStudent(ctx context.Context, token, rawText string) (domain.ListDetail, bool, error) {
	body, status, err := c.get(ctx, c.BaseURL+teacherPath, token)
	if err != nil {
		return domain.ListDetail{}, false, fmt.Errorf("fetch teacher page: %w", err)
	}
	if status != http.StatusOK {
		return domain.ListDetail{}, false, fmt.Errorf("fetch teacher page: status %d", status)
	}

	listID, studentName, location, ok := scrape.FindStudentList(body, rawText)
	if !ok {
		return domain.ListDetail{}, false, nil
	}

	detailBody, status, err := c.get(ctx, c.BaseURL+listDetailPath+listID, token)
	if err != nil {
		return domain.ListDetail{}, false, fmt.Errorf("fetch list detail: %w", err)
	}
	if status != http.StatusOK {
		return domain.ListDetail{}, false, fmt.Errorf("fetch list detail: status %d", status)
	}

	detail, err := scrape.ListDetails(detailBody, listID)
	if err != nil {
		return domain.ListDetail{}, false, fmt.Errorf("parse list detail: %w", err)
	}
	detail.StudentName = studentName
	detail.Location = location

	return detail, true, nil
}

func (c *Client) get(ctx context.Context, rawURL, token string) (string, int, error) {
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
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
