package sso

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"tutorwatch/internal/domain"
	"tutorwatch/internal/ports"
)

const (
	maxResponseBytes = 4 << 20
	// eventProceedField is the Shibboleth continue marker; it is submitted
	// with an empty value alongside every form.
	eventProceedField = "_eventId_proceed"
	usernameField     = "j_username"
	passwordField     = "j_password"
)

// spnegoFields are the device-SSO alternatives the identity provider offers.
// They are stripped from the credentials submission because selecting them
// diverts the chain away from the password form.
var spnegoFields = []string{"_eventId_authn/SPNEGO", "_eventId_trySPNEGO"}

// Flow executes the federated sign-on chain for the configured services.
// Each login runs on a fresh cookie jar so step-to-step session state never
// leaks between services.
type Flow struct {
	descriptors    map[domain.ServiceKey]Descriptor
	transport      http.RoundTripper
	headers        map[string]string
	requestTimeout time.Duration
}

var _ ports.LoginFlow = (*Flow)(nil)

type Option func(*Flow)

// WithTransport substitutes the underlying round tripper, used by tests.
func WithTransport(transport http.RoundTripper) Option {
	return func(f *Flow) { f.transport = transport }
}

// WithHeaders adds headers sent on every request of the chain.
func WithHeaders(headers map[string]string) Option {
	return func(f *Flow) {
		for key, value := range headers {
			f.headers[key] = value
		}
	}
}

// WithRequestTimeout bounds each individual request of the chain.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(f *Flow) { f.requestTimeout = timeout }
}

func NewFlow(descriptors []Descriptor, opts ...Option) *Flow {
	flow := &Flow{
		descriptors:    make(map[domain.ServiceKey]Descriptor, len(descriptors)),
		headers:        map[string]string{},
		requestTimeout: 30 * time.Second,
	}
	for _, descriptor := range descriptors {
		flow.descriptors[descriptor.Service] = descriptor
	}
	for _, opt := range opts {
		opt(flow)
	}
	return flow
}

// Login walks the chain for one service: entry page, identity-provider
// login entry, auto-redirect form, credentials form, assertion form, and
// finally the session cookie scoped to the service's host.
func (f *Flow) Login(ctx context.Context, service domain.ServiceKey, username, password string) (string, error) {
	descriptor, ok := f.descriptors[service]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownService, service)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", fmt.Errorf("create cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar, Transport: f.transport}

	entryBody, _, err := f.get(ctx, client, descriptor.EntryURL)
	if err != nil {
		return "", fmt.Errorf("fetch entry page: %w", err)
	}

	loginURL := descriptor.LoginURL
	if loginURL == "" {
		href, ok := loginLink(entryBody, descriptor.LinkMatch)
		if !ok {
			return "", fmt.Errorf("%s: %w", service, domain.ErrLoginLinkNotFound)
		}
		loginURL, err = resolveAgainst(descriptor.EntryURL, href)
		if err != nil {
			return "", fmt.Errorf("resolve login link: %w", err)
		}
	}

	loginBody, _, err := f.get(ctx, client, loginURL)
	if err != nil {
		return "", fmt.Errorf("fetch login entry: %w", err)
	}

	// The IdP answers with a form browsers auto-submit via JavaScript;
	// forward its fields verbatim plus the proceed marker.
	redirectForm, ok := firstForm(loginBody)
	if !ok {
		return "", fmt.Errorf("%s redirect step: %w", service, domain.ErrLoginFormNotFound)
	}
	fields := redirectForm.valuedFields()
	fields.Set(eventProceedField, "")

	actionURL, err := resolveAgainst(descriptor.IdPBaseURL, redirectForm.action)
	if err != nil {
		return "", fmt.Errorf("resolve redirect form action: %w", err)
	}
	credentialsBody, _, err := f.postForm(ctx, client, actionURL, fields, nil)
	if err != nil {
		return "", fmt.Errorf("submit redirect form: %w", err)
	}

	credentialsForm, ok := firstForm(credentialsBody)
	if !ok {
		return "", fmt.Errorf("%s credentials step: %w", service, domain.ErrLoginFormNotFound)
	}
	fields = credentialsForm.allFields()
	fields.Set(usernameField, username)
	fields.Set(passwordField, password)
	fields.Set(eventProceedField, "")
	for _, field := range spnegoFields {
		fields.Del(field)
	}

	actionURL, err = resolveAgainst(descriptor.IdPBaseURL, credentialsForm.action)
	if err != nil {
		return "", fmt.Errorf("resolve credentials form action: %w", err)
	}
	assertionBody, status, err := f.postForm(ctx, client, actionURL, fields, nil)
	if err != nil {
		return "", fmt.Errorf("submit credentials form: %w", err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: status %d", domain.ErrCredentialsRejected, status)
	}

	assertionForm, ok := firstForm(assertionBody)
	if !ok {
		return "", fmt.Errorf("%s assertion step: %w", service, domain.ErrLoginFormNotFound)
	}
	actionURL, err = resolveAgainst(descriptor.IdPBaseURL, assertionForm.action)
	if err != nil {
		return "", fmt.Errorf("resolve assertion form action: %w", err)
	}
	if _, _, err := f.postForm(ctx, client, actionURL, assertionForm.valuedFields(), map[string]string{
		"Origin":  strings.TrimRight(descriptor.IdPBaseURL, "/"),
		"Referer": strings.TrimRight(descriptor.IdPBaseURL, "/") + "/",
	}); err != nil {
		return "", fmt.Errorf("submit assertion form: %w", err)
	}

	token, ok := sessionCookie(jar, descriptor)
	if !ok {
		return "", fmt.Errorf("%s: %w", service, domain.ErrSessionCookieNotFound)
	}

	return token, nil
}

func sessionCookie(jar http.CookieJar, descriptor Descriptor) (string, bool) {
	target, err := url.Parse(descriptor.EntryURL)
	if err != nil {
		return "", false
	}
	target.Path = "/"

	for _, cookie := range jar.Cookies(target) {
		if cookie.Name == descriptor.CookieName {
			return cookie.Value, true
		}
	}
	return "", false
}

func (f *Flow) get(ctx context.Context, client *http.Client, rawURL string) (string, int, error) {
	requestCtx, cancel := context.WithTimeout(ctx, f.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}

	return f.do(client, req, nil)
}

func (f *Flow) postForm(ctx context.Context, client *http.Client, rawURL string, fields url.Values, extraHeaders map[string]string) (string, int, error) {
	requestCtx, cancel := context.WithTimeout(ctx, f.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, rawURL, strings.NewReader(fields.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return f.do(client, req, extraHeaders)
}

func (f *Flow) do(client *http.Client, req *http.Request, extraHeaders map[string]string) (string, int, error) {
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}
	for key, value := range extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
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

func resolveAgainst(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
