package domain

import "errors"

var (
	ErrUnknownService        = errors.New("unknown service")
	ErrLoginLinkNotFound     = errors.New("login link not found on entry page")
	ErrLoginFormNotFound     = errors.New("login form not found")
	ErrCredentialsRejected   = errors.New("credentials rejected")
	ErrSessionCookieNotFound = errors.New("session cookie not found for target service")
)
