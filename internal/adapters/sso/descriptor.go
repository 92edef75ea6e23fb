package sso

import (
	"strings"

	"tutorwatch/internal/domain"
)

// Descriptor parameterizes the sign-on chain for one target service. The
// three services share the same identity provider and the same chain shape;
// only the entry point, the way the login step is reached, and the cookie to
// extract differ.
type Descriptor struct {
	Service domain.ServiceKey

	// EntryURL is fetched first to establish the relying service's session.
	// The session cookie is extracted for this URL's host after the chain
	// completes.
	EntryURL string

	// LoginURL, when set, is the identity-provider entry followed directly
	// after EntryURL. When empty the login link is discovered on the entry
	// page with LinkMatch.
	LoginURL string

	// LinkMatch selects the university-account login anchor by its text.
	LinkMatch func(text string) bool

	// IdPBaseURL resolves the relative form actions the identity provider
	// emits.
	IdPBaseURL string

	// CookieName is the session cookie to extract, usually "JSESSIONID".
	CookieName string
}

// MatchUniversityAccount matches the login anchors the queue applications
// render: "Stockholm University account" on the mobile app, "Stockholms
// universitetskonto" on the desktop app.
func MatchUniversityAccount(text string) bool {
	if strings.Contains(text, "Stockholm University account") {
		return true
	}
	return strings.Contains(text, "Stockholm") &&
		(strings.Contains(strings.ToLower(text), "universitet") || strings.Contains(text, "University"))
}
