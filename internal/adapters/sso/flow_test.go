package sso

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorwatch/internal/domain"
)

// chainServer simulates the whole federated chain on one host: the relying
// service's entry page, the identity provider's three form steps, and the
// assertion consumer that finally sets the session cookie.
func chainServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/entry/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/other">Other login</a>
			<a href="/idp/start">Stockholm University account</a>
		</body></html>`)
	})

	mux.HandleFunc("/idp/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><form action="/idp/profile/redirect" method="post">
			<input type="hidden" name="RelayState" value="relay-1"/>
			<input type="hidden" name="unset" value=""/>
		</form></body></html>`)
	})

	mux.HandleFunc("/idp/profile/redirect", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "relay-1", r.PostForm.Get("RelayState"))
		assert.Contains(t, r.PostForm, "_eventId_proceed")
		assert.NotContains(t, r.PostForm, "unset")

		fmt.Fprint(w, `<html><body><form action="/idp/profile/login" method="post">
			<input type="hidden" name="csrf_token" value="csrf-1"/>
			<input type="text" name="j_username" value=""/>
			<input type="password" name="j_password" value=""/>
			<input type="submit" name="_eventId_authn/SPNEGO" value="Device login"/>
			<input type="submit" name="_eventId_trySPNEGO" value="Try device login"/>
		</form></body></html>`)
	})

	mux.HandleFunc("/idp/profile/login", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "csrf-1", r.PostForm.Get("csrf_token"))
		assert.NotContains(t, r.PostForm, "_eventId_authn/SPNEGO")
		assert.NotContains(t, r.PostForm, "_eventId_trySPNEGO")

		if r.PostForm.Get("j_username") != "teacher" || r.PostForm.Get("j_password") != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		fmt.Fprint(w, `<html><body><form action="/Shibboleth.sso/SAML2/POST" method="post">
			<input type="hidden" name="SAMLResponse" value="assertion-blob"/>
			<input type="hidden" name="RelayState" value="relay-1"/>
		</form></body></html>`)
	})

	mux.HandleFunc("/Shibboleth.sso/SAML2/POST", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "assertion-blob", r.PostForm.Get("SAMLResponse"))
		assert.NotEmpty(t, r.Header.Get("Origin"))

		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session-123", Path: "/"})
		fmt.Fprint(w, `<html><body>Welcome</body></html>`)
	})

	return httptest.NewServer(mux)
}

func chainDescriptor(server *httptest.Server) Descriptor {
	return Descriptor{
		Service:    domain.ServiceQueueMobile,
		EntryURL:   server.URL + "/entry/",
		LinkMatch:  MatchUniversityAccount,
		IdPBaseURL: server.URL,
		CookieName: "JSESSIONID",
	}
}

func TestLoginWalksWholeChain(t *testing.T) {
	server := chainServer(t)
	defer server.Close()

	flow := NewFlow([]Descriptor{chainDescriptor(server)}, WithHeaders(map[string]string{"X-Powered-By": "tutorwatch"}))

	token, err := flow.Login(context.Background(), domain.ServiceQueueMobile, "teacher", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "session-123", token)
}

func TestLoginWithDirectLoginURLSkipsLinkDiscovery(t *testing.T) {
	server := chainServer(t)
	defer server.Close()

	descriptor := chainDescriptor(server)
	descriptor.Service = domain.ServiceDaisy
	descriptor.LinkMatch = nil
	descriptor.LoginURL = server.URL + "/idp/start"

	flow := NewFlow([]Descriptor{descriptor})

	token, err := flow.Login(context.Background(), domain.ServiceDaisy, "teacher", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "session-123", token)
}

func TestLoginRejectsUnknownService(t *testing.T) {
	flow := NewFlow(nil)

	_, err := flow.Login(context.Background(), domain.ServiceQueueMobile, "teacher", "hunter2")
	require.ErrorIs(t, err, domain.ErrUnknownService)
}

func TestLoginFailsWhenLoginLinkMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/other">Something else</a></body></html>`)
	}))
	defer server.Close()

	flow := NewFlow([]Descriptor{chainDescriptor(server)})

	_, err := flow.Login(context.Background(), domain.ServiceQueueMobile, "teacher", "hunter2")
	require.ErrorIs(t, err, domain.ErrLoginLinkNotFound)
}

func TestLoginFailsWhenRedirectFormMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/entry/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/idp/start">Stockholm University account</a></body></html>`)
	})
	mux.HandleFunc("/idp/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>No form here</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	flow := NewFlow([]Descriptor{chainDescriptor(server)})

	_, err := flow.Login(context.Background(), domain.ServiceQueueMobile, "teacher", "hunter2")
	require.ErrorIs(t, err, domain.ErrLoginFormNotFound)
}

func TestLoginWrongPasswordIsCredentialsRejected(t *testing.T) {
	server := chainServer(t)
	defer server.Close()

	flow := NewFlow([]Descriptor{chainDescriptor(server)})

	_, err := flow.Login(context.Background(), domain.ServiceQueueMobile, "teacher", "wrong")
	require.ErrorIs(t, err, domain.ErrCredentialsRejected)
}

func TestLoginFailsWhenSessionCookieNeverSet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/entry/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/idp/start">Stockholm University account</a></body></html>`)
	})
	mux.HandleFunc("/idp/start", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><form action="/step2"><input name="RelayState" value="r"/></form></body></html>`)
	})
	mux.HandleFunc("/step2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><form action="/step3"><input name="j_username"/><input name="j_password"/></form></body></html>`)
	})
	mux.HandleFunc("/step3", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><form action="/done"><input name="SAMLResponse" value="blob"/></form></body></html>`)
	})
	mux.HandleFunc("/done", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>No cookie for you</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	flow := NewFlow([]Descriptor{chainDescriptor(server)})

	_, err := flow.Login(context.Background(), domain.ServiceQueueMobile, "teacher", "hunter2")
	require.ErrorIs(t, err, domain.ErrSessionCookieNotFound)
}

func TestMatchUniversityAccount(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "Stockholm University account", want: true},
		{text: "Stockholms universitetskonto", want: true},
		{text: "Logga in med Stockholms universitetskonto", want: true},
		{text: "Guest account", want: false},
		{text: "Stockholm transit card", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchUniversityAccount(tt.text))
		})
	}
}
