package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tutorwatch/internal/domain"
	"tutorwatch/internal/ports"
)

// Authenticator produces session tokens for the target services, consulting
// the credential cache before running the sign-on chain and writing fresh
// tokens back on success.
type Authenticator struct {
	flow     ports.LoginFlow
	cache    ports.CredentialCache
	log      *logrus.Logger
	username string
	password string
}

func NewAuthenticator(flow ports.LoginFlow, cache ports.CredentialCache, log *logrus.Logger, username, password string) *Authenticator {
	if log == nil {
		log = logrus.New()
	}

	return &Authenticator{
		flow:     flow,
		cache:    cache,
		log:      log,
		username: username,
		password: password,
	}
}

// Token returns a valid session token for the service. With useCache a
// cached, unexpired token short-circuits the sign-on chain; a fresh token is
// always written back. Cache write failures degrade to a warning because the
// token itself is still usable.
func (a *Authenticator) Token(ctx context.Context, service domain.ServiceKey, useCache bool) (string, error) {
	if useCache {
		token, ok, err := a.cache.Get(ctx, service)
		if err != nil {
			return "", fmt.Errorf("read credential cache: %w", err)
		}
		if ok {
			a.log.WithField("service", service).Debug("using cached session token")
			return token, nil
		}
	}

	a.log.WithField("service", service).Info("signing in")
	token, err := a.flow.Login(ctx, service, a.username, a.password)
	if err != nil {
		return "", fmt.Errorf("sign in to %s: %w", service, err)
	}

	if useCache {
		if err := a.cache.Put(ctx, service, token); err != nil {
			a.log.WithField("service", service).WithError(err).Warn("could not cache session token")
		}
	}

	return token, nil
}
