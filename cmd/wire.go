package cmd

import (
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	tomlcache "tutorwatch/internal/adapters/cache/toml"
	"tutorwatch/internal/adapters/daisyweb"
	"tutorwatch/internal/adapters/pushover"
	"tutorwatch/internal/adapters/queueweb"
	"tutorwatch/internal/adapters/sso"
	"tutorwatch/internal/adapters/tutorweb"
	"tutorwatch/internal/application"
	"tutorwatch/internal/config"
	"tutorwatch/internal/domain"
	"tutorwatch/internal/logging"
	"tutorwatch/internal/ports"
)

type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	clock    ports.Clock
	cache    ports.CredentialCache
	auth     *application.Authenticator
	queue    ports.QueueService
	students ports.StudentDirectory
	lists    ports.ListDirectory
	notifier ports.Notifier
}

func wireApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.LogLevel)
	clock := ports.SystemClock{}

	cache, err := tomlcache.NewStore(cfg.CachePath, clock)
	if err != nil {
		return nil, fmt.Errorf("wire credential cache: %w", err)
	}

	descriptors, err := serviceDescriptors(cfg)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"X-Powered-By": cfg.Contact}
	flow := sso.NewFlow(descriptors, sso.WithHeaders(headers))

	return &app{
		cfg:   cfg,
		log:   log,
		clock: clock,
		cache: cache,
		auth:  application.NewAuthenticator(flow, cache, log, cfg.Username, cfg.Password),
		queue: &queueweb.Client{
			BaseURL: cfg.Services.QueueMobileURL,
			Headers: headers,
		},
		students: &daisyweb.Client{
			BaseURL: cfg.Services.DaisyURL,
			Headers: headers,
		},
		lists: &tutorweb.Client{
			BaseURL: cfg.Services.QueueDesktopURL,
			Headers: headers,
		},
		notifier: &pushover.Notifier{
			BaseURL: cfg.Pushover.URL,
			Token:   cfg.Pushover.Token,
			User:    cfg.Pushover.User,
		},
	}, nil
}

func serviceDescriptors(cfg *config.Config) ([]sso.Descriptor, error) {
	for _, raw := range []string{cfg.Services.QueueMobileURL, cfg.Services.QueueDesktopURL, cfg.Services.DaisyURL, cfg.Services.IdPURL} {
		if _, err := url.Parse(raw); err != nil {
			return nil, fmt.Errorf("invalid service url %q: %w", raw, err)
		}
	}

	// The student directory links its identity-provider entry directly
	// instead of rendering a login link on the entry page.
	daisyLoginURL := cfg.Services.DaisyURL + "/Shibboleth.sso/Login?entityID=" +
		cfg.Services.IdPURL + "/idp/shibboleth&target=" + cfg.Services.DaisyURL + "/login_sso_employee.jspa"

	return []sso.Descriptor{
		{
			Service:    domain.ServiceQueueMobile,
			EntryURL:   cfg.Services.QueueMobileURL + "/",
			LinkMatch:  sso.MatchUniversityAccount,
			IdPBaseURL: cfg.Services.IdPURL,
			CookieName: "JSESSIONID",
		},
		{
			Service:    domain.ServiceQueueDesktop,
			EntryURL:   cfg.Services.QueueDesktopURL + "/",
			LinkMatch:  sso.MatchUniversityAccount,
			IdPBaseURL: cfg.Services.IdPURL,
			CookieName: "JSESSIONID",
		},
		{
			Service:    domain.ServiceDaisy,
			EntryURL:   cfg.Services.DaisyURL + "/index.jspa",
			LoginURL:   daisyLoginURL,
			IdPBaseURL: cfg.Services.IdPURL,
			CookieName: "JSESSIONID",
		},
	}, nil
}
