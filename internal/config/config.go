// Package config loads process configuration from the environment and an
// optional TOML file. The operator credentials and notifier credentials are
// required; everything else has working defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = "tutorwatch"
)

type Config struct {
	Username string
	Password string

	Pushover Pushover
	Services Services

	CachePath string
	LogLevel  string

	// Contact identifies this client to the target services via an
	// X-Powered-By header on every request.
	Contact string
}

type Pushover struct {
	Token string
	User  string
	URL   string
}

type Services struct {
	QueueMobileURL  string
	QueueDesktopURL string
	DaisyURL        string
	IdPURL          string
}

// Load reads configuration with this precedence: explicit environment
// variables, then the optional config file, then defaults. Missing required
// values make Load fail so the process exits before the core starts.
func Load() (*Config, error) {
	v := viper.New()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(homeDir, ".config", configDir))

	v.SetDefault("cache_path", filepath.Join(homeDir, ".config", configDir, "credentials.toml"))
	v.SetDefault("log_level", "info")
	v.SetDefault("contact", "tutorwatch")
	v.SetDefault("pushover.url", "https://api.pushover.net")
	v.SetDefault("services.queue_mobile_url", "https://mobil.handledning.dsv.su.se")
	v.SetDefault("services.queue_desktop_url", "https://handledning.dsv.su.se")
	v.SetDefault("services.daisy_url", "https://daisy.dsv.su.se")
	v.SetDefault("services.idp_url", "https://idp.it.su.se")

	bindings := map[string]string{
		"username":                   "SU_USERNAME",
		"password":                   "SU_PASSWORD",
		"pushover.token":             "PUSHOVER_KEY",
		"pushover.user":              "PUSHOVER_USER",
		"pushover.url":               "TW_PUSHOVER_URL",
		"cache_path":                 "TW_CACHE_PATH",
		"log_level":                  "TW_LOG_LEVEL",
		"contact":                    "TW_CONTACT",
		"services.queue_mobile_url":  "TW_QUEUE_MOBILE_URL",
		"services.queue_desktop_url": "TW_QUEUE_DESKTOP_URL",
		"services.daisy_url":         "TW_DAISY_URL",
		"services.idp_url":           "TW_IDP_URL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Username: v.GetString("username"),
		Password: v.GetString("password"),
		Pushover: Pushover{
			Token: v.GetString("pushover.token"),
			User:  v.GetString("pushover.user"),
			URL:   strings.TrimRight(v.GetString("pushover.url"), "/"),
		},
		Services: Services{
			QueueMobileURL:  strings.TrimRight(v.GetString("services.queue_mobile_url"), "/"),
			QueueDesktopURL: strings.TrimRight(v.GetString("services.queue_desktop_url"), "/"),
			DaisyURL:        strings.TrimRight(v.GetString("services.daisy_url"), "/"),
			IdPURL:          strings.TrimRight(v.GetString("services.idp_url"), "/"),
		},
		CachePath: v.GetString("cache_path"),
		LogLevel:  v.GetString("log_level"),
		Contact:   v.GetString("contact"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "SU_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "SU_PASSWORD")
	}
	if c.Pushover.Token == "" {
		missing = append(missing, "PUSHOVER_KEY")
	}
	if c.Pushover.User == "" {
		missing = append(missing, "PUSHOVER_USER")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
