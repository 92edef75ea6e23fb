package toml

import (
	"time"

	"tutorwatch/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int                    `toml:"version"`
	Services map[string]entrySchema `toml:"services"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

type entrySchema struct {
	Token      string `toml:"token"`
	AcquiredAt string `toml:"acquired_at"`
}

// toCredential decodes one cache entry. Entries with an empty token or an
// unparseable timestamp are treated as absent.
func (e entrySchema) toCredential(service domain.ServiceKey) (domain.Credential, bool) {
	if e.Token == "" {
		return domain.Credential{}, false
	}

	acquiredAt, err := time.Parse(time.RFC3339, e.AcquiredAt)
	if err != nil {
		return domain.Credential{}, false
	}

	return domain.Credential{
		Service:    service,
		Token:      e.Token,
		AcquiredAt: acquiredAt,
	}, true
}
