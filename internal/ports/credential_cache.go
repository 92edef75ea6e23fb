package ports

import (
	"context"

	"tutorwatch/internal/domain"
)

// CredentialCache is the on-disk session-token store. Get applies the TTL
// lazily and must fail open: a missing or corrupt backing document behaves
// like an empty cache, never an error.
type CredentialCache interface {
	Get(ctx context.Context, service domain.ServiceKey) (token string, ok bool, err error)
	Put(ctx context.Context, service domain.ServiceKey, token string) error
	Clear(ctx context.Context, service domain.ServiceKey) error
	ClearAll(ctx context.Context) error
	List(ctx context.Context) ([]domain.Credential, error)
}
