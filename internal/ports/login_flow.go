package ports

import (
	"context"

	"tutorwatch/internal/domain"
)

// LoginFlow runs the federated sign-on chain for one target service and
// returns its session token.
type LoginFlow interface {
	Login(ctx context.Context, service domain.ServiceKey, username, password string) (string, error)
}
