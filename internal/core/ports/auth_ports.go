package ports

import (
	"context"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

type AuthService interface {
	// Authenticate resolves an access token to a known, verified user.
	Authenticate(ctx context.Context, accessToken string) (domain.Identity, error)
}
