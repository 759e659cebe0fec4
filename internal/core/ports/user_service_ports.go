package ports

import (
	"context"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
