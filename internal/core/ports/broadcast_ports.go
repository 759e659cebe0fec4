package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

// Broadcaster delivers committed events to viewers. Publish must not block
// on delivery and has no way to report failure.
type Broadcaster interface {
	Publish(ctx context.Context, event domain.Event)
}

type Clock interface {
	Now() time.Time
}
