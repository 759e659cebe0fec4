package ports

import (
	"context"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

type VoteInput struct {
	PollID   string
	ChoiceID string
}

type AddChoiceInput struct {
	PollID string
	Body   string
}

type VoteService interface {
	CastVote(ctx context.Context, voter domain.Identity, input VoteInput) error
	AddChoice(ctx context.Context, voter domain.Identity, input AddChoiceInput) (*domain.Choice, error)
}
