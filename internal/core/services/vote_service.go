package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

const (
	msgWriteInRequired = "Please enter a choice to write in."
	msgWriteInTooLong  = "Your write-in choice contains more than 140 characters."
)

type voteService struct {
	polls *PollMutator
}

func NewVoteService(polls *PollMutator) ports.VoteService {
	return &voteService{
		polls: polls,
	}
}

func (s *voteService) CastVote(ctx context.Context, voter domain.Identity, input ports.VoteInput) error {
	_, err := s.polls.Update(ctx, input.PollID,
		func(p *domain.Poll, now time.Time) error {
			if p.RequiresLogin && voter.Anonymous {
				return domain.ErrLoginRequired
			}
			if _, voted := p.VotedFor(voter.ID); voted {
				return domain.ErrAlreadyVoted
			}
			return p.CastVote(voter.ID, input.ChoiceID, now)
		},
		func(p *domain.Poll) domain.Event {
			return domain.CastVoteEvent{PollID: p.ID, ChoiceID: input.ChoiceID, Version: p.Version}
		},
	)
	return err
}

func (s *voteService) AddChoice(ctx context.Context, voter domain.Identity, input ports.AddChoiceInput) (*domain.Choice, error) {
	if voter.Anonymous {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, domain.NewValidationError(msgWriteInRequired)
	}
	if utf8.RuneCountInString(input.Body) > domain.MaxChoiceLength {
		return nil, domain.NewValidationError(msgWriteInTooLong)
	}

	var added domain.Choice
	_, err := s.polls.Update(ctx, input.PollID,
		func(p *domain.Poll, now time.Time) error {
			if _, voted := p.VotedFor(voter.ID); voted {
				return domain.ErrAlreadyVoted
			}
			c, err := p.AddChoice(voter.ID, input.Body, now)
			if err != nil {
				return err
			}
			added = c
			return nil
		},
		func(p *domain.Poll) domain.Event {
			return domain.AddChoiceEvent{
				PollID:    p.ID,
				ChoiceID:  added.ID,
				Body:      added.Body,
				EditCount: p.EditCount,
				IsAuthor:  voter.ID == p.AuthorID,
				Version:   p.Version,
			}
		},
	)
	if err != nil {
		return nil, err
	}
	return &added, nil
}
