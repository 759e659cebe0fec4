package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

const maxSaveAttempts = 10

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type MutatorOption func(*PollMutator)

func WithClock(clock ports.Clock) MutatorOption {
	return func(m *PollMutator) { m.clock = clock }
}

func WithLogger(log logrus.FieldLogger) MutatorOption {
	return func(m *PollMutator) { m.log = log }
}

// PollMutator runs the load, apply, save and publish cycle shared by every
// poll command. Saves for one poll and the publication of their events happen
// under a per-poll lock, so events leave in commit order.
type PollMutator struct {
	repo        ports.PollRepository
	broadcaster ports.Broadcaster
	clock       ports.Clock
	log         logrus.FieldLogger
	sequencer   *keyedMutex
}

func NewPollMutator(repo ports.PollRepository, broadcaster ports.Broadcaster, opts ...MutatorOption) *PollMutator {
	m := &PollMutator{
		repo:        repo,
		broadcaster: broadcaster,
		clock:       systemClock{},
		log:         logrus.StandardLogger(),
		sequencer:   newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *PollMutator) Now() time.Time {
	return m.clock.Now()
}

func (m *PollMutator) Repository() ports.PollRepository {
	return m.repo
}

// Insert stores a brand new poll and announces it.
func (m *PollMutator) Insert(ctx context.Context, poll *domain.Poll, event func(*domain.Poll) domain.Event) error {
	unlock := m.sequencer.Lock(poll.ID)
	defer unlock()

	if err := m.repo.Save(ctx, poll); err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	m.broadcaster.Publish(ctx, event(poll))
	return nil
}

// Update loads the poll, applies the transition and saves it. When another
// writer got there first the whole cycle is repeated on a fresh copy, so
// apply must be safe to run more than once. A failed transition is never
// saved.
func (m *PollMutator) Update(
	ctx context.Context,
	pollID string,
	apply func(p *domain.Poll, now time.Time) error,
	event func(p *domain.Poll) domain.Event,
) (*domain.Poll, error) {
	for attempt := 1; ; attempt++ {
		poll, err := m.repo.FindByID(ctx, pollID)
		if err != nil {
			return nil, err
		}

		if err := apply(poll, m.clock.Now()); err != nil {
			return nil, err
		}

		err = m.commit(ctx, poll, event)
		if err == nil {
			return poll, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= maxSaveAttempts {
			return nil, fmt.Errorf("failed to save poll %s: %w", pollID, err)
		}

		m.log.WithFields(logrus.Fields{
			"poll_id": pollID,
			"attempt": attempt,
		}).Debug("poll changed while updating, retrying")
	}
}

func (m *PollMutator) commit(ctx context.Context, poll *domain.Poll, event func(*domain.Poll) domain.Event) error {
	unlock := m.sequencer.Lock(poll.ID)
	defer unlock()

	if err := m.repo.Save(ctx, poll); err != nil {
		return err
	}
	m.broadcaster.Publish(ctx, event(poll))
	return nil
}

// Delete removes the poll once authorize accepts it.
func (m *PollMutator) Delete(ctx context.Context, pollID string, authorize func(*domain.Poll) error, event domain.Event) error {
	poll, err := m.repo.FindByID(ctx, pollID)
	if err != nil {
		return err
	}
	if err := authorize(poll); err != nil {
		return err
	}

	unlock := m.sequencer.Lock(pollID)
	defer unlock()

	if err := m.repo.Remove(ctx, pollID); err != nil {
		return fmt.Errorf("failed to remove poll %s: %w", pollID, err)
	}
	m.broadcaster.Publish(ctx, event)
	return nil
}
