package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

// PollRepository keeps polls in process memory. It backs local development
// and the service tests.
type PollRepository struct {
	mu    sync.RWMutex
	polls map[string]*domain.Poll
}

func NewPollRepository() *PollRepository {
	return &PollRepository{
		polls: make(map[string]*domain.Poll),
	}
}

func (r *PollRepository) FindByID(_ context.Context, id string) (*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return p.Clone(), nil
}

func (r *PollRepository) Save(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.polls[poll.ID]
	switch {
	case poll.Version == 0 && ok:
		return domain.ErrVersionConflict
	case poll.Version != 0 && !ok:
		return domain.ErrPollNotFound
	case ok && stored.Version != poll.Version:
		return domain.ErrVersionConflict
	}

	poll.Version++
	r.polls[poll.ID] = poll.Clone()
	return nil
}

func (r *PollRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(r.polls, id)
	return nil
}

func (r *PollRepository) Find(_ context.Context, q ports.PollQuery) ([]*domain.Poll, error) {
	r.mu.RLock()
	terms := strings.Fields(strings.ToLower(q.Text))
	type match struct {
		poll  *domain.Poll
		score int
	}
	matches := make([]match, 0, len(r.polls))
	for _, p := range r.polls {
		if q.AuthorID != "" && p.AuthorID != q.AuthorID {
			continue
		}
		if !q.InteractedSince.IsZero() && p.LastInteractionDate.Before(q.InteractedSince) {
			continue
		}
		score := 0
		if len(terms) > 0 {
			score = relevance(p, terms)
			if score == 0 {
				continue
			}
		}
		matches = append(matches, match{poll: p.Clone(), score: score})
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch q.Order {
		case ports.OrderRelevance:
			if a.score != b.score {
				return a.score > b.score
			}
		case ports.OrderHeat:
			if a.poll.Heat() != b.poll.Heat() {
				return a.poll.Heat() > b.poll.Heat()
			}
		}
		if !a.poll.PostDate.Equal(b.poll.PostDate) {
			return a.poll.PostDate.After(b.poll.PostDate)
		}
		return a.poll.ID < b.poll.ID
	})

	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Skip >= len(matches) {
		return []*domain.Poll{}, nil
	}
	matches = matches[q.Skip:]
	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	polls := make([]*domain.Poll, 0, len(matches))
	for _, m := range matches {
		polls = append(polls, m.poll)
	}
	return polls, nil
}

// relevance counts how many search terms appear as words of the issue or
// the keywords.
func relevance(p *domain.Poll, terms []string) int {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(p.Issue), isSeparator) {
		words[w] = struct{}{}
	}
	for _, w := range strings.FieldsFunc(strings.ToLower(p.SearchKeywords), isSeparator) {
		words[w] = struct{}{}
	}

	score := 0
	for _, t := range terms {
		if _, ok := words[strings.Trim(t, "?!.,;:")]; ok {
			score++
		}
	}
	return score
}

func isSeparator(r rune) bool {
	return !(r == '-' || r == '_' || r == '\'' || ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') || r > 127)
}
