package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

const (
	PollPageSize = 20
	HotWindow    = 10 * 24 * time.Hour

	// MaxPollPage keeps the row offset inside the range every store accepts.
	MaxPollPage = math.MaxInt32 / PollPageSize
)

const (
	msgPollValidation     = "There were validation errors in the poll you submitted."
	msgIssueRequired      = "Please enter an issue."
	msgIssueTooLong       = "The poll issue must contain 280 characters or fewer."
	msgTooFewChoices      = "The poll must contain at least two choices."
	msgChoiceEmpty        = "One or more of your poll choices are empty."
	msgChoiceTooLong      = "One or more of your poll choices have more than 140 characters."
	msgCloseDateInPast    = "The poll's close date needs to be a point in the future."
	msgKeywordsRequired   = "Polls must have at least one keyword."
	msgSearchTextRequired = "Please enter something to search for."
)

type pollService struct {
	polls   *PollMutator
	users   ports.UserRepository
	siteURL string
}

func NewPollService(polls *PollMutator, users ports.UserRepository, siteURL string) ports.PollService {
	return &pollService{
		polls:   polls,
		users:   users,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

func (s *pollService) Create(ctx context.Context, author domain.Identity, input ports.CreatePollInput) (*domain.Poll, error) {
	if author.Anonymous {
		return nil, domain.ErrUnauthenticated
	}

	now := s.polls.Now()
	issue := strings.TrimSpace(input.Issue)
	keywords := strings.TrimSpace(input.Keywords)

	verr := domain.NewValidationError(msgPollValidation)
	validatePollFields(verr, issue, keywords, input.PollWillClose, input.CloseDate, now)
	if len(input.Choices) < domain.MinChoices {
		verr.Add(msgTooFewChoices)
	}
	var empty, tooLong bool
	for _, c := range input.Choices {
		switch {
		case strings.TrimSpace(c) == "":
			empty = true
		case utf8.RuneCountInString(c) > domain.MaxChoiceLength:
			tooLong = true
		}
	}
	if empty {
		verr.Add(msgChoiceEmpty)
	}
	if tooLong {
		verr.Add(msgChoiceTooLong)
	}
	if verr.HasDetails() {
		return nil, verr
	}

	poll := domain.NewPoll(author.ID, issue, input.Choices, keywords, domain.PollSettings{
		RequiresLogin:      input.RequiresLogin,
		CanAddExtraChoices: input.CanAddExtraChoices,
		PollWillClose:      input.PollWillClose,
		CloseDate:          input.CloseDate,
	}, now)

	err := s.polls.Insert(ctx, poll, func(p *domain.Poll) domain.Event {
		return domain.NewPollEvent{
			PollID:         p.ID,
			AuthorID:       p.AuthorID,
			AuthorName:     author.Name,
			Issue:          p.Issue,
			PostDate:       p.PostDate,
			SearchKeywords: p.SearchKeywords,
			Version:        p.Version,
		}
	})
	if err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *pollService) Edit(ctx context.Context, author domain.Identity, input ports.EditPollInput) (*domain.Poll, error) {
	if author.Anonymous {
		return nil, domain.ErrUnauthenticated
	}

	issue := strings.TrimSpace(input.Issue)
	keywords := strings.TrimSpace(input.Keywords)

	verr := domain.NewValidationError(msgPollValidation)
	validatePollFields(verr, issue, keywords, input.PollWillClose, input.CloseDate, s.polls.Now())
	if verr.HasDetails() {
		return nil, verr
	}

	edit := domain.PollEdit{
		Issue:          issue,
		SearchKeywords: keywords,
		Settings: domain.PollSettings{
			RequiresLogin:      input.RequiresLogin,
			CanAddExtraChoices: input.CanAddExtraChoices,
			PollWillClose:      input.PollWillClose,
			CloseDate:          input.CloseDate,
		},
		RemovedChoices: input.RemovedChoices,
		EditedChoices:  input.EditedChoices,
	}

	return s.polls.Update(ctx, input.PollID,
		func(p *domain.Poll, _ time.Time) error {
			if p.AuthorID != author.ID {
				return domain.ErrNotPollAuthor
			}
			return p.Edit(edit)
		},
		func(p *domain.Poll) domain.Event {
			return domain.EditPollEvent{
				PollID:             p.ID,
				Issue:              p.Issue,
				Choices:            domain.ChoiceViews(p.Choices),
				Keywords:           p.SearchKeywords,
				RequiresLogin:      p.RequiresLogin,
				CanAddExtraChoices: p.CanAddExtraChoices,
				PollWillClose:      p.PollWillClose,
				CloseDate:          p.CloseDate,
				EditCount:          p.EditCount,
				Version:            p.Version,
			}
		},
	)
}

func (s *pollService) Remove(ctx context.Context, author domain.Identity, pollID string) error {
	if author.Anonymous {
		return domain.ErrUnauthenticated
	}

	return s.polls.Delete(ctx, pollID,
		func(p *domain.Poll) error {
			if p.AuthorID != author.ID {
				return domain.ErrNotPollAuthor
			}
			return nil
		},
		domain.RemovePollEvent{PollID: pollID},
	)
}

func (s *pollService) View(ctx context.Context, viewer domain.Identity, pollID string) (*domain.PollView, error) {
	p, err := s.polls.Repository().FindByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	authorName, err := s.authorName(ctx, p.AuthorID)
	if err != nil {
		return nil, err
	}

	view := &domain.PollView{
		PollURL:            s.siteURL + "/poll/view/" + p.ID,
		PollID:             p.ID,
		AuthorID:           p.AuthorID,
		AuthorName:         authorName,
		PostDate:           p.PostDate,
		Issue:              p.Issue,
		Choices:            domain.ChoiceViews(p.Choices),
		RequiresLogin:      p.RequiresLogin,
		CanAddExtraChoices: p.CanAddExtraChoices,
		PollWillClose:      p.PollWillClose,
		CloseDate:          p.CloseDate,
		Closed:             p.Closed(s.polls.Now()),
		SearchKeywords:     p.SearchKeywords,
		Edited:             p.Edited(),
		EditCount:          p.EditCount,
		IsAuthor:           !viewer.Anonymous && viewer.ID == p.AuthorID,
	}
	if choiceID, ok := p.VotedFor(viewer.ID); ok && viewer.ID != "" {
		view.ChoiceVotedFor = &choiceID
		view.HasVoted = true
	}
	return view, nil
}

func (s *pollService) authorName(ctx context.Context, authorID string) (string, error) {
	user, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.Name, nil
}

func (s *pollService) Search(ctx context.Context, text string, page int) (*domain.PollPage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError(msgSearchTextRequired)
	}
	return s.page(ctx, ports.PollQuery{Text: text, Order: ports.OrderRelevance}, page, domain.ErrNoSearchResults)
}

func (s *pollService) ByAuthor(ctx context.Context, authorID string, page int) (*domain.PollPage, error) {
	return s.page(ctx, ports.PollQuery{AuthorID: authorID, Order: ports.OrderRecent}, page, domain.ErrNoAuthorPolls)
}

func (s *pollService) Hot(ctx context.Context, page int) (*domain.PollPage, error) {
	since := s.polls.Now().Add(-HotWindow)
	return s.page(ctx, ports.PollQuery{InteractedSince: since, Order: ports.OrderHeat}, page, domain.ErrNoHotPolls)
}

func (s *pollService) Recent(ctx context.Context, page int) (*domain.PollPage, error) {
	return s.page(ctx, ports.PollQuery{Order: ports.OrderRecent}, page, domain.ErrNoRecentPolls)
}

// page fetches one extra row to learn whether more pages follow.
func (s *pollService) page(ctx context.Context, q ports.PollQuery, page int, empty error) (*domain.PollPage, error) {
	if page < 0 {
		page = 0
	}
	if page > MaxPollPage {
		return nil, empty
	}
	q.Skip = page * PollPageSize
	q.Limit = PollPageSize + 1

	polls, err := s.polls.Repository().Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(polls) == 0 {
		return nil, empty
	}

	lastPage := len(polls) <= PollPageSize
	if !lastPage {
		polls = polls[:PollPageSize]
	}

	ids := make([]string, 0, len(polls))
	for _, p := range polls {
		ids = append(ids, p.AuthorID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.polls.Now()
	result := &domain.PollPage{Polls: make([]domain.PollSummary, 0, len(polls)), LastPage: lastPage}
	for _, p := range polls {
		summary := domain.PollSummary{
			PollID:       p.ID,
			Issue:        p.Issue,
			AuthorID:     p.AuthorID,
			PostDate:     p.PostDate,
			VoteCount:    p.VoteCount(),
			CommentCount: p.CommentCount(),
			EditCount:    p.EditCount,
			Closed:       p.Closed(now),
		}
		if u, ok := users[p.AuthorID]; ok {
			summary.AuthorName = u.Name
		}
		result.Polls = append(result.Polls, summary)
	}
	return result, nil
}

func validatePollFields(verr *domain.ValidationError, issue, keywords string, willClose bool, closeDate *time.Time, now time.Time) {
	if issue == "" {
		verr.Add(msgIssueRequired)
	} else if utf8.RuneCountInString(issue) > domain.MaxIssueLength {
		verr.Add(msgIssueTooLong)
	}
	if willClose && (closeDate == nil || !closeDate.After(now)) {
		verr.Add(msgCloseDateInPast)
	}
	if keywords == "" {
		verr.Add(msgKeywordsRequired)
	}
}
