package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

const CommentPageSize = 10

const (
	msgCommentRequired = "Please enter a comment."
	msgCommentTooLong  = "Your comment must be 140 characters or fewer."
)

type commentService struct {
	polls *PollMutator
	users ports.UserRepository
}

func NewCommentService(polls *PollMutator, users ports.UserRepository) ports.CommentService {
	return &commentService{
		polls: polls,
		users: users,
	}
}

func validateCommentBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return domain.NewValidationError(msgCommentRequired)
	}
	if utf8.RuneCountInString(body) > domain.MaxCommentLength {
		return domain.NewValidationError(msgCommentTooLong)
	}
	return nil
}

func (s *commentService) Post(ctx context.Context, author domain.Identity, input ports.PostCommentInput) (*domain.Comment, error) {
	if author.Anonymous {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateCommentBody(input.Body); err != nil {
		return nil, err
	}

	var posted domain.Comment
	_, err := s.polls.Update(ctx, input.PollID,
		func(p *domain.Poll, now time.Time) error {
			posted = p.PostComment(author.ID, input.Body, now)
			return nil
		},
		func(p *domain.Poll) domain.Event {
			return domain.PostCommentEvent{
				PollID:     p.ID,
				CommentID:  posted.ID,
				AuthorID:   posted.AuthorID,
				AuthorName: author.Name,
				Body:       posted.Body,
				PostDate:   posted.PostDate,
				Version:    p.Version,
			}
		},
	)
	if err != nil {
		return nil, err
	}
	return &posted, nil
}

func (s *commentService) Edit(ctx context.Context, author domain.Identity, input ports.EditCommentInput) error {
	if author.Anonymous {
		return domain.ErrUnauthenticated
	}
	if err := validateCommentBody(input.Body); err != nil {
		return err
	}

	_, err := s.polls.Update(ctx, input.PollID,
		func(p *domain.Poll, _ time.Time) error {
			return p.EditComment(author.ID, input.CommentID, input.Body)
		},
		func(p *domain.Poll) domain.Event {
			return domain.EditCommentEvent{PollID: p.ID, CommentID: input.CommentID, Body: input.Body, Version: p.Version}
		},
	)
	return err
}

func (s *commentService) Remove(ctx context.Context, author domain.Identity, pollID, commentID string) error {
	if author.Anonymous {
		return domain.ErrUnauthenticated
	}

	_, err := s.polls.Update(ctx, pollID,
		func(p *domain.Poll, _ time.Time) error {
			return p.RemoveComment(author.ID, commentID)
		},
		func(p *domain.Poll) domain.Event {
			return domain.RemoveCommentEvent{PollID: p.ID, CommentID: commentID, Version: p.Version}
		},
	)
	return err
}

// List returns comments newest first, CommentPageSize at a time.
func (s *commentService) List(ctx context.Context, pollID string, page int) (*domain.CommentPage, error) {
	p, err := s.polls.Repository().FindByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if len(p.Comments) == 0 {
		return &domain.CommentPage{Comments: []domain.CommentView{}, LastPage: true}, nil
	}
	if page < 0 {
		page = 0
	}

	comments := make([]domain.Comment, 0, len(p.Comments))
	for i := len(p.Comments) - 1; i >= 0; i-- {
		comments = append(comments, p.Comments[i])
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].PostDate.After(comments[j].PostDate)
	})

	start := len(comments)
	if page <= len(comments)/CommentPageSize {
		start = page * CommentPageSize
	}
	end := start + CommentPageSize + 1
	if end > len(comments) {
		end = len(comments)
	}
	window := comments[start:end]

	lastPage := len(window) <= CommentPageSize
	if !lastPage {
		window = window[:CommentPageSize]
	}

	ids := make([]string, 0, len(window))
	for _, c := range window {
		ids = append(ids, c.AuthorID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &domain.CommentPage{Comments: make([]domain.CommentView, 0, len(window)), LastPage: lastPage}
	for _, c := range window {
		view := domain.CommentView{
			CommentID: c.ID,
			AuthorID:  c.AuthorID,
			PostDate:  c.PostDate,
			Body:      c.Body,
		}
		if u, ok := users[c.AuthorID]; ok {
			view.AuthorName = u.Name
		}
		result.Comments = append(result.Comments, view)
	}
	return result, nil
}
