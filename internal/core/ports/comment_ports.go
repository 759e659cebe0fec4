package ports

import (
	"context"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

type PostCommentInput struct {
	PollID string
	Body   string
}

type EditCommentInput struct {
	PollID    string
	CommentID string
	Body      string
}

type CommentService interface {
	Post(ctx context.Context, author domain.Identity, input PostCommentInput) (*domain.Comment, error)
	Edit(ctx context.Context, author domain.Identity, input EditCommentInput) error
	Remove(ctx context.Context, author domain.Identity, pollID, commentID string) error
	List(ctx context.Context, pollID string, page int) (*domain.CommentPage, error)
}
