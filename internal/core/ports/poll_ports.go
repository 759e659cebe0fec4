package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

type PollOrder int

const (
	OrderRecent PollOrder = iota
	OrderRelevance
	OrderHeat
)

// PollQuery selects a window of stored polls. Text, AuthorID and
// InteractedSince are filters; a zero value disables the filter.
type PollQuery struct {
	Text            string
	AuthorID        string
	InteractedSince time.Time
	Order           PollOrder
	Skip            int
	Limit           int
}

// PollRepository stores whole poll aggregates. Save inserts a poll whose
// Version is zero and otherwise replaces the stored document only when the
// stored version still matches, returning domain.ErrVersionConflict if not.
// A successful Save increments poll.Version.
type PollRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Poll, error)
	Save(ctx context.Context, poll *domain.Poll) error
	Remove(ctx context.Context, id string) error
	Find(ctx context.Context, query PollQuery) ([]*domain.Poll, error)
}

type CreatePollInput struct {
	Issue              string
	Choices            []string
	Keywords           string
	RequiresLogin      bool
	CanAddExtraChoices bool
	PollWillClose      bool
	CloseDate          *time.Time
}

type EditPollInput struct {
	PollID             string
	Issue              string
	Keywords           string
	RequiresLogin      bool
	CanAddExtraChoices bool
	PollWillClose      bool
	CloseDate          *time.Time
	RemovedChoices     []string
	EditedChoices      []domain.ChoiceEdit
}

type PollService interface {
	Create(ctx context.Context, author domain.Identity, input CreatePollInput) (*domain.Poll, error)
	Edit(ctx context.Context, author domain.Identity, input EditPollInput) (*domain.Poll, error)
	Remove(ctx context.Context, author domain.Identity, pollID string) error
	View(ctx context.Context, viewer domain.Identity, pollID string) (*domain.PollView, error)
	Search(ctx context.Context, text string, page int) (*domain.PollPage, error)
	ByAuthor(ctx context.Context, authorID string, page int) (*domain.PollPage, error)
	Hot(ctx context.Context, page int) (*domain.PollPage, error)
	Recent(ctx context.Context, page int) (*domain.PollPage, error)
}
