package domain

import (
	"errors"
	"strings"
)

var (
	ErrPollNotFound         = errors.New("poll not found")
	ErrPollClosed           = errors.New("poll is closed")
	ErrAuthorCannotVote     = errors.New("poll author cannot vote on their own poll")
	ErrChoiceNotFound       = errors.New("choice not found")
	ErrChoiceRequired       = errors.New("choice body is required")
	ErrChoiceTooLong        = errors.New("choice body is too long")
	ErrExtraChoicesDisabled = errors.New("poll does not accept extra choices")
	ErrTooFewChoices        = errors.New("poll must keep at least two choices")
	ErrAlreadyVoted         = errors.New("voter has already voted")
	ErrLoginRequired        = errors.New("poll requires a logged in voter")
	ErrNotPollAuthor        = errors.New("not the author of this poll")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotCommentAuthor     = errors.New("not the author of this comment")
	ErrVersionConflict      = errors.New("poll was modified concurrently")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidToken         = errors.New("invalid access token")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrNoSearchResults      = errors.New("no polls match the search")
	ErrNoAuthorPolls        = errors.New("author has no polls")
	ErrNoHotPolls           = errors.New("no hot polls")
	ErrNoRecentPolls        = errors.New("no recent polls")
	ErrInternal             = errors.New("internal server error")
)

// ValidationError collects every input problem found in a single request.
type ValidationError struct {
	Message string
	Details []string
}

func NewValidationError(message string, details ...string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Add(detail string) {
	e.Details = append(e.Details, detail)
}

func (e *ValidationError) HasDetails() bool {
	return len(e.Details) > 0
}
