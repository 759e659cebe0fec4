package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

const (
	msgBadBody        = "The request body could not be read."
	msgInternal       = "Something went wrong. Try again later."
	msgNotLoggedIn    = "You are not logged in."
	msgInvalidToken   = "Your login token is not valid. Please log in."
	msgVerifyingLogin = "Something went wrong while verifying your login status. Try again later"
)

type apiError struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

type messageResponse struct {
	Message   string `json:"message"`
	PollID    string `json:"pollId,omitempty"`
	ChoiceID  string `json:"choiceId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
}

var errorTable = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrPollNotFound, http.StatusNotFound, "A poll with this ID was not found."},
	{domain.ErrCommentNotFound, http.StatusNotFound, "A comment with the given ID was not found on this poll."},
	{domain.ErrUserNotFound, http.StatusNotFound, "A user with this ID was not found."},
	{domain.ErrNoSearchResults, http.StatusNotFound, "Your search did not yield any results."},
	{domain.ErrNoAuthorPolls, http.StatusNotFound, "This user has not posted any polls."},
	{domain.ErrNoHotPolls, http.StatusNotFound, "There are no hot polls right now. Try again later."},
	{domain.ErrNoRecentPolls, http.StatusNotFound, "No polls were found."},
	{domain.ErrAlreadyVoted, http.StatusConflict, "You already voted on this poll!"},
	{domain.ErrVersionConflict, http.StatusConflict, "This poll is busy right now. Try again."},
	{domain.ErrLoginRequired, http.StatusUnauthorized, "You need to be logged in to vote on this poll."},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, msgNotLoggedIn},
	{domain.ErrInvalidToken, http.StatusUnauthorized, msgInvalidToken},
	{domain.ErrNotPollAuthor, http.StatusForbidden, "You are not the author of this poll."},
	{domain.ErrNotCommentAuthor, http.StatusForbidden, "You are not the author of this comment."},
	{domain.ErrPollClosed, http.StatusBadRequest, "This poll is closed."},
	{domain.ErrAuthorCannotVote, http.StatusBadRequest, "You are the author of this poll!"},
	{domain.ErrChoiceNotFound, http.StatusBadRequest, "A choice with the given ID was not found on this poll."},
	{domain.ErrChoiceRequired, http.StatusBadRequest, "Poll choices cannot be empty."},
	{domain.ErrChoiceTooLong, http.StatusBadRequest, "Poll choices must have 140 characters or fewer."},
	{domain.ErrExtraChoicesDisabled, http.StatusBadRequest, "Adding extra choices is not allowed on this poll."},
	{domain.ErrTooFewChoices, http.StatusBadRequest, "The poll must contain at least two choices."},
}

func toAPIError(err error) apiError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return apiError{Status: http.StatusBadRequest, Message: verr.Message, Details: verr.Details}
	}
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return apiError{Status: e.status, Message: e.message}
		}
	}
	return apiError{Status: http.StatusInternalServerError, Message: msgInternal}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAPIError(w http.ResponseWriter, e apiError) {
	writeJSON(w, e.Status, errorResponse{Error: e})
}

func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	e := toAPIError(err)
	if e.Status == http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	writeAPIError(w, e)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIError(w, apiError{Status: http.StatusBadRequest, Message: msgBadBody})
		return false
	}
	return true
}

// pageParam reads ?page=, treating anything unparsable as the first page.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}
