package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	log     logrus.FieldLogger
}

func NewVoteHandler(service ports.VoteService, log logrus.FieldLogger) *VoteHandler {
	return &VoteHandler{
		service: service,
		log:     log,
	}
}

type voteRequest struct {
	ChoiceID string `json:"choiceId"`
}

type addChoiceRequest struct {
	Body string `json:"body"`
}

// CastVote godoc
// @Summary      Casts a vote
// @Description  Anonymous callers vote under their IP address unless the poll requires a login.
// @Tags         vote
// @Accept       json
// @Produce      json
// @Param        pollId  path      string       true  "Poll ID"
// @Param        vote    body      voteRequest  true  "Chosen choice"
// @Success      200     {object}  messageResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /poll/vote/{pollId} [put]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.CastVote(r.Context(), identityFrom(r), ports.VoteInput{
		PollID:   chi.URLParam(r, "pollId"),
		ChoiceID: req.ChoiceID,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Your vote has been cast!"})
}

// AddChoice godoc
// @Summary      Writes in a new choice
// @Description  Non-authors vote for the choice they write in.
// @Tags         vote
// @Accept       json
// @Produce      json
// @Param        pollId  path      string            true  "Poll ID"
// @Param        choice  body      addChoiceRequest  true  "Choice body"
// @Success      200     {object}  messageResponse
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /poll/addChoice/{pollId} [put]
func (h *VoteHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	var req addChoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	choice, err := h.service.AddChoice(r.Context(), identityFrom(r), ports.AddChoiceInput{
		PollID: chi.URLParam(r, "pollId"),
		Body:   req.Body,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Your choice has been added!", ChoiceID: choice.ID})
}
