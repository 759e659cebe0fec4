package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
	log     logrus.FieldLogger
}

func NewPollHandler(service ports.PollService, log logrus.FieldLogger) *PollHandler {
	return &PollHandler{
		service: service,
		log:     log,
	}
}

type createPollRequest struct {
	Issue              string        `json:"issue"`
	Choices            []string      `json:"choices"`
	Keywords           keywordsField `json:"keywords"`
	RequiresLogin      bool          `json:"requiresLogin"`
	CanAddExtraChoices bool          `json:"canAddExtraChoices"`
	PollWillClose      bool          `json:"pollWillClose"`
	CloseDate          *time.Time    `json:"closeDate"`
}

// keywordsField is free search text. A JSON array of words is also accepted
// and joined with spaces.
type keywordsField string

func (k *keywordsField) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*k = keywordsField(text)
		return nil
	}
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	*k = keywordsField(strings.Join(words, " "))
	return nil
}

type editedChoiceRequest struct {
	ChoiceID string `json:"choiceId"`
	Body     string `json:"body"`
}

type editPollRequest struct {
	Issue              string                `json:"issue"`
	Keywords           keywordsField         `json:"keywords"`
	RequiresLogin      bool                  `json:"requiresLogin"`
	CanAddExtraChoices bool                  `json:"canAddExtraChoices"`
	PollWillClose      bool                  `json:"pollWillClose"`
	CloseDate          *time.Time            `json:"closeDate"`
	RemovedChoices     []string              `json:"removedChoices"`
	EditedChoices      []editedChoiceRequest `json:"editedChoices"`
}

// CreatePoll godoc
// @Summary      Posts a new poll
// @Tags         poll
// @Accept       json
// @Produce      json
// @Param        poll  body      createPollRequest  true  "Poll to post"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /poll/create [post]
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	closeDate := req.CloseDate
	if !req.PollWillClose {
		closeDate = nil
	}

	poll, err := h.service.Create(r.Context(), identityFrom(r), ports.CreatePollInput{
		Issue:              req.Issue,
		Choices:            req.Choices,
		Keywords:           string(req.Keywords),
		RequiresLogin:      req.RequiresLogin,
		CanAddExtraChoices: req.CanAddExtraChoices,
		PollWillClose:      req.PollWillClose,
		CloseDate:          closeDate,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Your poll has been posted!", PollID: poll.ID})
}

// ViewPoll godoc
// @Summary      Fetches a poll as seen by the caller
// @Tags         poll
// @Produce      json
// @Param        pollId  path      string  true  "Poll ID"
// @Success      200     {object}  domain.PollView
// @Failure      404     {object}  errorResponse
// @Router       /poll/view/{pollId} [get]
func (h *PollHandler) ViewPoll(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), identityFrom(r), chi.URLParam(r, "pollId"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Search godoc
// @Summary      Searches polls by keyword
// @Tags         poll
// @Produce      json
// @Param        query  query     string  true   "Search text"
// @Param        page   query     int     false  "Page number"
// @Success      200    {object}  domain.PollPage
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /poll/search [get]
func (h *PollHandler) Search(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.service.Search(r.Context(), r.URL.Query().Get("query"), page)
	h.writePage(w, r, result, err, page, "Try searching again in a lower page.")
}

// ByAuthor godoc
// @Summary      Lists the polls posted by a user
// @Tags         poll
// @Produce      json
// @Param        userId  path      string  true   "Author ID"
// @Param        page    query     int     false  "Page number"
// @Success      200     {object}  domain.PollPage
// @Failure      404     {object}  errorResponse
// @Router       /poll/by/{userId} [get]
func (h *PollHandler) ByAuthor(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.service.ByAuthor(r.Context(), chi.URLParam(r, "userId"), page)
	h.writePage(w, r, result, err, page, "")
}

// Hot godoc
// @Summary      Lists polls with the most recent activity
// @Tags         poll
// @Produce      json
// @Param        page  query     int  false  "Page number"
// @Success      200   {object}  domain.PollPage
// @Failure      404   {object}  errorResponse
// @Router       /poll/hot [get]
func (h *PollHandler) Hot(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.service.Hot(r.Context(), page)
	h.writePage(w, r, result, err, page, "")
}

// Recent godoc
// @Summary      Lists the newest polls
// @Tags         poll
// @Produce      json
// @Param        page  query     int  false  "Page number"
// @Success      200   {object}  domain.PollPage
// @Failure      404   {object}  errorResponse
// @Router       /poll/recent [get]
func (h *PollHandler) Recent(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	result, err := h.service.Recent(r.Context(), page)
	h.writePage(w, r, result, err, page, "Try searching in a lower page.")
}

// writePage adds a hint to empty results past the first page.
func (h *PollHandler) writePage(w http.ResponseWriter, r *http.Request, result *domain.PollPage, err error, page int, hint string) {
	if err != nil {
		e := toAPIError(err)
		if e.Status == http.StatusNotFound && page > 0 && hint != "" {
			e.Details = []string{hint}
			writeAPIError(w, e)
			return
		}
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// EditPoll godoc
// @Summary      Revises a poll
// @Tags         poll
// @Accept       json
// @Produce      json
// @Param        pollId  path      string           true  "Poll ID"
// @Param        poll    body      editPollRequest  true  "Revision"
// @Success      200     {object}  messageResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /poll/edit/{pollId} [put]
func (h *PollHandler) EditPoll(w http.ResponseWriter, r *http.Request) {
	var req editPollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	closeDate := req.CloseDate
	if !req.PollWillClose {
		closeDate = nil
	}
	edited := make([]domain.ChoiceEdit, 0, len(req.EditedChoices))
	for _, c := range req.EditedChoices {
		edited = append(edited, domain.ChoiceEdit{ChoiceID: c.ChoiceID, Body: c.Body})
	}

	poll, err := h.service.Edit(r.Context(), identityFrom(r), ports.EditPollInput{
		PollID:             chi.URLParam(r, "pollId"),
		Issue:              req.Issue,
		Keywords:           string(req.Keywords),
		RequiresLogin:      req.RequiresLogin,
		CanAddExtraChoices: req.CanAddExtraChoices,
		PollWillClose:      req.PollWillClose,
		CloseDate:          closeDate,
		RemovedChoices:     req.RemovedChoices,
		EditedChoices:      edited,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Your poll has been revised!", PollID: poll.ID})
}

// RemovePoll godoc
// @Summary      Removes a poll and everything on it
// @Tags         poll
// @Produce      json
// @Param        pollId  path      string  true  "Poll ID"
// @Success      200     {object}  messageResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /poll/removePoll/{pollId} [delete]
func (h *PollHandler) RemovePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), identityFrom(r), chi.URLParam(r, "pollId")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Your poll has been removed!"})
}
