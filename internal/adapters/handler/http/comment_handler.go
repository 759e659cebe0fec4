package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

type CommentHandler struct {
	service ports.CommentService
	log     logrus.FieldLogger
}

func NewCommentHandler(service ports.CommentService, log logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{
		service: service,
		log:     log,
	}
}

type commentRequest struct {
	CommentID string `json:"commentId"`
	Body      string `json:"body"`
}

// PostComment godoc
// @Summary      Comments on a poll
// @Tags         comment
// @Accept       json
// @Produce      json
// @Param        pollId   path      string          true  "Poll ID"
// @Param        comment  body      commentRequest  true  "Comment body"
// @Success      200      {object}  messageResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /poll/comment/{pollId} [post]
func (h *CommentHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.service.Post(r.Context(), identityFrom(r), ports.PostCommentInput{
		PollID: chi.URLParam(r, "pollId"),
		Body:   req.Body,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Your comment has been posted!", CommentID: comment.ID})
}

// ListComments godoc
// @Summary      Lists a poll's comments, newest first
// @Tags         comment
// @Produce      json
// @Param        pollId  path      string  true   "Poll ID"
// @Param        page    query     int     false  "Page number"
// @Success      200     {object}  domain.CommentPage
// @Failure      404     {object}  errorResponse
// @Router       /poll/comments/{pollId} [get]
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), chi.URLParam(r, "pollId"), pageParam(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// EditComment godoc
// @Summary      Edits a comment
// @Tags         comment
// @Accept       json
// @Produce      json
// @Param        pollId   path      string          true  "Poll ID"
// @Param        comment  body      commentRequest  true  "Comment ID and new body"
// @Success      200      {object}  messageResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /poll/editComment/{pollId} [put]
func (h *CommentHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.Edit(r.Context(), identityFrom(r), ports.EditCommentInput{
		PollID:    chi.URLParam(r, "pollId"),
		CommentID: req.CommentID,
		Body:      req.Body,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Your comment has been edited!"})
}

// RemoveComment godoc
// @Summary      Removes a comment
// @Tags         comment
// @Accept       json
// @Produce      json
// @Param        pollId   path      string          true  "Poll ID"
// @Param        comment  body      commentRequest  true  "Comment ID"
// @Success      200      {object}  messageResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /poll/removeComment/{pollId} [put]
func (h *CommentHandler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Remove(r.Context(), identityFrom(r), chi.URLParam(r, "pollId"), req.CommentID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Your comment has been removed!"})
}
