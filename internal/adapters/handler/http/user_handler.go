package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
	log     logrus.FieldLogger
}

func NewUserHandler(service ports.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// GetMe godoc
// @Summary      Returns the logged in user
// @Tags         user
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /user/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByID(r.Context(), identityFrom(r).ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
