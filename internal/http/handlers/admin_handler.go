// Admin HTTP handlers.
//
// This file exposes the operator-facing query endpoints:
//   - GET /users               (list all known users)
//   - GET /users/{id}          (fetch one user)
//   - GET /users/{id}/history  (fetch a user's conversation history)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
	"github.com/bcmerchant/line-bot-backend/internal/services"
	"github.com/bcmerchant/line-bot-backend/internal/utils"
)

// DirectoryService defines the user directory operations consumed by the
// admin handlers.
type DirectoryService interface {
	// Get returns a user or services.ErrUserNotFound.
	Get(ctx context.Context, lineUserID string) (*domain.User, error)
	// List returns every known user.
	List(ctx context.Context) ([]domain.User, error)
}

// HistoryService defines conversation history retrieval for the admin
// handlers.
type HistoryService interface {
	// Recent returns up to limit turns, oldest first.
	Recent(ctx context.Context, lineUserID string, limit int) ([]domain.Turn, error)
}

// AdminHandlers groups the operator query endpoints.
type AdminHandlers struct {
	directory DirectoryService
	history   HistoryService
}

// NewAdminHandlers constructs AdminHandlers bound to the given services.
func NewAdminHandlers(d DirectoryService, h HistoryService) *AdminHandlers {
	return &AdminHandlers{directory: d, history: h}
}

// ListUsersResponse wraps the user list.
type ListUsersResponse struct {
	Users []domain.User `json:"users"`
}

// HistoryResponse wraps a user's history slice.
type HistoryResponse struct {
	History []domain.Turn `json:"history"`
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List all known users
// @Tags        Admin
// @Produce     json
// @Success     200 {object} handlers.ListUsersResponse
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /users [get]
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	users, err := h.directory.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	ok(c, http.StatusOK, ListUsersResponse{Users: users})
}

// GetUser godoc
// @ID          getUser
// @Summary     Fetch one user by LINE user id
// @Tags        Admin
// @Produce     json
// @Param       id  path  string  true  "LINE user id"
// @Success     200 {object} domain.User
// @Failure     404 {object} handlers.ErrorResponse "User not found"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id} [get]
func (h *AdminHandlers) GetUser(c *gin.Context) {
	user, err := h.directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, user)
}

// GetHistory godoc
// @ID          getUserHistory
// @Summary     Fetch a user's conversation history
// @Description Returns up to limit turns in chronological order.
// @Tags        Admin
// @Produce     json
// @Param       id     path   string  true  "LINE user id"
// @Param       limit  query  int     false "Maximum turns returned" default(20)
// @Success     200 {object} handlers.HistoryResponse
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/history [get]
func (h *AdminHandlers) GetHistory(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 20)
	if limit < 1 {
		limit = 20
	}

	turns, err := h.history.Recent(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	ok(c, http.StatusOK, HistoryResponse{History: turns})
}
