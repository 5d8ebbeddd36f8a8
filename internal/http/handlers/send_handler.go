// Send HTTP handlers.
//
// This file exposes the operator-facing message delivery endpoints:
//   - POST /push       (one user)
//   - POST /multicast  (a list of users)
//   - POST /broadcast  (every friend of the bot)
//
// Each is a thin pass-through to the LINE client; a platform failure becomes
// a 500 envelope here, unlike in the webhook flow where sends are
// best-effort.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bcmerchant/line-bot-backend/internal/line"
)

// SendHandlers groups the outbound messaging endpoints.
type SendHandlers struct {
	sender line.Sender
}

// NewSendHandlers constructs SendHandlers bound to the given sender.
func NewSendHandlers(s line.Sender) *SendHandlers {
	return &SendHandlers{sender: s}
}

// PushRequest is the JSON payload for pushing to one user.
type PushRequest struct {
	UserID  string `json:"user_id" binding:"required" example:"U4af4980629..."`
	Message string `json:"message" binding:"required" example:"สวัสดีครับ"`
}

// MulticastRequest is the JSON payload for sending to several users.
type MulticastRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1"`
	Message string   `json:"message" binding:"required"`
}

// BroadcastRequest is the JSON payload for broadcasting to all friends.
type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendResponse acknowledges a delivered message.
type SendResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"message sent"`
}

// Push godoc
// @ID          pushMessage
// @Summary     Push a text message to one user
// @Tags        Send
// @Accept      json
// @Produce     json
// @Param       body body handlers.PushRequest true "Push payload"
// @Success     200 {object} handlers.SendResponse
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     500 {object} handlers.ErrorResponse "Send failed"
// @Router      /push [post]
func (h *SendHandlers) Push(c *gin.Context) {
	var req PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id and message are required")
		return
	}
	if err := h.sender.Push(c.Request.Context(), req.UserID, req.Message); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSendFailed, "failed to send message")
		return
	}
	ok(c, http.StatusOK, SendResponse{Status: "success", Message: "message sent"})
}

// Multicast godoc
// @ID          multicastMessage
// @Summary     Send a text message to a list of users
// @Tags        Send
// @Accept      json
// @Produce     json
// @Param       body body handlers.MulticastRequest true "Multicast payload"
// @Success     200 {object} handlers.SendResponse
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     500 {object} handlers.ErrorResponse "Send failed"
// @Router      /multicast [post]
func (h *SendHandlers) Multicast(c *gin.Context) {
	var req MulticastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_ids and message are required")
		return
	}
	if err := h.sender.Multicast(c.Request.Context(), req.UserIDs, req.Message); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSendFailed, "failed to send messages")
		return
	}
	ok(c, http.StatusOK, SendResponse{Status: "success", Message: "message sent to multiple users"})
}

// Broadcast godoc
// @ID          broadcastMessage
// @Summary     Broadcast a text message to every friend of the bot
// @Tags        Send
// @Accept      json
// @Produce     json
// @Param       body body handlers.BroadcastRequest true "Broadcast payload"
// @Success     200 {object} handlers.SendResponse
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     500 {object} handlers.ErrorResponse "Send failed"
// @Router      /broadcast [post]
func (h *SendHandlers) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is required")
		return
	}
	if err := h.sender.Broadcast(c.Request.Context(), req.Message); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSendFailed, "failed to broadcast message")
		return
	}
	ok(c, http.StatusOK, SendResponse{Status: "success", Message: "message broadcasted"})
}
