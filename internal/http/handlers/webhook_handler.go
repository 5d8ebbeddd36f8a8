// Webhook HTTP handler.
//
// This file exposes the LINE webhook endpoint. The contract with the
// platform is deliberately one-sided: the endpoint always acknowledges.
// Malformed bodies, verification pings, and per-event failures must never
// surface as error responses, or the platform answers with redelivery
// storms. Internal problems are logged and counted instead.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bcmerchant/line-bot-backend/internal/http/middleware"
	"github.com/bcmerchant/line-bot-backend/internal/line"
)

// EventResponder is the conversation flow consumed by the webhook handler.
// Implementations must be safe for concurrent use and honor the context.
type EventResponder interface {
	// HandleMessage runs the message flow for one event.
	HandleMessage(ctx context.Context, ev line.Event) error
	// HandleFollow runs the welcome flow for one follow event.
	HandleFollow(ctx context.Context, ev line.Event) error
}

// WebhookHandler demultiplexes inbound webhook batches.
type WebhookHandler struct {
	secret    string
	strict    bool
	responder EventResponder
}

// NewWebhookHandler constructs a WebhookHandler. When strict is true a
// signature mismatch rejects the request with 400; otherwise it is logged
// and the batch is processed best-effort.
func NewWebhookHandler(secret string, strict bool, r EventResponder) *WebhookHandler {
	return &WebhookHandler{secret: secret, strict: strict, responder: r}
}

// ackBody is the unconditional acknowledgment object.
func ackBody() gin.H { return gin.H{"status": "ok"} }

// eventResult captures one event's outcome so a failing event never aborts
// its siblings; results are aggregated only for logging and metrics.
type eventResult struct {
	index     int
	eventType string
	err       error
}

// Handle godoc
// @ID          lineWebhook
// @Summary     LINE webhook endpoint
// @Description Receives webhook event batches from the LINE platform. Always acknowledges; event failures are logged, never reflected to the caller.
// @Tags        Webhook
// @Accept      json
// @Produce     json
//
// @Param       X-Line-Signature  header  string  false "Webhook signature (base64 HMAC-SHA256 of the body)"
//
// @Success     200 {object} map[string]string
// @Failure     400 {object} handlers.ErrorResponse "Invalid signature (strict mode only)"
// @Router      /webhook [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	lg := middleware.LoggerFrom(c)

	// An unreadable or empty body is a platform ping, not an error.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		ok(c, http.StatusOK, ackBody())
		return
	}

	var req line.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		lg.Warn().Err(err).Msg("unparsable webhook body")
		ok(c, http.StatusOK, ackBody())
		return
	}

	// Empty batches (verification pings) short-circuit before any
	// signature work.
	if len(req.Events) == 0 {
		ok(c, http.StatusOK, ackBody())
		return
	}

	if !line.ValidSignature(h.secret, body, c.GetHeader(line.SignatureHeader)) {
		if h.strict {
			fail(c, http.StatusBadRequest, ErrCodeInvalidSignature, "invalid webhook signature")
			return
		}
		lg.Warn().Msg("webhook signature mismatch, processing anyway")
	}

	ctx := c.Request.Context()
	results := make([]eventResult, 0, len(req.Events))
	for i, ev := range req.Events {
		results = append(results, eventResult{
			index:     i,
			eventType: ev.Type,
			err:       h.dispatch(ctx, ev),
		})
	}

	for _, res := range results {
		outcome := "ok"
		if res.err != nil {
			outcome = "error"
			lg.Error().
				Err(res.err).
				Int("event_index", res.index).
				Str("event_type", res.eventType).
				Msg("webhook event failed")
		} else if res.eventType != line.EventTypeMessage && res.eventType != line.EventTypeFollow {
			outcome = "ignored"
		}
		middleware.CountWebhookEvent(res.eventType, outcome)
	}

	ok(c, http.StatusOK, ackBody())
}

// dispatch routes one event by type, converting panics into captured errors
// so one event cannot take down the batch. Unknown types are a silent no-op.
func (h *WebhookHandler) dispatch(ctx context.Context, ev line.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("event handler panic: %v", rec)
		}
	}()

	switch ev.Type {
	case line.EventTypeMessage:
		return h.responder.HandleMessage(ctx, ev)
	case line.EventTypeFollow:
		return h.responder.HandleFollow(ctx, ev)
	default:
		return nil
	}
}
