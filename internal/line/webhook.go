package line

// Webhook event types handled by the relay. Anything else is ignored.
const (
	EventTypeMessage = "message"
	EventTypeFollow  = "follow"
)

// MessageTypeText is the only inbound message type the relay understands;
// every other type gets a fixed refusal reply.
const MessageTypeText = "text"

// WebhookRequest is the JSON body LINE posts to the webhook endpoint.
// Verification pings carry an empty Events slice.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one entry of the webhook batch. Fields beyond the common ones are
// populated depending on Type.
type Event struct {
	Type       string          `json:"type"`
	Timestamp  int64           `json:"timestamp"`
	ReplyToken string          `json:"replyToken"`
	Source     EventSource     `json:"source"`
	Message    *MessageContent `json:"message,omitempty"`
}

// EventSource identifies who triggered the event.
type EventSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
}

// MessageContent is the type-specific payload of a message event. Only text
// messages carry Text.
type MessageContent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}
