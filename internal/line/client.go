package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the LINE Messaging API root.
const DefaultBaseURL = "https://api.line.me/v2/bot"

// defaultTimeout bounds every outbound call so a slow platform cannot stall
// a webhook handler.
const defaultTimeout = 10 * time.Second

// Profile is the subset of the LINE profile response the relay cares about.
type Profile struct {
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

// Sender is the outbound messaging capability consumed by the responder and
// the send handlers. Implementations must be safe for concurrent use.
type Sender interface {
	// Reply answers an event through its reply token with one text message.
	Reply(ctx context.Context, replyToken, text string) error
	// ReplyMany answers an event with several text messages at once.
	ReplyMany(ctx context.Context, replyToken string, texts []string) error
	// Push sends a text message directly to one user.
	Push(ctx context.Context, toUserID, text string) error
	// Multicast sends a text message to a list of users.
	Multicast(ctx context.Context, toUserIDs []string, text string) error
	// Broadcast sends a text message to every friend of the bot.
	Broadcast(ctx context.Context, text string) error
	// Profile fetches a user's display name and avatar, or ErrNotFound-like
	// error when the platform has none.
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// Client is a thin HTTP wrapper over the LINE Messaging API. Construct it
// with NewClient; the zero value is not usable.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

var _ Sender = (*Client)(nil)

// NewClient builds a Client authenticated with the channel access token.
func NewClient(accessToken string) *Client {
	return &Client{
		baseURL:     DefaultBaseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// WithBaseURL overrides the API root. Tests point this at an httptest server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textMessages(texts []string) []textMessage {
	out := make([]textMessage, 0, len(texts))
	for _, t := range texts {
		out = append(out, textMessage{Type: "text", Text: t})
	}
	return out
}

// Reply implements Sender.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	return c.ReplyMany(ctx, replyToken, []string{text})
}

// ReplyMany implements Sender.
func (c *Client) ReplyMany(ctx context.Context, replyToken string, texts []string) error {
	return c.post(ctx, "/message/reply", map[string]any{
		"replyToken": replyToken,
		"messages":   textMessages(texts),
	})
}

// Push implements Sender.
func (c *Client) Push(ctx context.Context, toUserID, text string) error {
	return c.post(ctx, "/message/push", map[string]any{
		"to":       toUserID,
		"messages": textMessages([]string{text}),
	})
}

// Multicast implements Sender.
func (c *Client) Multicast(ctx context.Context, toUserIDs []string, text string) error {
	return c.post(ctx, "/message/multicast", map[string]any{
		"to":       toUserIDs,
		"messages": textMessages([]string{text}),
	})
}

// Broadcast implements Sender.
func (c *Client) Broadcast(ctx context.Context, text string) error {
	return c.post(ctx, "/message/broadcast", map[string]any{
		"messages": textMessages([]string{text}),
	})
}

// Profile implements Sender.
func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/profile/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("line profile: status %d: %s", resp.StatusCode, body)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// post sends a JSON payload to a messaging endpoint and treats any non-200
// as an error. Response bodies are only read for error context.
func (c *Client) post(ctx context.Context, path string, payload any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Bytes("body", body).
			Msg("line api call failed")
		return fmt.Errorf("line %s: status %d", path, resp.StatusCode)
	}
	return nil
}
