package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bcmerchant/line-bot-backend/internal/line"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeResponder records dispatched events and can be told to fail or panic
// on specific user ids.
type fakeResponder struct {
	messages []line.Event
	follows  []line.Event
	failFor  string
	panicFor string
}

func (f *fakeResponder) HandleMessage(_ context.Context, ev line.Event) error {
	if ev.Source.UserID == f.panicFor {
		panic("boom")
	}
	f.messages = append(f.messages, ev)
	if ev.Source.UserID == f.failFor {
		return errors.New("handler failed")
	}
	return nil
}

func (f *fakeResponder) HandleFollow(_ context.Context, ev line.Event) error {
	f.follows = append(f.follows, ev)
	return nil
}

func webhookSign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, h *WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST("/webhook", h.Handle)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
	if signature != "" {
		req.Header.Set(line.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const messageBatch = `{
	"destination": "bot",
	"events": [
		{"type": "message", "replyToken": "rt1",
		 "source": {"type": "user", "userId": "U1"},
		 "message": {"id": "m1", "type": "text", "text": "hello"}}
	]
}`

func TestWebhook_EmptyBodyAcked(t *testing.T) {
	resp := &fakeResponder{}
	h := NewWebhookHandler("secret", true, resp)

	w := postWebhook(t, h, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if len(resp.messages)+len(resp.follows) != 0 {
		t.Fatalf("empty body must not dispatch events")
	}
}

func TestWebhook_MalformedBodyAcked(t *testing.T) {
	resp := &fakeResponder{}
	h := NewWebhookHandler("secret", true, resp)

	w := postWebhook(t, h, "{not json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.messages) != 0 {
		t.Fatalf("malformed body must not dispatch events")
	}
}

func TestWebhook_EmptyEventsAckedBeforeSignature(t *testing.T) {
	resp := &fakeResponder{}
	h := NewWebhookHandler("secret", true, resp)

	// Verification ping: valid JSON, no events, no signature header. Even in
	// strict mode this must be acknowledged.
	w := postWebhook(t, h, `{"destination":"bot","events":[]}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for verification ping", w.Code)
	}
}

func TestWebhook_StrictRejectsBadSignature(t *testing.T) {
	resp := &fakeResponder{}
	h := NewWebhookHandler("secret", true, resp)

	w := postWebhook(t, h, messageBatch, "bogus")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), ErrCodeInvalidSignature) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if len(resp.messages) != 0 {
		t.Fatalf("rejected batch must not dispatch events")
	}
}

func TestWebhook_LenientProcessesDespiteBadSignature(t *testing.T) {
	resp := &fakeResponder{}
	h := NewWebhookHandler("secret", false, resp)

	w := postWebhook(t, h, messageBatch, "bogus")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.messages) != 1 {
		t.Fatalf("lenient mode must still process the batch")
	}
}

func TestWebhook_ValidSignatureDispatches(t *testing.T) {
	resp := &fakeResponder{}
	h := NewWebhookHandler("secret", true, resp)

	w := postWebhook(t, h, messageBatch, webhookSign("secret", []byte(messageBatch)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.messages) != 1 {
		t.Fatalf("messages = %d", len(resp.messages))
	}
	got := resp.messages[0]
	if got.Source.UserID != "U1" || got.Message == nil || got.Message.Text != "hello" {
		t.Fatalf("event = %+v", got)
	}
}

func TestWebhook_MixedBatchRoutesByType(t *testing.T) {
	resp := &fakeResponder{}
	h := NewWebhookHandler("", false, resp) // no secret: weak mode

	body := `{"events":[
		{"type": "follow", "replyToken": "rt1", "source": {"type":"user","userId":"U1"}},
		{"type": "message", "replyToken": "rt2", "source": {"type":"user","userId":"U2"},
		 "message": {"id":"m1","type":"text","text":"hi"}},
		{"type": "unfollow", "source": {"type":"user","userId":"U3"}}
	]}`

	w := postWebhook(t, h, body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(resp.follows) != 1 || len(resp.messages) != 1 {
		t.Fatalf("follows=%d messages=%d", len(resp.follows), len(resp.messages))
	}
}

func TestWebhook_FailingEventDoesNotAbortSiblings(t *testing.T) {
	resp := &fakeResponder{failFor: "U1"}
	h := NewWebhookHandler("", false, resp)

	body := `{"events":[
		{"type": "message", "replyToken": "rt1", "source": {"type":"user","userId":"U1"},
		 "message": {"id":"m1","type":"text","text":"a"}},
		{"type": "message", "replyToken": "rt2", "source": {"type":"user","userId":"U2"},
		 "message": {"id":"m2","type":"text","text":"b"}}
	]}`

	w := postWebhook(t, h, body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, failures must not surface", w.Code)
	}
	if len(resp.messages) != 2 {
		t.Fatalf("messages = %d, want both dispatched", len(resp.messages))
	}
}

func TestWebhook_PanickingEventIsContained(t *testing.T) {
	resp := &fakeResponder{panicFor: "U1"}
	h := NewWebhookHandler("", false, resp)

	body := `{"events":[
		{"type": "message", "replyToken": "rt1", "source": {"type":"user","userId":"U1"},
		 "message": {"id":"m1","type":"text","text":"a"}},
		{"type": "message", "replyToken": "rt2", "source": {"type":"user","userId":"U2"},
		 "message": {"id":"m2","type":"text","text":"b"}}
	]}`

	w := postWebhook(t, h, body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, panics must be contained", w.Code)
	}
	// U1 panicked before being recorded; U2 still went through.
	if len(resp.messages) != 1 || resp.messages[0].Source.UserID != "U2" {
		t.Fatalf("messages = %+v", resp.messages)
	}
}
