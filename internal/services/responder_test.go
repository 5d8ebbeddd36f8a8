package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
	"github.com/bcmerchant/line-bot-backend/internal/line"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Turn{}, &domain.Registration{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// --- fakes ---

type sentMessage struct {
	replyToken string
	texts      []string
}

type fakeSender struct {
	sent       []sentMessage
	replyErr   error
	profile    *line.Profile
	profileErr error
}

func (f *fakeSender) Reply(_ context.Context, replyToken, text string) error {
	f.sent = append(f.sent, sentMessage{replyToken, []string{text}})
	return f.replyErr
}

func (f *fakeSender) ReplyMany(_ context.Context, replyToken string, texts []string) error {
	f.sent = append(f.sent, sentMessage{replyToken, texts})
	return f.replyErr
}

func (f *fakeSender) Push(context.Context, string, string) error        { return nil }
func (f *fakeSender) Multicast(context.Context, []string, string) error { return nil }
func (f *fakeSender) Broadcast(context.Context, string) error           { return nil }

func (f *fakeSender) Profile(context.Context, string) (*line.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatalf("nothing was sent")
	}
	last := f.sent[len(f.sent)-1]
	return last.texts[0]
}

type fakeGenerator struct {
	reply       string
	gotMessage  string
	gotHistory  []domain.Turn
	invocations int
}

func (f *fakeGenerator) Reply(_ context.Context, message string, history []domain.Turn) string {
	f.invocations++
	f.gotMessage = message
	f.gotHistory = history
	return f.reply
}

func newTestResponder(t *testing.T, db *gorm.DB, sender *fakeSender, gen *fakeGenerator) *Responder {
	t.Helper()
	return &Responder{
		Sender:        sender,
		Generator:     gen,
		Directory:     NewUserDirectory(db, NewUserRepo()),
		Conversations: NewConversationStore(db),
		Registrations: NewRegistrationService(db),
		Replies:       NewReplies(language.Thai),
		Log:           zerolog.Nop(),
	}
}

func textEvent(userID, text string) line.Event {
	return line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: "rt-" + userID,
		Source:     line.EventSource{Type: "user", UserID: userID},
		Message:    &line.MessageContent{ID: "m1", Type: line.MessageTypeText, Text: text},
	}
}

func turnCount(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.Turn{}).Where("line_user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count turns: %v", err)
	}
	return n
}

// --- message flow ---

func TestHandleMessage_NonTextRefused(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	gen := &fakeGenerator{reply: "should not be called"}
	r := newTestResponder(t, db, sender, gen)

	ev := textEvent("U1", "")
	ev.Message.Type = "sticker"
	ev.Message.Text = ""

	if err := r.HandleMessage(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(t); got != r.Replies.Unsupported() {
		t.Fatalf("reply = %q", got)
	}
	if gen.invocations != 0 {
		t.Fatalf("generator invoked on non-text")
	}
	if turnCount(t, db, "U1") != 0 {
		t.Fatalf("non-text must not write turns")
	}
}

func TestHandleMessage_OrdinaryChat(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{profile: &line.Profile{DisplayName: "Alice"}}
	gen := &fakeGenerator{reply: "คำตอบจากบอท"}
	r := newTestResponder(t, db, sender, gen)

	if err := r.HandleMessage(context.Background(), textEvent("U1", "  สวัสดี  ")); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if gen.gotMessage != "สวัสดี" {
		t.Fatalf("generator got %q, want trimmed text", gen.gotMessage)
	}
	if got := sender.lastText(t); got != "คำตอบจากบอท" {
		t.Fatalf("reply = %q", got)
	}

	// Both turns persisted, user before assistant.
	turns, err := r.Conversations.Recent(context.Background(), "U1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].Role != domain.RoleUser || turns[0].Content != "สวัสดี" {
		t.Fatalf("turn[0] = %+v", turns[0])
	}
	if turns[1].Role != domain.RoleAssistant || turns[1].Content != "คำตอบจากบอท" {
		t.Fatalf("turn[1] = %+v", turns[1])
	}

	// Contact created the directory entry with the fetched profile.
	u, err := r.Directory.Get(context.Background(), "U1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.DisplayName != "Alice" || u.Status != domain.UserStatusPending {
		t.Fatalf("user = %+v", u)
	}
}

func TestHandleMessage_HistoryBound(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	gen := &fakeGenerator{reply: "ok"}
	r := newTestResponder(t, db, sender, gen)
	r.HistoryLimit = 4

	for i := 0; i < 6; i++ {
		if _, err := r.Conversations.Append(context.Background(), "U1", domain.RoleUser, fmt.Sprintf("old-%d", i)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		time.Sleep(2 * time.Millisecond) // distinct timestamps
	}

	if err := r.HandleMessage(context.Background(), textEvent("U1", "ล่าสุด")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(gen.gotHistory) != 4 {
		t.Fatalf("history = %d turns, want 4", len(gen.gotHistory))
	}
	if gen.gotHistory[0].Content != "old-2" || gen.gotHistory[3].Content != "old-5" {
		t.Fatalf("history window = %q..%q", gen.gotHistory[0].Content, gen.gotHistory[3].Content)
	}
}

// --- registration code flow ---

func TestHandleMessage_CodeClaimSuccess(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{profile: &line.Profile{DisplayName: "Alice"}}
	gen := &fakeGenerator{reply: "should not run"}
	r := newTestResponder(t, db, sender, gen)

	reg := &domain.Registration{
		ID:        "reg-1",
		Code:      "1234",
		ShopCode:  "SHOP01",
		ShopName:  "ร้านกาแฟ",
		Status:    domain.RegistrationPending,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := db.Create(reg).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := r.HandleMessage(context.Background(), textEvent("U1", "1234")); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got := sender.lastText(t)
	if !strings.Contains(got, "ร้านกาแฟ") || !strings.Contains(got, "Alice") {
		t.Fatalf("confirmation = %q", got)
	}
	if gen.invocations != 0 {
		t.Fatalf("claimed code must not reach the generator")
	}
	if turnCount(t, db, "U1") != 0 {
		t.Fatalf("claimed code must not write turns")
	}

	u, err := r.Directory.Get(context.Background(), "U1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Status != domain.UserStatusRegistered {
		t.Fatalf("user status = %q, want registered", u.Status)
	}
	if u.RegistrationCode == nil || *u.RegistrationCode != "1234" {
		t.Fatalf("RegistrationCode = %v", u.RegistrationCode)
	}
}

func TestHandleMessage_CodeMissFallsThroughToChat(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	gen := &fakeGenerator{reply: "คุยกันต่อ"}
	r := newTestResponder(t, db, sender, gen)

	// No registration seeded: "4321" is just four digits someone typed.
	if err := r.HandleMessage(context.Background(), textEvent("U1", "4321")); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if gen.gotMessage != "4321" {
		t.Fatalf("generator got %q", gen.gotMessage)
	}
	if turnCount(t, db, "U1") != 2 {
		t.Fatalf("miss must fall through to the chat flow")
	}
}

func TestHandleMessage_FiveDigitsAreNotACode(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	gen := &fakeGenerator{reply: "ok"}
	r := newTestResponder(t, db, sender, gen)

	reg := &domain.Registration{
		ID:        "reg-1",
		Code:      "12345",
		Status:    domain.RegistrationPending,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := db.Create(reg).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := r.HandleMessage(context.Background(), textEvent("U1", "12345")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// Five digits skip the claim entirely and land in chat.
	if gen.invocations != 1 {
		t.Fatalf("generator invocations = %d", gen.invocations)
	}
	rec, err := NewRegistrationService(db).Claim(context.Background(), "12345", "U2")
	if err != nil || rec == nil {
		t.Fatalf("registration should still be claimable: %v", err)
	}
}

// --- commands ---

func TestHandleMessage_ClearCommand(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	gen := &fakeGenerator{reply: "unused"}
	r := newTestResponder(t, db, sender, gen)

	for i := 0; i < 3; i++ {
		if _, err := r.Conversations.Append(context.Background(), "U1", domain.RoleUser, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := r.HandleMessage(context.Background(), textEvent("U1", "/CLEAR")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if turnCount(t, db, "U1") != 0 {
		t.Fatalf("history not cleared")
	}
	if got := sender.lastText(t); !strings.Contains(got, "3") {
		t.Fatalf("clear confirmation = %q, want the count", got)
	}
	if gen.invocations != 0 {
		t.Fatalf("command must not reach the generator")
	}
}

func TestHandleMessage_EnrollCommand(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	gen := &fakeGenerator{reply: "unused"}
	r := newTestResponder(t, db, sender, gen)

	if err := r.HandleMessage(context.Background(), textEvent("U1", "ลงทะเบียน")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d batches", len(sender.sent))
	}
	msgs := sender.sent[0].texts
	if len(msgs) != 2 {
		t.Fatalf("enroll reply = %d messages, want instructions + user id", len(msgs))
	}
	if msgs[0] != r.Replies.EnrollInstructions() || msgs[1] != "U1" {
		t.Fatalf("enroll reply = %v", msgs)
	}
	if turnCount(t, db, "U1") != 0 {
		t.Fatalf("enroll must not write turns")
	}
}

// --- follow flow ---

func TestHandleFollow_GreetsAndCreatesPendingUser(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{profile: &line.Profile{DisplayName: "Bob"}}
	r := newTestResponder(t, db, sender, &fakeGenerator{})

	ev := line.Event{
		Type:       line.EventTypeFollow,
		ReplyToken: "rt-follow",
		Source:     line.EventSource{Type: "user", UserID: "U9"},
	}
	if err := r.HandleFollow(context.Background(), ev); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if got := sender.lastText(t); !strings.Contains(got, "Bob") {
		t.Fatalf("welcome = %q", got)
	}
	u, err := r.Directory.Get(context.Background(), "U9")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Status != domain.UserStatusPending {
		t.Fatalf("status = %q", u.Status)
	}
	if turnCount(t, db, "U9") != 0 {
		t.Fatalf("follow must not write turns")
	}
}

// --- degradation ---

func TestHandleMessage_ProfileFailureStillChats(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{profileErr: errors.New("profile api down")}
	gen := &fakeGenerator{reply: "ยังคุยได้"}
	r := newTestResponder(t, db, sender, gen)

	if err := r.HandleMessage(context.Background(), textEvent("U1", "hi")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := sender.lastText(t); got != "ยังคุยได้" {
		t.Fatalf("reply = %q", got)
	}
	// Directory entry exists with empty profile fields.
	u, err := r.Directory.Get(context.Background(), "U1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.DisplayName != "" {
		t.Fatalf("DisplayName = %q", u.DisplayName)
	}
}

func TestHandleMessage_SendFailureNotPropagated(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{replyErr: errors.New("stale reply token")}
	gen := &fakeGenerator{reply: "ok"}
	r := newTestResponder(t, db, sender, gen)

	if err := r.HandleMessage(context.Background(), textEvent("U1", "hi")); err != nil {
		t.Fatalf("send failure must not surface: %v", err)
	}
	// Turns were still persisted before the failed send.
	if turnCount(t, db, "U1") != 2 {
		t.Fatalf("turns = %d", turnCount(t, db, "U1"))
	}
}
