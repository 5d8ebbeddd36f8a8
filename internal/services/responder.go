// Package services – Responder
//
// This file implements the conversation responder, the decision core of the
// relay. Given an inbound webhook event it decides, in contractual order,
// whether the text is a registration code, a history command, or ordinary
// chat, and drives the registration service, the conversation store, and the
// reply generator accordingly.
package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bcmerchant/line-bot-backend/internal/ai"
	"github.com/bcmerchant/line-bot-backend/internal/domain"
	"github.com/bcmerchant/line-bot-backend/internal/line"
)

const (
	// clearCommand wipes the user's conversation history (case-insensitive).
	clearCommand = "/clear"

	// enrollCommand replies with merchant enrollment instructions.
	enrollCommand = "ลงทะเบียน"

	// DefaultHistoryLimit bounds the context window handed to the generator.
	DefaultHistoryLimit = 10
)

// codeRE matches exactly four digits, the shape of a registration code.
var codeRE = regexp.MustCompile(`^[0-9]{4}$`)

// Responder orchestrates the message and follow flows. All dependencies are
// injected; it holds no mutable state and is safe for concurrent use. Every
// cross-request coordination point is an atomic store operation.
type Responder struct {
	Sender        line.Sender
	Generator     ai.Generator
	Directory     *UserDirectory
	Conversations *ConversationStore
	Registrations *RegistrationService
	Replies       *Replies
	Log           zerolog.Logger

	// HistoryLimit caps how many prior turns feed the generator.
	// Zero means DefaultHistoryLimit.
	HistoryLimit int
}

// historyLimit returns the effective context bound.
func (r *Responder) historyLimit() int {
	if r.HistoryLimit > 0 {
		return r.HistoryLimit
	}
	return DefaultHistoryLimit
}

// HandleMessage processes one message event. Decision order is a design
// contract: non-text refusal, then registration code, then clear command,
// then enrollment instructions, then ordinary chat.
func (r *Responder) HandleMessage(ctx context.Context, ev line.Event) error {
	tr := otel.Tracer("services/Responder")
	ctx, span := tr.Start(ctx, "HandleMessage",
		trace.WithAttributes(attribute.String("user.id", ev.Source.UserID)),
	)
	defer span.End()

	if ev.Message == nil || ev.Message.Type != line.MessageTypeText {
		r.send(ctx, ev.ReplyToken, r.Replies.Unsupported())
		return nil
	}

	userID := ev.Source.UserID
	text := strings.TrimSpace(ev.Message.Text)

	user := r.ensureUser(ctx, userID)

	if codeRE.MatchString(text) {
		rec, err := r.Registrations.Claim(ctx, text, userID)
		if rec != nil {
			if err != nil {
				// Claim won but the user-side mark lagged; next mark catches up.
				r.Log.Error().Err(err).Str("user_id", userID).Msg("mark registered failed")
			}
			name := ""
			if user != nil {
				name = user.DisplayName
			}
			r.send(ctx, ev.ReplyToken, r.Replies.ClaimConfirmed(rec.ShopName, name))
			return nil
		}
		if err != nil && err != ErrCodeNotClaimable {
			return err
		}
		// Miss: the digits become an ordinary chat message.
	}

	if strings.EqualFold(text, clearCommand) {
		deleted, err := r.Conversations.Clear(ctx, userID)
		if err != nil {
			return err
		}
		r.send(ctx, ev.ReplyToken, r.Replies.Cleared(deleted))
		return nil
	}

	if text == enrollCommand {
		r.sendMany(ctx, ev.ReplyToken, []string{r.Replies.EnrollInstructions(), userID})
		return nil
	}

	return r.chat(ctx, ev.ReplyToken, userID, text)
}

// chat runs the ordinary-text flow: bounded history in, generated reply out,
// both turns persisted. The user turn is appended before the assistant turn
// so a crash in between leaves a restartable tail, never an orphaned
// assistant message.
func (r *Responder) chat(ctx context.Context, replyToken, userID, text string) error {
	history, err := r.Conversations.Recent(ctx, userID, r.historyLimit())
	if err != nil {
		return err
	}

	reply := r.Generator.Reply(ctx, text, history)

	if _, err := r.Conversations.Append(ctx, userID, domain.RoleUser, text); err != nil {
		return err
	}
	if _, err := r.Conversations.Append(ctx, userID, domain.RoleAssistant, reply); err != nil {
		return err
	}

	r.send(ctx, replyToken, reply)
	return nil
}

// HandleFollow greets a new follower and makes sure a pending directory
// entry exists. It never touches the conversation store.
func (r *Responder) HandleFollow(ctx context.Context, ev line.Event) error {
	tr := otel.Tracer("services/Responder")
	ctx, span := tr.Start(ctx, "HandleFollow",
		trace.WithAttributes(attribute.String("user.id", ev.Source.UserID)),
	)
	defer span.End()

	user := r.ensureUser(ctx, ev.Source.UserID)
	name := ""
	if user != nil {
		name = user.DisplayName
	}
	r.send(ctx, ev.ReplyToken, r.Replies.Welcome(name))
	return nil
}

// ensureUser refreshes the directory entry for userID, fetching the profile
// best-effort first. Directory or profile failures degrade to a nil user;
// the flows continue without one.
func (r *Responder) ensureUser(ctx context.Context, userID string) *domain.User {
	displayName, pictureURL := "", ""
	if profile, err := r.Sender.Profile(ctx, userID); err == nil && profile != nil {
		displayName, pictureURL = profile.DisplayName, profile.PictureURL
	} else if err != nil {
		r.Log.Warn().Err(err).Str("user_id", userID).Msg("profile fetch failed")
	}

	user, err := r.Directory.EnsurePending(ctx, userID, displayName, pictureURL)
	if err != nil {
		r.Log.Error().Err(err).Str("user_id", userID).Msg("user upsert failed")
		return nil
	}
	return user
}

// send replies with one message, logging (not propagating) send failures.
func (r *Responder) send(ctx context.Context, replyToken, text string) {
	if err := r.Sender.Reply(ctx, replyToken, text); err != nil {
		r.Log.Error().Err(err).Msg("reply failed")
	}
}

// sendMany replies with several messages at once.
func (r *Responder) sendMany(ctx context.Context, replyToken string, texts []string) {
	if err := r.Sender.ReplyMany(ctx, replyToken, texts); err != nil {
		r.Log.Error().Err(err).Msg("reply failed")
	}
}
