// Package services – ConversationStore
//
// This file implements the conversation store service: bounded,
// chronologically ordered history per user, insert-only appends, and bulk
// clears. It is the only component that touches turn rows.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
	"github.com/bcmerchant/line-bot-backend/internal/repo"
)

// ConversationStore persists per-user message turns.
type ConversationStore struct {
	DB *gorm.DB
}

// NewConversationStore constructs a ConversationStore.
func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{DB: db}
}

// Append stores one turn with a server-assigned timestamp.
func (s *ConversationStore) Append(ctx context.Context, lineUserID, role, content string) (*domain.Turn, error) {
	return repo.AppendTurn(ctx, s.DB, lineUserID, role, content)
}

// Recent returns up to limit most recent turns in chronological
// (oldest-first) order, ready for context assembly.
func (s *ConversationStore) Recent(ctx context.Context, lineUserID string, limit int) ([]domain.Turn, error) {
	return repo.RecentTurns(ctx, s.DB, lineUserID, limit)
}

// Clear deletes the user's entire history and returns how many turns were
// removed. An empty history clears to 0 without error.
func (s *ConversationStore) Clear(ctx context.Context, lineUserID string) (int64, error) {
	return repo.ClearTurns(ctx, s.DB, lineUserID)
}
