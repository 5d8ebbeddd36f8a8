// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Turn model
// (per-user conversation history).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
)

// AppendTurn inserts a new conversation turn. Insert-only; timestamps are
// assigned here in UTC.
func AppendTurn(ctx context.Context, db *gorm.DB, lineUserID, role, content string) (*domain.Turn, error) {
	t := &domain.Turn{
		ID:         uuid.NewString(),
		LineUserID: lineUserID,
		Role:       role,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// RecentTurns returns the most recent limit turns for a user in chronological
// (oldest-first) order. The query fetches descending and the slice is then
// reversed, so the caller can hand the result straight to context assembly.
func RecentTurns(ctx context.Context, db *gorm.DB, lineUserID string, limit int) ([]domain.Turn, error) {
	var out []domain.Turn
	q := db.WithContext(ctx).
		Where("line_user_id = ?", lineUserID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ClearTurns deletes all turns for a user and returns the number removed.
// Clearing an empty history returns 0, not an error.
func ClearTurns(ctx context.Context, db *gorm.DB, lineUserID string) (int64, error) {
	res := db.WithContext(ctx).
		Where("line_user_id = ?", lineUserID).
		Delete(&domain.Turn{})
	return res.RowsAffected, res.Error
}
