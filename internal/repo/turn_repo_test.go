package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
)

func TestAppendTurn_AssignsIDAndTimestamp(t *testing.T) {
	db := newTestDB(t, &domain.Turn{})

	turn, err := AppendTurn(context.Background(), db, "U1", domain.RoleUser, "hello")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if turn.ID == "" {
		t.Fatalf("ID not assigned")
	}
	if turn.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not assigned")
	}
	if turn.Role != domain.RoleUser || turn.Content != "hello" {
		t.Fatalf("turn = %+v", turn)
	}
}

func TestRecentTurns_ChronologicalAndBounded(t *testing.T) {
	db := newTestDB(t, &domain.Turn{})
	ctx := context.Background()

	// Seed 5 turns with strictly increasing timestamps.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tr := &domain.Turn{
			ID:         fmt.Sprintf("t-%d", i),
			LineUserID: "U1",
			Role:       domain.RoleUser,
			Content:    fmt.Sprintf("m%d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(tr).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// limit 3 -> the LAST three, oldest first: m2, m3, m4.
	got, err := RecentTurns(ctx, db, "U1", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"m2", "m3", "m4"} {
		if got[i].Content != want {
			t.Fatalf("got[%d] = %q, want %q", i, got[i].Content, want)
		}
	}

	// limit larger than history -> everything, still oldest first.
	all, err := RecentTurns(ctx, db, "U1", 100)
	if err != nil {
		t.Fatalf("recent all: %v", err)
	}
	if len(all) != 5 || all[0].Content != "m0" || all[4].Content != "m4" {
		t.Fatalf("all = %v", all)
	}
}

func TestRecentTurns_SameTimestampOrderedByID(t *testing.T) {
	db := newTestDB(t, &domain.Turn{})

	// Two turns in the same instant: the id tiebreaker keeps insert order.
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, content := range []string{"first", "second"} {
		tr := &domain.Turn{
			ID:         fmt.Sprintf("t-%d", i),
			LineUserID: "U1",
			Role:       domain.RoleUser,
			Content:    content,
			CreatedAt:  at,
		}
		if err := db.Create(tr).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := RecentTurns(context.Background(), db, "U1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if got[0].Content != "first" || got[1].Content != "second" {
		t.Fatalf("order = %q,%q", got[0].Content, got[1].Content)
	}
}

func TestRecentTurns_FiltersByUser(t *testing.T) {
	db := newTestDB(t, &domain.Turn{})
	ctx := context.Background()

	if _, err := AppendTurn(ctx, db, "U1", domain.RoleUser, "mine"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := AppendTurn(ctx, db, "U2", domain.RoleUser, "theirs"); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := RecentTurns(ctx, db, "U1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].Content != "mine" {
		t.Fatalf("got = %v", got)
	}
}

func TestClearTurns_CountsAndEmptyIsZero(t *testing.T) {
	db := newTestDB(t, &domain.Turn{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := AppendTurn(ctx, db, "U1", domain.RoleUser, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if _, err := AppendTurn(ctx, db, "U2", domain.RoleUser, "other"); err != nil {
		t.Fatalf("append: %v", err)
	}

	n, err := ClearTurns(ctx, db, "U1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 3 {
		t.Fatalf("cleared = %d, want 3", n)
	}

	// Second clear on the now-empty history.
	n, err = ClearTurns(ctx, db, "U1")
	if err != nil || n != 0 {
		t.Fatalf("clear empty = (%d, %v), want (0, nil)", n, err)
	}

	// The other user's history is untouched.
	rest, err := RecentTurns(ctx, db, "U2", 10)
	if err != nil || len(rest) != 1 {
		t.Fatalf("other user history = (%v, %v)", rest, err)
	}
}

func TestAppendTurn_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, err := AppendTurn(context.Background(), db, "U1", domain.RoleUser, "x"); err == nil {
		t.Fatalf("expected error due to missing turns table")
	}
}
