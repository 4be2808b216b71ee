package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rollcontext/internal/game/history"
	"github.com/cory-johannsen/rollcontext/internal/storage/postgres"
	"github.com/cory-johannsen/rollcontext/internal/testutil"
)

func makeCheckEntry(actorID string, total int) history.Entry {
	dc := 16
	return history.Entry{
		ActorID:       actorID,
		TokenID:       actorID + "-tok",
		TargetTokenID: "gob-tok",
		Item:          &history.ItemRef{ID: "ls", Slug: "longsword", Type: "weapon", Melee: true},
		Rolls:         []history.Roll{{Kind: history.RollCheck, Formula: "1d20+9", Total: total}},
		Context: &history.ContextFlag{
			Type:          "attack-roll",
			ActorID:       actorID,
			Domains:       []string{"attack", "all"},
			Options:       []string{"attack", "self:id:" + actorID},
			Outcome:       "success",
			TargetTokenID: "gob-tok",
			Against:       "armor-class",
			DC:            &dc,
			Substitutions: []history.Substitution{{Slug: "fortune", Value: 18, Selected: true}},
		},
	}
}

func TestHistoryRepository(t *testing.T) {
	repo := postgres.NewHistoryRepository(testutil.NewPool(t))
	ctx := context.Background()

	t.Run("Append and Recent round-trip", func(t *testing.T) {
		e := makeCheckEntry("valeros", 25)
		e.ID = history.NewEntryID()
		require.NoError(t, repo.Append(ctx, e))

		recent, err := repo.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		got := recent[0]
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, e.ActorID, got.ActorID)
		assert.Equal(t, e.TargetTokenID, got.TargetTokenID)
		assert.Equal(t, e.Item, got.Item)
		assert.Equal(t, e.Rolls, got.Rolls)
		assert.Equal(t, e.Context, got.Context)
		assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
		assert.True(t, got.HasCheckRoll())
	})

	t.Run("duplicate id", func(t *testing.T) {
		e := makeCheckEntry("kyra", 12)
		e.ID = history.NewEntryID()
		require.NoError(t, repo.Append(ctx, e))
		assert.ErrorIs(t, repo.Append(ctx, e), postgres.ErrDuplicateEntry)
	})

	t.Run("entry without item or context", func(t *testing.T) {
		e := history.Entry{ID: history.NewEntryID(), ActorID: "goblin"}
		require.NoError(t, repo.Append(ctx, e))
		recent, err := repo.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		got := recent[0]
		assert.Equal(t, e.ID, got.ID)
		assert.Nil(t, got.Item)
		assert.Nil(t, got.Context)
		assert.Empty(t, got.Rolls)
	})

	t.Run("Recent is newest first", func(t *testing.T) {
		var ids []string
		for i := 0; i < 4; i++ {
			e := makeCheckEntry("seela", i)
			e.ID = history.NewEntryID()
			ids = append(ids, e.ID)
			require.NoError(t, repo.Append(ctx, e))
		}
		recent, err := repo.Recent(ctx, 3)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, ids[3], recent[0].ID)
		assert.Equal(t, ids[2], recent[1].ID)
		assert.Equal(t, ids[1], recent[2].ID)

		none, err := repo.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

// Property: Recent(n) never returns more than n entries and the newest
// appended entry always comes first.
func TestPropertyHistoryRecent(t *testing.T) {
	repo := postgres.NewHistoryRepository(testutil.NewPool(t))
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		e := makeCheckEntry("prop", rapid.IntRange(1, 40).Draw(rt, "total"))
		e.ID = history.NewEntryID()
		if err := repo.Append(ctx, e); err != nil {
			rt.Fatalf("Append: %v", err)
		}
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		recent, err := repo.Recent(ctx, n)
		if err != nil {
			rt.Fatalf("Recent: %v", err)
		}
		if len(recent) > n {
			rt.Fatalf("Recent(%d) returned %d entries", n, len(recent))
		}
		if recent[0].ID != e.ID {
			rt.Fatalf("newest entry %s not first, got %s", e.ID, recent[0].ID)
		}
	})
}
