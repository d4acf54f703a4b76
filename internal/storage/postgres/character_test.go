package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/eoschar/internal/creation"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
	"github.com/cory-johannsen/eoschar/internal/storage/postgres"
	"github.com/cory-johannsen/eoschar/internal/testutil"
)

func setupRepo(t *testing.T) *postgres.CharacterRepository {
	t.Helper()
	return testutil.NewPool(t).Characters()
}

func makeTestDocument(name string) *creation.Document {
	return &creation.Document{
		Version:    creation.EngineVersion,
		ID:         uuid.NewString(),
		TreePath:   []int{1, 0, 2, 0, 1, 3},
		Name:       name,
		Motivation: "Avenge my caravan.",
		Skills:     map[string]choice.Category{"Notice": {Bought: 2, Base: 1}},
		Picks:      []choice.Pick{{Phase: choice.PhaseWeapon, Level: "Any", Item: "Crossbow"}},
		Gear:       []string{"Medical Kit (1)"},
		Weapons: []weapon.Weapon{{
			Name: "Crossbow", Type: "Crossbow", Category: weapon.CategoryRanged, Range: 20, AP: 2,
			Special: []string{"Reload takes an action."},
		}},
	}
}

func TestCharacterRepository_SaveLoad(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	doc := makeTestDocument("Zara")
	require.NoError(t, repo.Save(ctx, doc))

	got, err := repo.Load(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestCharacterRepository_SaveReplaces(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	doc := makeTestDocument("Zara")
	require.NoError(t, repo.Save(ctx, doc))
	doc.Name = "Zara Ashborn"
	doc.Gear = append(doc.Gear, "Rope (2)")
	require.NoError(t, repo.Save(ctx, doc))

	got, err := repo.Load(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Zara Ashborn", list[0].Name)
}

func TestCharacterRepository_LoadNotFound(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.Load(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

func TestCharacterRepository_RejectsMalformedIDs(t *testing.T) {
	// The guard runs before any query, so no database is needed.
	repo := postgres.NewCharacterRepository(nil)
	ctx := context.Background()

	_, err := repo.Load(ctx, "typo")
	assert.ErrorIs(t, err, postgres.ErrInvalidID)
	assert.ErrorContains(t, err, `"typo"`)
	assert.ErrorIs(t, repo.Delete(ctx, "typo"), postgres.ErrInvalidID)

	doc := makeTestDocument("Nameless")
	doc.ID = "not-a-uuid"
	assert.ErrorIs(t, repo.Save(ctx, doc), postgres.ErrInvalidID)
}

func TestCharacterRepository_ListOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first := makeTestDocument("First")
	require.NoError(t, repo.Save(ctx, first))
	time.Sleep(10 * time.Millisecond)
	second := makeTestDocument("Second")
	require.NoError(t, repo.Save(ctx, second))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, creation.EngineVersion, list[0].Version)
	assert.False(t, list[0].UpdatedAt.IsZero())
}

func TestCharacterRepository_Delete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	doc := makeTestDocument("Gone")
	require.NoError(t, repo.Save(ctx, doc))
	require.NoError(t, repo.Delete(ctx, doc.ID))
	assert.ErrorIs(t, repo.Delete(ctx, doc.ID), postgres.ErrCharacterNotFound)
	_, err := repo.Load(ctx, doc.ID)
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

// Property: any saved document loads back unchanged.
func TestPropertyCharacterRepository_RoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		doc := makeTestDocument(rapid.StringMatching(`[A-Za-z][A-Za-z' ]{0,31}`).Draw(rt, "name"))
		doc.TreePath = rapid.SliceOfN(rapid.IntRange(0, 9), 1, 20).Draw(rt, "path")
		if err := repo.Save(ctx, doc); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := repo.Load(ctx, doc.ID)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		assert.Equal(rt, doc, got)
	})
}
