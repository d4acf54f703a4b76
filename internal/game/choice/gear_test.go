package choice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/content"
)

// grant commits a history entry granting every gear string.
func grant(t testingT, s *character.Sheet, gear ...string) {
	t.Helper()
	n := choice.NewNode("Grant", nil)
	for _, g := range gear {
		n.AddEffect(choice.Grant{Gear: g})
	}
	require.NoError(t, s.Commit(n))
}

// resolve runs the resolver live against s and records it, the way the walker does.
func resolve(t testingT, s *character.Sheet, picker choice.Picker) *choice.AssignAbstractGear {
	t.Helper()
	g := choice.NewAssignAbstractGear(s.Catalog(), s.Logger())
	require.NoError(t, g.Resolve(context.Background(), s, picker))
	s.Record(choice.NewNode(choice.RootAssignAbstractGear, g))
	return g
}

func TestResolve_LevelBGrenade(t *testing.T) {
	logger, logs := observed()
	s := newSheet(t, logger)
	grant(t, s, "! grenade B 1")

	p := &firstPicker{}
	resolve(t, s, p)

	require.Len(t, p.requests, 1)
	assert.Equal(t, choice.PhaseGrenade, p.requests[0].Phase)
	assert.Equal(t, []string{"Fire Grenade"}, p.requests[0].Options)
	assert.Equal(t, []string{"Fire Grenade (1)"}, s.Gear)
	assert.Zero(t, s.Abstract.Grenades["B"])
	assert.Zero(t, logs.Len())
}

func TestResolve_ModificationFlow(t *testing.T) {
	logger, logs := observed()
	s := newSheet(t, logger)
	grant(t, s, "! weapon Blade", "! modification A 2", "! modification B 1")

	g := resolve(t, s, &firstPicker{})

	require.Len(t, s.Weapons, 1)
	assert.Empty(t, s.RawWeapons)
	blade := s.Weapons[0]
	assert.Equal(t, []string{"Balanced Grip", "Serrated Edge"}, blade.Modifications["A"])
	assert.Equal(t, []string{"Chem-Pipes"}, blade.Modifications["B"])
	assert.Equal(t, 2, blade.Accuracy)
	assert.Zero(t, s.Abstract.Modifications.Total())
	assert.Equal(t, []choice.Pick{
		{Phase: choice.PhaseModification, Level: "A", Item: "Balanced Grip"},
		{Phase: choice.PhaseModification, Level: "A", Item: "Serrated Edge"},
		{Phase: choice.PhaseModification, Level: "B", Item: "Chem-Pipes"},
	}, g.Picks)
	assert.Zero(t, logs.Len())
}

func TestResolve_ModificationsOnlyOfferedWhileSlotsRemain(t *testing.T) {
	s := newSheet(t, nil)
	grant(t, s, "! weapon Pistol", "! modification B 1", "! modification C 1")

	p := &firstPicker{}
	resolve(t, s, p)

	require.Len(t, p.requests, 1, "B and C share one slot")
	assert.Equal(t, "B", p.requests[0].Level)
	assert.True(t, p.requests[0].Optional)
	assert.Equal(t, 1, s.Abstract.Modifications["C"])
}

func TestResolve_SkippedModificationWarns(t *testing.T) {
	logger, logs := observed()
	s := newSheet(t, logger)
	grant(t, s, "! weapon Hammer", "! modification C 1")

	g := resolve(t, s, namedPicker{})

	assert.Equal(t, []choice.Pick{{Phase: choice.PhaseModification, Level: "C"}}, g.Picks)
	require.Len(t, s.Weapons, 1)
	assert.Empty(t, s.Weapons[0].Modifications["C"])
	assert.Equal(t, 1, s.Abstract.Modifications["C"])
	assert.Equal(t, 1, logs.FilterMessage("unresolved modification entitlements; weapon slots left unfilled").Len())
}

func TestResolve_WeaponChoice(t *testing.T) {
	s := newSheet(t, nil)
	grant(t, s, "! weapon-choice Any 1", "! modification A 1")

	resolve(t, s, namedPicker{
		choice.PhaseWeapon:       "Sniper Rifle",
		choice.PhaseModification: "Scope",
	})

	require.Len(t, s.Weapons, 1)
	assert.Equal(t, "Sniper Rifle", s.Weapons[0].Name)
	assert.Equal(t, 120, s.Weapons[0].Range)
	assert.True(t, s.Weapons[0].HasModification("Scope"))
	assert.Zero(t, s.Abstract.Weapons[content.WeaponClassAny])
}

func TestResolve_CollapsesGear(t *testing.T) {
	s := newSheet(t, nil)
	grant(t, s, "Rope", "Rope", "3 Smoke Grenade", "Smoke Grenade", "Medical Kit", "Lantern")

	p := &firstPicker{}
	resolve(t, s, p)

	assert.Empty(t, p.requests)
	assert.Equal(t, []string{"Lantern", "Medical Kit (1)", "Rope (2)", "Smoke Grenade (4)"}, s.Gear)
}

func TestResolve_PickerErrors(t *testing.T) {
	s := newSheet(t, nil)
	grant(t, s, "! potion A 1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := choice.NewAssignAbstractGear(s.Catalog(), nil).Resolve(ctx, s, &firstPicker{})
	assert.ErrorIs(t, err, context.Canceled)

	err = choice.NewAssignAbstractGear(s.Catalog(), nil).Resolve(context.Background(), s, pickerFunc(func(choice.PickRequest) (int, error) {
		return 7, nil
	}))
	assert.ErrorContains(t, err, "out of range")

	boom := errors.New("boom")
	err = choice.NewAssignAbstractGear(s.Catalog(), nil).Resolve(context.Background(), s, pickerFunc(func(choice.PickRequest) (int, error) {
		return 0, boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestResolve_ReplayMatchesLive(t *testing.T) {
	s := newSheet(t, nil)
	grant(t, s, "! weapon Spear", "! weapon-choice Ranged 1", "! modification A 2", "! modification B 1",
		"! ammunition C 3", "! potion B 2", "! kit A 1", "Rope")
	resolve(t, s, &firstPicker{})
	live := s.Snapshot()

	require.NoError(t, s.Flush())
	assert.Equal(t, live, s.Snapshot())
}

func TestImplement_BadPick(t *testing.T) {
	s := newSheet(t, nil)
	g := choice.NewAssignAbstractGear(s.Catalog(), nil)
	g.Picks = []choice.Pick{{Phase: choice.PhaseWeapon, Level: content.WeaponClassMelee, Item: "Blade"}}
	s.Record(choice.NewNode(choice.RootAssignAbstractGear, g))

	err := s.Flush()
	assert.ErrorIs(t, err, character.ErrFlush)
	assert.ErrorIs(t, err, choice.ErrBadPick)
	assert.False(t, s.Filled)
}

func TestImplement_BadModificationPick(t *testing.T) {
	for name, pick := range map[string]choice.Pick{
		"no such weapon": {Phase: choice.PhaseModification, Level: "A", Weapon: 3, Item: "Balanced Grip"},
		"wrong level":    {Phase: choice.PhaseModification, Level: "A", Item: "Arc Coil"},
		"incompatible":   {Phase: choice.PhaseModification, Level: "A", Item: "Extended Barrel"},
		"unknown phase":  {Phase: "relic", Level: "A", Item: "Crown"},
	} {
		t.Run(name, func(t *testing.T) {
			s := newSheet(t, nil)
			grant(t, s, "! weapon Blade", "! modification A 1")
			g := choice.NewAssignAbstractGear(s.Catalog(), nil)
			g.Picks = []choice.Pick{pick}
			err := choice.NewNode(choice.RootAssignAbstractGear, g).Implement(s)
			assert.ErrorIs(t, err, choice.ErrBadPick)
		})
	}
}

type pickerFunc func(choice.PickRequest) (int, error)

func (f pickerFunc) Pick(_ context.Context, req choice.PickRequest) (int, error) { return f(req) }

// rapidPicker draws every selection, skipping optional requests at random.
type rapidPicker struct{ t *rapid.T }

func (p rapidPicker) Pick(_ context.Context, req choice.PickRequest) (int, error) {
	low := 0
	if req.Optional {
		low = -1
	}
	return rapid.IntRange(low, len(req.Options)-1).Draw(p.t, string(req.Phase)), nil
}

func TestProperty_ResolveReplay(t *testing.T) {
	cat := catalog(t)
	directives := []string{
		"! weapon Blade", "! weapon Long Arm", "! weapon-choice Melee 1", "! weapon-choice Any 1",
		"! modification A 1", "! modification B 1", "! modification C 1",
		"! potion A 1", "! potion B 2", "! grenade C 1", "! ammunition A 3", "! kit B 1", "Rope",
	}
	rapid.Check(t, func(rt *rapid.T) {
		s := character.NewSheet(cat, nil)
		gear := rapid.SliceOfN(rapid.SampledFrom(directives), 0, 8).Draw(rt, "gear")
		grant(rt, s, gear...)

		g := choice.NewAssignAbstractGear(cat, nil)
		if err := g.Resolve(context.Background(), s, rapidPicker{rt}); err != nil {
			rt.Fatalf("resolve: %v", err)
		}
		s.Record(choice.NewNode(choice.RootAssignAbstractGear, g))
		if len(s.RawWeapons) != 0 {
			rt.Fatalf("raw weapons left after resolve: %d", len(s.RawWeapons))
		}
		live := s.Snapshot()

		if err := s.Flush(); err != nil {
			rt.Fatalf("flush: %v", err)
		}
		assert.Equal(rt, live, s.Snapshot())
	})
}
