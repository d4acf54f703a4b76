package creation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	embedded "github.com/cory-johannsen/eoschar/content"
	"github.com/cory-johannsen/eoschar/internal/creation"
	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/game/dice"
)

type fixture struct {
	cat    *content.Catalog
	walker *creation.Walker
	logs   *observer.ObservedLogs
}

func newFixture(t testing.TB) fixture {
	t.Helper()
	cat, err := content.Load(content.FSProvider{FS: embedded.FS})
	require.NoError(t, err)
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	forest, err := choice.BuildForest(cat, nil, logger)
	require.NoError(t, err)
	return fixture{cat: cat, walker: creation.NewWalker(cat, forest, logger), logs: logs}
}

func (f fixture) random(seed uint64) *creation.RandomSelector {
	return creation.NewRandomSelector(dice.NewSeededSource(seed), f.cat)
}

// steered answers Choose through fn and everything else at random.
type steered struct {
	*creation.RandomSelector
	fn func(parent *choice.Node, options []creation.Option) (int, error)
}

func (s steered) Choose(ctx context.Context, parent *choice.Node, options []creation.Option) (int, error) {
	if i, err := s.fn(parent, options); err != nil || i != -2 {
		return i, err
	}
	return s.RandomSelector.Choose(ctx, parent, options)
}

func indexOf(options []creation.Option, name string) int {
	for i, o := range options {
		if o.Name == name {
			return i
		}
	}
	return -1
}

func TestRun_RandomWalkFillsRecord(t *testing.T) {
	f := newFixture(t)
	s := f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), s, f.random(7)))

	assert.True(t, s.Filled)
	assert.Contains(t, creation.RandomNames, s.ChoiceNames[character.ChoiceName])
	assert.Contains(t, creation.RandomMotivations, s.ChoiceNames[character.ChoiceMotivation])
	for _, c := range []string{character.ChoiceSpecies, character.ChoiceTraining, character.ChoiceFocus, character.ChoiceCombatSpecialty, character.ChoiceBackground} {
		assert.NotEmpty(t, s.ChoiceNames[c], c)
	}
	assert.Empty(t, s.RawWeapons)
	assert.NotEmpty(t, s.Weapons)
	assert.NotEmpty(t, s.TreePath)

	forest := f.walker.Forest()
	assert.Equal(t, 5, forest[6].Kind.(*choice.PointBuy).CurrentPoints, "walk must not touch the forest")
	assert.Empty(t, forest[0].Kind.(*choice.TextInput).Value)
	assert.Empty(t, forest[11].Kind.(*choice.AssignAbstractGear).Picks)
}

func TestRun_SameSeedSameCharacter(t *testing.T) {
	f := newFixture(t)
	a, b := f.walker.NewSheet(), f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), a, f.random(42)))
	require.NoError(t, f.walker.Run(context.Background(), b, f.random(42)))
	sa, sb := a.Snapshot(), b.Snapshot()
	sa.ID = sb.ID
	assert.Equal(t, sa, sb)
}

func TestRun_RepromptsUnselectable(t *testing.T) {
	f := newFixture(t)
	talentAsks := 0
	sel := steered{RandomSelector: f.random(1), fn: func(parent *choice.Node, options []creation.Option) (int, error) {
		switch parent.Name {
		case choice.RootSpecies:
			return indexOf(options, "Human"), nil
		case "Human":
			return indexOf(options, "People of the Wandering God (Brawn)"), nil
		case choice.RootTalent:
			talentAsks++
			switch talentAsks {
			case 1:
				return indexOf(options, "Brawn"), nil
			case 2:
				return 99, nil
			}
			return indexOf(options, "Grace"), nil
		}
		return -2, nil
	}}
	s := f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), s, sel))

	assert.Equal(t, 3, talentAsks)
	assert.Equal(t, 2, f.logs.FilterMessage("unselectable choice; asking again").Len())
	assert.Equal(t, "Human", s.ChoiceNames[character.ChoiceSpecies])
	assert.LessOrEqual(t, s.Qualities["Brawn"].Int(), dice.D8.Int())
	assert.LessOrEqual(t, s.Qualities["Grace"].Int(), dice.D8.Int())
}

func TestRun_Stuck(t *testing.T) {
	f := newFixture(t)
	gate := &choice.Node{Name: "Gate", ChildrenCategory: "Door"}
	locked := choice.NewNode("Locked", nil)
	locked.AddPrerequisite(choice.NotChosen{Name: "Gate"})
	gate.AddChild(locked)

	w := creation.NewWalker(f.cat, []*choice.Node{gate}, nil)
	s := w.NewSheet()
	err := w.Run(context.Background(), s, f.random(1))
	require.ErrorIs(t, err, creation.ErrStuck)
	assert.False(t, s.Filled)
	assert.True(t, s.Chosen("Gate"))
}

func TestRun_AbortKeepsHistory(t *testing.T) {
	f := newFixture(t)
	sel := steered{RandomSelector: f.random(3), fn: func(parent *choice.Node, _ []creation.Option) (int, error) {
		if parent.Name == choice.RootTraining {
			return 0, creation.ErrAbort
		}
		return -2, nil
	}}
	s := f.walker.NewSheet()
	err := f.walker.Run(context.Background(), s, sel)
	require.ErrorIs(t, err, creation.ErrAbort)
	assert.False(t, s.Filled)
	assert.True(t, s.Chosen(choice.RootTraining))
	assert.NotEmpty(t, s.ChoiceNames[character.ChoiceSpecies])
	assert.Empty(t, s.ChoiceNames[character.ChoiceTraining])
}

// pickLimited answers at random but aborts on the Nth gear pick.
type pickLimited struct {
	*creation.RandomSelector
	abortAt int
	picks   int
}

func (p *pickLimited) Pick(ctx context.Context, req choice.PickRequest) (int, error) {
	p.picks++
	if p.picks == p.abortAt {
		return 0, creation.ErrAbort
	}
	return p.RandomSelector.Pick(ctx, req)
}

func TestRun_AbortDuringGearLeavesRecordMatchingHistory(t *testing.T) {
	f := newFixture(t)
	full := f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), full, f.random(9)))
	doc, err := creation.Save(full)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(doc.Picks), 2)

	sel := &pickLimited{RandomSelector: f.random(9), abortAt: 2}
	s := f.walker.NewSheet()
	err = f.walker.Run(context.Background(), s, sel)
	require.ErrorIs(t, err, creation.ErrAbort)
	assert.False(t, s.Filled)
	assert.False(t, s.Chosen(choice.RootAssignAbstractGear), "the gear node is not recorded")

	got := s.Snapshot()
	rawWeapons := len(s.RawWeapons)
	require.NoError(t, s.Flush())
	assert.Equal(t, got, s.Snapshot(), "stats already equal a replay of the history")
	assert.Len(t, s.RawWeapons, rawWeapons)
}

func TestRun_ContextCancelledIsAbort(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	sel := steered{RandomSelector: f.random(3), fn: func(parent *choice.Node, _ []creation.Option) (int, error) {
		if parent.Name == choice.RootFocus {
			cancel()
		}
		return -2, nil
	}}
	s := f.walker.NewSheet()
	err := f.walker.Run(ctx, s, sel)
	require.ErrorIs(t, err, creation.ErrAbort)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, s.ChoiceNames[character.ChoiceFocus])
	assert.False(t, s.Chosen(choice.RootSkills))
}

func TestRun_PanicsOnUsedRecord(t *testing.T) {
	f := newFixture(t)
	s := f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), s, f.random(5)))
	assert.Panics(t, func() { _ = f.walker.Run(context.Background(), s, f.random(5)) })
}

func TestSave_RequiresFilled(t *testing.T) {
	f := newFixture(t)
	_, err := creation.Save(f.walker.NewSheet())
	assert.ErrorIs(t, err, creation.ErrNotFilled)
}

func TestSave_CapturesDecisions(t *testing.T) {
	f := newFixture(t)
	s := f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), s, f.random(11)))
	doc, err := creation.Save(s)
	require.NoError(t, err)

	assert.Equal(t, creation.EngineVersion, doc.Version)
	assert.Equal(t, s.ID.String(), doc.ID)
	assert.Equal(t, s.TreePath, doc.TreePath)
	assert.Equal(t, s.ChoiceNames[character.ChoiceName], doc.Name)
	assert.Equal(t, s.ChoiceNames[character.ChoiceMotivation], doc.Motivation)
	assert.Equal(t, s.Gear, doc.Gear)
	assert.Len(t, doc.Weapons, len(s.Weapons))
	for name, c := range doc.Skills {
		assert.Positive(t, c.Bought, name)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	f := newFixture(t)
	s := f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), s, f.random(19)))
	doc, err := creation.Save(s)
	require.NoError(t, err)

	restored, err := f.walker.Restore(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Zero(t, f.logs.FilterMessage("restored gear differs from saved gear").Len())
}

func TestRestore_VersionSkewWarns(t *testing.T) {
	f := newFixture(t)
	s := f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), s, f.random(23)))
	doc, err := creation.Save(s)
	require.NoError(t, err)
	doc.Version = "0.9"

	_, err = f.walker.Restore(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("document version differs from engine version").Len())
}

func TestRestore_IncompatiblePath(t *testing.T) {
	f := newFixture(t)
	s := f.walker.NewSheet()
	require.NoError(t, f.walker.Run(context.Background(), s, f.random(29)))
	saved, err := creation.Save(s)
	require.NoError(t, err)

	for name, tamper := range map[string]func(d *creation.Document){
		"index out of range": func(d *creation.Document) { d.TreePath[0] = 99 },
		"path exhausted":     func(d *creation.Document) { d.TreePath = d.TreePath[:len(d.TreePath)-1] },
		"path left over":     func(d *creation.Document) { d.TreePath = append(d.TreePath, 0) },
		"gear pick left over": func(d *creation.Document) {
			d.Picks = append(d.Picks, choice.Pick{Phase: choice.PhaseKit, Level: "A", Item: "Medical Kit"})
		},
		"skill over budget": func(d *creation.Document) {
			d.Skills = map[string]choice.Category{"Lie": {Bought: 2, Base: 1}, "Notice": {Bought: 2, Base: 1}}
		},
		"skill base moved": func(d *creation.Document) {
			d.Skills = map[string]choice.Category{"Lie": {Bought: 1, Base: 7}}
		},
	} {
		t.Run(name, func(t *testing.T) {
			doc := *saved
			doc.TreePath = append([]int(nil), saved.TreePath...)
			doc.Picks = append([]choice.Pick(nil), saved.Picks...)
			tamper(&doc)
			_, err := f.walker.Restore(context.Background(), &doc)
			assert.ErrorIs(t, err, creation.ErrIncompatiblePath)
		})
	}
}

func TestRestore_BadID(t *testing.T) {
	f := newFixture(t)
	_, err := f.walker.Restore(context.Background(), &creation.Document{Version: creation.EngineVersion, ID: "not-a-uuid"})
	assert.ErrorContains(t, err, "parsing id")
}

func TestProperty_SaveRestore(t *testing.T) {
	f := newFixture(t)
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		s := f.walker.NewSheet()
		if err := f.walker.Run(context.Background(), s, f.random(seed)); err != nil {
			rt.Fatalf("random walk: %v", err)
		}
		doc, err := creation.Save(s)
		if err != nil {
			rt.Fatalf("save: %v", err)
		}
		raw, err := yaml.Marshal(doc)
		if err != nil {
			rt.Fatalf("marshal: %v", err)
		}
		var loaded creation.Document
		if err := yaml.Unmarshal(raw, &loaded); err != nil {
			rt.Fatalf("unmarshal: %v", err)
		}
		restored, err := f.walker.Restore(context.Background(), &loaded)
		if err != nil {
			rt.Fatalf("restore: %v\n%s", err, raw)
		}
		assert.Equal(rt, s.Snapshot(), restored.Snapshot())
	})
}
