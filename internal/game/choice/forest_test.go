package choice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/dice"
)

func forest(t *testing.T) []*choice.Node {
	t.Helper()
	trees, err := choice.BuildForest(catalog(t), nil, nil)
	require.NoError(t, err)
	return trees
}

func walk(n *choice.Node, fn func(parent, child *choice.Node)) {
	for _, c := range n.Children {
		fn(n, c)
		walk(c, fn)
	}
}

func TestBuildForest_RootOrder(t *testing.T) {
	trees := forest(t)
	names := make([]string, len(trees))
	for i, tr := range trees {
		names[i] = tr.Name
		assert.Equal(t, i+1, tr.RootID)
		assert.True(t, tr.IsRoot())
	}
	assert.Equal(t, []string{
		choice.RootName, choice.RootSpecies, choice.RootTalent, choice.RootCombatDice,
		choice.RootTraining, choice.RootFocus, choice.RootSkills, choice.RootCombatSpecialty,
		choice.RootBackground, choice.RootTrivia, choice.RootMotivation, choice.RootAssignAbstractGear,
	}, names)
}

func TestBuildForest_CascadedIdentity(t *testing.T) {
	for _, tr := range forest(t) {
		walk(tr, func(parent, child *choice.Node) {
			assert.Equal(t, tr.RootID, child.RootID, "%s/%s", parent.Name, child.Name)
			assert.Equal(t, parent.ChildrenCategory, child.Category, "%s/%s", parent.Name, child.Name)
		})
	}
}

func TestBuildForest_Categories(t *testing.T) {
	trees := forest(t)
	human := findChild(t, trees[1], "Human")
	assert.Equal(t, "Species", human.Category)
	assert.Equal(t, "Species Trait", human.Children[0].Category)

	martial := findChild(t, trees[4], "Martial")
	assert.Equal(t, "Training", martial.Category)
	assert.Equal(t, "Gear Option", martial.Children[0].Category)

	ranged := findChild(t, trees[7], "Ranged")
	longArm := findChild(t, ranged, "Long Arm and choice of modifications")
	assert.Equal(t, "Modification Option", longArm.Children[0].Category)
}

func TestBuildForest_StatefulRoots(t *testing.T) {
	trees := forest(t)
	assert.IsType(t, &choice.TextInput{}, trees[0].Kind)
	assert.IsType(t, &choice.PointBuy{}, trees[6].Kind)
	assert.IsType(t, &choice.PointBuy{}, trees[9].Kind)
	assert.IsType(t, &choice.TextInput{}, trees[10].Kind)
	assert.IsType(t, &choice.AssignAbstractGear{}, trees[11].Kind)

	skills := trees[6].Kind.(*choice.PointBuy)
	assert.Equal(t, choice.TargetSkills, skills.Target)
	assert.Equal(t, 5, skills.StartingPoints)
	assert.Equal(t, map[int]int{2: 1, 3: 3}, skills.PointsPerLevel)
}

func TestBuildForest_WanderingGodExcludesTalent(t *testing.T) {
	trees := forest(t)
	s := newSheet(t, nil)
	human := findChild(t, trees[1], "Human").Clone()
	require.NoError(t, s.Commit(human))
	require.NoError(t, s.Commit(findChild(t, human, "People of the Wandering God (Brawn)")))
	assert.Equal(t, dice.D8, s.Qualities["Brawn"])
	assert.Equal(t, dice.D10, s.Qualities["Grace"])

	talent := trees[2]
	assert.False(t, findChild(t, talent, "Brawn").CheckPrerequisites(s))
	assert.True(t, findChild(t, talent, "Grace").CheckPrerequisites(s))

	require.NoError(t, s.Commit(findChild(t, talent, "Grace")))
	assert.Equal(t, dice.D8, s.Qualities["Grace"])
}

func TestBuildForest_ScriptedPrerequisite(t *testing.T) {
	trees := forest(t)
	zealous := findChild(t, findChild(t, trees[1], "Yasre"), "Zealous")
	s := newSheet(t, nil)
	assert.True(t, zealous.CheckPrerequisites(s))
	require.NoError(t, s.SetSkillLevel("Resist Mental", 0))
	assert.False(t, zealous.CheckPrerequisites(s))
}

func TestBuildForest_CombatDice(t *testing.T) {
	trees := forest(t)
	s := newSheet(t, nil)
	require.NoError(t, s.Commit(findChild(t, trees[3], character.ShootingDie)))
	assert.Equal(t, dice.D10, s.Combat.ShootingDie)
	assert.Equal(t, dice.D12, s.Combat.FightingDie)

	var b strings.Builder
	require.NoError(t, trees[3].Display(&b))
	assert.Equal(t, "Shooting and Fighting Dice | <tree 4>\n|-Shooting Die (Die to Boost)\n|-Fighting Die (Die to Boost)\n", b.String())
}

func TestBuildForest_GrantedWeaponsStartRaw(t *testing.T) {
	trees := forest(t)
	s := newSheet(t, nil)
	tech := findChild(t, trees[4], "Technology")
	require.NoError(t, s.Commit(tech))
	pick := findChild(t, tech, "Choose a ranged weapon with 1 level B modification")
	require.NoError(t, s.Commit(pick))
	require.NoError(t, s.Commit(findChild(t, pick, "Pistol")))

	require.Len(t, s.RawWeapons, 1)
	assert.Equal(t, "Pistol", s.RawWeapons[0].Name)
	assert.Empty(t, s.Weapons)
	assert.Equal(t, 1, s.Abstract.Modifications["B"])
	assert.Equal(t, 2, s.SkillLevel("Interface"))
}

func TestBuildForest_ContentErrors(t *testing.T) {
	cat := catalog(t)
	cat.Species[4].Traits[1].Requires = "skill_level("
	_, err := choice.BuildForest(cat, nil, nil)
	assert.ErrorContains(t, err, "Zealous")

	cat = catalog(t)
	cat.CombatSpecialties[1].Options[1].Name = "Blaster"
	_, err = choice.BuildForest(cat, nil, nil)
	assert.ErrorContains(t, err, `unknown weapon "Blaster"`)

	assert.Panics(t, func() { _, _ = choice.BuildForest(nil, nil, nil) })
}
