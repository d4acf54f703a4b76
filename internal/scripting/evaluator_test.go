package scripting_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/eoschar/internal/scripting"
)

func facts() scripting.Facts {
	return scripting.Facts{
		Qualities:   map[string]int{"Brawn": 8, "Wits": 10},
		Skills:      map[string]int{"Lie": 2, "Athletics": 1},
		Trivia:      []string{"Sailing", "Alchemy"},
		ChoiceNames: map[string]string{"Species": "Human"},
		Chosen:      []string{"Human", "People of the Wandering God (Brawn)"},
		Money:       40,
	}
}

func TestEval_Globals(t *testing.T) {
	ev := scripting.NewEvaluator(0, nil)
	cases := map[string]bool{
		"quality('Brawn') == 8":                          true,
		"quality('Luck') == 0":                           true,
		"skill_level('Lie') >= 2":                        true,
		"skill_level('Stealth') > 0":                     false,
		"knows('Alchemy')":                               true,
		"knows('Poisons')":                               false,
		"chosen('People of the Wandering God (Brawn)')":  true,
		"not chosen('People of the Wandering God (Wits)')": true,
		"choice('Species') == 'Human'":                   true,
		"money >= 50":                                    false,
		"nil":                                            false,
	}
	for expr, want := range cases {
		got, err := ev.Eval(expr, facts())
		require.NoError(t, err, expr)
		assert.Equal(t, want, got, expr)
	}
}

func TestEval_CompileError(t *testing.T) {
	ev := scripting.NewEvaluator(0, nil)
	_, err := ev.Eval("quality(", facts())
	assert.Error(t, err)
	assert.Error(t, ev.Compile("1 +"))
	assert.NoError(t, ev.Compile("knows('Sailing') and money > 3"))
}

func TestEval_RuntimeErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ev := scripting.NewEvaluator(0, zap.New(core))
	_, err := ev.Eval("error('nope')", facts())
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("prerequisite script failed").Len())
}

func TestEval_InstructionLimit(t *testing.T) {
	ev := scripting.NewEvaluator(50, nil)
	_, err := ev.Eval("(function() while true do end end)()", facts())
	assert.Error(t, err)
}

func TestEval_SandboxHidesDangerousGlobals(t *testing.T) {
	ev := scripting.NewEvaluator(0, nil)
	got, err := ev.Eval("os == nil and io == nil and load == nil and require == nil", facts())
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEval_CannotMutateFacts(t *testing.T) {
	ev := scripting.NewEvaluator(0, nil)
	f := facts()
	for _, expr := range []string{
		"(function() money = 0; return true end)()",
		"(function() quality = nil; return true end)()",
		"(function() fresh = 1; return true end)()",
	} {
		_, err := ev.Eval(expr, f)
		assert.ErrorContains(t, err, "may not assign global", expr)
	}
	assert.Equal(t, 40, f.Money)
	assert.Equal(t, 8, f.Qualities["Brawn"])

	got, err := ev.Eval("money == 40 and quality('Brawn') == 8", f)
	require.NoError(t, err)
	assert.True(t, got, "each evaluation starts from a fresh sandbox")
}

func TestProperty_SkillComparisonMatchesGo(t *testing.T) {
	ev := scripting.NewEvaluator(0, nil)
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(0, 5).Draw(rt, "level")
		threshold := rapid.IntRange(0, 5).Draw(rt, "threshold")
		f := scripting.Facts{Skills: map[string]int{"Notice": level}}
		got, err := ev.Eval("skill_level('Notice') >= "+strconv.Itoa(threshold), f)
		if err != nil {
			rt.Fatalf("eval: %v", err)
		}
		if got != (level >= threshold) {
			rt.Fatalf("level %d >= %d evaluated to %v", level, threshold, got)
		}
	})
}
