package scripting

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Facts is the read-only view of a character record exposed to predicates.
// Every value is a copy; nothing a script does can reach the record.
type Facts struct {
	// Qualities maps a quality name to its die size.
	Qualities   map[string]int
	Skills      map[string]int
	Trivia      []string
	ChoiceNames map[string]string
	// Chosen lists the names of every choice in the record's history.
	Chosen []string
	Money  int
}

// Evaluator runs boolean Lua expressions against Facts.
//
// Predicates see these globals:
//
//	quality(name)     die size of a quality, 0 if unknown
//	skill_level(name) level of a skill, 0 if unknown
//	knows(topic)      true if the trivia topic is known
//	chosen(name)      true if a choice with that name is in the history
//	choice(category)  display label recorded for a category, "" if none
//	money             current money
type Evaluator struct {
	instLimit int
	logger    *zap.Logger
}

// NewEvaluator returns an Evaluator.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit. A nil logger
// is replaced by a no-op logger.
func NewEvaluator(instLimit int, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{instLimit: instLimit, logger: logger}
}

// Compile checks that expr is a syntactically valid Lua expression.
func (e *Evaluator) Compile(expr string) error {
	sb := NewSandbox(e.instLimit)
	defer sb.Close()
	if _, err := sb.L.LoadString(wrap(expr)); err != nil {
		return fmt.Errorf("scripting: compiling %q: %w", expr, err)
	}
	return nil
}

// Eval evaluates expr against f in a fresh sandbox.
//
// Postcondition: returns the Lua truthiness of the expression's value, or a
// non-nil error on a compile error, runtime error or exhausted instruction limit.
func (e *Evaluator) Eval(expr string, f Facts) (bool, error) {
	sb := NewSandbox(e.instLimit)
	defer sb.Close()
	L := sb.L
	register(L, f)
	sb.Seal()

	fn, err := L.LoadString(wrap(expr))
	if err != nil {
		return false, fmt.Errorf("scripting: compiling %q: %w", expr, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		e.logger.Warn("prerequisite script failed", zap.String("expr", expr), zap.Error(err))
		return false, fmt.Errorf("scripting: evaluating %q: %w", expr, err)
	}
	v := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(v), nil
}

func wrap(expr string) string {
	return "return (" + expr + ")"
}

func register(L *lua.LState, f Facts) {
	qualities := copyInts(f.Qualities)
	skills := copyInts(f.Skills)
	trivia := append([]string(nil), f.Trivia...)
	sort.Strings(trivia)
	chosen := make(map[string]bool, len(f.Chosen))
	for _, c := range f.Chosen {
		chosen[c] = true
	}
	names := make(map[string]string, len(f.ChoiceNames))
	for k, v := range f.ChoiceNames {
		names[k] = v
	}

	L.SetGlobal("quality", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(qualities[L.CheckString(1)]))
		return 1
	}))
	L.SetGlobal("skill_level", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(skills[L.CheckString(1)]))
		return 1
	}))
	L.SetGlobal("knows", L.NewFunction(func(L *lua.LState) int {
		topic := L.CheckString(1)
		i := sort.SearchStrings(trivia, topic)
		L.Push(lua.LBool(i < len(trivia) && trivia[i] == topic))
		return 1
	}))
	L.SetGlobal("chosen", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(chosen[L.CheckString(1)]))
		return 1
	}))
	L.SetGlobal("choice", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(names[L.CheckString(1)]))
		return 1
	}))
	L.SetGlobal("money", lua.LNumber(f.Money))
}

func copyInts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
