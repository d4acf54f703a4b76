package choice

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/scripting"
)

// Prerequisite is a pure predicate over a record.
type Prerequisite interface {
	Holds(s *character.Sheet) bool
}

// NotChosen holds while no choice named Name is in the record's history.
type NotChosen struct {
	Name string
}

// Holds implements Prerequisite.
func (p NotChosen) Holds(s *character.Sheet) bool {
	return !s.Chosen(p.Name)
}

// Script holds when the Lua expression Expr evaluates true. Evaluation
// errors count as not holding.
type Script struct {
	Expr      string
	Evaluator *scripting.Evaluator
}

// Holds implements Prerequisite.
func (p Script) Holds(s *character.Sheet) bool {
	ok, err := p.Evaluator.Eval(p.Expr, Facts(s))
	if err != nil {
		s.Logger().Warn("prerequisite script error", zap.String("expr", p.Expr), zap.Error(err))
		return false
	}
	return ok
}

// Facts copies the parts of s exposed to prerequisite scripts.
func Facts(s *character.Sheet) scripting.Facts {
	f := scripting.Facts{
		Qualities:   make(map[string]int, len(s.Qualities)),
		Skills:      make(map[string]int, len(s.Skills)),
		Trivia:      append([]string(nil), s.Trivia...),
		ChoiceNames: make(map[string]string, len(s.ChoiceNames)),
		Chosen:      make([]string, 0, len(s.Data)),
		Money:       s.Money,
	}
	for q, r := range s.Qualities {
		f.Qualities[q] = r.Int()
	}
	for name, sk := range s.Skills {
		f.Skills[name] = sk.Level
	}
	for k, v := range s.ChoiceNames {
		f.ChoiceNames[k] = v
	}
	for _, a := range s.Data {
		f.Chosen = append(f.Chosen, a.ChoiceName())
	}
	return f
}
