package character

import (
	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/game/dice"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
)

// QualityEntry is a quality and its rating.
type QualityEntry struct {
	Name   string
	Rating dice.Rating
}

// SkillEntry is a skill, its level and linked quality.
type SkillEntry struct {
	Name    string
	Level   int
	Quality string
}

// Snapshot is a plain value copy of every public stat of a record, ordered as
// the content declares it. Two records built from the same history have equal
// snapshots.
type Snapshot struct {
	ID          string
	ChoiceNames map[string]string
	Qualities   []QualityEntry
	Skills      []SkillEntry
	Combat      Combat
	Trivia      []string
	Traits      []content.Trait
	Weapons     []weapon.Weapon
	Gear        []string
	Money       int
	Abstract    Abstract
	TreePath    []int
	// History lists "category: name" for every applied choice.
	History []string
	Filled  bool
}

// Snapshot returns a deep copy of the record's public state.
func (s *Sheet) Snapshot() Snapshot {
	snap := Snapshot{
		ID:          s.ID.String(),
		ChoiceNames: make(map[string]string, len(s.ChoiceNames)),
		Qualities:   make([]QualityEntry, 0, len(s.catalog.Qualities)),
		Skills:      make([]SkillEntry, 0, len(s.catalog.Skills)),
		Combat:      s.Combat,
		Trivia:      append(make([]string, 0, len(s.Trivia)), s.Trivia...),
		Traits:      append(make([]content.Trait, 0, len(s.Traits)), s.Traits...),
		Weapons:     make([]weapon.Weapon, 0, len(s.Weapons)),
		Gear:        append(make([]string, 0, len(s.Gear)), s.Gear...),
		Money:       s.Money,
		Abstract:    s.Abstract.clone(),
		TreePath:    append(make([]int, 0, len(s.TreePath)), s.TreePath...),
		History:     make([]string, 0, len(s.Data)),
		Filled:      s.Filled,
	}
	for k, v := range s.ChoiceNames {
		snap.ChoiceNames[k] = v
	}
	for _, q := range s.catalog.Qualities {
		snap.Qualities = append(snap.Qualities, QualityEntry{Name: q, Rating: s.Qualities[q]})
	}
	for _, def := range s.catalog.Skills {
		sk := s.Skills[def.Name]
		snap.Skills = append(snap.Skills, SkillEntry{Name: def.Name, Level: sk.Level, Quality: sk.Quality})
	}
	for _, w := range s.Weapons {
		snap.Weapons = append(snap.Weapons, *w.Clone())
	}
	for _, a := range s.Data {
		label := a.ChoiceName()
		if c := a.ChoiceCategory(); c != "" {
			label = c + ": " + label
		}
		snap.History = append(snap.History, label)
	}
	return snap
}
