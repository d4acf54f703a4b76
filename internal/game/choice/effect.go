package choice

import (
	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
)

// Effect is behaviour layered on top of a node's kind. Effects are immutable
// values so a node's effect list can be copied freely.
type Effect interface {
	Apply(s *character.Sheet) error
}

// ImproveQuality moves a quality one step toward d4.
type ImproveQuality struct {
	Quality string
}

// Apply implements Effect.
func (e ImproveQuality) Apply(s *character.Sheet) error {
	s.ImproveQuality(e.Quality)
	return nil
}

// ImproveCombatDie moves the shooting or fighting die one step toward d4.
type ImproveCombatDie struct {
	Die string
}

// Apply implements Effect.
func (e ImproveCombatDie) Apply(s *character.Sheet) error {
	s.ImproveCombatDie(e.Die)
	return nil
}

// Grant adds a gear string or directive.
type Grant struct {
	Gear string
}

// Apply implements Effect.
func (e Grant) Apply(s *character.Sheet) error {
	return s.GrantGear(e.Gear)
}

// AddWeapon grants a raw copy of a weapon profile.
type AddWeapon struct {
	Def *weapon.Def
}

// Apply implements Effect.
func (e AddWeapon) Apply(s *character.Sheet) error {
	s.AddRawWeapon(weapon.New(e.Def))
	return nil
}
