// Package character defines the character record: the mutable aggregate that
// accumulates the effects of an ordered choice history and can be rebuilt
// from that history at any time.
package character

import (
	"errors"

	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/game/dice"
)

// Categories shown in the choice-name box of the sheet.
const (
	ChoiceName            = "Name"
	ChoiceSpecies         = "Species"
	ChoiceBackground      = "Background"
	ChoiceMotivation      = "Motivation"
	ChoiceTraining        = "Training"
	ChoiceFocus           = "Focus"
	ChoiceCombatSpecialty = "Combat Specialty"
)

// ChoiceOrder lists the choice-name categories in display order.
var ChoiceOrder = []string{
	ChoiceName, ChoiceSpecies, ChoiceBackground, ChoiceMotivation,
	ChoiceTraining, ChoiceFocus, ChoiceCombatSpecialty,
}

// Combat die names.
const (
	ShootingDie = "Shooting Die"
	FightingDie = "Fighting Die"
)

// ErrFlush is returned when replaying the history fails.
var ErrFlush = errors.New("character: flush failed")

// Applier is one entry of a record's history. Choice nodes implement it.
type Applier interface {
	// ChoiceName returns the name of the applied choice.
	ChoiceName() string
	// ChoiceCategory returns the category of the applied choice; empty for roots.
	ChoiceCategory() string
	// Implement applies the choice's effect to s. It is not idempotent.
	Implement(s *Sheet) error
}

// Skill is a skill level and the quality it is linked to.
type Skill struct {
	Level   int    `json:"level" yaml:"level"`
	Quality string `json:"quality" yaml:"quality"`
}

// Combat holds the combat statistics of a record.
type Combat struct {
	Speed       string      `json:"speed" yaml:"speed"`
	AV          int         `json:"av" yaml:"av"`
	Toughness   int         `json:"toughness" yaml:"toughness"`
	ShootingDie dice.Rating `json:"shooting_die" yaml:"shooting_die"`
	FightingDie dice.Rating `json:"fighting_die" yaml:"fighting_die"`
}

// Counters maps a level (A, B, C) or weapon class (Melee, Ranged, Any) to an
// outstanding entitlement count.
type Counters map[string]int

// Total returns the sum of every outstanding count.
func (c Counters) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

func (c Counters) clone() Counters {
	out := make(Counters, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Abstract holds the six abstract-gear entitlement counters.
type Abstract struct {
	Potions       Counters `json:"potions" yaml:"potions"`
	Weapons       Counters `json:"weapons" yaml:"weapons"`
	Modifications Counters `json:"modifications" yaml:"modifications"`
	Ammunition    Counters `json:"ammunition" yaml:"ammunition"`
	Grenades      Counters `json:"grenades" yaml:"grenades"`
	Kits          Counters `json:"kits" yaml:"kits"`
}

func newAbstract() Abstract {
	levels := func() Counters { return Counters{"A": 0, "B": 0, "C": 0} }
	return Abstract{
		Potions:       levels(),
		Weapons:       Counters{content.WeaponClassMelee: 0, content.WeaponClassRanged: 0, content.WeaponClassAny: 0},
		Modifications: levels(),
		Ammunition:    levels(),
		Grenades:      levels(),
		Kits:          levels(),
	}
}

// Counter returns the counter map for kind, or nil when kind has no counter.
// The returned map aliases the record's state.
func (a *Abstract) Counter(kind content.GearKind) Counters {
	switch kind {
	case content.GearPotion:
		return a.Potions
	case content.GearWeaponChoice:
		return a.Weapons
	case content.GearModification:
		return a.Modifications
	case content.GearAmmunition:
		return a.Ammunition
	case content.GearGrenade:
		return a.Grenades
	case content.GearKit:
		return a.Kits
	}
	return nil
}

func (a Abstract) clone() Abstract {
	return Abstract{
		Potions:       a.Potions.clone(),
		Weapons:       a.Weapons.clone(),
		Modifications: a.Modifications.clone(),
		Ammunition:    a.Ammunition.clone(),
		Grenades:      a.Grenades.clone(),
		Kits:          a.Kits.clone(),
	}
}
