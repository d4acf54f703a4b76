package choice

import (
	"fmt"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
)

// Kind is the base effect of a node. The set of kinds is closed: Species,
// Talent, Training, Focus, CombatSpecialty, Background, TextInput, Trait,
// Item, PointBuy and AssignAbstractGear.
type Kind interface {
	implement(n *Node, s *character.Sheet) error
	clone() Kind
}

// Species sets base qualities and speed.
type Species struct {
	Def *content.SpeciesDef
}

func (k *Species) implement(n *Node, s *character.Sheet) error {
	s.SetChoiceName(character.ChoiceSpecies, n.Name)
	for q, r := range k.Def.BaseQualities {
		if err := s.SetQuality(q, r); err != nil {
			return fmt.Errorf("species %s: %w", n.Name, err)
		}
	}
	if k.Def.Speed != "" {
		s.Combat.Speed = k.Def.Speed
	}
	return nil
}

func (k *Species) clone() Kind { c := *k; return &c }

// Talent improves one quality by a step.
type Talent struct {
	Quality string
}

func (k *Talent) implement(_ *Node, s *character.Sheet) error {
	s.ImproveQuality(k.Quality)
	return nil
}

func (k *Talent) clone() Kind { c := *k; return &c }

// Training raises a skill, grants gear and adds a trait.
type Training struct {
	Def *content.TrainingDef
}

func (k *Training) implement(n *Node, s *character.Sheet) error {
	s.SetChoiceName(character.ChoiceTraining, n.Name)
	if err := s.RaiseSkill(k.Def.Skill, 1); err != nil {
		return fmt.Errorf("training %s: %w", n.Name, err)
	}
	if err := grantAll(s, k.Def.Gear); err != nil {
		return fmt.Errorf("training %s: %w", n.Name, err)
	}
	s.AddTrait(k.Def.Trait)
	return nil
}

func (k *Training) clone() Kind { c := *k; return &c }

// Focus raises several skills and adds a trait.
type Focus struct {
	Def *content.FocusDef
}

func (k *Focus) implement(n *Node, s *character.Sheet) error {
	s.SetChoiceName(character.ChoiceFocus, n.Name)
	for _, sk := range k.Def.Skills {
		if err := s.RaiseSkill(sk, 1); err != nil {
			return fmt.Errorf("focus %s: %w", n.Name, err)
		}
	}
	s.AddTrait(k.Def.Trait)
	return nil
}

func (k *Focus) clone() Kind { c := *k; return &c }

// CombatSpecialty adds traits and gear.
type CombatSpecialty struct {
	Def *content.CombatSpecialtyDef
}

func (k *CombatSpecialty) implement(n *Node, s *character.Sheet) error {
	s.SetChoiceName(character.ChoiceCombatSpecialty, n.Name)
	for _, t := range k.Def.Traits {
		s.AddTrait(t)
	}
	if err := grantAll(s, k.Def.Gear); err != nil {
		return fmt.Errorf("combat specialty %s: %w", n.Name, err)
	}
	return nil
}

func (k *CombatSpecialty) clone() Kind { c := *k; return &c }

// Background adds a trait, trivia, gear and money.
type Background struct {
	Def *content.BackgroundDef
}

func (k *Background) implement(n *Node, s *character.Sheet) error {
	s.SetChoiceName(character.ChoiceBackground, n.Name)
	s.AddTrait(k.Def.Trait)
	s.AddTrivia(k.Def.Trivia...)
	if err := grantAll(s, k.Def.Gear); err != nil {
		return fmt.Errorf("background %s: %w", n.Name, err)
	}
	s.AddMoney(k.Def.Money)
	return nil
}

func (k *Background) clone() Kind { c := *k; return &c }

// TextInput captures free text, such as the character's name or motivation,
// and records it under Field.
type TextInput struct {
	Field string
	Value string
}

func (k *TextInput) implement(_ *Node, s *character.Sheet) error {
	s.SetChoiceName(k.Field, k.Value)
	return nil
}

func (k *TextInput) clone() Kind { c := *k; return &c }

// Trait adds the node as a trait with no stat effect.
type Trait struct {
	Description string
}

func (k *Trait) implement(n *Node, s *character.Sheet) error {
	s.AddTrait(content.Trait{Name: n.Name, Description: k.Description})
	return nil
}

func (k *Trait) clone() Kind { c := *k; return &c }

// Item adds concrete or abstract gear of a typed category.
type Item struct {
	GearType content.GearKind
	ItemName string
	Level    string
	Count    int
	Abstract bool
	// Weapon is set when GearType is content.GearWeapon.
	Weapon *weapon.Def
}

func (k *Item) implement(n *Node, s *character.Sheet) error {
	count := k.Count
	if count < 1 {
		count = 1
	}
	switch {
	case k.GearType == content.GearWeapon:
		if k.Weapon == nil {
			return fmt.Errorf("item %s: weapon profile missing", n.Name)
		}
		s.AddRawWeapon(weapon.New(k.Weapon))
	case k.GearType == content.GearCustom:
	case k.Abstract:
		counter := s.Abstract.Counter(k.GearType)
		if counter == nil {
			return fmt.Errorf("item %s: no such thing as an abstract %q", n.Name, k.GearType)
		}
		counter[k.Level] += count
	case count > 1:
		s.AddGear(fmt.Sprintf("%d %s", count, k.ItemName))
	default:
		s.AddGear(k.ItemName)
	}
	return nil
}

func (k *Item) clone() Kind { c := *k; return &c }

func grantAll(s *character.Sheet, gear []string) error {
	for _, g := range gear {
		if err := s.GrantGear(g); err != nil {
			return err
		}
	}
	return nil
}
