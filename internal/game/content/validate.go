package content

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks every cross reference in the catalog: skills named by
// trainings and focuses, qualities named by species, gear directives, weapon
// references and levels.
//
// Postcondition: returns nil iff the catalog is consistent; otherwise the
// error lists every violation.
func (c *Catalog) Validate() error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if len(c.Qualities) == 0 {
		add("no qualities defined")
	}
	if !c.Rules.DefaultQuality.Valid() {
		add("rules: default_quality must be a die rating")
	}
	if !c.Rules.DefaultCombatDie.Valid() {
		add("rules: default_combat_die must be a die rating")
	}
	if !c.HasQuality(c.Rules.ToughnessQuality) {
		add("rules: toughness_quality %q is not a quality", c.Rules.ToughnessQuality)
	}
	if err := c.Rules.Skills.Validate(); err != nil {
		add("rules: skills: %v", err)
	}
	if err := c.Rules.Trivia.Validate(); err != nil {
		add("rules: trivia: %v", err)
	}
	for _, s := range c.Skills {
		if !c.HasQuality(s.Quality) {
			add("skill %q: unknown quality %q", s.Name, s.Quality)
		}
	}
	for _, sp := range c.Species {
		for q, r := range sp.BaseQualities {
			if !c.HasQuality(q) {
				add("species %q: unknown quality %q", sp.Name, q)
			}
			if !r.Valid() {
				add("species %q: quality %q is not a die rating", sp.Name, q)
			}
		}
		c.validateOptions("species "+sp.Name, sp.Traits, add)
	}
	for _, t := range c.Training {
		if _, ok := c.Skill(t.Skill); !ok {
			add("training %q: unknown skill %q", t.Name, t.Skill)
		}
		c.validateGear("training "+t.Name, t.Gear, add)
		c.validateOptions("training "+t.Name, t.Options, add)
	}
	for _, f := range c.Focuses {
		for _, s := range f.Skills {
			if _, ok := c.Skill(s); !ok {
				add("focus %q: unknown skill %q", f.Name, s)
			}
		}
	}
	for _, cs := range c.CombatSpecialties {
		c.validateGear("combat specialty "+cs.Name, cs.Gear, add)
		c.validateOptions("combat specialty "+cs.Name, cs.Options, add)
	}
	for _, b := range c.Backgrounds {
		c.validateGear("background "+b.Name, b.Gear, add)
		if b.Money < 0 {
			add("background %q: money must be >= 0", b.Name)
		}
	}
	for _, w := range c.Weapons {
		if err := w.Validate(); err != nil {
			add("%v", err)
		}
	}
	for _, m := range c.Modifications {
		if err := m.Validate(); err != nil {
			add("%v", err)
		}
	}
	for kind, defs := range map[GearKind][]*GearDef{
		GearPotion: c.Potions, GearGrenade: c.Grenades, GearAmmunition: c.Ammunition, GearKit: c.Kits,
	} {
		for _, d := range defs {
			if !ValidLevel(d.Level) {
				add("%s %q: unknown level %q", kind, d.Name, d.Level)
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("content validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Catalog) validateGear(owner string, gear []string, add func(string, ...any)) {
	for _, g := range gear {
		if !IsDirective(g) {
			continue
		}
		d, err := ParseDirective(g)
		if err != nil {
			add("%s: %v", owner, err)
			continue
		}
		if d.Kind == GearWeapon {
			if _, ok := c.Weapon(d.Weapon); !ok {
				add("%s: unknown weapon %q", owner, d.Weapon)
			}
		}
	}
}

func (c *Catalog) validateOptions(owner string, opts []Option, add func(string, ...any)) {
	for i := range opts {
		o := &opts[i]
		where := owner + " > " + o.Name
		if o.Name == "" {
			add("%s: option %d has no name", owner, i)
		}
		switch o.OptionKind() {
		case OptionItem, OptionTrait, OptionChoice:
		default:
			add("%s: unknown kind %q", where, o.Kind)
		}
		if o.Improve != "" && !c.HasQuality(o.Improve) {
			add("%s: unknown quality %q", where, o.Improve)
		}
		if o.OptionKind() == OptionItem {
			switch o.GearType {
			case "", GearGeneral, GearCustom:
			case GearWeapon:
				if _, ok := c.Weapon(o.ItemName()); !ok {
					add("%s: unknown weapon %q", where, o.ItemName())
				}
			case GearPotion, GearModification, GearAmmunition, GearGrenade, GearKit:
				if o.Abstract && !ValidLevel(o.Level) {
					add("%s: unknown level %q", where, o.Level)
				}
			default:
				add("%s: unknown gear_type %q", where, o.GearType)
			}
			if o.Count < 0 {
				add("%s: n must be >= 0", where)
			}
		}
		if o.Weapon != nil {
			if err := o.Weapon.Validate(); err != nil {
				add("%s: %v", where, err)
			}
		}
		c.validateGear(where, o.Grants, add)
		c.validateOptions(where, o.Options, add)
	}
}
