package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/eoschar/internal/game/weapon"
)

// Catalog holds all loaded game data indexed for lookup. It is read-only
// once Load returns.
type Catalog struct {
	Rules             Rules
	Qualities         []string
	Skills            []SkillDef
	Species           []*SpeciesDef
	Training          []*TrainingDef
	Focuses           []*FocusDef
	CombatSpecialties []*CombatSpecialtyDef
	Backgrounds       []*BackgroundDef
	Trivia            []string
	Weapons           []*weapon.Def
	Modifications     []*weapon.Modification
	Potions           []*GearDef
	Grenades          []*GearDef
	Ammunition        []*GearDef
	Kits              []*GearDef

	weapons       map[string]*weapon.Def
	modifications map[string]*weapon.Modification
	skills        map[string]SkillDef
	gear          map[string]GearKind
}

// Load reads every content file from p, indexes it and validates cross references.
//
// Precondition: p must be non-nil.
// Postcondition: returns a validated *Catalog or a non-nil error.
func Load(p Provider) (*Catalog, error) {
	if p == nil {
		panic("content.Load: precondition violated: provider must be non-nil")
	}
	c := &Catalog{}
	targets := []struct {
		id  string
		out any
	}{
		{FileRules, &c.Rules},
		{FileQualities, &c.Qualities},
		{FileSkills, &c.Skills},
		{FileSpecies, &c.Species},
		{FileTraining, &c.Training},
		{FileFocus, &c.Focuses},
		{FileCombatSpecialties, &c.CombatSpecialties},
		{FileBackgrounds, &c.Backgrounds},
		{FileTrivia, &c.Trivia},
		{FileWeapons, &c.Weapons},
		{FileModifications, &c.Modifications},
		{FilePotions, &c.Potions},
		{FileGrenades, &c.Grenades},
		{FileAmmunition, &c.Ammunition},
		{FileKits, &c.Kits},
	}
	for _, t := range targets {
		data, err := p.Read(t.id)
		if err != nil {
			return nil, err
		}
		if err := decode(data, t.out); err != nil {
			return nil, fmt.Errorf("parsing content %s: %w", t.id, err)
		}
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Catalog) index() error {
	c.weapons = make(map[string]*weapon.Def, len(c.Weapons))
	for _, w := range c.Weapons {
		if _, exists := c.weapons[w.Name]; exists {
			return fmt.Errorf("content: weapon %q already registered", w.Name)
		}
		c.weapons[w.Name] = w
	}
	c.modifications = make(map[string]*weapon.Modification, len(c.Modifications))
	for _, m := range c.Modifications {
		if _, exists := c.modifications[m.Name]; exists {
			return fmt.Errorf("content: modification %q already registered", m.Name)
		}
		c.modifications[m.Name] = m
	}
	c.skills = make(map[string]SkillDef, len(c.Skills))
	for _, s := range c.Skills {
		if _, exists := c.skills[s.Name]; exists {
			return fmt.Errorf("content: skill %q already registered", s.Name)
		}
		c.skills[s.Name] = s
	}
	c.gear = make(map[string]GearKind)
	for kind, defs := range map[GearKind][]*GearDef{
		GearPotion:     c.Potions,
		GearGrenade:    c.Grenades,
		GearAmmunition: c.Ammunition,
		GearKit:        c.Kits,
	} {
		for _, d := range defs {
			if prev, exists := c.gear[d.Name]; exists {
				return fmt.Errorf("content: gear %q registered as both %s and %s", d.Name, prev, kind)
			}
			c.gear[d.Name] = kind
		}
	}
	return nil
}

// Weapon returns the weapon Def with the given name.
//
// Postcondition: ok is true iff the name is registered.
func (c *Catalog) Weapon(name string) (*weapon.Def, bool) {
	w, ok := c.weapons[name]
	return w, ok
}

// Modification returns the modification with the given name.
func (c *Catalog) Modification(name string) (*weapon.Modification, bool) {
	m, ok := c.modifications[name]
	return m, ok
}

// Skill returns the skill with the given name.
func (c *Catalog) Skill(name string) (SkillDef, bool) {
	s, ok := c.skills[name]
	return s, ok
}

// HasQuality reports whether name is a known quality.
func (c *Catalog) HasQuality(name string) bool {
	for _, q := range c.Qualities {
		if q == name {
			return true
		}
	}
	return false
}

// WeaponsFor returns the weapons of a class (Melee, Ranged or Any), sorted by name.
func (c *Catalog) WeaponsFor(class string) []*weapon.Def {
	out := make([]*weapon.Def, 0, len(c.Weapons))
	for _, w := range c.Weapons {
		ranged := w.Range > 0
		switch {
		case class == WeaponClassAny,
			class == WeaponClassRanged && ranged,
			class == WeaponClassMelee && !ranged:
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ModificationsFor returns the modifications of level that fit w, sorted by name.
func (c *Catalog) ModificationsFor(level string, w *weapon.Weapon) []*weapon.Modification {
	var out []*weapon.Modification
	for _, m := range c.Modifications {
		if m.Level == level && m.CompatibleWith(w) && !w.HasModification(m.Name) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Gear returns the catalog items of kind at level, sorted by name.
//
// Precondition: kind is one of GearPotion, GearGrenade, GearAmmunition or GearKit.
func (c *Catalog) Gear(kind GearKind, level string) []*GearDef {
	var defs []*GearDef
	switch kind {
	case GearPotion:
		defs = c.Potions
	case GearGrenade:
		defs = c.Grenades
	case GearAmmunition:
		defs = c.Ammunition
	case GearKit:
		defs = c.Kits
	default:
		panic(fmt.Sprintf("Catalog.Gear: precondition violated: %q has no catalog", kind))
	}
	var out []*GearDef
	for _, d := range defs {
		if d.Level == level {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsCatalogGear reports whether name is a potion, grenade, ammunition or kit.
func (c *Catalog) IsCatalogGear(name string) bool {
	_, ok := c.gear[name]
	return ok
}
