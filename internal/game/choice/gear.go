package choice

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
)

// Phase identifies one resolution phase of AssignAbstractGear.
type Phase string

// Phases in resolution order.
const (
	PhaseWeapon       Phase = "weapon"
	PhaseModification Phase = "modification"
	PhaseAmmunition   Phase = "ammunition"
	PhasePotion       Phase = "potion"
	PhaseGrenade      Phase = "grenade"
	PhaseKit          Phase = "kit"
)

// Phases lists every phase in resolution order.
var Phases = []Phase{PhaseWeapon, PhaseModification, PhaseAmmunition, PhasePotion, PhaseGrenade, PhaseKit}

var gearPhases = []struct {
	phase Phase
	kind  content.GearKind
}{
	{PhaseAmmunition, content.GearAmmunition},
	{PhasePotion, content.GearPotion},
	{PhaseGrenade, content.GearGrenade},
	{PhaseKit, content.GearKit},
}

var weaponClasses = []string{content.WeaponClassMelee, content.WeaponClassRanged, content.WeaponClassAny}

// ErrBadPick is returned when a recorded pick cannot be replayed.
var ErrBadPick = errors.New("choice: recorded gear pick does not fit the record")

// Pick is one resolved abstract-gear selection.
type Pick struct {
	Phase Phase `json:"phase" yaml:"phase"`
	// Level is A, B or C, or a weapon class for PhaseWeapon.
	Level string `json:"level" yaml:"level"`
	// Weapon indexes the raw weapon a modification was applied to.
	Weapon int `json:"weapon,omitempty" yaml:"weapon,omitempty"`
	// Item is the chosen catalog name; empty when an optional pick was skipped.
	Item string `json:"item,omitempty" yaml:"item,omitempty"`
}

// PickRequest describes one pending abstract-gear selection.
type PickRequest struct {
	Phase Phase
	Level string
	// Weapon is the weapon being modified in PhaseModification.
	Weapon      *weapon.Weapon
	WeaponIndex int
	Options     []string
	// Optional requests may be skipped by returning -1.
	Optional  bool
	Remaining int
}

// Picker chooses among the options of a PickRequest.
type Picker interface {
	// Pick returns an index into req.Options, or -1 to skip an optional request.
	Pick(ctx context.Context, req PickRequest) (int, error)
}

// AssignAbstractGear converts the record's abstract entitlements into
// concrete gear, freezes raw weapons and collapses the gear list.
//
// Assign stages references into a record: the raw-weapon slice pointer and
// the six counter maps alias the record's own state, so every decrement made
// while resolving is visible on the record.
type AssignAbstractGear struct {
	// Picks records every selection made by Resolve, in order.
	Picks []Pick

	catalog *content.Catalog
	logger  *zap.Logger

	rawWeapons    *[]*weapon.Weapon
	weapons       character.Counters
	modifications character.Counters
	counters      map[content.GearKind]character.Counters
}

// NewAssignAbstractGear returns a resolver drawing options from cat.
//
// Precondition: cat must be non-nil.
func NewAssignAbstractGear(cat *content.Catalog, logger *zap.Logger) *AssignAbstractGear {
	if cat == nil {
		panic("choice.NewAssignAbstractGear: precondition violated: catalog must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignAbstractGear{catalog: cat, logger: logger}
}

// Assign stages references to s's raw weapons and entitlement counters.
func (g *AssignAbstractGear) Assign(s *character.Sheet) {
	g.rawWeapons = &s.RawWeapons
	g.weapons = s.Abstract.Weapons
	g.modifications = s.Abstract.Modifications
	g.counters = map[content.GearKind]character.Counters{
		content.GearAmmunition: s.Abstract.Ammunition,
		content.GearPotion:     s.Abstract.Potions,
		content.GearGrenade:    s.Abstract.Grenades,
		content.GearKit:        s.Abstract.Kits,
	}
}

// Resolve runs the six phases against s, asking picker for every selection.
//
// Postcondition: on success every pick is recorded in Picks, the weapons are
// frozen into s.Weapons and the gear list is collapsed.
func (g *AssignAbstractGear) Resolve(ctx context.Context, s *character.Sheet, picker Picker) error {
	g.Assign(s)
	g.Picks = nil

	for _, class := range weaponClasses {
		for g.weapons[class] > 0 {
			defs := g.catalog.WeaponsFor(class)
			if len(defs) == 0 {
				g.logger.Warn("no weapon available for entitlement", zap.String("class", class))
				break
			}
			names := make([]string, len(defs))
			for i, d := range defs {
				names[i] = d.Name
			}
			idx, err := g.ask(ctx, picker, PickRequest{Phase: PhaseWeapon, Level: class, Options: names, Remaining: g.weapons[class]})
			if err != nil {
				return err
			}
			if err := g.record(s, Pick{Phase: PhaseWeapon, Level: class, Item: names[idx]}); err != nil {
				return err
			}
		}
	}

	for wi := 0; wi < len(*g.rawWeapons); wi++ {
		w := (*g.rawWeapons)[wi]
		for _, level := range weapon.Levels {
			for g.modifications[level] > 0 && w.FreeSlot(level) {
				mods := g.catalog.ModificationsFor(level, w)
				if len(mods) == 0 {
					break
				}
				names := make([]string, len(mods))
				for i, m := range mods {
					names[i] = m.Name
				}
				idx, err := g.ask(ctx, picker, PickRequest{
					Phase: PhaseModification, Level: level, Weapon: w, WeaponIndex: wi,
					Options: names, Optional: true, Remaining: g.modifications[level],
				})
				if err != nil {
					return err
				}
				if idx < 0 {
					g.Picks = append(g.Picks, Pick{Phase: PhaseModification, Level: level, Weapon: wi})
					break
				}
				if err := g.record(s, Pick{Phase: PhaseModification, Level: level, Weapon: wi, Item: names[idx]}); err != nil {
					return err
				}
			}
		}
	}

	for _, gp := range gearPhases {
		counter := g.counters[gp.kind]
		for _, level := range weapon.Levels {
			for counter[level] > 0 {
				defs := g.catalog.Gear(gp.kind, level)
				if len(defs) == 0 {
					g.logger.Warn("no catalog option for entitlement",
						zap.String("kind", string(gp.kind)), zap.String("level", level), zap.Int("remaining", counter[level]))
					break
				}
				names := make([]string, len(defs))
				for i, d := range defs {
					names[i] = d.Name
				}
				idx, err := g.ask(ctx, picker, PickRequest{Phase: gp.phase, Level: level, Options: names, Remaining: counter[level]})
				if err != nil {
					return err
				}
				if err := g.record(s, Pick{Phase: gp.phase, Level: level, Item: names[idx]}); err != nil {
					return err
				}
			}
		}
	}

	g.finish(s)
	return nil
}

func (g *AssignAbstractGear) ask(ctx context.Context, picker Picker, req PickRequest) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	idx, err := picker.Pick(ctx, req)
	if err != nil {
		return 0, err
	}
	if idx < 0 && req.Optional {
		return -1, nil
	}
	if idx < 0 || idx >= len(req.Options) {
		return 0, fmt.Errorf("choice: pick %d out of range for %s %s", idx, req.Phase, req.Level)
	}
	return idx, nil
}

func (g *AssignAbstractGear) record(s *character.Sheet, p Pick) error {
	if err := g.apply(s, p); err != nil {
		return err
	}
	g.Picks = append(g.Picks, p)
	return nil
}

// apply performs one pick through the staged references.
func (g *AssignAbstractGear) apply(s *character.Sheet, p Pick) error {
	if p.Item == "" {
		return nil
	}
	switch p.Phase {
	case PhaseWeapon:
		if g.weapons[p.Level] <= 0 {
			return fmt.Errorf("%w: no %s weapon entitlement for %q", ErrBadPick, p.Level, p.Item)
		}
		def, ok := g.catalog.Weapon(p.Item)
		if !ok {
			return fmt.Errorf("%w: unknown weapon %q", ErrBadPick, p.Item)
		}
		*g.rawWeapons = append(*g.rawWeapons, weapon.New(def))
		g.weapons[p.Level]--
	case PhaseModification:
		if g.modifications[p.Level] <= 0 {
			return fmt.Errorf("%w: no level %s modification entitlement for %q", ErrBadPick, p.Level, p.Item)
		}
		if p.Weapon < 0 || p.Weapon >= len(*g.rawWeapons) {
			return fmt.Errorf("%w: weapon %d does not exist", ErrBadPick, p.Weapon)
		}
		m, ok := g.catalog.Modification(p.Item)
		if !ok || m.Level != p.Level {
			return fmt.Errorf("%w: unknown level %s modification %q", ErrBadPick, p.Level, p.Item)
		}
		if err := m.Apply((*g.rawWeapons)[p.Weapon]); err != nil {
			return fmt.Errorf("%w: %w", ErrBadPick, err)
		}
		g.modifications[p.Level]--
	default:
		kind := phaseKind(p.Phase)
		counter, ok := g.counters[kind]
		if !ok {
			return fmt.Errorf("%w: unknown phase %q", ErrBadPick, p.Phase)
		}
		if counter[p.Level] <= 0 {
			return fmt.Errorf("%w: no level %s %s entitlement for %q", ErrBadPick, p.Level, kind, p.Item)
		}
		s.AddGear(p.Item)
		counter[p.Level]--
	}
	return nil
}

func phaseKind(p Phase) content.GearKind {
	for _, gp := range gearPhases {
		if gp.phase == p {
			return gp.kind
		}
	}
	return ""
}

// finish freezes the raw weapons, warns about unresolved modification
// entitlements and collapses the gear list.
func (g *AssignAbstractGear) finish(s *character.Sheet) {
	s.Weapons = append(s.Weapons, *g.rawWeapons...)
	*g.rawWeapons = nil
	if n := g.modifications.Total(); n > 0 {
		g.logger.Warn("unresolved modification entitlements; weapon slots left unfilled",
			zap.Int("A", g.modifications["A"]),
			zap.Int("B", g.modifications["B"]),
			zap.Int("C", g.modifications["C"]),
		)
	}
	s.Gear = g.collapse(s.Gear)
}

// collapse counts items by name, honouring a leading count. Duplicates become
// "name (n)"; a single catalog potion, grenade, ammunition or kit becomes
// "name (1)". The result is sorted.
func (g *AssignAbstractGear) collapse(gear []string) []string {
	counts := make(map[string]int, len(gear))
	for _, item := range gear {
		n, name := content.SplitCount(item)
		counts[name] += n
	}
	out := make([]string, 0, len(counts))
	for name, n := range counts {
		switch {
		case n > 1:
			out = append(out, fmt.Sprintf("%s (%d)", name, n))
		case g.catalog.IsCatalogGear(name):
			out = append(out, name+" (1)")
		default:
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// implement replays the recorded picks against a freshly rebuilt record.
func (g *AssignAbstractGear) implement(_ *Node, s *character.Sheet) error {
	g.Assign(s)
	for i, p := range g.Picks {
		if err := g.apply(s, p); err != nil {
			return fmt.Errorf("replaying gear pick %d: %w", i, err)
		}
	}
	g.finish(s)
	return nil
}

func (g *AssignAbstractGear) clone() Kind {
	c := *g
	c.Picks = append([]Pick(nil), g.Picks...)
	c.rawWeapons = nil
	c.weapons = nil
	c.modifications = nil
	c.counters = nil
	return &c
}
