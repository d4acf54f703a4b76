// Package content provides the read-only game data used to build the
// character-creation forest, loaded from YAML through a Provider.
package content

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/eoschar/internal/game/dice"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
)

// GearKind identifies a category of gear.
type GearKind string

const (
	GearGeneral      GearKind = "general"
	GearCustom       GearKind = "custom"
	GearWeapon       GearKind = "weapon"
	GearWeaponChoice GearKind = "weapon-choice"
	GearPotion       GearKind = "potion"
	GearModification GearKind = "modification"
	GearAmmunition   GearKind = "ammunition"
	GearGrenade      GearKind = "grenade"
	GearKit          GearKind = "kit"
)

// Weapon entitlement classes used by GearWeaponChoice.
const (
	WeaponClassMelee  = "Melee"
	WeaponClassRanged = "Ranged"
	WeaponClassAny    = "Any"
)

// Option kinds.
const (
	OptionItem   = "item"
	OptionTrait  = "trait"
	OptionChoice = "choice"
)

// Trait is a named piece of flavour text attached to a character.
type Trait struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SkillDef defines a skill and the quality it is linked to.
type SkillDef struct {
	Name    string `yaml:"name"`
	Quality string `yaml:"quality"`
}

// GearDef defines a catalog item (potion, grenade, ammunition or kit) of a level.
type GearDef struct {
	Name        string `yaml:"name"`
	Level       string `yaml:"level"`
	Description string `yaml:"description"`
}

// Option is a content-declared child of a creation choice. It becomes a
// Trait, Item or plain choice node when the forest is built.
type Option struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"`
	Description string   `yaml:"description"`
	Item        string   `yaml:"item"`
	GearType    GearKind `yaml:"gear_type"`
	Level       string   `yaml:"level"`
	Count       int      `yaml:"n"`
	Abstract    bool     `yaml:"abstract"`
	// Improve names a quality raised by one step when the option is applied.
	Improve string `yaml:"improve"`
	// Grants lists gear strings or directives layered on top of the option.
	Grants []string `yaml:"grants"`
	// Weapon is a custom weapon profile layered on top of the option.
	Weapon *weapon.Def `yaml:"weapon"`
	// Requires is a Lua expression that must evaluate true for the option to be selectable.
	Requires         string   `yaml:"requires"`
	ChildrenCategory string   `yaml:"children_category"`
	Options          []Option `yaml:"options"`
}

// ItemName returns the concrete item name, defaulting to the option name.
func (o *Option) ItemName() string {
	if o.Item != "" {
		return o.Item
	}
	return o.Name
}

// OptionKind returns the option kind, defaulting to OptionItem.
func (o *Option) OptionKind() string {
	if o.Kind == "" {
		return OptionItem
	}
	return o.Kind
}

// SpeciesDef defines a playable species.
type SpeciesDef struct {
	Name          string                 `yaml:"name"`
	Description   string                 `yaml:"description"`
	BaseQualities map[string]dice.Rating `yaml:"base_qualities"`
	Speed         string                 `yaml:"speed"`
	Traits        []Option               `yaml:"traits"`
}

// TrainingDef defines a training: one skill raised, a trait, default gear and gear options.
type TrainingDef struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Skill       string   `yaml:"skill"`
	Trait       Trait    `yaml:"trait"`
	Gear        []string `yaml:"gear"`
	Options     []Option `yaml:"options"`
}

// FocusDef defines a focus: several skills raised and a trait.
type FocusDef struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Skills      []string `yaml:"skills"`
	Trait       Trait    `yaml:"trait"`
}

// CombatSpecialtyDef defines a combat specialty.
type CombatSpecialtyDef struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Traits      []Trait  `yaml:"traits"`
	Gear        []string `yaml:"gear"`
	Options     []Option `yaml:"options"`
}

// BackgroundDef defines a background.
type BackgroundDef struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Trait       Trait    `yaml:"trait"`
	Trivia      []string `yaml:"trivia"`
	Gear        []string `yaml:"gear"`
	Money       int      `yaml:"money"`
}

// PointBuyRules configures a point-buy session.
type PointBuyRules struct {
	StartingPoints int         `yaml:"starting_points"`
	StartingLevel  int         `yaml:"starting_level"`
	MaxLevel       int         `yaml:"max_level"`
	PointsPerLevel map[int]int `yaml:"points_per_level"`
	// Absolute replaces the record's level with bought+base instead of adding bought.
	Absolute bool `yaml:"absolute"`
}

// Validate checks that the rules satisfy their invariants.
func (r *PointBuyRules) Validate() error {
	var errs []error
	if r.StartingPoints < 0 {
		errs = append(errs, errors.New("starting_points must be >= 0"))
	}
	if r.MaxLevel < 1 {
		errs = append(errs, errors.New("max_level must be >= 1"))
	}
	if r.StartingLevel < 0 {
		errs = append(errs, errors.New("starting_level must be >= 0"))
	}
	for lvl, cost := range r.PointsPerLevel {
		if cost < 0 {
			errs = append(errs, fmt.Errorf("points_per_level[%d] must be >= 0", lvl))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("point-buy rules invalid: %v", errs)
	}
	return nil
}

// Rules holds the blank-record defaults and the point-buy configuration.
type Rules struct {
	DefaultQuality    dice.Rating `yaml:"default_quality"`
	DefaultCombatDie  dice.Rating `yaml:"default_combat_die"`
	DefaultSpeed      string      `yaml:"default_speed"`
	DefaultSkillLevel int         `yaml:"default_skill_level"`
	ToughnessBase     int         `yaml:"toughness_base"`
	ToughnessQuality  string      `yaml:"toughness_quality"`
	// TalentExclusion is a format string naming the species trait that
	// forbids a talent, e.g. "People of the Wandering God (%s)".
	TalentExclusion string        `yaml:"talent_exclusion"`
	Skills          PointBuyRules `yaml:"skills"`
	Trivia          PointBuyRules `yaml:"trivia"`
}
