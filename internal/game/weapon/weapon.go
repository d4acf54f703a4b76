// Package weapon provides weapon profiles and the slot-limited modifications
// that mutate them during abstract-gear resolution.
package weapon

import (
	"errors"
	"fmt"
	"strings"
)

// Category constants for Def.Category.
const (
	CategoryMelee  = "melee"
	CategoryRanged = "ranged"
)

// Def defines the static properties of a weapon loaded from content.
//
// Range and Reach are mutually exclusive; a Def declaring neither is a
// melee weapon with reach 1.
type Def struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Category string   `yaml:"category"`
	Range    int      `yaml:"range"`
	Reach    int      `yaml:"reach"`
	Accuracy int      `yaml:"accuracy"`
	AP       int      `yaml:"ap"`
	Heavy    bool     `yaml:"heavy"`
	Special  []string `yaml:"special"`
}

// Validate checks that the Def satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if d.Range > 0 && d.Reach > 0 {
		errs = append(errs, errors.New("Range and Reach are mutually exclusive"))
	}
	if d.Range < 0 || d.Reach < 0 {
		errs = append(errs, errors.New("Range and Reach must be >= 0"))
	}
	if d.AP < 0 {
		errs = append(errs, errors.New("AP must be >= 0"))
	}
	switch d.Category {
	case "", CategoryMelee, CategoryRanged:
	default:
		errs = append(errs, fmt.Errorf("Category must be melee or ranged; got %q", d.Category))
	}
	if d.Category == CategoryRanged && d.Range == 0 {
		errs = append(errs, errors.New("ranged weapon must declare a Range"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %q validation failed: %v", d.Name, errs)
	}
	return nil
}

// Weapon is a concrete weapon held by a character. It starts as a raw copy of
// a Def and is mutated by Modification.Apply before being frozen on the sheet.
type Weapon struct {
	Name     string   `yaml:"name" json:"name"`
	Type     string   `yaml:"type" json:"type"`
	Category string   `yaml:"category" json:"category"`
	Range    int      `yaml:"range,omitempty" json:"range,omitempty"`
	Reach    int      `yaml:"reach,omitempty" json:"reach,omitempty"`
	Accuracy int      `yaml:"accuracy" json:"accuracy"`
	AP       int      `yaml:"ap" json:"ap"`
	Heavy    bool     `yaml:"heavy,omitempty" json:"heavy,omitempty"`
	Special  []string `yaml:"special,omitempty" json:"special,omitempty"`
	// Modifications maps a level (A, B or C) to the names applied at that level.
	Modifications map[string][]string `yaml:"modifications,omitempty" json:"modifications,omitempty"`
}

// New builds a raw, unmodified Weapon from d.
//
// Precondition: d must be non-nil and valid.
// Postcondition: Type defaults to Name; AP defaults to 1; reach defaults to 1
// when neither Range nor Reach is set; Category is inferred from Range when empty.
func New(d *Def) *Weapon {
	if d == nil {
		panic("weapon.New: precondition violated: def must be non-nil")
	}
	w := &Weapon{
		Name:     d.Name,
		Type:     d.Type,
		Category: d.Category,
		Range:    d.Range,
		Reach:    d.Reach,
		Accuracy: d.Accuracy,
		AP:       d.AP,
		Heavy:    d.Heavy,
		Special:  append([]string(nil), d.Special...),
	}
	if w.Type == "" {
		w.Type = w.Name
	}
	if w.AP == 0 {
		w.AP = 1
	}
	if w.Range == 0 && w.Reach == 0 {
		w.Reach = 1
	}
	if w.Category == "" {
		if w.Range > 0 {
			w.Category = CategoryRanged
		} else {
			w.Category = CategoryMelee
		}
	}
	return w
}

// IsRanged reports whether the weapon is used at range.
func (w *Weapon) IsRanged() bool {
	return w.Range > 0
}

// Clone returns a deep copy of w.
func (w *Weapon) Clone() *Weapon {
	out := *w
	out.Special = append([]string(nil), w.Special...)
	if w.Modifications != nil {
		out.Modifications = make(map[string][]string, len(w.Modifications))
		for lvl, names := range w.Modifications {
			out.Modifications[lvl] = append([]string(nil), names...)
		}
	}
	return &out
}

// HasModification reports whether a modification named name was applied.
func (w *Weapon) HasModification(name string) bool {
	for _, names := range w.Modifications {
		for _, n := range names {
			if n == name {
				return true
			}
		}
	}
	return false
}

// FreeSlot reports whether w can take another modification of the given level.
// Level A has two slots; levels B and C share a single slot.
func (w *Weapon) FreeSlot(level string) bool {
	switch level {
	case LevelA:
		return len(w.Modifications[LevelA]) < MaxLevelA
	case LevelB, LevelC:
		return len(w.Modifications[LevelB])+len(w.Modifications[LevelC]) < MaxLevelBC
	default:
		return false
	}
}

// Profile returns a one-line summary, e.g. "Long Arm (range 30, acc +1, AP 2, heavy)".
func (w *Weapon) Profile() string {
	parts := make([]string, 0, 5)
	if w.IsRanged() {
		parts = append(parts, fmt.Sprintf("range %d", w.Range))
	} else {
		parts = append(parts, fmt.Sprintf("reach %d", w.Reach))
	}
	parts = append(parts, fmt.Sprintf("acc %+d", w.Accuracy), fmt.Sprintf("AP %d", w.AP))
	if w.Heavy {
		parts = append(parts, "heavy")
	}
	return fmt.Sprintf("%s (%s)", w.Name, strings.Join(parts, ", "))
}
