package weapon

import (
	"errors"
	"fmt"
)

// Modification levels. B and C share one slot.
const (
	LevelA = "A"
	LevelB = "B"
	LevelC = "C"

	// MaxLevelA is the number of level A modifications a weapon can hold.
	MaxLevelA = 2
	// MaxLevelBC is the number of level B and C modifications combined a weapon can hold.
	MaxLevelBC = 1
)

// Levels lists the modification levels in resolution order.
var Levels = []string{LevelA, LevelB, LevelC}

var (
	// ErrSlotFull is returned when the weapon has no free slot for the level.
	ErrSlotFull = errors.New("weapon: no free modification slot")
	// ErrIncompatible is returned when the weapon type is not in the modification's prerequisites.
	ErrIncompatible = errors.New("weapon: modification does not fit this weapon type")
	// ErrAlreadyApplied is returned when the same modification is applied twice.
	ErrAlreadyApplied = errors.New("weapon: modification already applied")
)

// Transform is a numeric adjustment: the value is multiplied by Multiply
// (when non-zero) and then Add is added.
type Transform struct {
	Multiply int `yaml:"multiply"`
	Add      int `yaml:"add"`
}

// Apply returns the transformed value.
func (t Transform) Apply(v int) int {
	if t.Multiply != 0 {
		v *= t.Multiply
	}
	return v + t.Add
}

// Modification is a weapon modification loaded from content.
type Modification struct {
	Name        string `yaml:"name"`
	Level       string `yaml:"level"`
	Description string `yaml:"description"`
	// Prerequisites lists the weapon types this modification fits; empty fits all.
	Prerequisites []string  `yaml:"prerequisites"`
	Range         Transform `yaml:"range"`
	AP            Transform `yaml:"ap"`
	Accuracy      Transform `yaml:"accuracy"`
	Special       string    `yaml:"special"`
}

// Validate checks that the Modification satisfies its invariants.
func (m *Modification) Validate() error {
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	switch m.Level {
	case LevelA, LevelB, LevelC:
	default:
		errs = append(errs, fmt.Errorf("Level must be A, B or C; got %q", m.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("modification %q validation failed: %v", m.Name, errs)
	}
	return nil
}

// CompatibleWith reports whether m may be applied to a weapon of w's type.
func (m *Modification) CompatibleWith(w *Weapon) bool {
	if len(m.Prerequisites) == 0 {
		return true
	}
	for _, t := range m.Prerequisites {
		if t == w.Type {
			return true
		}
	}
	return false
}

// Apply mutates w with this modification.
//
// Precondition: w must be non-nil.
// Postcondition: on error w is unchanged; on success the transforms have been
// applied (range to Range for ranged weapons, to Reach otherwise), Special
// appended, and m recorded under its level.
func (m *Modification) Apply(w *Weapon) error {
	if !m.CompatibleWith(w) {
		return fmt.Errorf("%w: %s on %s", ErrIncompatible, m.Name, w.Type)
	}
	if w.HasModification(m.Name) {
		return fmt.Errorf("%w: %s on %s", ErrAlreadyApplied, m.Name, w.Name)
	}
	if !w.FreeSlot(m.Level) {
		return fmt.Errorf("%w: level %s on %s", ErrSlotFull, m.Level, w.Name)
	}
	if w.IsRanged() {
		w.Range = m.Range.Apply(w.Range)
	} else {
		w.Reach = m.Range.Apply(w.Reach)
	}
	w.AP = m.AP.Apply(w.AP)
	w.Accuracy = m.Accuracy.Apply(w.Accuracy)
	if m.Special != "" {
		w.Special = append(w.Special, m.Special)
	}
	if w.Modifications == nil {
		w.Modifications = make(map[string][]string)
	}
	w.Modifications[m.Level] = append(w.Modifications[m.Level], m.Name)
	return nil
}
