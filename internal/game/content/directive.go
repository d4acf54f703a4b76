package content

import (
	"fmt"
	"strconv"
	"strings"
)

// DirectivePrefix marks a gear string as an entitlement rather than an item.
const DirectivePrefix = "!"

// Directive is a parsed gear entitlement such as "! grenade B 1",
// "! weapon-choice Melee 1" or "! weapon Long Arm".
type Directive struct {
	Kind GearKind
	// Level is A, B or C for counters, or a weapon class for GearWeaponChoice.
	Level  string
	Count  int
	Weapon string
}

// String renders d back into directive form.
func (d Directive) String() string {
	if d.Kind == GearWeapon {
		return fmt.Sprintf("%s %s %s", DirectivePrefix, d.Kind, d.Weapon)
	}
	return fmt.Sprintf("%s %s %s %d", DirectivePrefix, d.Kind, d.Level, d.Count)
}

// IsDirective reports whether s is a gear directive.
func IsDirective(s string) bool {
	fields := strings.Fields(s)
	return len(fields) > 0 && fields[0] == DirectivePrefix
}

// ParseDirective parses a gear directive.
//
// Precondition: IsDirective(s) is true.
// Postcondition: returns a Directive with a known Kind, a valid Level and a
// positive Count, or a non-nil error.
func ParseDirective(s string) (Directive, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 || fields[0] != DirectivePrefix {
		return Directive{}, fmt.Errorf("malformed gear directive %q", s)
	}
	kind := GearKind(fields[1])
	switch kind {
	case GearWeapon:
		return Directive{Kind: kind, Count: 1, Weapon: strings.Join(fields[2:], " ")}, nil
	case GearWeaponChoice:
		if len(fields) != 4 {
			return Directive{}, fmt.Errorf("malformed gear directive %q: want %s <class> <n>", s, kind)
		}
		switch fields[2] {
		case WeaponClassMelee, WeaponClassRanged, WeaponClassAny:
		default:
			return Directive{}, fmt.Errorf("gear directive %q: unknown weapon class %q", s, fields[2])
		}
	case GearPotion, GearModification, GearAmmunition, GearGrenade, GearKit:
		if len(fields) != 4 {
			return Directive{}, fmt.Errorf("malformed gear directive %q: want %s <level> <n>", s, kind)
		}
		if !ValidLevel(fields[2]) {
			return Directive{}, fmt.Errorf("gear directive %q: unknown level %q", s, fields[2])
		}
	default:
		return Directive{}, fmt.Errorf("gear directive %q: unknown kind %q", s, fields[1])
	}
	n, err := strconv.Atoi(fields[3])
	if err != nil || n < 1 {
		return Directive{}, fmt.Errorf("gear directive %q: count must be a positive integer", s)
	}
	return Directive{Kind: kind, Level: fields[2], Count: n}, nil
}

// ValidLevel reports whether level is one of the gear levels A, B or C.
func ValidLevel(level string) bool {
	switch level {
	case "A", "B", "C":
		return true
	}
	return false
}

// SplitCount splits a leading integer count off an item string.
// "2 Bandage" yields (2, "Bandage"); "Bandage" yields (1, "Bandage").
func SplitCount(item string) (int, string) {
	fields := strings.Fields(item)
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return n, strings.Join(fields[1:], " ")
		}
	}
	return 1, strings.TrimSpace(item)
}
