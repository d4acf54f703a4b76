package dice

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses a die rating written as "d8", "D8" or "8".
//
// Precondition: s must be non-empty.
// Postcondition: Returns a valid Rating or a descriptive error.
func Parse(s string) (Rating, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("dice: empty rating")
	}
	s = strings.TrimPrefix(s, "d")
	sides, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("dice: invalid rating %q: %w", raw, err)
	}
	return NewRating(sides)
}

// UnmarshalYAML accepts either an integer (10) or the "d10" notation.
func (r *Rating) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("dice: line %d: rating must be a scalar", value.Line)
	}
	v, err := Parse(value.Value)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// MarshalYAML writes the "dN" notation.
func (r Rating) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}
