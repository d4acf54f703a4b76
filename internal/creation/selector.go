// Package creation walks the choice forest against a character record and
// persists the result as a replayable Document.
package creation

import (
	"context"
	"errors"

	"github.com/cory-johannsen/eoschar/internal/game/choice"
)

var (
	// ErrAbort is returned when the selector or the context ends a walk early.
	// History committed before the abort stays on the record.
	ErrAbort = errors.New("creation: aborted")
	// ErrStuck is returned when a node has children but none is selectable.
	ErrStuck = errors.New("creation: no selectable choice")
	// ErrNotFilled is returned by Save for a record that has not finished creation.
	ErrNotFilled = errors.New("creation: character is not filled")
	// ErrIncompatiblePath is returned when a saved document cannot be replayed
	// against the current choice forest.
	ErrIncompatiblePath = errors.New("creation: saved choices do not fit the choice forest")
)

// Option is one child of the node being decided.
type Option struct {
	Name        string
	Category    string
	Description string
	// Selectable is false when a prerequisite of the child does not hold.
	Selectable bool
}

// Selector makes the decisions of a walk.
//
// Every method may return ErrAbort to end the walk.
type Selector interface {
	choice.Picker

	// Choose returns the index of the chosen child of parent.
	Choose(ctx context.Context, parent *choice.Node, options []Option) (int, error)
	// Text returns the free-text value for a character field such as Name or Motivation.
	Text(ctx context.Context, field string) (string, error)
	// PointBuy spends points in pb through LevelUp and LevelDown and returns when done.
	PointBuy(ctx context.Context, pb *choice.PointBuy) error
}
