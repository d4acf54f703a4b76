package creation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
)

// EngineVersion tags every saved Document.
const EngineVersion = "1.0"

// Document is the persisted form of a filled record: the decisions needed to
// replay it plus the resolved gear and weapons for readers that do not replay.
type Document struct {
	Version    string                     `json:"version" yaml:"version"`
	ID         string                     `json:"id" yaml:"id"`
	TreePath   []int                      `json:"tree_path" yaml:"tree_path"`
	Name       string                     `json:"name" yaml:"name"`
	Motivation string                     `json:"motivation" yaml:"motivation"`
	Skills     map[string]choice.Category `json:"skills,omitempty" yaml:"skills,omitempty"`
	Trivia     map[string]choice.Category `json:"trivia,omitempty" yaml:"trivia,omitempty"`
	Picks      []choice.Pick              `json:"picks,omitempty" yaml:"picks,omitempty"`
	Gear       []string                   `json:"gear,omitempty" yaml:"gear,omitempty"`
	Weapons    []weapon.Weapon            `json:"weapons,omitempty" yaml:"weapons,omitempty"`
}

// Save captures a filled record as a Document.
//
// Postcondition: returns ErrNotFilled when s.Filled is false.
func Save(s *character.Sheet) (*Document, error) {
	if !s.Filled {
		return nil, fmt.Errorf("saving %s: %w", s.ID, ErrNotFilled)
	}
	doc := &Document{
		Version:  EngineVersion,
		ID:       s.ID.String(),
		TreePath: slices.Clone(s.TreePath),
		Gear:     slices.Clone(s.Gear),
	}
	for _, a := range s.Data {
		n, ok := a.(*choice.Node)
		if !ok {
			continue
		}
		switch k := n.Kind.(type) {
		case *choice.TextInput:
			switch k.Field {
			case character.ChoiceName:
				doc.Name = k.Value
			case character.ChoiceMotivation:
				doc.Motivation = k.Value
			}
		case *choice.PointBuy:
			cats := bought(k)
			if k.Target == choice.TargetTrivia {
				doc.Trivia = cats
			} else {
				doc.Skills = cats
			}
		case *choice.AssignAbstractGear:
			doc.Picks = slices.Clone(k.Picks)
		}
	}
	for _, w := range s.Weapons {
		doc.Weapons = append(doc.Weapons, *w.Clone())
	}
	return doc, nil
}

// bought returns the categories in which levels were bought.
func bought(pb *choice.PointBuy) map[string]choice.Category {
	out := make(map[string]choice.Category)
	for name, c := range pb.Categories() {
		if c.Bought > 0 {
			out[name] = c
		}
	}
	return out
}

// Restore rebuilds a filled record by replaying doc through the walker's forest.
//
// Postcondition: returns an error wrapping ErrIncompatiblePath when the
// document's decisions do not fit the forest. A version other than
// EngineVersion is logged and replay proceeds.
func (w *Walker) Restore(ctx context.Context, doc *Document) (*character.Sheet, error) {
	if doc.Version != EngineVersion {
		w.logger.Warn("document version differs from engine version",
			zap.String("document", doc.Version),
			zap.String("engine", EngineVersion),
		)
	}
	s := w.NewSheet()
	if doc.ID != "" {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("restoring document: parsing id %q: %w", doc.ID, err)
		}
		s.ID = id
	}
	r := NewReplaySelector(doc)
	if err := w.Run(ctx, s, r); err != nil {
		if errors.Is(err, ErrStuck) {
			err = fmt.Errorf("%w: %w", ErrIncompatiblePath, err)
		}
		return nil, fmt.Errorf("restoring %s: %w", s.ID, err)
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("restoring %s: %w", s.ID, err)
	}
	if doc.Gear != nil && !slices.Equal(doc.Gear, s.Gear) {
		w.logger.Warn("restored gear differs from saved gear",
			zap.Strings("saved", doc.Gear),
			zap.Strings("restored", s.Gear),
		)
	}
	return s, nil
}

// ReplaySelector answers a walk from a saved Document.
type ReplaySelector struct {
	doc   *Document
	path  int
	picks int
}

// NewReplaySelector returns a selector replaying doc from the start.
func NewReplaySelector(doc *Document) *ReplaySelector {
	return &ReplaySelector{doc: doc}
}

// Choose implements Selector.
func (r *ReplaySelector) Choose(_ context.Context, parent *choice.Node, options []Option) (int, error) {
	if r.path >= len(r.doc.TreePath) {
		return 0, fmt.Errorf("%w: tree path exhausted at %q", ErrIncompatiblePath, parent.Name)
	}
	idx := r.doc.TreePath[r.path]
	r.path++
	if idx < 0 || idx >= len(options) {
		return 0, fmt.Errorf("%w: index %d out of range for %q (%d choices)", ErrIncompatiblePath, idx, parent.Name, len(options))
	}
	if !options[idx].Selectable {
		return 0, fmt.Errorf("%w: %q is not selectable under %q", ErrIncompatiblePath, options[idx].Name, parent.Name)
	}
	return idx, nil
}

// Text implements Selector.
func (r *ReplaySelector) Text(_ context.Context, field string) (string, error) {
	switch field {
	case character.ChoiceName:
		return r.doc.Name, nil
	case character.ChoiceMotivation:
		return r.doc.Motivation, nil
	}
	return "", fmt.Errorf("%w: no saved value for field %q", ErrIncompatiblePath, field)
}

// PointBuy implements Selector by re-buying the saved levels through LevelUp.
func (r *ReplaySelector) PointBuy(_ context.Context, pb *choice.PointBuy) error {
	saved := r.doc.Skills
	if pb.Target == choice.TargetTrivia {
		saved = r.doc.Trivia
	}
	names := make([]string, 0, len(saved))
	for name := range saved {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := saved[name]
		if got, _ := pb.Category(name); got.Base != want.Base {
			return fmt.Errorf("%w: %s %q starts at level %d, saved at %d", ErrIncompatiblePath, pb.Target, name, got.Base, want.Base)
		}
		for i := 0; i < want.Bought; i++ {
			if !pb.LevelUp(name) {
				return fmt.Errorf("%w: cannot re-buy level %d of %s %q", ErrIncompatiblePath, want.Base+i+1, pb.Target, name)
			}
		}
	}
	return nil
}

// Pick implements choice.Picker.
func (r *ReplaySelector) Pick(_ context.Context, req choice.PickRequest) (int, error) {
	if r.picks >= len(r.doc.Picks) {
		return 0, fmt.Errorf("%w: gear picks exhausted at %s %s", ErrIncompatiblePath, req.Phase, req.Level)
	}
	p := r.doc.Picks[r.picks]
	r.picks++
	if p.Phase != req.Phase || p.Level != req.Level || (req.Phase == choice.PhaseModification && p.Weapon != req.WeaponIndex) {
		return 0, fmt.Errorf("%w: saved pick %s %s does not match request %s %s", ErrIncompatiblePath, p.Phase, p.Level, req.Phase, req.Level)
	}
	if p.Item == "" {
		if req.Optional {
			return -1, nil
		}
		return 0, fmt.Errorf("%w: saved %s pick is empty", ErrIncompatiblePath, p.Phase)
	}
	if i := slices.Index(req.Options, p.Item); i >= 0 {
		return i, nil
	}
	return 0, fmt.Errorf("%w: %q is not a %s %s option", ErrIncompatiblePath, p.Item, req.Phase, req.Level)
}

// Done reports an error when saved decisions were left unused.
func (r *ReplaySelector) Done() error {
	if r.path < len(r.doc.TreePath) {
		return fmt.Errorf("%w: %d tree path entries left over", ErrIncompatiblePath, len(r.doc.TreePath)-r.path)
	}
	if r.picks < len(r.doc.Picks) {
		return fmt.Errorf("%w: %d gear picks left over", ErrIncompatiblePath, len(r.doc.Picks)-r.picks)
	}
	return nil
}
