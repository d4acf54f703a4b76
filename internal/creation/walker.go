package creation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/content"
)

// Walker visits every tree of a choice forest, in order, against one record.
type Walker struct {
	catalog *content.Catalog
	forest  []*choice.Node
	logger  *zap.Logger
}

// NewWalker returns a walker over forest.
//
// Precondition: cat must be non-nil and forest non-empty. A nil logger is
// replaced by a no-op logger.
func NewWalker(cat *content.Catalog, forest []*choice.Node, logger *zap.Logger) *Walker {
	if cat == nil {
		panic("creation.NewWalker: precondition violated: catalog must be non-nil")
	}
	if len(forest) == 0 {
		panic("creation.NewWalker: precondition violated: forest must be non-empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{catalog: cat, forest: forest, logger: logger}
}

// Forest returns the trees the walker visits.
func (w *Walker) Forest() []*choice.Node { return w.forest }

// NewSheet returns a blank record backed by the walker's catalog.
func (w *Walker) NewSheet() *character.Sheet {
	return character.NewSheet(w.catalog, w.logger)
}

// Run walks every tree against s, asking sel for each decision.
//
// Precondition: s has an empty history.
// Postcondition: on success s is filled and flushed. On error s is not
// filled; history committed before the error stays and the stats reflect it.
func (w *Walker) Run(ctx context.Context, s *character.Sheet, sel Selector) error {
	if len(s.Data) != 0 {
		panic("Walker.Run: precondition violated: record history must be empty")
	}
	for _, tree := range w.forest {
		if err := w.walkTree(ctx, s, sel, tree); err != nil {
			return err
		}
	}
	s.Filled = true
	if err := s.Flush(); err != nil {
		return err
	}
	w.logger.Info("character filled",
		zap.String("id", s.ID.String()),
		zap.String("name", s.ChoiceNames[character.ChoiceName]),
		zap.Int("choices", len(s.Data)),
	)
	return nil
}

// walkTree visits one tree. The tree is cloned first so that kind state
// filled in during the walk never leaks back into the forest.
func (w *Walker) walkTree(ctx context.Context, s *character.Sheet, sel Selector, tree *choice.Node) error {
	if err := ctx.Err(); err != nil {
		return abort(err)
	}
	root := tree.Clone()
	switch k := root.Kind.(type) {
	case *choice.TextInput:
		v, err := sel.Text(ctx, k.Field)
		if err != nil {
			return abort(err)
		}
		k.Value = v
		return s.Commit(root)
	case *choice.PointBuy:
		k.Load(s)
		if err := sel.PointBuy(ctx, k); err != nil {
			return abort(err)
		}
		return s.Commit(root)
	case *choice.AssignAbstractGear:
		if err := k.Resolve(ctx, s, sel); err != nil {
			// Resolve mutates the record as it goes; rebuild it from history.
			if ferr := s.Flush(); ferr != nil {
				w.logger.Warn("rebuilding record after failed gear assignment", zap.Error(ferr))
			}
			return abort(err)
		}
		// Resolve already mutated the record; replay happens on Flush.
		s.Record(root)
		return nil
	}

	if err := s.Commit(root); err != nil {
		return err
	}
	for node := root; len(node.Children) > 0; {
		idx, err := w.choose(ctx, s, sel, node)
		if err != nil {
			return err
		}
		child := node.Children[idx]
		if err := s.Commit(child); err != nil {
			return err
		}
		s.TreePath = append(s.TreePath, idx)
		w.logger.Debug("choice committed",
			zap.Int("tree", root.RootID),
			zap.String("category", child.Category),
			zap.String("choice", child.Name),
		)
		node = child
	}
	return nil
}

// choose asks sel until it names a selectable child of node.
func (w *Walker) choose(ctx context.Context, s *character.Sheet, sel Selector, node *choice.Node) (int, error) {
	options := make([]Option, len(node.Children))
	selectable := 0
	for i, c := range node.Children {
		ok := c.CheckPrerequisites(s)
		if ok {
			selectable++
		}
		options[i] = Option{Name: c.Name, Category: c.Category, Description: c.Description, Selectable: ok}
	}
	if selectable == 0 {
		return 0, fmt.Errorf("%w: none of the %d choices under %q is selectable", ErrStuck, len(options), node.Name)
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, abort(err)
		}
		idx, err := sel.Choose(ctx, node, options)
		if err != nil {
			return 0, abort(err)
		}
		if idx >= 0 && idx < len(options) && options[idx].Selectable {
			return idx, nil
		}
		w.logger.Warn("unselectable choice; asking again",
			zap.String("node", node.Name),
			zap.Int("index", idx),
		)
	}
}

// abort maps context cancellation onto ErrAbort and passes other errors through.
func abort(err error) error {
	if errors.Is(err, ErrAbort) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAbort, err)
	}
	return err
}
