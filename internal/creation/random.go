package creation

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/game/dice"
)

// RandomNames are the names a RandomSelector draws from.
var RandomNames = []string{
	"Aldric", "Bren", "Casimir", "Dova", "Esker",
	"Fen", "Galen", "Hesper", "Iwo", "Jorun",
	"Kestrel", "Lio", "Maren", "Nim", "Orsa",
	"Perrin", "Quill", "Rook", "Sella", "Tamsin",
}

// RandomMotivations are the motivations a RandomSelector draws from.
var RandomMotivations = []string{
	"Find the voice that fell silent.",
	"Repay a debt to the temple that raised me.",
	"Map the drowned archives before they are looted.",
	"Avenge my caravan.",
	"Prove the old relics can be made to work again.",
	"Keep my sister out of the war.",
}

// maxPointBuySteps bounds a random point-buy session.
const maxPointBuySteps = 100

// RandomSelector makes every decision from a dice.Source. Prerequisites
// are respected, so a random walk never needs to be re-prompted.
type RandomSelector struct {
	src     dice.Source
	catalog *content.Catalog
}

// NewRandomSelector returns a selector drawing from src.
//
// Precondition: src and cat must be non-nil.
func NewRandomSelector(src dice.Source, cat *content.Catalog) *RandomSelector {
	if src == nil || cat == nil {
		panic("creation.NewRandomSelector: precondition violated: source and catalog must be non-nil")
	}
	return &RandomSelector{src: src, catalog: cat}
}

// Choose implements Selector.
func (r *RandomSelector) Choose(_ context.Context, parent *choice.Node, options []Option) (int, error) {
	var candidates []int
	for i, o := range options {
		if o.Selectable {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrStuck, parent.Name)
	}
	return candidates[r.src.Intn(len(candidates))], nil
}

// Text implements Selector.
func (r *RandomSelector) Text(_ context.Context, field string) (string, error) {
	switch field {
	case character.ChoiceName:
		return RandomNames[r.src.Intn(len(RandomNames))], nil
	case character.ChoiceMotivation:
		return RandomMotivations[r.src.Intn(len(RandomMotivations))], nil
	}
	return "", fmt.Errorf("random selector: no values for field %q", field)
}

// PointBuy implements Selector. It buys affordable levels at random until
// nothing more can be bought.
func (r *RandomSelector) PointBuy(_ context.Context, pb *choice.PointBuy) error {
	names := r.categories(pb.Target)
	for step := 0; step < maxPointBuySteps; step++ {
		var affordable []string
		for _, name := range names {
			if canLevelUp(pb, name) {
				affordable = append(affordable, name)
			}
		}
		if len(affordable) == 0 {
			return nil
		}
		pb.LevelUp(affordable[r.src.Intn(len(affordable))])
	}
	return nil
}

func (r *RandomSelector) categories(target choice.Target) []string {
	if target == choice.TargetTrivia {
		return r.catalog.Trivia
	}
	names := make([]string, len(r.catalog.Skills))
	for i, s := range r.catalog.Skills {
		names[i] = s.Name
	}
	return names
}

// canLevelUp reports whether LevelUp(name) would succeed.
func canLevelUp(pb *choice.PointBuy, name string) bool {
	c, _ := pb.Category(name)
	next := c.Level() + 1
	cost, ok := pb.PointsPerLevel[next]
	return next <= pb.MaxLevel && ok && cost <= pb.CurrentPoints
}

// Pick implements choice.Picker. Optional requests are skipped with the
// same odds as any single option.
func (r *RandomSelector) Pick(_ context.Context, req choice.PickRequest) (int, error) {
	if req.Optional {
		return r.src.Intn(len(req.Options)+1) - 1, nil
	}
	return r.src.Intn(len(req.Options)), nil
}
