package choice

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/scripting"
)

// Root tree names.
const (
	RootName               = "Name"
	RootSpecies            = "Species"
	RootTalent             = "Talent"
	RootCombatDice         = "Shooting and Fighting Dice"
	RootTraining           = "Training"
	RootFocus              = "Focus"
	RootSkills             = "Skills"
	RootCombatSpecialty    = "Combat Specialty"
	RootBackground         = "Background"
	RootTrivia             = "Trivia"
	RootMotivation         = "Motivation"
	RootAssignAbstractGear = "Assign Abstract Gear"
)

// BuildForest builds every creation tree from cat, in visitation order.
// Each root has a unique RootID, cascaded to its descendants, and every
// child's Category is its parent's ChildrenCategory.
//
// Precondition: cat must be non-nil and validated. A nil evaluator is
// replaced by one using the default instruction limit.
func BuildForest(cat *content.Catalog, ev *scripting.Evaluator, logger *zap.Logger) ([]*Node, error) {
	if cat == nil {
		panic("choice.BuildForest: precondition violated: catalog must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ev == nil {
		ev = scripting.NewEvaluator(0, logger)
	}
	b := &builder{cat: cat, ev: ev}

	trees := []*Node{
		NewNode(RootName, &TextInput{Field: character.ChoiceName}),
		b.species(),
		b.talent(),
		b.combatDice(),
		b.training(),
		b.focus(),
		NewNode(RootSkills, NewPointBuy(TargetSkills, cat.Rules.Skills, logger)),
		b.combatSpecialty(),
		b.background(),
		NewNode(RootTrivia, NewPointBuy(TargetTrivia, cat.Rules.Trivia, logger)),
		NewNode(RootMotivation, &TextInput{Field: character.ChoiceMotivation}),
		NewNode(RootAssignAbstractGear, NewAssignAbstractGear(cat, logger)),
	}
	if b.err != nil {
		return nil, b.err
	}
	for i, t := range trees {
		t.RootID = i + 1
		t.CascadeRootID(false)
		if err := t.CascadeChildrenCategory(); err != nil {
			return nil, fmt.Errorf("building %s tree: %w", t.Name, err)
		}
	}
	return trees, nil
}

type builder struct {
	cat *content.Catalog
	ev  *scripting.Evaluator
	err error
}

func (b *builder) species() *Node {
	root := &Node{Name: RootSpecies, ChildrenCategory: "Species"}
	for _, def := range b.cat.Species {
		n := &Node{Name: def.Name, Description: def.Description, ChildrenCategory: "Species Trait", Kind: &Species{Def: def}}
		for i := range def.Traits {
			n.AddChild(b.option(&def.Traits[i]))
		}
		root.AddChild(n)
	}
	return root
}

func (b *builder) talent() *Node {
	root := &Node{Name: RootTalent, ChildrenCategory: "Talent"}
	for _, q := range b.cat.Qualities {
		n := NewNode(q, &Talent{Quality: q})
		if b.cat.Rules.TalentExclusion != "" {
			n.AddPrerequisite(NotChosen{Name: fmt.Sprintf(b.cat.Rules.TalentExclusion, q)})
		}
		root.AddChild(n)
	}
	return root
}

func (b *builder) combatDice() *Node {
	root := &Node{Name: RootCombatDice, ChildrenCategory: "Die to Boost"}
	for _, die := range []string{character.ShootingDie, character.FightingDie} {
		n := NewNode(die, nil)
		n.AddEffect(ImproveCombatDie{Die: die})
		root.AddChild(n)
	}
	return root
}

func (b *builder) training() *Node {
	root := &Node{Name: RootTraining, ChildrenCategory: "Training"}
	for _, def := range b.cat.Training {
		n := &Node{Name: def.Name, Description: def.Description, ChildrenCategory: "Gear Option", Kind: &Training{Def: def}}
		for i := range def.Options {
			n.AddChild(b.option(&def.Options[i]))
		}
		root.AddChild(n)
	}
	return root
}

func (b *builder) focus() *Node {
	root := &Node{Name: RootFocus, ChildrenCategory: "Focus"}
	for _, def := range b.cat.Focuses {
		root.AddChild(&Node{Name: def.Name, Description: def.Description, Kind: &Focus{Def: def}})
	}
	return root
}

func (b *builder) combatSpecialty() *Node {
	root := &Node{Name: RootCombatSpecialty, ChildrenCategory: "Combat Specialty"}
	for _, def := range b.cat.CombatSpecialties {
		n := &Node{Name: def.Name, Description: def.Description, ChildrenCategory: "Gear Option", Kind: &CombatSpecialty{Def: def}}
		for i := range def.Options {
			n.AddChild(b.option(&def.Options[i]))
		}
		root.AddChild(n)
	}
	return root
}

func (b *builder) background() *Node {
	root := &Node{Name: RootBackground, ChildrenCategory: "Background"}
	for _, def := range b.cat.Backgrounds {
		root.AddChild(&Node{Name: def.Name, Description: def.Description, Kind: &Background{Def: def}})
	}
	return root
}

// option converts a content option, and its nested options, into a node.
func (b *builder) option(o *content.Option) *Node {
	n := &Node{Name: o.Name, Description: o.Description, ChildrenCategory: o.ChildrenCategory}
	switch o.OptionKind() {
	case content.OptionTrait:
		n.Kind = &Trait{Description: o.Description}
	case content.OptionItem:
		gearType := o.GearType
		if gearType == "" {
			gearType = content.GearGeneral
		}
		item := &Item{GearType: gearType, ItemName: o.ItemName(), Level: o.Level, Count: o.Count, Abstract: o.Abstract}
		if gearType == content.GearWeapon {
			def, ok := b.cat.Weapon(o.ItemName())
			if !ok && b.err == nil {
				b.err = fmt.Errorf("option %q: unknown weapon %q", o.Name, o.ItemName())
			}
			item.Weapon = def
		}
		n.Kind = item
	}
	if o.Improve != "" {
		n.AddEffect(ImproveQuality{Quality: o.Improve})
	}
	for _, g := range o.Grants {
		n.AddEffect(Grant{Gear: g})
	}
	if o.Weapon != nil {
		n.AddEffect(AddWeapon{Def: o.Weapon})
	}
	if o.Requires != "" {
		if err := b.ev.Compile(o.Requires); err != nil && b.err == nil {
			b.err = fmt.Errorf("option %q: %w", o.Name, err)
		}
		n.AddPrerequisite(Script{Expr: o.Requires, Evaluator: b.ev})
	}
	for i := range o.Options {
		n.AddChild(b.option(&o.Options[i]))
	}
	return n
}
