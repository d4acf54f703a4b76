package choice

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/content"
)

// Target selects what a PointBuy session levels.
type Target string

const (
	TargetSkills Target = "skills"
	TargetTrivia Target = "trivia"
)

// Category is the level state of one point-buy category.
type Category struct {
	// Bought is the number of levels purchased in this session.
	Bought int `json:"bought" yaml:"bought"`
	// Base is the number of levels imported by Load.
	Base int `json:"base" yaml:"base"`
}

// Level returns Bought + Base.
func (c Category) Level() int { return c.Bought + c.Base }

// PointBuy is a budgeted levelling session for skills or trivia.
//
// Invariants: CurrentPoints never goes negative; no category's level exceeds
// MaxLevel; LevelDown never takes Bought below StartingLevel.
type PointBuy struct {
	Target         Target
	StartingPoints int
	CurrentPoints  int
	StartingLevel  int
	MaxLevel       int
	// PointsPerLevel maps a target level to the cost of reaching it.
	PointsPerLevel map[int]int
	// Absolute commits bought+base instead of adding bought to the record.
	Absolute bool

	categories map[string]*Category
	changed    bool
	logger     *zap.Logger
}

// NewPointBuy returns a fresh session configured by rules.
//
// Postcondition: CurrentPoints == StartingPoints and no category is known.
func NewPointBuy(target Target, rules content.PointBuyRules, logger *zap.Logger) *PointBuy {
	if logger == nil {
		logger = zap.NewNop()
	}
	costs := make(map[int]int, len(rules.PointsPerLevel))
	for lvl, cost := range rules.PointsPerLevel {
		costs[lvl] = cost
	}
	return &PointBuy{
		Target:         target,
		StartingPoints: rules.StartingPoints,
		CurrentPoints:  rules.StartingPoints,
		StartingLevel:  rules.StartingLevel,
		MaxLevel:       rules.MaxLevel,
		PointsPerLevel: costs,
		Absolute:       rules.Absolute,
		categories:     make(map[string]*Category),
		logger:         logger,
	}
}

// Load seeds base levels from the record: skill levels for a skills session,
// level 1 for every known topic for a trivia session.
//
// Precondition: no LevelUp or LevelDown has succeeded in this session.
func (p *PointBuy) Load(s *character.Sheet) {
	if p.changed {
		panic("PointBuy.Load: precondition violated: called after a level change")
	}
	switch p.Target {
	case TargetSkills:
		for name, sk := range s.Skills {
			p.category(name).Base = sk.Level
		}
	case TargetTrivia:
		for _, topic := range s.Trivia {
			p.category(topic).Base = 1
		}
	default:
		panic(fmt.Sprintf("PointBuy.Load: precondition violated: unknown target %q", p.Target))
	}
}

func (p *PointBuy) category(name string) *Category {
	c, ok := p.categories[name]
	if !ok {
		c = &Category{}
		p.categories[name] = c
	}
	return c
}

// LevelUp buys one level of name. Unknown categories are initialised at level 0.
//
// Postcondition: returns false and leaves the session unchanged when the
// category is at MaxLevel, the next level has no defined cost, or the cost
// exceeds CurrentPoints.
func (p *PointBuy) LevelUp(name string) bool {
	c := p.category(name)
	current := c.Level()
	if current >= p.MaxLevel {
		p.logger.Warn("already at maximum level", zap.String("category", name), zap.Int("max_level", p.MaxLevel))
		return false
	}
	cost, ok := p.PointsPerLevel[current+1]
	if !ok {
		p.logger.Warn("no cost defined for level", zap.String("category", name), zap.Int("level", current+1))
		return false
	}
	if cost > p.CurrentPoints {
		p.logger.Warn("insufficient points",
			zap.String("category", name),
			zap.Int("level", current+1),
			zap.Int("cost", cost),
			zap.Int("points", p.CurrentPoints),
		)
		return false
	}
	p.CurrentPoints -= cost
	c.Bought++
	p.changed = true
	return true
}

// LevelDown relinquishes one bought level of name and credits its cost.
//
// Postcondition: returns false and leaves the session unchanged when the
// category is unknown or Bought <= StartingLevel.
func (p *PointBuy) LevelDown(name string) bool {
	c, ok := p.categories[name]
	if !ok {
		p.logger.Warn("unknown category", zap.String("category", name))
		return false
	}
	if c.Bought <= p.StartingLevel {
		p.logger.Warn("no bought levels to redeem; remaining levels come from another source", zap.String("category", name))
		return false
	}
	p.CurrentPoints += p.PointsPerLevel[c.Level()]
	c.Bought--
	p.changed = true
	return true
}

// Category returns the state of name and whether it is known.
func (p *PointBuy) Category(name string) (Category, bool) {
	c, ok := p.categories[name]
	if !ok {
		return Category{}, false
	}
	return *c, true
}

// Categories returns a copy of every category's state.
func (p *PointBuy) Categories() map[string]Category {
	out := make(map[string]Category, len(p.categories))
	for name, c := range p.categories {
		out[name] = *c
	}
	return out
}

// SpentPoints returns the total cost of every currently bought level.
func (p *PointBuy) SpentPoints() int {
	total := 0
	for _, c := range p.categories {
		for lvl := c.Base + 1; lvl <= c.Level(); lvl++ {
			total += p.PointsPerLevel[lvl]
		}
	}
	return total
}

func (p *PointBuy) sortedNames() []string {
	names := make([]string, 0, len(p.categories))
	for name := range p.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *PointBuy) implement(n *Node, s *character.Sheet) error {
	switch p.Target {
	case TargetSkills:
		for _, name := range p.sortedNames() {
			c := p.categories[name]
			if c.Bought <= 0 {
				continue
			}
			var err error
			if p.Absolute {
				err = s.SetSkillLevel(name, c.Level())
			} else {
				err = s.RaiseSkill(name, c.Bought)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", n.Name, err)
			}
		}
	case TargetTrivia:
		var topics []string
		for _, name := range p.sortedNames() {
			if p.categories[name].Level() > 0 {
				topics = append(topics, name)
			}
		}
		s.AddTrivia(topics...)
	default:
		return fmt.Errorf("%s: unknown point-buy target %q", n.Name, p.Target)
	}
	return nil
}

func (p *PointBuy) clone() Kind {
	c := *p
	c.PointsPerLevel = make(map[int]int, len(p.PointsPerLevel))
	for lvl, cost := range p.PointsPerLevel {
		c.PointsPerLevel[lvl] = cost
	}
	c.categories = make(map[string]*Category, len(p.categories))
	for name, cat := range p.categories {
		v := *cat
		c.categories[name] = &v
	}
	return &c
}
