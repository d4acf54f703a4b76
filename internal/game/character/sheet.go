package character

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/game/dice"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
)

// Sheet is the character record.
//
// Stats are never edited directly by drivers: they are the result of applying
// the Data history, in order, to a blank record.
type Sheet struct {
	ID          uuid.UUID
	ChoiceNames map[string]string
	Qualities   map[string]dice.Rating
	Skills      map[string]*Skill
	Combat      Combat
	Trivia      []string
	Traits      []content.Trait
	Weapons     []*weapon.Weapon
	// RawWeapons are granted weapons awaiting modification by the abstract-gear resolver.
	RawWeapons []*weapon.Weapon
	Gear       []string
	Money      int
	Abstract   Abstract

	// Data is the ordered history of applied choices.
	Data []Applier
	// TreePath is the ordered list of child indices selected during creation.
	TreePath []int
	// Filled is true once every tree and the abstract-gear resolver have run.
	Filled bool

	catalog *content.Catalog
	logger  *zap.Logger
}

// NewSheet returns a blank record backed by cat.
//
// Precondition: cat must be non-nil. A nil logger is replaced by a no-op logger.
// Postcondition: the record has a fresh ID, empty history and blank stats.
func NewSheet(cat *content.Catalog, logger *zap.Logger) *Sheet {
	if cat == nil {
		panic("character.NewSheet: precondition violated: catalog must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sheet{ID: uuid.New(), catalog: cat, logger: logger}
	s.Reset()
	return s
}

// Catalog returns the content the record is built from.
func (s *Sheet) Catalog() *content.Catalog { return s.catalog }

// Logger returns the record's logger.
func (s *Sheet) Logger() *zap.Logger { return s.logger }

// Reset returns every stat to its blank default. History, tree path, ID and
// Filled are left alone.
func (s *Sheet) Reset() {
	rules := s.catalog.Rules
	s.ChoiceNames = make(map[string]string, len(ChoiceOrder))
	for _, c := range ChoiceOrder {
		s.ChoiceNames[c] = ""
	}
	s.Qualities = make(map[string]dice.Rating, len(s.catalog.Qualities))
	for _, q := range s.catalog.Qualities {
		s.Qualities[q] = rules.DefaultQuality
	}
	s.Skills = make(map[string]*Skill, len(s.catalog.Skills))
	for _, sk := range s.catalog.Skills {
		s.Skills[sk.Name] = &Skill{Level: rules.DefaultSkillLevel, Quality: sk.Quality}
	}
	s.Combat = Combat{
		Speed:       rules.DefaultSpeed,
		ShootingDie: rules.DefaultCombatDie,
		FightingDie: rules.DefaultCombatDie,
	}
	s.Trivia = nil
	s.Traits = nil
	s.Weapons = nil
	s.RawWeapons = nil
	s.Gear = nil
	s.Money = 0
	s.Abstract = newAbstract()
	s.deriveToughness()
}

func (s *Sheet) deriveToughness() {
	s.Combat.Toughness = s.catalog.Rules.ToughnessBase - s.Qualities[s.catalog.Rules.ToughnessQuality].Int()
}

// Apply runs a's effect against the record and recomputes derived stats.
// It does not record a in the history.
//
// Postcondition: on error the record may be partially mutated and must be flushed.
func (s *Sheet) Apply(a Applier) error {
	err := a.Implement(s)
	s.deriveToughness()
	if err != nil {
		s.logger.Warn("failed to apply choice",
			zap.String("choice", a.ChoiceName()),
			zap.String("category", a.ChoiceCategory()),
			zap.Error(err),
		)
		return fmt.Errorf("applying %q: %w", a.ChoiceName(), err)
	}
	return nil
}

// Commit applies a and, on success, appends it to the history.
func (s *Sheet) Commit(a Applier) error {
	if err := s.Apply(a); err != nil {
		return err
	}
	s.Data = append(s.Data, a)
	return nil
}

// Record appends a to the history without applying it. It is used for
// choices whose effect was already produced interactively against this record.
func (s *Sheet) Record(a Applier) {
	s.Data = append(s.Data, a)
}

// Flush resets the record and re-applies every history entry in order.
//
// Postcondition: on success the stats are a pure function of Data; on error
// Filled is false and the returned error wraps ErrFlush.
func (s *Sheet) Flush() error {
	s.Reset()
	for i, a := range s.Data {
		if err := s.Apply(a); err != nil {
			s.Filled = false
			return fmt.Errorf("%w: history entry %d: %w", ErrFlush, i, err)
		}
	}
	return nil
}

// Chosen reports whether a choice named name is in the history.
func (s *Sheet) Chosen(name string) bool {
	for _, a := range s.Data {
		if a.ChoiceName() == name {
			return true
		}
	}
	return false
}

// SetChoiceName records the display label for a category.
func (s *Sheet) SetChoiceName(category, value string) {
	s.ChoiceNames[category] = value
}

// SetQuality sets a quality rating.
//
// Postcondition: returns an error, without mutation, when the quality is unknown or r is off the scale.
func (s *Sheet) SetQuality(name string, r dice.Rating) error {
	if _, ok := s.Qualities[name]; !ok {
		return fmt.Errorf("unknown quality %q", name)
	}
	if !r.Valid() {
		return fmt.Errorf("quality %q: %d is not a die rating", name, int(r))
	}
	s.Qualities[name] = r
	return nil
}

// ImproveQuality moves a quality one step toward d4.
//
// Postcondition: returns false and logs a warning when the quality is unknown or already at d4.
func (s *Sheet) ImproveQuality(name string) bool {
	r, ok := s.Qualities[name]
	if !ok {
		s.logger.Warn("unknown quality", zap.String("quality", name))
		return false
	}
	if !r.Improve() {
		s.logger.Warn("quality already at best die", zap.String("quality", name), zap.Stringer("rating", r))
		return false
	}
	s.Qualities[name] = r
	return true
}

// ImproveCombatDie moves the named combat die (ShootingDie or FightingDie) one step toward d4.
func (s *Sheet) ImproveCombatDie(name string) bool {
	var r *dice.Rating
	switch name {
	case ShootingDie:
		r = &s.Combat.ShootingDie
	case FightingDie:
		r = &s.Combat.FightingDie
	default:
		s.logger.Warn("unknown combat die", zap.String("die", name))
		return false
	}
	if !r.Improve() {
		s.logger.Warn("combat die already at best die", zap.String("die", name))
		return false
	}
	return true
}

// RaiseSkill adds n levels to a skill.
func (s *Sheet) RaiseSkill(name string, n int) error {
	sk, ok := s.Skills[name]
	if !ok {
		return fmt.Errorf("unknown skill %q", name)
	}
	sk.Level += n
	return nil
}

// SetSkillLevel replaces a skill's level.
func (s *Sheet) SetSkillLevel(name string, level int) error {
	sk, ok := s.Skills[name]
	if !ok {
		return fmt.Errorf("unknown skill %q", name)
	}
	sk.Level = level
	return nil
}

// SkillLevel returns a skill's level, or 0 when unknown.
func (s *Sheet) SkillLevel(name string) int {
	if sk, ok := s.Skills[name]; ok {
		return sk.Level
	}
	return 0
}

// AddTrait appends a trait.
func (s *Sheet) AddTrait(t content.Trait) {
	s.Traits = append(s.Traits, t)
}

// AddTrivia adds topics, keeping Trivia a sorted set.
func (s *Sheet) AddTrivia(topics ...string) {
	seen := make(map[string]bool, len(s.Trivia)+len(topics))
	for _, t := range s.Trivia {
		seen[t] = true
	}
	for _, t := range topics {
		if !seen[t] {
			seen[t] = true
			s.Trivia = append(s.Trivia, t)
		}
	}
	sort.Strings(s.Trivia)
}

// KnowsTrivia reports whether topic is in Trivia.
func (s *Sheet) KnowsTrivia(topic string) bool {
	i := sort.SearchStrings(s.Trivia, topic)
	return i < len(s.Trivia) && s.Trivia[i] == topic
}

// AddGear appends concrete items.
func (s *Sheet) AddGear(items ...string) {
	s.Gear = append(s.Gear, items...)
}

// AddMoney adds n to Money.
func (s *Sheet) AddMoney(n int) {
	s.Money += n
}

// AddRawWeapon appends a weapon awaiting modification.
func (s *Sheet) AddRawWeapon(w *weapon.Weapon) {
	s.RawWeapons = append(s.RawWeapons, w)
}

// Entitle applies a gear directive: counters are incremented and "! weapon"
// directives grant a raw weapon from the catalog.
func (s *Sheet) Entitle(d content.Directive) error {
	if d.Kind == content.GearWeapon {
		def, ok := s.catalog.Weapon(d.Weapon)
		if !ok {
			return fmt.Errorf("unknown weapon %q", d.Weapon)
		}
		s.AddRawWeapon(weapon.New(def))
		return nil
	}
	counter := s.Abstract.Counter(d.Kind)
	if counter == nil {
		return fmt.Errorf("no abstract %s entitlement", d.Kind)
	}
	counter[d.Level] += d.Count
	return nil
}

// GrantGear adds a content gear string: a directive is parsed and entitled,
// anything else is a concrete item.
func (s *Sheet) GrantGear(item string) error {
	if !content.IsDirective(item) {
		s.AddGear(item)
		return nil
	}
	d, err := content.ParseDirective(item)
	if err != nil {
		return err
	}
	return s.Entitle(d)
}
