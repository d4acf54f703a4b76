// Package choice implements the character-creation forest: choice nodes, their
// kinds and layered effects, prerequisites, the point-buy engine and the
// abstract-gear resolver.
package choice

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/eoschar/internal/game/character"
)

// Node is one decision point of the creation forest.
//
// A Node owns its Children exclusively: AddChild inserts a deep copy, so a
// template subtree may be attached under several parents without aliasing.
type Node struct {
	Name        string
	Description string
	// Category is empty only for roots.
	Category         string
	ChildrenCategory string
	RootID           int
	Children         []*Node
	Prerequisites    []Prerequisite
	// Kind is the base effect; nil for plain choices.
	Kind Kind
	// Effects are layered on top of Kind and applied in order.
	Effects []Effect
}

// NewNode returns a node with the given name and kind.
func NewNode(name string, kind Kind) *Node {
	return &Node{Name: name, Kind: kind}
}

// ChoiceName implements character.Applier.
func (n *Node) ChoiceName() string { return n.Name }

// ChoiceCategory implements character.Applier.
func (n *Node) ChoiceCategory() string { return n.Category }

// IsRoot reports whether n has no category.
func (n *Node) IsRoot() bool { return n.Category == "" }

// Clone returns a deep copy of n, its kind state, effects and subtree.
func (n *Node) Clone() *Node {
	out := *n
	if n.Kind != nil {
		out.Kind = n.Kind.clone()
	}
	out.Prerequisites = append([]Prerequisite(nil), n.Prerequisites...)
	out.Effects = append([]Effect(nil), n.Effects...)
	out.Children = nil
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			if c != nil {
				out.Children[i] = c.Clone()
			}
		}
	}
	return &out
}

// AddChild appends a deep copy of child and returns the copy.
//
// Precondition: child must be non-nil.
func (n *Node) AddChild(child *Node) *Node {
	if child == nil {
		panic(fmt.Sprintf("Node.AddChild(%q): precondition violated: child must be non-nil", n.Name))
	}
	c := child.Clone()
	n.Children = append(n.Children, c)
	return c
}

// AddEffect layers e on top of the node's existing behaviour.
func (n *Node) AddEffect(e Effect) {
	n.Effects = append(n.Effects, e)
}

// AddPrerequisite registers a predicate that must hold for n to be selectable.
func (n *Node) AddPrerequisite(p Prerequisite) {
	n.Prerequisites = append(n.Prerequisites, p)
}

// CascadeRootID propagates n's RootID to every descendant.
//
// Precondition: n is a root, or override is true.
func (n *Node) CascadeRootID(override bool) {
	if !n.IsRoot() && !override {
		panic(fmt.Sprintf("Node.CascadeRootID(%q): precondition violated: not a root and override is false", n.Name))
	}
	for _, c := range n.Children {
		c.RootID = n.RootID
		c.CascadeRootID(true)
	}
}

// ErrNilChild is returned by CascadeChildrenCategory when a subtree holds a nil child.
var ErrNilChild = errors.New("choice: nil child in tree")

// CascadeChildrenCategory sets every child's Category to its parent's
// ChildrenCategory, recursively.
//
// Postcondition: all-or-nothing. On error no category has been changed.
func (n *Node) CascadeChildrenCategory() error {
	type update struct {
		node     *Node
		category string
	}
	var updates []update
	var walk func(p *Node) error
	walk = func(p *Node) error {
		for i, c := range p.Children {
			if c == nil {
				return fmt.Errorf("%w: %q child %d", ErrNilChild, p.Name, i)
			}
			updates = append(updates, update{c, p.ChildrenCategory})
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(n); err != nil {
		return err
	}
	for _, u := range updates {
		u.node.Category = u.category
	}
	return nil
}

// CheckPrerequisites reports whether every prerequisite holds for s.
// Prerequisites only read s.
func (n *Node) CheckPrerequisites(s *character.Sheet) bool {
	for _, p := range n.Prerequisites {
		if !p.Holds(s) {
			return false
		}
	}
	return true
}

// Implement applies the kind and then every layered effect, in order.
// It is not idempotent: the record's history guards against double application.
func (n *Node) Implement(s *character.Sheet) error {
	if n.Kind != nil {
		if err := n.Kind.implement(n, s); err != nil {
			return err
		}
	}
	for _, e := range n.Effects {
		if err := e.Apply(s); err != nil {
			return fmt.Errorf("%s: %w", n.Name, err)
		}
	}
	return nil
}

// ChildNames returns the names of n's children in order.
func (n *Node) ChildNames() []string {
	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Name
	}
	return names
}

// Display writes n and its subtree as an indented tree.
func (n *Node) Display(w io.Writer) error {
	return n.display(w, 0)
}

func (n *Node) display(w io.Writer, depth int) error {
	var b strings.Builder
	if depth > 0 {
		b.WriteString(strings.Repeat("| ", depth-1))
		b.WriteString("|-")
	}
	b.WriteString(n.Name)
	if n.Category != "" {
		fmt.Fprintf(&b, " (%s)", n.Category)
	}
	if depth == 0 && n.RootID != 0 {
		fmt.Fprintf(&b, " | <tree %d>", n.RootID)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.display(w, depth+1); err != nil {
			return err
		}
	}
	return nil
}
