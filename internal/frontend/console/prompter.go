package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/creation"
	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/game/dice"
)

// Operator commands accepted at prompts.
const (
	CommandAbort  = "abort"
	CommandSwitch = "switch"
	CommandDone   = "done"
	CommandRandom = "random"
	CommandSkip   = "skip"
)

// Prompter is a creation.Selector that asks a human operator. Every prompt
// accepts "abort", which ends the walk with creation.ErrAbort.
type Prompter struct {
	in      *bufio.Reader
	out     io.Writer
	src     dice.Source
	catalog *content.Catalog
	logger  *zap.Logger
}

// NewPrompter returns a prompter reading answers from in and writing prompts to out.
//
// Precondition: in, out, src and cat must be non-nil. A nil logger is
// replaced by a no-op logger.
func NewPrompter(in io.Reader, out io.Writer, src dice.Source, cat *content.Catalog, logger *zap.Logger) *Prompter {
	if in == nil || out == nil || src == nil || cat == nil {
		panic("console.NewPrompter: precondition violated: in, out, src and cat must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prompter{in: bufio.NewReader(in), out: out, src: src, catalog: cat, logger: logger}
}

func (p *Prompter) writeLine(text string) {
	_, _ = fmt.Fprint(p.out, text+"\n")
}

// readLine prompts and returns the trimmed answer.
//
// Postcondition: returns an error wrapping creation.ErrAbort when the
// operator types "abort", the input ends or ctx is done.
func (p *Prompter) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", creation.ErrAbort, err)
	}
	_, _ = fmt.Fprint(p.out, Colorize(BrightWhite, prompt))
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: input closed", creation.ErrAbort)
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, CommandAbort) {
		return "", creation.ErrAbort
	}
	return line, nil
}

// readIndex prompts until the operator enters a number in [low, high].
func (p *Prompter) readIndex(ctx context.Context, prompt string, low, high int) (int, error) {
	for {
		line, err := p.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= low && n <= high {
			return n, nil
		}
		p.logger.Debug("invalid selection", zap.String("input", line))
		p.writeLine(Colorize(Red, "Invalid selection."))
	}
}

// Choose implements creation.Selector. Unavailable options are listed but
// cannot be picked.
func (p *Prompter) Choose(ctx context.Context, parent *choice.Node, options []creation.Option) (int, error) {
	heading := parent.Name
	if parent.ChildrenCategory != "" && parent.ChildrenCategory != parent.Name {
		heading = fmt.Sprintf("%s (%s)", parent.Name, parent.ChildrenCategory)
	}
	p.writeLine("")
	p.writeLine(Colorize(BrightYellow, heading))
	for i, o := range options {
		name := Colorize(BrightWhite, o.Name)
		if !o.Selectable {
			name = Colorize(Dim, o.Name+" (unavailable)")
		}
		p.writeLine(fmt.Sprintf("  %s%d%s. %s", Green, i+1, Reset, name))
		if o.Description != "" {
			p.writeLine("     " + o.Description)
		}
	}
	for {
		n, err := p.readIndex(ctx, fmt.Sprintf("Select [1-%d]: ", len(options)), 1, len(options))
		if err != nil {
			return 0, err
		}
		if options[n-1].Selectable {
			return n - 1, nil
		}
		p.writeLine(Colorf(Red, "%s is unavailable: a prerequisite is not met.", options[n-1].Name))
	}
}

// Text implements creation.Selector. "random" draws a name or motivation.
func (p *Prompter) Text(ctx context.Context, field string) (string, error) {
	for {
		line, err := p.readLine(ctx, fmt.Sprintf("\nEnter your character's %s (or 'random'): ", strings.ToLower(field)))
		if err != nil {
			return "", err
		}
		if strings.EqualFold(line, CommandRandom) {
			var pool []string
			switch field {
			case character.ChoiceName:
				pool = creation.RandomNames
			case character.ChoiceMotivation:
				pool = creation.RandomMotivations
			}
			if len(pool) > 0 {
				line = pool[p.src.Intn(len(pool))]
				p.writeLine(Colorf(Cyan, "Random %s selected: %s", strings.ToLower(field), line))
				return line, nil
			}
		}
		if line != "" {
			return line, nil
		}
		p.writeLine(Colorf(Red, "%s must not be empty.", field))
	}
}

// PointBuy implements creation.Selector. The operator picks categories by
// number to raise them; "switch" toggles between raising and lowering and
// "done" ends the session.
func (p *Prompter) PointBuy(ctx context.Context, pb *choice.PointBuy) error {
	names := p.categories(pb.Target)
	raising := true
	for {
		mode := "raise"
		if !raising {
			mode = "lower"
		}
		p.writeLine("")
		p.writeLine(Colorf(BrightYellow, "%s: %d of %d points left (mode: %s)",
			titleCase(string(pb.Target)), pb.CurrentPoints, pb.StartingPoints, mode))
		for i, name := range names {
			c, _ := pb.Category(name)
			p.writeLine(fmt.Sprintf("  %s%d%s. %-20s level %d (+%d)", Green, i+1, Reset, name, c.Level(), c.Bought))
		}
		line, err := p.readLine(ctx, fmt.Sprintf("Select [1-%d], 'switch' or 'done': ", len(names)))
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case CommandDone:
			return nil
		case CommandSwitch:
			raising = !raising
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(names) {
			p.writeLine(Colorize(Red, "Invalid selection."))
			continue
		}
		name := names[n-1]
		if raising && !pb.LevelUp(name) {
			p.writeLine(Colorf(Red, "Cannot raise %s.", name))
		}
		if !raising && !pb.LevelDown(name) {
			p.writeLine(Colorf(Red, "Cannot lower %s.", name))
		}
	}
}

func (p *Prompter) categories(target choice.Target) []string {
	if target == choice.TargetTrivia {
		return p.catalog.Trivia
	}
	names := make([]string, len(p.catalog.Skills))
	for i, s := range p.catalog.Skills {
		names[i] = s.Name
	}
	return names
}

// Pick implements choice.Picker. Optional requests accept "skip".
func (p *Prompter) Pick(ctx context.Context, req choice.PickRequest) (int, error) {
	p.writeLine("")
	if req.Phase == choice.PhaseModification && req.Weapon != nil {
		p.writeLine(Colorf(BrightYellow, "Choose a level %s modification for %s (%d left)", req.Level, req.Weapon.Name, req.Remaining))
	} else {
		p.writeLine(Colorf(BrightYellow, "Choose a %s %s (%d left)", req.Level, req.Phase, req.Remaining))
	}
	for i, o := range req.Options {
		p.writeLine(fmt.Sprintf("  %s%d%s. %s", Green, i+1, Reset, o))
	}
	prompt := fmt.Sprintf("Select [1-%d]: ", len(req.Options))
	if req.Optional {
		prompt = fmt.Sprintf("Select [1-%d] or 'skip': ", len(req.Options))
	}
	for {
		line, err := p.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		if req.Optional && strings.EqualFold(line, CommandSkip) {
			return -1, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(req.Options) {
			return n - 1, nil
		}
		p.writeLine(Colorize(Red, "Invalid selection."))
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
