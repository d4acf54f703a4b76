// Package render lays a filled character record out as a fixed-width text sheet.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cory-johannsen/eoschar/internal/game/character"
	"github.com/cory-johannsen/eoschar/internal/game/weapon"
	"github.com/cory-johannsen/eoschar/internal/storage/file"
)

const (
	sheetWidth = 64
	labelWidth = 18
)

// Text formats snap as a printable sheet. The section order and column
// widths are fixed so two equal snapshots always render identically.
func Text(snap character.Snapshot) string {
	var b strings.Builder

	rule(&b, "ERA OF SILENCE")
	for _, c := range character.ChoiceOrder {
		field(&b, c, snap.ChoiceNames[c])
	}

	rule(&b, "QUALITIES")
	for _, q := range snap.Qualities {
		field(&b, q.Name, q.Rating.String())
	}

	rule(&b, "SKILLS")
	for _, sk := range snap.Skills {
		fmt.Fprintf(&b, "%-*s %2d  (%s)\n", labelWidth, sk.Name, sk.Level, sk.Quality)
	}

	rule(&b, "COMBAT")
	field(&b, "Speed", snap.Combat.Speed)
	field(&b, "AV", fmt.Sprint(snap.Combat.AV))
	field(&b, "Toughness", fmt.Sprint(snap.Combat.Toughness))
	field(&b, character.ShootingDie, snap.Combat.ShootingDie.String())
	field(&b, character.FightingDie, snap.Combat.FightingDie.String())

	rule(&b, "TRIVIA")
	list(&b, snap.Trivia)

	rule(&b, "TRAITS")
	if len(snap.Traits) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, t := range snap.Traits {
		fmt.Fprintf(&b, "  %s\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(&b, "      %s\n", t.Description)
		}
	}

	rule(&b, "WEAPONS")
	if len(snap.Weapons) == 0 {
		b.WriteString("  (none)\n")
	}
	for i := range snap.Weapons {
		writeWeapon(&b, &snap.Weapons[i])
	}

	rule(&b, "GEAR")
	list(&b, snap.Gear)
	field(&b, "Money", fmt.Sprint(snap.Money))

	b.WriteString(strings.Repeat("=", sheetWidth))
	b.WriteString("\n")
	return b.String()
}

func rule(b *strings.Builder, title string) {
	pad := sheetWidth - len(title) - 4
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(b, "== %s %s\n", title, strings.Repeat("=", pad))
}

func field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-*s %s\n", labelWidth, label+":", value)
}

func list(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "  %s\n", it)
	}
}

func writeWeapon(b *strings.Builder, w *weapon.Weapon) {
	var reach string
	switch {
	case w.Range > 0:
		reach = fmt.Sprintf("Range %d", w.Range)
	default:
		r := w.Reach
		if r == 0 {
			r = 1
		}
		reach = fmt.Sprintf("Reach %d", r)
	}
	heavy := ""
	if w.Heavy {
		heavy = "  Heavy"
	}
	fmt.Fprintf(b, "  %s (%s)  %s  Acc %+d  AP %d%s\n", w.Name, w.Type, reach, w.Accuracy, w.AP, heavy)

	levels := make([]string, 0, len(w.Modifications))
	for lvl := range w.Modifications {
		levels = append(levels, lvl)
	}
	sort.Strings(levels)
	for _, lvl := range levels {
		fmt.Fprintf(b, "      Mod %s: %s\n", lvl, strings.Join(w.Modifications[lvl], ", "))
	}
	for _, sp := range w.Special {
		fmt.Fprintf(b, "      * %s\n", sp)
	}
}

// WriteFile flushes s and writes its sheet to path.
//
// Precondition: s must be filled.
// Postcondition: on error path is left untouched; a failed flush writes nothing.
func WriteFile(s *character.Sheet, path string) error {
	if !s.Filled {
		return fmt.Errorf("rendering %s: record is not filled", s.ID)
	}
	if err := s.Flush(); err != nil {
		return fmt.Errorf("rendering %s: %w", s.ID, err)
	}
	sheet := Text(s.Snapshot())
	return file.WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, sheet)
		return err
	})
}
