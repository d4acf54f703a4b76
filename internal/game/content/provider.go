package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Content file identifiers read by Load.
const (
	FileRules             = "rules"
	FileQualities         = "qualities"
	FileSkills            = "skills"
	FileSpecies           = "species"
	FileTraining          = "training"
	FileFocus             = "focus"
	FileCombatSpecialties = "combat_specialties"
	FileBackgrounds       = "backgrounds"
	FileTrivia            = "trivia"
	FileWeapons           = "weapons"
	FileModifications     = "modifications"
	FilePotions           = "potions"
	FileGrenades          = "grenades"
	FileAmmunition        = "ammunition"
	FileKits              = "kits"
)

// Provider returns the raw bytes of a content file by identifier.
type Provider interface {
	Read(id string) ([]byte, error)
}

// FSProvider reads "<id>.yaml" from an fs.FS, typically the embedded content.FS.
type FSProvider struct {
	FS fs.FS
}

// Read implements Provider.
func (p FSProvider) Read(id string) ([]byte, error) {
	data, err := fs.ReadFile(p.FS, id+".yaml")
	if err != nil {
		return nil, fmt.Errorf("reading content %s: %w", id, err)
	}
	return data, nil
}

// DirProvider reads "<id>.yaml" from a directory on disk.
type DirProvider string

// Read implements Provider.
func (d DirProvider) Read(id string) ([]byte, error) {
	path := filepath.Join(string(d), id+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
