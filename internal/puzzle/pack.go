package puzzle

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/dotdaily/internal/model"
)

//go:embed assets/*.json
var embedded embed.FS

// Pack holds the puzzle for each daily category.
type Pack map[model.Category]Document

// DefaultPack returns the built-in puzzles.
func DefaultPack() (Pack, error) {
	pack := Pack{}
	for _, c := range model.Categories() {
		data, err := embedded.ReadFile("assets/" + string(c) + ".json")
		if err != nil {
			return nil, fmt.Errorf("missing built-in puzzle for %s: %w", c, err)
		}
		doc, err := Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("built-in puzzle %s: %w", c, err)
		}
		pack[c] = doc
	}
	return pack, nil
}

// LoadPack returns the built-in puzzles with any <category>.json found in dir
// taking precedence. An empty or missing dir yields the defaults.
func LoadPack(dir string) (Pack, error) {
	pack, err := DefaultPack()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return pack, nil
	}
	for _, c := range model.Categories() {
		path := filepath.Join(dir, string(c)+".json")
		doc, err := Load(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		pack[c] = doc
	}
	return pack, nil
}

// Get returns the puzzle for a category.
func (p Pack) Get(c model.Category) (Document, bool) {
	doc, ok := p[c]
	return doc, ok
}
