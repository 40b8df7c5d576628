package circuit

import (
	"github.com/pkg/errors"
)

var ErrUnknownLevel = errors.New("level not found")

// PaletteItem allows up to Max components of Type on a level.
type PaletteItem struct {
	Type ComponentType `json:"type" yaml:"type" validate:"componenttype"`
	Max  int           `json:"max" yaml:"max" validate:"min=1,max=12"`
}

// LevelSpec is a level's configuration: what can be placed and what must be achieved.
type LevelSpec struct {
	ID          string        `json:"id" yaml:"id" validate:"required,slug"`
	Title       string        `json:"title" yaml:"title" validate:"required"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Palette     []PaletteItem `json:"palette" yaml:"palette" validate:"required,min=1,dive"`
	Targets     Targets       `json:"targets" yaml:"targets"`
}

// Cap returns how many components of type t may be placed. 0 means t is not on the palette.
func (l LevelSpec) Cap(t ComponentType) int {
	for _, item := range l.Palette {
		if item.Type == t {
			return item.Max
		}
	}
	return 0
}

// Catalog is the ordered list of levels a game goes through.
type Catalog struct {
	levels []LevelSpec
	index  map[string]int
}

func NewCatalog(levels ...LevelSpec) (*Catalog, error) {
	if len(levels) == 0 {
		return nil, errors.New("catalog has no levels")
	}
	cat := &Catalog{
		levels: make([]LevelSpec, len(levels)),
		index:  make(map[string]int, len(levels)),
	}
	for i, lvl := range levels {
		if _, exists := cat.index[lvl.ID]; exists {
			return nil, errors.Errorf("duplicate level id %q", lvl.ID)
		}
		cat.index[lvl.ID] = i
		cat.levels[i] = lvl
	}
	return cat, nil
}

func (cat *Catalog) Len() int {
	return len(cat.levels)
}

func (cat *Catalog) All() []LevelSpec {
	levels := make([]LevelSpec, len(cat.levels))
	copy(levels, cat.levels)
	return levels
}

// At returns the level at position i in play order.
func (cat *Catalog) At(i int) (LevelSpec, bool) {
	if i < 0 || i >= len(cat.levels) {
		return LevelSpec{}, false
	}
	return cat.levels[i], true
}

func (cat *Catalog) Get(id string) (LevelSpec, error) {
	i, ok := cat.index[id]
	if !ok {
		return LevelSpec{}, errors.Wrapf(ErrUnknownLevel, "%q", id)
	}
	return cat.levels[i], nil
}

// IndexOf returns the play-order position of level id, or -1.
func (cat *Catalog) IndexOf(id string) int {
	if i, ok := cat.index[id]; ok {
		return i
	}
	return -1
}
