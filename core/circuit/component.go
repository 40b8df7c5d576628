package circuit

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ComponentType is one of the six parts a player can place.
type ComponentType string

const (
	Battery  ComponentType = "battery"
	Bulb     ComponentType = "bulb"
	Switch   ComponentType = "switch"
	Motor    ComponentType = "motor"
	Resistor ComponentType = "resistor"
	Buzzer   ComponentType = "buzzer"
)

var ComponentTypes = []ComponentType{Battery, Bulb, Switch, Motor, Resistor, Buzzer}

var (
	ErrUnknownComponent     = errors.New("component not found")
	ErrUnknownComponentType = errors.New("unknown component type")
)

func (t ComponentType) IsValid() bool {
	for _, ct := range ComponentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// ParseComponentType returns the ComponentType named s.
// Unknown names return an error suggesting the closest valid type, if any.
func ParseComponentType(s string) (ComponentType, error) {
	t := ComponentType(s)
	if t.IsValid() {
		return t, nil
	}
	if suggestion, ok := suggestComponentType(s); ok {
		return "", errors.Wrapf(ErrUnknownComponentType, "%q, did you mean %q?", s, suggestion)
	}
	return "", errors.Wrapf(ErrUnknownComponentType, "%q", s)
}

// Rotation in degrees, clockwise.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

func (r Rotation) IsValid() bool {
	return r == Rotate0 || r == Rotate90 || r == Rotate180 || r == Rotate270
}

// Next returns the rotation a quarter turn clockwise.
func (r Rotation) Next() Rotation {
	return (r.normalize() + 90) % 360
}

// IsVertical tells whether terminals sit above/below the centre instead of left/right.
func (r Rotation) IsVertical() bool {
	n := r.normalize()
	return n == Rotate90 || n == Rotate270
}

// normalize snaps any angle to the closest lower quarter turn in [0, 360).
func (r Rotation) normalize() Rotation {
	n := int(r) % 360
	if n < 0 {
		n += 360
	}
	return Rotation(n - n%90)
}

// PlacedComponent is a part on the board. It is referenced everywhere by ID, never by position.
type PlacedComponent struct {
	ID       string        `json:"id" validate:"required"`
	Type     ComponentType `json:"type" validate:"componenttype"`
	X        int           `json:"x" validate:"min=0"`
	Y        int           `json:"y" validate:"min=0"`
	Rotation Rotation      `json:"rotation" validate:"rotation"`
	On       bool          `json:"on,omitempty"` // switch only
}

// Conductive tells whether current can flow between the component's own terminals.
// Only an open switch blocks.
func (c PlacedComponent) Conductive() bool {
	if c.Type == Switch {
		return c.On
	}
	return true
}

func (c PlacedComponent) MarshalJSON() ([]byte, error) {
	type alias PlacedComponent
	return json.Marshal(struct {
		alias
		Terminals Terminals `json:"terminals"`
	}{alias(c), TerminalsOf(c)})
}

func findComponent(components []PlacedComponent, id string) (int, bool) {
	for i, c := range components {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindBattery returns the first battery in placement order.
func FindBattery(components []PlacedComponent) (PlacedComponent, bool) {
	for _, c := range components {
		if c.Type == Battery {
			return c, true
		}
	}
	return PlacedComponent{}, false
}

func countType(components []PlacedComponent, t ComponentType) int {
	var n int
	for _, c := range components {
		if c.Type == t {
			n++
		}
	}
	return n
}
