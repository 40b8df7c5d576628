package circuit

import (
	"strings"

	"github.com/pkg/errors"
)

// Board geometry, in grid cells and render pixels.
const (
	GridCols       = 10
	GridRows       = 7
	CellSize       = 60
	TerminalOffset = 22
)

var ErrInvalidTerminal = errors.New("invalid terminal")

type Side string

const (
	SideA Side = "a" // "+" pole on a battery
	SideB Side = "b" // "-" pole on a battery
)

// TerminalID identifies one of a component's two connection points.
// Its text form is "<componentId>:<side>".
type TerminalID struct {
	ComponentID string
	Side        Side
}

func (id TerminalID) String() string {
	return id.ComponentID + ":" + string(id.Side)
}

func (id TerminalID) IsZero() bool {
	return id == TerminalID{}
}

func ParseTerminalID(s string) (TerminalID, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return TerminalID{}, errors.Wrapf(ErrInvalidTerminal, "%q", s)
	}
	id := TerminalID{ComponentID: s[:i], Side: Side(s[i+1:])}
	if id.Side != SideA && id.Side != SideB {
		return TerminalID{}, errors.Wrapf(ErrInvalidTerminal, "%q: side must be a or b", s)
	}
	return id, nil
}

func (id TerminalID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *TerminalID) UnmarshalText(b []byte) error {
	parsed, err := ParseTerminalID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Terminal is a connection point with its render coordinates.
type Terminal struct {
	ID TerminalID `json:"id"`
	X  int        `json:"x"`
	Y  int        `json:"y"`
}

type Terminals struct {
	A Terminal `json:"a"`
	B Terminal `json:"b"`
}

// TerminalIDs returns the component's two terminal identities, without geometry.
func TerminalIDs(componentID string) (a, b TerminalID) {
	return TerminalID{ComponentID: componentID, Side: SideA}, TerminalID{ComponentID: componentID, Side: SideB}
}

// CellCenter returns the render coordinates of the centre of grid cell (x, y).
func CellCenter(x, y int) (int, int) {
	return x*CellSize + CellSize/2, y*CellSize + CellSize/2
}

// TerminalsOf derives both terminals of c. It is the single source of terminal geometry.
// Side a sits at the negative offset from the centre and side b at the positive one,
// horizontally for 0/180 and vertically for 90/270.
func TerminalsOf(c PlacedComponent) Terminals {
	cx, cy := CellCenter(c.X, c.Y)
	idA, idB := TerminalIDs(c.ID)

	if c.Rotation.IsVertical() {
		return Terminals{
			A: Terminal{ID: idA, X: cx, Y: cy - TerminalOffset},
			B: Terminal{ID: idB, X: cx, Y: cy + TerminalOffset},
		}
	}
	return Terminals{
		A: Terminal{ID: idA, X: cx - TerminalOffset, Y: cy},
		B: Terminal{ID: idB, X: cx + TerminalOffset, Y: cy},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampToGrid snaps (x, y) into the board.
func ClampToGrid(x, y int) (int, int) {
	return clamp(x, 0, GridCols-1), clamp(y, 0, GridRows-1)
}
