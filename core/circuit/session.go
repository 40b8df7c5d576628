package circuit

import (
	"github.com/google/uuid"
)

// ConnectOutcome reports what a terminal pick did.
type ConnectOutcome string

const (
	ConnectPending   ConnectOutcome = "pending"   // first pick recorded
	ConnectCancelled ConnectOutcome = "cancelled" // same terminal picked twice
	ConnectWired     ConnectOutcome = "wired"     // new wire created
	ConnectDuplicate ConnectOutcome = "duplicate" // wire already existed
	ConnectIgnored   ConnectOutcome = "ignored"   // terminal of a component not on the board
)

var newID = func() string { return uuid.New().String() } // mockable

// Snapshot is a read-only copy of a session, with the powered state the renderer needs.
type Snapshot struct {
	LevelID      string            `json:"level_id"`
	Components   []PlacedComponent `json:"components"`
	Wires        []Wire            `json:"wires"`
	Pending      *TerminalID       `json:"pending,omitempty"`
	Powered      map[string]bool   `json:"powered"`
	WiresPowered map[string]bool   `json:"wires_powered"`
}

// Session is the board of one level being played: placed components, drawn wires,
// and the half-drawn wire if any. It is not safe for concurrent use.
type Session struct {
	level      LevelSpec
	components []PlacedComponent
	wires      []Wire
	pending    TerminalID
}

func NewSession(level LevelSpec) *Session {
	return &Session{level: level}
}

func (s *Session) Level() LevelSpec {
	return s.level
}

func (s *Session) Components() []PlacedComponent {
	cs := make([]PlacedComponent, len(s.components))
	copy(cs, s.components)
	return cs
}

func (s *Session) Wires() []Wire {
	ws := make([]Wire, len(s.wires))
	copy(ws, s.wires)
	return ws
}

// Pending returns the first pick of a wire being drawn.
func (s *Session) Pending() (TerminalID, bool) {
	return s.pending, !s.pending.IsZero()
}

func (s *Session) Component(id string) (PlacedComponent, error) {
	i, ok := findComponent(s.components, id)
	if !ok {
		return PlacedComponent{}, ErrUnknownComponent
	}
	return s.components[i], nil
}

// defaultCell walks the board in row-major order so consecutive placements do not stack.
func (s *Session) defaultCell() (int, int) {
	n := len(s.components) % (GridCols * GridRows)
	return n % GridCols, n / GridCols
}

// PlaceComponent adds a component of type t if the level's palette allows one more.
// It reports false, and changes nothing, otherwise.
func (s *Session) PlaceComponent(t ComponentType) (PlacedComponent, bool) {
	if countType(s.components, t) >= s.level.Cap(t) {
		return PlacedComponent{}, false
	}
	x, y := s.defaultCell()
	c := PlacedComponent{ID: newID(), Type: t, X: x, Y: y, Rotation: Rotate0}
	s.components = append(s.components, c)
	return c, true
}

// MoveComponent moves a component to (x, y), clamped to the board.
func (s *Session) MoveComponent(id string, x, y int) (PlacedComponent, error) {
	i, ok := findComponent(s.components, id)
	if !ok {
		return PlacedComponent{}, ErrUnknownComponent
	}
	s.components[i].X, s.components[i].Y = ClampToGrid(x, y)
	return s.components[i], nil
}

// RotateComponent turns a component a quarter turn clockwise.
func (s *Session) RotateComponent(id string) (PlacedComponent, error) {
	i, ok := findComponent(s.components, id)
	if !ok {
		return PlacedComponent{}, ErrUnknownComponent
	}
	s.components[i].Rotation = s.components[i].Rotation.Next()
	return s.components[i], nil
}

// ToggleSwitch flips a switch. Other component types are left as they are.
func (s *Session) ToggleSwitch(id string) (PlacedComponent, error) {
	i, ok := findComponent(s.components, id)
	if !ok {
		return PlacedComponent{}, ErrUnknownComponent
	}
	if s.components[i].Type == Switch {
		s.components[i].On = !s.components[i].On
	}
	return s.components[i], nil
}

// ConnectTerminal is one pick of the two-pick wire gesture.
// The first pick is held as pending. Picking it again cancels. Picking another terminal
// draws a wire between the two, unless one already joins them, and clears the pending pick.
func (s *Session) ConnectTerminal(id TerminalID) (ConnectOutcome, *Wire) {
	if _, ok := findComponent(s.components, id.ComponentID); !ok {
		return ConnectIgnored, nil
	}
	if id.Side != SideA && id.Side != SideB {
		return ConnectIgnored, nil
	}

	pending, ok := s.Pending()
	switch {
	case !ok:
		s.pending = id
		return ConnectPending, nil
	case pending == id:
		s.pending = TerminalID{}
		return ConnectCancelled, nil
	}

	s.pending = TerminalID{}
	if hasWire(s.wires, pending, id) {
		return ConnectDuplicate, nil
	}
	w := Wire{ID: newID(), From: pending, To: id}
	s.wires = append(s.wires, w)
	return ConnectWired, &w
}

// EvaluateCircuit checks the board against the level's targets.
func (s *Session) EvaluateCircuit() Result {
	res, _ := EvaluateCircuit(s.components, s.wires, s.level.Targets)
	return res
}

// PoweredState tells, per component id, whether it is powered.
func (s *Session) PoweredState() map[string]bool {
	return Solve(s.components, s.wires).Components
}

func (s *Session) Snapshot() Snapshot {
	ps := Solve(s.components, s.wires)
	snap := Snapshot{
		LevelID:      s.level.ID,
		Components:   s.Components(),
		Wires:        s.Wires(),
		Powered:      ps.Components,
		WiresPowered: ps.Wires,
	}
	if pending, ok := s.Pending(); ok {
		snap.Pending = &pending
	}
	return snap
}

// Reset clears the board.
func (s *Session) Reset() {
	s.components = nil
	s.wires = nil
	s.pending = TerminalID{}
}
