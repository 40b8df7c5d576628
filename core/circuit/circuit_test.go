package circuit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comp(id string, t ComponentType, on ...bool) PlacedComponent {
	c := PlacedComponent{ID: id, Type: t}
	if len(on) > 0 {
		c.On = on[0]
	}
	return c
}

func term(s string) TerminalID {
	id, err := ParseTerminalID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func wire(id, from, to string) Wire {
	return Wire{ID: id, From: term(from), To: term(to)}
}

// loop wires the given components in a single ring: bat:a -> c1 -> c2 ... -> bat:b
func loop(ids ...string) []Wire {
	wires := make([]Wire, 0, len(ids)+1)
	prev := "bat:a"
	for i, id := range ids {
		wires = append(wires, wire(fmt.Sprintf("w%d", i), prev, id+":a"))
		prev = id + ":b"
	}
	return append(wires, wire("wlast", prev, "bat:b"))
}

func TestTerminalsOf(t *testing.T) {
	tests := []struct {
		name  string
		comp  PlacedComponent
		wantA [2]int
		wantB [2]int
	}{
		{name: "0 deg", comp: PlacedComponent{ID: "c", X: 0, Y: 0}, wantA: [2]int{8, 30}, wantB: [2]int{52, 30}},
		{name: "180 deg", comp: PlacedComponent{ID: "c", X: 1, Y: 2, Rotation: Rotate180}, wantA: [2]int{68, 150}, wantB: [2]int{112, 150}},
		{name: "90 deg", comp: PlacedComponent{ID: "c", X: 0, Y: 0, Rotation: Rotate90}, wantA: [2]int{30, 8}, wantB: [2]int{30, 52}},
		{name: "270 deg", comp: PlacedComponent{ID: "c", X: 3, Y: 1, Rotation: Rotate270}, wantA: [2]int{210, 68}, wantB: [2]int{210, 112}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := TerminalsOf(tt.comp)
			assert.Equal(t, TerminalID{ComponentID: "c", Side: SideA}, ts.A.ID)
			assert.Equal(t, TerminalID{ComponentID: "c", Side: SideB}, ts.B.ID)
			assert.Equal(t, tt.wantA, [2]int{ts.A.X, ts.A.Y})
			assert.Equal(t, tt.wantB, [2]int{ts.B.X, ts.B.Y})
		})
	}
}

func TestParseTerminalID(t *testing.T) {
	tests := []struct {
		in      string
		want    TerminalID
		wantErr bool
	}{
		{in: "abc:a", want: TerminalID{ComponentID: "abc", Side: SideA}},
		{in: "a:b:b", want: TerminalID{ComponentID: "a:b", Side: SideB}},
		{in: "abc:c", wantErr: true},
		{in: ":a", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTerminalID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestRotation_Next(t *testing.T) {
	assert.Equal(t, Rotate90, Rotate0.Next())
	assert.Equal(t, Rotate180, Rotate90.Next())
	assert.Equal(t, Rotate270, Rotate180.Next())
	assert.Equal(t, Rotate0, Rotate270.Next())
	assert.Equal(t, Rotate90, Rotation(45).Next())
	assert.Equal(t, Rotate0, Rotation(-90).Next())
}

func TestBuildAdjacency(t *testing.T) {
	components := []PlacedComponent{comp("bat", Battery), comp("bulb", Bulb), comp("sw", Switch)}
	wires := []Wire{wire("w1", "bat:a", "bulb:a"), wire("w2", "sw:a", "sw:a")}
	adj := BuildAdjacency(components, wires)

	t.Run("battery has no internal edge", func(t *testing.T) {
		assert.False(t, adj.Neighbours(term("bat:a")).Has(term("bat:b")))
	})
	t.Run("open switch has no internal edge", func(t *testing.T) {
		assert.False(t, adj.Neighbours(term("sw:a")).Has(term("sw:b")))
	})
	t.Run("self loop wire is dropped", func(t *testing.T) {
		assert.False(t, adj.Neighbours(term("sw:a")).Has(term("sw:a")))
	})
	t.Run("bulb joins its terminals", func(t *testing.T) {
		assert.True(t, adj.Neighbours(term("bulb:a")).Has(term("bulb:b")))
		assert.True(t, adj.Neighbours(term("bulb:b")).Has(term("bulb:a")))
	})
	t.Run("wires are undirected", func(t *testing.T) {
		assert.True(t, adj.Neighbours(term("bat:a")).Has(term("bulb:a")))
		assert.True(t, adj.Neighbours(term("bulb:a")).Has(term("bat:a")))
	})
	t.Run("unwired terminals are nodes", func(t *testing.T) {
		_, ok := adj[term("bat:b")]
		assert.True(t, ok)
		assert.Empty(t, adj.Neighbours(term("bat:b")))
	})
	t.Run("closed switch joins its terminals", func(t *testing.T) {
		closed := BuildAdjacency([]PlacedComponent{comp("sw", Switch, true)}, nil)
		assert.True(t, closed.Neighbours(term("sw:a")).Has(term("sw:b")))
	})
}

func TestReachable_Symmetry(t *testing.T) {
	components := []PlacedComponent{
		comp("bat", Battery), comp("b1", Bulb), comp("b2", Bulb), comp("sw", Switch), comp("m", Motor),
	}
	wires := append(loop("b1", "sw", "b2"), wire("wm", "m:a", "b2:b"))
	adj := BuildAdjacency(components, wires)

	for _, w := range wires {
		fromReach := Reachable(adj, w.From)
		toReach := Reachable(adj, w.To)
		assert.Equal(t, fromReach, toReach, "wire %s", w.ID)
		assert.True(t, fromReach.Has(w.To))
		assert.True(t, toReach.Has(w.From))
	}
}

func TestReachable_SwitchMonotonic(t *testing.T) {
	wires := loop("b1", "sw", "b2")
	off := []PlacedComponent{comp("bat", Battery), comp("b1", Bulb), comp("sw", Switch), comp("b2", Bulb)}
	on := []PlacedComponent{comp("bat", Battery), comp("b1", Bulb), comp("sw", Switch, true), comp("b2", Bulb)}

	adjOff := BuildAdjacency(off, wires)
	adjOn := BuildAdjacency(on, wires)
	for _, start := range []string{"bat:a", "bat:b", "b1:a", "sw:a", "sw:b", "b2:b"} {
		reachOff := Reachable(adjOff, term(start))
		reachOn := Reachable(adjOn, term(start))
		for id := range reachOff {
			assert.True(t, reachOn.Has(id), "from %s: %s reachable with switch off but not on", start, id)
		}
	}
	assert.Less(t, len(Reachable(adjOff, term("bat:a"))), len(Reachable(adjOn, term("bat:a"))))
}

func TestSolve_NoBattery(t *testing.T) {
	configs := []struct {
		name       string
		components []PlacedComponent
		wires      []Wire
	}{
		{name: "empty"},
		{name: "lone bulb", components: []PlacedComponent{comp("b1", Bulb)}},
		{
			name:       "wired ring without battery",
			components: []PlacedComponent{comp("b1", Bulb), comp("sw", Switch, true), comp("m", Motor)},
			wires:      []Wire{wire("w1", "b1:b", "sw:a"), wire("w2", "sw:b", "m:a"), wire("w3", "m:b", "b1:a")},
		},
	}
	for _, cfg := range configs {
		t.Run(cfg.name, func(t *testing.T) {
			res, ps := EvaluateCircuit(cfg.components, cfg.wires, Targets{})
			assert.False(t, res.OK)
			assert.Equal(t, Tallies{}, res.Tallies)
			assert.False(t, ps.HasBattery)
			for id, powered := range ps.Components {
				assert.False(t, powered, id)
			}
			for id, powered := range ps.Wires {
				assert.False(t, powered, id)
			}
		})
	}
}

func TestSolve_DuplicateWiringIsIdempotent(t *testing.T) {
	components := []PlacedComponent{comp("bat", Battery), comp("b1", Bulb)}
	once := loop("b1")
	twice := append(loop("b1"), wire("dup", "b1:a", "bat:a"))

	assert.Equal(t, BuildAdjacency(components, once), BuildAdjacency(components, twice))

	psOnce, psTwice := Solve(components, once), Solve(components, twice)
	assert.Equal(t, psOnce.Plus, psTwice.Plus)
	assert.Equal(t, psOnce.Minus, psTwice.Minus)
	assert.Equal(t, psOnce.Components, psTwice.Components)
}

func TestSolve_PoweredFlags(t *testing.T) {
	tests := []struct {
		name        string
		components  []PlacedComponent
		wires       []Wire
		wantPowered map[string]bool
		wantWires   map[string]bool
	}{
		{
			name:        "isolated bulb",
			components:  []PlacedComponent{comp("bat", Battery), comp("b1", Bulb), comp("b2", Bulb)},
			wires:       loop("b1"),
			wantPowered: map[string]bool{"bat": false, "b1": true, "b2": false},
		},
		{
			name:        "dangling bulb",
			components:  []PlacedComponent{comp("bat", Battery), comp("b1", Bulb)},
			wires:       []Wire{wire("w1", "bat:a", "b1:a")},
			wantPowered: map[string]bool{"bat": false, "b1": false},
			wantWires:   map[string]bool{"w1": false},
		},
		{
			name:        "open switch in series",
			components:  []PlacedComponent{comp("bat", Battery), comp("sw", Switch), comp("b1", Bulb)},
			wires:       loop("sw", "b1"),
			wantPowered: map[string]bool{"bat": false, "sw": false, "b1": false},
			wantWires:   map[string]bool{"w0": false, "w1": false, "wlast": false},
		},
		{
			name:        "closed switch in series",
			components:  []PlacedComponent{comp("bat", Battery), comp("sw", Switch, true), comp("b1", Bulb)},
			wires:       loop("sw", "b1"),
			wantPowered: map[string]bool{"bat": false, "sw": true, "b1": true},
			wantWires:   map[string]bool{"w0": true, "w1": true, "wlast": true},
		},
		{
			name:       "parallel branches",
			components: []PlacedComponent{comp("bat", Battery), comp("b1", Bulb), comp("b2", Bulb)},
			wires: []Wire{
				wire("w1", "bat:a", "b1:a"), wire("w2", "b1:b", "bat:b"),
				wire("w3", "b1:a", "b2:a"), wire("w4", "b2:b", "b1:b"),
			},
			wantPowered: map[string]bool{"bat": false, "b1": true, "b2": true},
		},
		{
			name:        "first battery is the source",
			components:  []PlacedComponent{comp("bat", Battery), comp("b1", Bulb), comp("bat2", Battery), comp("b2", Bulb)},
			wires:       append(loop("b1"), wire("x1", "bat2:a", "b2:a"), wire("x2", "b2:b", "bat2:b")),
			wantPowered: map[string]bool{"bat": false, "b1": true, "bat2": false, "b2": false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := Solve(tt.components, tt.wires)
			assert.True(t, ps.HasBattery)
			assert.Equal(t, tt.wantPowered, ps.Components)
			for id, want := range tt.wantWires {
				assert.Equal(t, want, ps.Wires[id], "wire %s", id)
			}
		})
	}
}

func TestEvaluate_Rules(t *testing.T) {
	bat := comp("bat", Battery)
	tests := []struct {
		name       string
		components []PlacedComponent
		powered    map[string]bool
		targets    Targets
		want       Result
	}{
		{
			name:       "no targets with battery",
			components: []PlacedComponent{bat},
			want:       Result{OK: true},
		},
		{
			name:       "bulbs_on met",
			components: []PlacedComponent{bat, comp("b1", Bulb), comp("b2", Bulb)},
			powered:    map[string]bool{"b1": true, "b2": true},
			targets:    Targets{BulbsOn: 2},
			want:       Result{OK: true, Tallies: Tallies{BulbsOn: 2}},
		},
		{
			name:       "bulbs_on short",
			components: []PlacedComponent{bat, comp("b1", Bulb), comp("b2", Bulb)},
			powered:    map[string]bool{"b1": true},
			targets:    Targets{BulbsOn: 2},
			want:       Result{Tallies: Tallies{BulbsOn: 1}},
		},
		{
			name:       "motor_on",
			components: []PlacedComponent{bat, comp("m", Motor)},
			powered:    map[string]bool{"m": true},
			targets:    Targets{MotorOn: true},
			want:       Result{OK: true, Tallies: Tallies{MotorOn: true}},
		},
		{
			name:       "motor_on unpowered",
			components: []PlacedComponent{bat, comp("m", Motor)},
			targets:    Targets{MotorOn: true},
			want:       Result{},
		},
		{
			name:       "buzzer_on",
			components: []PlacedComponent{bat, comp("bz", Buzzer)},
			powered:    map[string]bool{"bz": true},
			targets:    Targets{BuzzerOn: true},
			want:       Result{OK: true, Tallies: Tallies{BuzzerOn: true}},
		},
		{
			name:       "switch_required but open",
			components: []PlacedComponent{bat, comp("sw", Switch)},
			targets:    Targets{SwitchRequired: true},
			want:       Result{},
		},
		{
			name:       "switch_required closed and unwired",
			components: []PlacedComponent{bat, comp("sw", Switch, true)},
			targets:    Targets{SwitchRequired: true},
			want:       Result{OK: true},
		},
		{
			name:       "switch_required without switch",
			components: []PlacedComponent{bat},
			targets:    Targets{SwitchRequired: true},
			want:       Result{},
		},
		{
			name:       "resistor_required present anywhere",
			components: []PlacedComponent{bat, comp("r", Resistor)},
			targets:    Targets{ResistorRequired: true},
			want:       Result{OK: true},
		},
		{
			name:       "resistor_required missing",
			components: []PlacedComponent{bat},
			targets:    Targets{ResistorRequired: true},
			want:       Result{},
		},
		{
			name:       "series_bulbs counts placed bulbs",
			components: []PlacedComponent{bat, comp("b1", Bulb), comp("b2", Bulb)},
			targets:    Targets{SeriesBulbs: 2},
			want:       Result{OK: true},
		},
		{
			name:       "series_bulbs too few",
			components: []PlacedComponent{bat, comp("b1", Bulb)},
			targets:    Targets{SeriesBulbs: 2},
			want:       Result{},
		},
		{
			name:       "parallel_bulbs needs two lit",
			components: []PlacedComponent{bat, comp("b1", Bulb), comp("b2", Bulb)},
			powered:    map[string]bool{"b1": true},
			targets:    Targets{ParallelBulbs: true},
			want:       Result{Tallies: Tallies{BulbsOn: 1}},
		},
		{
			name:       "parallel_bulbs met",
			components: []PlacedComponent{bat, comp("b1", Bulb), comp("b2", Bulb)},
			powered:    map[string]bool{"b1": true, "b2": true},
			targets:    Targets{ParallelBulbs: true},
			want:       Result{OK: true, Tallies: Tallies{BulbsOn: 2}},
		},
		{
			name:       "one failing field fails all",
			components: []PlacedComponent{bat, comp("b1", Bulb), comp("r", Resistor)},
			powered:    map[string]bool{"b1": true},
			targets:    Targets{BulbsOn: 1, ResistorRequired: true, MotorOn: true},
			want:       Result{Tallies: Tallies{BulbsOn: 1}},
		},
		{
			name:       "no battery",
			components: []PlacedComponent{comp("r", Resistor), comp("b1", Bulb)},
			powered:    map[string]bool{"b1": true},
			targets:    Targets{ResistorRequired: true},
			want:       Result{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.components, tt.powered, tt.targets))
		})
	}
}

func TestTargetNames(t *testing.T) {
	assert.Equal(t,
		[]string{"bulbs_on", "motor_on", "switch_required", "resistor_required", "parallel_bulbs", "series_bulbs", "buzzer_on"},
		TargetNames(),
	)
}

func TestParseComponentType(t *testing.T) {
	tests := []struct {
		in          string
		want        ComponentType
		wantErr     bool
		wantErrText string
	}{
		{in: "bulb", want: Bulb},
		{in: "buzzer", want: Buzzer},
		{in: "Bulb", wantErr: true, wantErrText: `"Bulb", did you mean "bulb"?: unknown component type`},
		{in: "batery", wantErr: true, wantErrText: `"batery", did you mean "battery"?: unknown component type`},
		{in: "capacitor", wantErr: true, wantErrText: `"capacitor": unknown component type`},
		{in: "", wantErr: true, wantErrText: `"": unknown component type`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseComponentType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrText, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
