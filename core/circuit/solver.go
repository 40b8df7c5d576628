package circuit

// Reachable returns every terminal transitively joined to start, start included.
func Reachable(adj Adjacency, start TerminalID) TerminalSet {
	seen := TerminalSet{start: {}}
	queue := []TerminalID{start}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for next := range adj[curr] {
			if seen.Has(next) {
				continue
			}
			seen.add(next)
			queue = append(queue, next)
		}
	}
	return seen
}

// PowerState is the powered view of one circuit snapshot.
type PowerState struct {
	HasBattery bool
	Battery    string
	Plus       TerminalSet
	Minus      TerminalSet
	Components map[string]bool // component id -> powered
	Wires      map[string]bool // wire id -> powered
}

// bridges tells whether t1 and t2 sit one in each pole's reachability set, in either order.
func (ps PowerState) bridges(t1, t2 TerminalID) bool {
	return (ps.Plus.Has(t1) && ps.Minus.Has(t2)) || (ps.Minus.Has(t1) && ps.Plus.Has(t2))
}

// Solve computes which components and wires carry power.
// The first battery in placement order is the source. Without a battery nothing is powered.
// The battery itself is always reported unpowered.
func Solve(components []PlacedComponent, wires []Wire) PowerState {
	ps := PowerState{
		Plus:       TerminalSet{},
		Minus:      TerminalSet{},
		Components: make(map[string]bool, len(components)),
		Wires:      make(map[string]bool, len(wires)),
	}
	for _, c := range components {
		ps.Components[c.ID] = false
	}
	for _, w := range wires {
		ps.Wires[w.ID] = false
	}

	battery, ok := FindBattery(components)
	if !ok {
		return ps
	}
	ps.HasBattery = true
	ps.Battery = battery.ID

	adj := BuildAdjacency(components, wires)
	plus, minus := TerminalIDs(battery.ID)
	ps.Plus = Reachable(adj, plus)
	ps.Minus = Reachable(adj, minus)

	for _, c := range components {
		if c.Type == Battery || !c.Conductive() {
			continue
		}
		a, b := TerminalIDs(c.ID)
		ps.Components[c.ID] = ps.bridges(a, b)
	}
	for _, w := range wires {
		if w.IsSelfLoop() {
			continue
		}
		ps.Wires[w.ID] = ps.bridges(w.From, w.To)
	}
	return ps
}
