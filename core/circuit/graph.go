package circuit

// TerminalSet is a set of terminal identities.
type TerminalSet map[TerminalID]struct{}

func (s TerminalSet) Has(id TerminalID) bool {
	_, ok := s[id]
	return ok
}

func (s TerminalSet) add(id TerminalID) {
	s[id] = struct{}{}
}

// Adjacency is an undirected graph over terminals.
type Adjacency map[TerminalID]TerminalSet

func (adj Adjacency) node(id TerminalID) TerminalSet {
	n, ok := adj[id]
	if !ok {
		n = make(TerminalSet)
		adj[id] = n
	}
	return n
}

func (adj Adjacency) connect(t1, t2 TerminalID) {
	adj.node(t1).add(t2)
	adj.node(t2).add(t1)
}

// Neighbours returns the terminals directly joined to id.
func (adj Adjacency) Neighbours(id TerminalID) TerminalSet {
	return adj[id]
}

// BuildAdjacency builds the circuit graph from scratch.
// Wires become edges as drawn. Every conductive component except the battery
// joins its own two terminals. Each placed component's terminals are present as nodes,
// even when nothing is wired to them.
func BuildAdjacency(components []PlacedComponent, wires []Wire) Adjacency {
	adj := make(Adjacency, 2*len(components))

	for _, w := range wires {
		if w.IsSelfLoop() {
			continue
		}
		adj.connect(w.From, w.To)
	}

	for _, c := range components {
		a, b := TerminalIDs(c.ID)
		adj.node(a)
		adj.node(b)
		if c.Type == Battery || !c.Conductive() {
			continue
		}
		adj.connect(a, b)
	}
	return adj
}
