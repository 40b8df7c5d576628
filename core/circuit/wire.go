package circuit

// Wire joins two distinct terminals. Direction is irrelevant: {a,b} and {b,a} are the same wire.
type Wire struct {
	ID   string     `json:"id" validate:"required"`
	From TerminalID `json:"from"`
	To   TerminalID `json:"to"`
}

type wireKey [2]TerminalID

func pairKey(t1, t2 TerminalID) wireKey {
	if t2.String() < t1.String() {
		t1, t2 = t2, t1
	}
	return wireKey{t1, t2}
}

func (w Wire) key() wireKey {
	return pairKey(w.From, w.To)
}

// Connects tells whether w joins t1 and t2, in either order.
func (w Wire) Connects(t1, t2 TerminalID) bool {
	return w.key() == pairKey(t1, t2)
}

func (w Wire) IsSelfLoop() bool {
	return w.From == w.To
}

func hasWire(wires []Wire, t1, t2 TerminalID) bool {
	for _, w := range wires {
		if w.Connects(t1, t2) {
			return true
		}
	}
	return false
}
