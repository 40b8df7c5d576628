package circuit

// Targets are a level's win conditions. Zero values mean "not required".
type Targets struct {
	BulbsOn          int  `json:"bulbs_on,omitempty" yaml:"bulbs_on,omitempty" validate:"min=0"`
	MotorOn          bool `json:"motor_on,omitempty" yaml:"motor_on,omitempty"`
	SwitchRequired   bool `json:"switch_required,omitempty" yaml:"switch_required,omitempty"`
	ResistorRequired bool `json:"resistor_required,omitempty" yaml:"resistor_required,omitempty"`
	ParallelBulbs    bool `json:"parallel_bulbs,omitempty" yaml:"parallel_bulbs,omitempty"`
	SeriesBulbs      int  `json:"series_bulbs,omitempty" yaml:"series_bulbs,omitempty" validate:"min=0"`
	BuzzerOn         bool `json:"buzzer_on,omitempty" yaml:"buzzer_on,omitempty"`
}

// Tallies are the raw outputs of a circuit, reported back for feedback and scoring.
type Tallies struct {
	BulbsOn  int  `json:"bulbs_on"`
	MotorOn  bool `json:"motor_on"`
	BuzzerOn bool `json:"buzzer_on"`
}

type Result struct {
	OK      bool    `json:"ok"`
	Tallies Tallies `json:"tallies"`
}

// targetRule checks one Targets field. It applies only when the level sets that field.
type targetRule struct {
	name    string
	applies func(Targets) bool
	passes  func(Targets, Tallies, []PlacedComponent) bool
}

// targetRules are checked in order; all applicable rules must pass.
var targetRules = []targetRule{
	{
		name:    "bulbs_on",
		applies: func(t Targets) bool { return t.BulbsOn > 0 },
		passes:  func(t Targets, tl Tallies, _ []PlacedComponent) bool { return tl.BulbsOn >= t.BulbsOn },
	},
	{
		name:    "motor_on",
		applies: func(t Targets) bool { return t.MotorOn },
		passes:  func(_ Targets, tl Tallies, _ []PlacedComponent) bool { return tl.MotorOn },
	},
	{
		name:    "switch_required",
		applies: func(t Targets) bool { return t.SwitchRequired },
		passes: func(_ Targets, _ Tallies, cs []PlacedComponent) bool {
			for _, c := range cs {
				if c.Type == Switch && c.On {
					return true
				}
			}
			return false
		},
	},
	{
		name:    "resistor_required",
		applies: func(t Targets) bool { return t.ResistorRequired },
		passes:  func(_ Targets, _ Tallies, cs []PlacedComponent) bool { return countType(cs, Resistor) > 0 },
	},
	{
		name:    "parallel_bulbs",
		applies: func(t Targets) bool { return t.ParallelBulbs },
		passes:  func(_ Targets, tl Tallies, _ []PlacedComponent) bool { return tl.BulbsOn >= 2 },
	},
	{
		name:    "series_bulbs",
		applies: func(t Targets) bool { return t.SeriesBulbs > 0 },
		passes:  func(t Targets, _ Tallies, cs []PlacedComponent) bool { return countType(cs, Bulb) >= t.SeriesBulbs },
	},
	{
		name:    "buzzer_on",
		applies: func(t Targets) bool { return t.BuzzerOn },
		passes:  func(_ Targets, tl Tallies, _ []PlacedComponent) bool { return tl.BuzzerOn },
	},
}

// TargetNames lists the target fields in evaluation order.
func TargetNames() []string {
	names := make([]string, len(targetRules))
	for i, r := range targetRules {
		names[i] = r.name
	}
	return names
}

// Active lists the targets t sets, in evaluation order.
func (t Targets) Active() []string {
	var names []string
	for _, r := range targetRules {
		if r.applies(t) {
			names = append(names, r.name)
		}
	}
	return names
}

func tally(components []PlacedComponent, powered map[string]bool) Tallies {
	var tl Tallies
	for _, c := range components {
		if !powered[c.ID] {
			continue
		}
		switch c.Type {
		case Bulb:
			tl.BulbsOn++
		case Motor:
			tl.MotorOn = true
		case Buzzer:
			tl.BuzzerOn = true
		}
	}
	return tl
}

// Evaluate checks powered flags against a level's targets.
// A circuit without a battery always fails with zeroed tallies.
func Evaluate(components []PlacedComponent, powered map[string]bool, targets Targets) Result {
	if _, ok := FindBattery(components); !ok {
		return Result{}
	}

	res := Result{OK: true, Tallies: tally(components, powered)}
	for _, rule := range targetRules {
		if rule.applies(targets) && !rule.passes(targets, res.Tallies, components) {
			res.OK = false
			break
		}
	}
	return res
}

// EvaluateCircuit solves the snapshot and evaluates it against targets in one go.
func EvaluateCircuit(components []PlacedComponent, wires []Wire, targets Targets) (Result, PowerState) {
	ps := Solve(components, wires)
	return Evaluate(components, ps.Components, targets), ps
}
