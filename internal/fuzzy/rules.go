package fuzzy

import (
	"errors"
	"fmt"
)

// ErrRule indicates a rule table referencing an undefined label.
var ErrRule = errors.New("fuzzy: invalid rule table")

// Rule is one Mamdani rule: IF error IS Error AND rate IS Rate THEN the
// output variable IS Out. Firing strength is the min of the two antecedent
// memberships.
type Rule struct {
	Error Label
	Rate  Label
	Out   Label
}

// RuleTable enumerates the consequent label for every (error, rate)
// antecedent pair. Rows are error labels, columns are error-rate labels.
type RuleTable [numLabels][numLabels]Label

func (rt RuleTable) Validate() error {
	for i, row := range rt {
		for j, out := range row {
			if !out.valid() {
				return fmt.Errorf("%w: (%s, %s) -> %d", ErrRule, Label(i), Label(j), int(out))
			}
		}
	}
	return nil
}

// Rules expands the table into its 25 explicit rules.
func (rt RuleTable) Rules() []Rule {
	rules := make([]Rule, 0, numLabels*numLabels)
	for i, row := range rt {
		for j, out := range row {
			rules = append(rules, Rule{Error: Label(i), Rate: Label(j), Out: out})
		}
	}
	return rules
}

// Default rule tables. Tuning rationale: far from the setpoint the
// proportional gain is raised for drive and the integral gain lowered to
// keep the accumulator from winding up; around zero crossings the
// proportional and integral gains are cut and the derivative gain raised to
// brake the approach. The center cell of every table is ZO so that a settled
// system gets zero adjustment.
var (
	// DefaultKpTable: rows = error {NB..PB}, cols = error rate {NB..PB}.
	DefaultKpTable = RuleTable{
		{PB, PB, PB, PS, ZO},
		{PB, PS, PS, ZO, NS},
		{NS, NS, ZO, NS, NS},
		{NS, ZO, PS, PS, PB},
		{ZO, PS, PB, PB, PB},
	}

	DefaultKiTable = RuleTable{
		{NB, NB, NS, NS, ZO},
		{NS, NS, NS, ZO, ZO},
		{NS, NS, ZO, NS, NS},
		{ZO, ZO, NS, NS, NS},
		{ZO, NS, NS, NB, NB},
	}

	DefaultKdTable = RuleTable{
		{NS, NS, ZO, PS, PS},
		{PS, PS, PS, ZO, ZO},
		{PS, PS, ZO, PS, PS},
		{ZO, ZO, PS, PS, PS},
		{PS, PS, ZO, NS, NS},
	}
)
