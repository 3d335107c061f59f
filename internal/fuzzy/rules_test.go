package fuzzy

import (
	"errors"
	"testing"
)

func TestDefaultTablesValid(t *testing.T) {
	for _, tbl := range []struct {
		name  string
		table RuleTable
	}{
		{"kp", DefaultKpTable}, {"ki", DefaultKiTable}, {"kd", DefaultKdTable},
	} {
		if err := tbl.table.Validate(); err != nil {
			t.Errorf("%s table invalid: %v", tbl.name, err)
		}
	}
}

// A settled system must receive zero adjustment from every table.
func TestDefaultTableCenterCells(t *testing.T) {
	for _, tbl := range []RuleTable{DefaultKpTable, DefaultKiTable, DefaultKdTable} {
		if tbl[ZO][ZO] != ZO {
			t.Errorf("center cell must be ZO, got %s", tbl[ZO][ZO])
		}
	}
}

func TestRuleTableValidateRejectsBadLabel(t *testing.T) {
	bad := DefaultKpTable
	bad[0][0] = Label(9)
	if err := bad.Validate(); !errors.Is(err, ErrRule) {
		t.Errorf("expected ErrRule, got %v", err)
	}

	bad[0][0] = Label(-1)
	if err := bad.Validate(); !errors.Is(err, ErrRule) {
		t.Errorf("expected ErrRule for negative label, got %v", err)
	}
}

func TestRulesEnumeration(t *testing.T) {
	rules := DefaultKpTable.Rules()
	if len(rules) != 25 {
		t.Fatalf("expected 25 rules, got %d", len(rules))
	}

	// Spot-check one corner: large negative error with fast negative rate
	// demands a big proportional boost.
	first := rules[0]
	if first.Error != NB || first.Rate != NB || first.Out != PB {
		t.Errorf("unexpected first rule: %+v", first)
	}
}
