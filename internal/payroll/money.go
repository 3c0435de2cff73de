package payroll

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Component is one named allowance or deduction.
type Component struct {
	Name   string
	Amount decimal.Decimal
}

// Breakdown is the parsed form of a payroll's details column:
// {"bonus": n, "allowances": {name: n}, "deductions": {name: n}}.
type Breakdown struct {
	Bonus      decimal.Decimal
	Allowances []Component
	Deductions []Component
}

// ParseBreakdown reads a details payload. It reports false when details is
// empty, null or not a JSON object. Entries that are not numeric count as 0.
func ParseBreakdown(details []byte) (Breakdown, bool) {
	trimmed := bytes.TrimSpace(details)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Breakdown{}, false
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return Breakdown{}, false
	}

	return Breakdown{
		Bonus:      numeric(top["bonus"]),
		Allowances: components(top["allowances"]),
		Deductions: components(top["deductions"]),
	}, true
}

func (b Breakdown) TotalAllowances() decimal.Decimal {
	return sum(b.Allowances)
}

func (b Breakdown) TotalDeductions() decimal.Decimal {
	return sum(b.Deductions)
}

// NetSalary is base + allowances - deductions + bonus, rounded to whole
// currency units. The result is not clamped at zero.
func (b Breakdown) NetSalary(base int64) int64 {
	net := decimal.NewFromInt(base).
		Add(b.TotalAllowances()).
		Sub(b.TotalDeductions()).
		Add(b.Bonus)
	return net.Round(0).IntPart()
}

// ComputeNetSalary returns base unchanged when details cannot be parsed.
func ComputeNetSalary(base int64, details []byte) int64 {
	b, ok := ParseBreakdown(details)
	if !ok {
		return base
	}
	return b.NetSalary(base)
}

func sum(items []Component) decimal.Decimal {
	total := decimal.Zero
	for _, c := range items {
		total = total.Add(c.Amount)
	}
	return total
}

// components accepts an object keyed by name or a plain list, sorted by name
// so that rendering is stable.
func components(raw json.RawMessage) []Component {
	if len(raw) == 0 {
		return nil
	}

	var named map[string]json.RawMessage
	if err := json.Unmarshal(raw, &named); err == nil {
		out := make([]Component, 0, len(named))
		for name, v := range named {
			out = append(out, Component{Name: name, Amount: numeric(v)})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]Component, 0, len(list))
		for i, v := range list {
			out = append(out, Component{Name: strconv.Itoa(i), Amount: numeric(v)})
		}
		return out
	}

	return nil
}

func numeric(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decimal.Zero
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
		s = strings.TrimSpace(s)
	} else {
		s = string(raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
