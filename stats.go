package buvette

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rcpark/buvette/date"
)

// MethodStat aggregates the transactions settled with one payment
// method over a range.
type MethodStat struct {
	Name   string
	Count  int
	Amount Price
}

// MemberStat aggregates the transactions of one member over a range.
type MemberStat struct {
	Name   string
	Count  int
	Amount Price
}

// Stats is the date-ranged statistics report of the ledger.
type Stats struct {
	Range      date.Range
	Count      int
	Total      Price
	Methods    []MethodStat // sorted by method name
	TopMembers []MemberStat // sorted by amount, highest first, max 10
}

// Stats aggregates the records whose day falls inside rng.
func (l *Ledger) Stats(rng date.Range) (*Stats, error) {
	records, err := l.FilterRange(rng)
	if err != nil {
		return nil, err
	}

	s := &Stats{Range: rng}
	methods := make(map[string]*MethodStat)
	members := make(map[string]*MemberStat)
	for _, r := range records {
		s.Count++
		s.Total = s.Total.Add(r.Amount)

		m, ok := methods[r.Method]
		if !ok {
			m = &MethodStat{Name: r.Method}
			methods[r.Method] = m
		}
		m.Count++
		m.Amount = m.Amount.Add(r.Amount)

		mb, ok := members[r.Member]
		if !ok {
			mb = &MemberStat{Name: r.Member}
			members[r.Member] = mb
		}
		mb.Count++
		mb.Amount = mb.Amount.Add(r.Amount)
	}

	for _, m := range methods {
		s.Methods = append(s.Methods, *m)
	}
	slices.SortFunc(s.Methods, func(a, b MethodStat) int { return strings.Compare(a.Name, b.Name) })

	for _, m := range members {
		s.TopMembers = append(s.TopMembers, *m)
	}
	slices.SortFunc(s.TopMembers, func(a, b MemberStat) int {
		if !a.Amount.Equal(b.Amount) {
			if a.Amount.LessThan(b.Amount) {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(s.TopMembers) > 10 {
		s.TopMembers = s.TopMembers[:10]
	}
	return s, nil
}

// Mean returns the average transaction amount, zero for an empty range.
func (s *Stats) Mean() Price {
	if s.Count == 0 {
		return Price{}
	}
	return Price{value: s.Total.value.Div(decimal.NewFromInt(int64(s.Count))).Round(2)}
}

// share returns amount over the range total as a percentage with one
// decimal, "0.0" when the total is zero.
func (s *Stats) share(amount Price) string {
	if s.Total.IsZero() {
		return "0.0"
	}
	return amount.value.Div(s.Total.value).Mul(decimal.NewFromInt(100)).StringFixed(1)
}

// Markdown renders the report. The shell decides how to print it.
func (s *Stats) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions %s\n\n", s.Range)
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- Transactions: %d\n", s.Count)
	fmt.Fprintf(&b, "- Total: %s\n", s.Total)
	if s.Count > 0 {
		fmt.Fprintf(&b, "- Mean: %s\n", s.Mean())
	}

	if len(s.Methods) > 0 {
		fmt.Fprintf(&b, "\n## By payment method\n\n")
		fmt.Fprintf(&b, "| Method | Transactions | Amount | Share |\n")
		fmt.Fprintf(&b, "|---|---:|---:|---:|\n")
		for _, m := range s.Methods {
			fmt.Fprintf(&b, "| %s | %d | %s | %s%% |\n", m.Name, m.Count, m.Amount, s.share(m.Amount))
		}
	}

	if len(s.TopMembers) > 0 {
		fmt.Fprintf(&b, "\n## Top members\n\n")
		fmt.Fprintf(&b, "| # | Member | Transactions | Amount |\n")
		fmt.Fprintf(&b, "|---:|---|---:|---:|\n")
		for i, m := range s.TopMembers {
			fmt.Fprintf(&b, "| %d | %s | %d | %s |\n", i+1, m.Name, m.Count, m.Amount)
		}
	}
	return b.String()
}
