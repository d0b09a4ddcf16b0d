package buvette

import (
	"strings"
	"testing"

	"github.com/rcpark/buvette/date"
)

func statsLedger(t *testing.T) *Ledger {
	t.Helper()
	l := testLedger(t)
	for _, r := range []Record{
		testRecord("2025-07-01 10:00:00", "Alice", "Cola (x1)", "1.50", "Cash"),
		testRecord("2025-07-02 11:00:00", "Alice", "Cola (x2)", "3.00", "PayPal"),
		testRecord("2025-07-03 12:00:00", "Bob", "Chips (x1)", "1.00", "Cash"),
		testRecord("2025-08-01 10:00:00", "Carol", "Water (x1)", "0.50", "Cash"),
	} {
		if err := l.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func july() date.Range {
	return date.NewRange(date.MustParse("2025-07-01"), date.MustParse("2025-07-31"))
}

func TestStats(t *testing.T) {
	l := statsLedger(t)
	s, err := l.Stats(july())
	if err != nil {
		t.Fatal(err)
	}

	if s.Count != 3 {
		t.Errorf("Count = %d, want 3 (August excluded)", s.Count)
	}
	if s.Total.Fixed() != "5.50" {
		t.Errorf("Total = %s, want 5.50", s.Total.Fixed())
	}
	if s.Mean().Fixed() != "1.83" {
		t.Errorf("Mean = %s, want 1.83", s.Mean().Fixed())
	}

	if len(s.Methods) != 2 {
		t.Fatalf("Methods = %+v, want Cash and PayPal", s.Methods)
	}
	// Sorted by name: Cash before PayPal.
	cash, paypal := s.Methods[0], s.Methods[1]
	if cash.Name != "Cash" || cash.Count != 2 || cash.Amount.Fixed() != "2.50" {
		t.Errorf("Cash = %+v", cash)
	}
	if paypal.Name != "PayPal" || paypal.Count != 1 || paypal.Amount.Fixed() != "3.00" {
		t.Errorf("PayPal = %+v", paypal)
	}

	if len(s.TopMembers) != 2 {
		t.Fatalf("TopMembers = %+v, want Alice and Bob", s.TopMembers)
	}
	if s.TopMembers[0].Name != "Alice" || s.TopMembers[0].Amount.Fixed() != "4.50" {
		t.Errorf("top member = %+v, want Alice at 4.50", s.TopMembers[0])
	}
}

func TestStatsEmptyRange(t *testing.T) {
	l := statsLedger(t)
	rng := date.NewRange(date.MustParse("2024-01-01"), date.MustParse("2024-01-31"))
	s, err := l.Stats(rng)
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 0 || !s.Total.IsZero() {
		t.Errorf("stats over an empty range = %+v", s)
	}
	if !s.Mean().IsZero() {
		t.Errorf("Mean = %s, want zero for an empty range", s.Mean().Fixed())
	}
	if !strings.Contains(s.Markdown(), "Transactions: 0") {
		t.Error("empty report must still render a summary")
	}
}

func TestStatsMarkdown(t *testing.T) {
	l := statsLedger(t)
	s, err := l.Stats(july())
	if err != nil {
		t.Fatal(err)
	}
	md := s.Markdown()
	for _, want := range []string{
		"2025-07-01 to 2025-07-31",
		"## By payment method",
		"## Top members",
		"| Alice | 2 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report misses %q:\n%s", want, md)
		}
	}
}
