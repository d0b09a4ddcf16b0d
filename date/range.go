package date

import "fmt"

// Range is an inclusive range of days.
type Range struct {
	From, To Date
}

// NewRange returns the inclusive range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// ThisMonth returns the range from the first day of the current month
// through today.
func ThisMonth() Range {
	today := Today()
	return Range{From: today.StartOfMonth(), To: today}
}

// Contains reports whether day falls inside the range, bounds included.
func (r Range) Contains(day Date) bool {
	return !day.Before(r.From) && !day.After(r.To)
}

func (r Range) String() string { return fmt.Sprintf("%s to %s", r.From, r.To) }
