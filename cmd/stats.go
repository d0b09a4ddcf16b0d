package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/rcpark/buvette/date"
)

// statsCmd aggregates the ledger over a date range and prints the
// report. Default range: the current month so far.
type statsCmd struct {
	from string
	to   string
	out  string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "Print transaction statistics over a date range." }
func (*statsCmd) Usage() string {
	return `stats [-from <date>] [-to <date>] [-o <file>]:
	Aggregates transactions by payment method and by member over the
	range, bounds included. Defaults to the current month. With -o the
	markdown report is written to a file instead of the terminal.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "start date (2006-01-02), default first of this month")
	f.StringVar(&c.to, "to", "", "end date (2006-01-02), default today")
	f.StringVar(&c.out, "o", "", "write the markdown report to this file")
}

func (c *statsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	rng, err := parseRange(c.from, c.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	_, ledger, err := openStores(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	stats, err := ledger.Stats(rng)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	md := stats.Markdown()
	if c.out != "" {
		if err := os.WriteFile(c.out, []byte(md), 0644); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		fmt.Println("Wrote report to", c.out)
		return subcommands.ExitSuccess
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// parseRange builds the inclusive range from the -from/-to flags,
// defaulting to the current month so far.
func parseRange(from, to string) (date.Range, error) {
	rng := date.ThisMonth()
	if from != "" {
		d, err := date.Parse(from)
		if err != nil {
			return rng, err
		}
		rng.From = d
	}
	if to != "" {
		d, err := date.Parse(to)
		if err != nil {
			return rng, err
		}
		rng.To = d
	}
	if rng.To.Before(rng.From) {
		return rng, fmt.Errorf("empty range: %s is after %s", rng.From, rng.To)
	}
	return rng, nil
}
