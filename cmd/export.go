package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/rcpark/buvette"
)

// exportCmd extracts a date range of the ledger for the treasurer,
// field-for-field as stored.
type exportCmd struct {
	from   string
	to     string
	out    string
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "Export a date range of the ledger." }
func (*exportCmd) Usage() string {
	return `export [-from <date>] [-to <date>] [-format csv|xlsx] -o <file>:
	Writes the transactions of the range, bounds included, to a file.
	Defaults to the current month. CSV rows are copied verbatim from
	the ledger. Requires the admin password.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "start date (2006-01-02), default first of this month")
	f.StringVar(&c.to, "to", "", "end date (2006-01-02), default today")
	f.StringVar(&c.out, "o", "", "destination file")
	f.StringVar(&c.format, "format", "csv", "output format, csv or xlsx")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -o is required")
		return subcommands.ExitUsageError
	}
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
	if !authorize(cfg, bufio.NewReader(os.Stdin)) {
		fmt.Fprintln(os.Stderr, "Error: not authorized")
		return subcommands.ExitFailure
	}
	_, ledger, err := openStores(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	var count int
	switch strings.ToLower(c.format) {
	case "csv":
		file, err := os.Create(c.out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		count, err = ledger.ExportRange(rng, file)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
	case "xlsx":
		records, err := ledger.FilterRange(rng)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		if err := buvette.ExportRecordsXLSX(c.out, records); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		count = len(records)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	fmt.Printf("Exported %d transactions (%s) to %s\n", count, rng, c.out)
	return subcommands.ExitSuccess
}
