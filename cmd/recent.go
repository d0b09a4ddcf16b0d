package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// recentCmd prints the last transactions, most recent first.
type recentCmd struct {
	n int
}

func (*recentCmd) Name() string     { return "recent" }
func (*recentCmd) Synopsis() string { return "Show the most recent transactions." }
func (*recentCmd) Usage() string {
	return `recent [-n 5]:
	Prints the n most recent transactions, newest first.
`
}

func (c *recentCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 5, "number of transactions to show")
}

func (c *recentCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	_, ledger, err := openStores(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	records, err := ledger.Recent(c.n)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(recordsMarkdown(fmt.Sprintf("Last %d transactions", len(records)), records))
	return subcommands.ExitSuccess
}
