package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/rcpark/buvette"
)

// stockCmd prints or exports the stock snapshot.
type stockCmd struct {
	filter string
	out    string
	format string
	low    bool
}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "Show the current stock, or export it." }
func (*stockCmd) Usage() string {
	return `stock [-filter <text>] [-low] [-o <file>] [-format csv|xlsx]:
	Prints the stock sorted by product name. -filter keeps products
	whose barcode or name contains the text; -low keeps only products
	under the low stock threshold. With -o the snapshot is written to
	a file instead, as CSV or as a spreadsheet.
`
}

func (c *stockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.filter, "filter", "", "keep products matching this text or barcode")
	f.BoolVar(&c.low, "low", false, "keep only products running low")
	f.StringVar(&c.out, "o", "", "write the snapshot to this file")
	f.StringVar(&c.format, "format", "csv", "output format, csv or xlsx")
}

func (c *stockCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	catalog, err := buvette.OpenCatalog(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	var entries []buvette.StockEntry
	if c.low {
		entries = catalog.LowStock(cfg.LowStockThreshold)
	} else {
		// The filter may come straight from the scanner.
		entries = catalog.StockSnapshot(string(cfg.normalize(c.filter)))
	}

	if c.out == "" {
		title := "Stock"
		if c.low {
			title = "Low stock"
		}
		printMarkdown(stockMarkdown(title, entries))
		return subcommands.ExitSuccess
	}

	switch strings.ToLower(c.format) {
	case "csv":
		file, err := os.Create(c.out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		werr := buvette.ExportStockCSV(file, entries)
		if err := file.Close(); werr == nil {
			werr = err
		}
		if werr != nil {
			fmt.Fprintln(os.Stderr, "Error:", werr)
			return subcommands.ExitFailure
		}
	case "xlsx":
		if err := buvette.ExportStockXLSX(c.out, entries); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	fmt.Printf("Wrote %d products to %s\n", len(entries), c.out)
	return subcommands.ExitSuccess
}
