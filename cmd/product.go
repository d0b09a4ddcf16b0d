package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/subcommands"

	"github.com/rcpark/buvette"
)

// addProductCmd registers or updates a product. The name is prefilled
// from Open Food Facts when the barcode is known there.
type addProductCmd struct {
	name  string
	price string
	stock int
}

func (*addProductCmd) Name() string     { return "add-product" }
func (*addProductCmd) Synopsis() string { return "Add a product to the catalog, or update it." }
func (*addProductCmd) Usage() string {
	return `add-product [-name <name>] [-price <price>] [-stock <n>] <barcode>:
	Registers the product behind barcode. Missing name, price or stock
	are prompted interactively, with the name prefilled from the Open
	Food Facts database when available.
`
}

func (c *addProductCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "product display name")
	f.StringVar(&c.price, "price", "", "unit price, e.g. 1.50")
	f.IntVar(&c.stock, "stock", -1, "initial stock count")
}

func (c *addProductCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one barcode expected")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	in := bufio.NewReader(os.Stdin)
	if !authorize(cfg, in) {
		fmt.Fprintln(os.Stderr, "Error: not authorized")
		return subcommands.ExitFailure
	}
	catalog, err := buvette.OpenCatalog(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	code := cfg.normalize(f.Arg(0))
	if existing, ok := catalog.Product(code); ok {
		fmt.Printf("Updating %s (price %s, stock %d)\n", existing.Name, existing.Price, existing.Stock)
	}

	name := c.name
	if name == "" {
		name = promptName(in, code)
	}
	price, err := c.promptPrice(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	stock := c.stock
	if stock < 0 {
		stock = promptInt(in, "Stock: ")
	}

	if err := catalog.UpsertProduct(code, name, price, stock); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Registered %s: %s at %s, stock %d\n", code, name, price, stock)
	return subcommands.ExitSuccess
}

// promptName asks for the product name, offering the Open Food Facts
// name as the default when the lookup succeeds. Lookup failures are
// silent: the operator just types the name.
func promptName(in *bufio.Reader, code buvette.Barcode) string {
	lookup := &buvette.ProductLookup{}
	prefill, err := lookup.Name(code)
	if err != nil {
		log.Debug("no prefill", "code", code, "err", err)
		prefill = ""
	}
	prompt := "Name: "
	if prefill != "" {
		prompt = fmt.Sprintf("Name [%s]: ", prefill)
	}
	fmt.Print(prompt)
	line, err := in.ReadString('\n')
	if err != nil {
		return prefill
	}
	if name := strings.TrimSpace(line); name != "" {
		return name
	}
	return prefill
}

func (c *addProductCmd) promptPrice(in *bufio.Reader) (buvette.Price, error) {
	raw := c.price
	if raw == "" {
		fmt.Print("Price: ")
		line, err := in.ReadString('\n')
		if err != nil {
			return buvette.Price{}, err
		}
		raw = strings.TrimSpace(line)
	}
	return buvette.ParsePrice(raw)
}

func promptInt(in *bufio.Reader, prompt string) int {
	for {
		fmt.Print(prompt)
		line, err := in.ReadString('\n')
		if err != nil {
			return 0
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= 0 {
			return n
		}
		fmt.Println("Enter a non-negative number.")
	}
}
