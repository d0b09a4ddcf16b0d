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

// membersCmd manages the member dictionary: list, add, rename, delete.
type membersCmd struct {
	force bool
}

func (*membersCmd) Name() string     { return "members" }
func (*membersCmd) Synopsis() string { return "List or manage members." }
func (*membersCmd) Usage() string {
	return `members [list]:
members add <barcode> <name>:
members rename <old-barcode> <barcode> <name>:
members delete <barcode>:
	Manages the member dictionary. Management actions require the
	admin password; -force overwrites a barcode held by someone else.
`
}

func (c *membersCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "overwrite a barcode held by another entry")
}

func (c *membersCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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

	dict := namedDict{
		kind:    "member",
		entries: catalog.Members,
		upsert:  catalog.UpsertMember,
		rename:  catalog.RenameMember,
		delete:  catalog.DeleteMember,
	}
	return dict.run(cfg, f, c.force)
}

// paymentsCmd manages the payment method dictionary. Same actions as
// members, over the other file.
type paymentsCmd struct {
	force bool
}

func (*paymentsCmd) Name() string     { return "payments" }
func (*paymentsCmd) Synopsis() string { return "List or manage payment methods." }
func (*paymentsCmd) Usage() string {
	return `payments [list]:
payments add <barcode> <name>:
payments rename <old-barcode> <barcode> <name>:
payments delete <barcode>:
	Manages the payment method dictionary. A method named "paypal"
	settles through a payment link instead of an operator confirmation.
`
}

func (c *paymentsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "overwrite a barcode held by another entry")
}

func (c *paymentsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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

	dict := namedDict{
		kind:    "payment method",
		entries: catalog.PaymentMethods,
		upsert:  catalog.UpsertPaymentMethod,
		rename:  catalog.RenamePaymentMethod,
		delete:  catalog.DeletePaymentMethod,
	}
	return dict.run(cfg, f, c.force)
}

// namedDict drives the shared list/add/rename/delete surface of the two
// barcode-to-name dictionaries.
type namedDict struct {
	kind    string
	entries func() []buvette.MemberEntry
	upsert  func(code buvette.Barcode, name string, overwrite bool) error
	rename  func(old, code buvette.Barcode, name string, overwrite bool) error
	delete  func(code buvette.Barcode) error
}

func (d namedDict) run(cfg Config, f *flag.FlagSet, force bool) subcommands.ExitStatus {
	action := "list"
	if f.NArg() > 0 {
		action = f.Arg(0)
	}
	if action == "list" {
		d.list()
		return subcommands.ExitSuccess
	}

	in := bufio.NewReader(os.Stdin)
	if !authorize(cfg, in) {
		fmt.Fprintln(os.Stderr, "Error: not authorized")
		return subcommands.ExitFailure
	}

	var err error
	switch action {
	case "add":
		if f.NArg() < 3 {
			fmt.Fprintf(os.Stderr, "Error: add expects <barcode> <name>\n")
			return subcommands.ExitUsageError
		}
		name := strings.Join(f.Args()[2:], " ")
		err = d.upsert(cfg.normalize(f.Arg(1)), name, force)
	case "rename":
		if f.NArg() < 4 {
			fmt.Fprintf(os.Stderr, "Error: rename expects <old-barcode> <barcode> <name>\n")
			return subcommands.ExitUsageError
		}
		name := strings.Join(f.Args()[3:], " ")
		err = d.rename(cfg.normalize(f.Arg(1)), cfg.normalize(f.Arg(2)), name, force)
	case "delete":
		if f.NArg() != 2 {
			fmt.Fprintf(os.Stderr, "Error: delete expects <barcode>\n")
			return subcommands.ExitUsageError
		}
		err = d.delete(cfg.normalize(f.Arg(1)))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown action %q\n", action)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s %sed\n", d.kind, strings.TrimSuffix(action, "e"))
	return subcommands.ExitSuccess
}

func (d namedDict) list() {
	var b strings.Builder
	fmt.Fprintf(&b, "# %ss\n\n", strings.ToUpper(d.kind[:1])+d.kind[1:])
	entries := d.entries()
	if len(entries) == 0 {
		fmt.Fprintf(&b, "No %s registered.\n", d.kind)
	} else {
		b.WriteString("| Barcode | Name |\n|---|---|\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "| %s | %s |\n", e.Code, e.Name)
		}
	}
	printMarkdown(b.String())
}
