package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/subcommands"

	"github.com/rcpark/buvette"
	"github.com/rcpark/buvette/labels"
)

// scanCmd runs the interactive till: every line read from stdin is one
// barcode from the scanner (which acts as a keyboard and terminates
// each code with Enter).
type scanCmd struct{}

func (*scanCmd) Name() string     { return "scan" }
func (*scanCmd) Synopsis() string { return "Run the interactive till, reading barcodes from stdin." }
func (*scanCmd) Usage() string {
	return `scan:
	Runs the till loop. Scan a member, then products, then a payment
	method; confirm to finalize. Type /reset to abandon the current
	order, /quit to leave.
`
}

func (*scanCmd) SetFlags(f *flag.FlagSet) {}

func (c *scanCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	catalog, ledger, err := openStores(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	session := buvette.NewSession(catalog, ledger)
	session.PayPal = buvette.PayLink{Handle: cfg.PayPalHandle}

	status := buvette.NewStatusLine(printStatus)
	defer status.Stop()

	printOpening(cfg, catalog, ledger)
	status.Set(buvette.StatusInfo, "Ready to scan")

	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := in.ReadString('\n')
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") {
			switch raw {
			case "/quit":
				return subcommands.ExitSuccess
			case "/reset":
				session.Reset()
				status.Set(buvette.StatusInfo, "Order abandoned")
			default:
				status.Set(buvette.StatusWarning, fmt.Sprintf("Unknown command %q", raw))
			}
			continue
		}

		handleScan(session, status, in, cfg.normalize(raw))
	}
}

func handleScan(session *buvette.Session, status *buvette.StatusLine, in *bufio.Reader, code buvette.Barcode) {
	scan, err := session.Scan(code)
	if err != nil {
		var notFound *buvette.NotFoundError
		switch {
		case errors.As(err, &notFound):
			status.Set(buvette.StatusWarning, fmt.Sprintf("Unknown barcode %q", notFound.Code))
		default:
			status.Set(buvette.StatusWarning, err.Error())
		}
		return
	}

	switch scan.Kind {
	case buvette.ScanMember:
		status.Set(buvette.StatusInfo, fmt.Sprintf("Member: %s", scan.Member))
	case buvette.ScanProduct:
		status.Set(buvette.StatusInfo, fmt.Sprintf("%s (x%d) - total %s",
			scan.Line.Name, scan.Line.Quantity, session.Total()))
	case buvette.ScanPayment:
		settlePayment(status, in, scan.Payment)
	}
}

// settlePayment drives a pending payment to its confirm or cancel
// decision. Methods with external confirmation show the payment link as
// a QR code first; the operator confirms once the payer has paid.
func settlePayment(status *buvette.StatusLine, in *bufio.Reader, p *buvette.PendingPayment) {
	fmt.Printf("%s pays %s by %s\n", p.Member, p.Amount, p.Method.Name)

	if p.Method.RequiresExternalConfirmation() {
		if link := p.Link(); link != "" {
			if qr, err := labels.QRTerminal(link); err == nil {
				fmt.Println(qr)
			}
			fmt.Println(link)
		} else {
			status.Set(buvette.StatusWarning, "No PayPal handle configured, confirm manually")
		}
	}

	if !askYesNo(in, "Confirm payment? [y/N] ") {
		p.Cancel()
		status.Set(buvette.StatusInfo, "Payment cancelled, order kept")
		return
	}
	record, err := p.Confirm()
	if err != nil {
		log.Error("finalize failed", "err", err)
		status.Set(buvette.StatusError, fmt.Sprintf("Could not record the transaction: %v", err))
		return
	}
	status.Set(buvette.StatusSuccess, fmt.Sprintf("Recorded %s for %s", record.Amount, record.Member))
}

func askYesNo(in *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, err := in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printOpening shows the last few transactions and any product running
// low, so the operator starts the shift informed.
func printOpening(cfg Config, catalog *buvette.Catalog, ledger *buvette.Ledger) {
	if recent, err := ledger.Recent(5); err == nil && len(recent) > 0 {
		printMarkdown(recordsMarkdown("Recent transactions", recent))
	}
	if low := catalog.LowStock(cfg.LowStockThreshold); len(low) > 0 {
		printMarkdown(stockMarkdown("Low stock", low))
	}
}

func printStatus(kind buvette.StatusKind, message string) {
	switch kind {
	case buvette.StatusSuccess:
		fmt.Println("[ok]", message)
	case buvette.StatusWarning:
		fmt.Println("[!]", message)
	case buvette.StatusError:
		fmt.Println("[error]", message)
	default:
		fmt.Println(message)
	}
}
