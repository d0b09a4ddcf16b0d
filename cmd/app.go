// Package cmd implements the CLI application driving the stand's till.
package cmd

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/rcpark/buvette"
)

// Register the subcommands.
// A main package calls Register() and then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&scanCmd{}, "till")
	c.Register(&recentCmd{}, "till")

	c.Register(&addProductCmd{}, "catalog")
	c.Register(&membersCmd{}, "catalog")
	c.Register(&paymentsCmd{}, "catalog")

	c.Register(&stockCmd{}, "reports")
	c.Register(&statsCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")

	c.Register(&labelsCmd{}, "admin")
	c.Register(&passwdCmd{}, "admin")
}

// as a CLI application with a short-lived lifecycle, global flags are fine.

var configFile = flag.String("config", "buvette.yaml", "Path to the configuration file")
var debug = flag.Bool("debug", false, "Enable debug logging")

// Config is the application configuration, read from the YAML config
// file and overridable per key with BUVETTE_* environment variables
// (a .env file next to the binary is honored).
type Config struct {
	// DataDir holds the three catalog JSON files and the ledger CSV.
	DataDir string `yaml:"data_dir"`
	// Currency used for display formatting.
	Currency string `yaml:"currency"`
	// PayPalHandle is the paypal.me account receiving payments.
	PayPalHandle string `yaml:"paypal_handle"`
	// AdminSecret gates catalog management and exports. Either a
	// bcrypt hash (recommended, see the passwd command) or plain text.
	AdminSecret string `yaml:"admin_secret"`
	// ScannerLayout selects barcode normalization: "azerty" remaps
	// scanner output, "none" passes it through.
	ScannerLayout string `yaml:"scanner_layout"`
	// LowStockThreshold marks products as running low strictly below it.
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

func defaultConfig() Config {
	return Config{
		DataDir:           "data",
		Currency:          "EUR",
		ScannerLayout:     "azerty",
		AdminSecret:       "1234",
		LowStockThreshold: 5,
	}
}

// loadConfig reads the config file (missing file means defaults) and
// applies environment overrides.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	data, err := os.ReadFile(*configFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	case err != nil:
		return cfg, fmt.Errorf("cannot read config %q: %w", *configFile, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot parse config %q: %w", *configFile, err)
		}
	}

	override := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	override("BUVETTE_DATA_DIR", &cfg.DataDir)
	override("BUVETTE_CURRENCY", &cfg.Currency)
	override("BUVETTE_PAYPAL_HANDLE", &cfg.PayPalHandle)
	override("BUVETTE_ADMIN_SECRET", &cfg.AdminSecret)
	override("BUVETTE_SCANNER_LAYOUT", &cfg.ScannerLayout)

	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	buvette.SetDisplayCurrency(cfg.Currency)
	return cfg, nil
}

// normalize applies barcode normalization once, according to the
// configured scanner layout. All typed or scanned codes go through
// here and nowhere else.
func (c Config) normalize(raw string) buvette.Barcode {
	if c.ScannerLayout == "none" {
		return buvette.Raw(raw)
	}
	code := buvette.Normalize(raw)
	if string(code) != raw {
		log.Debug("layout conversion", "from", raw, "to", code)
	}
	return code
}

func (c Config) ledgerPath() string {
	return filepath.Join(c.DataDir, "transactions.csv")
}

// openStores opens the catalog and the ledger from the data directory.
func openStores(cfg Config) (*buvette.Catalog, *buvette.Ledger, error) {
	catalog, err := buvette.OpenCatalog(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := buvette.OpenLedger(cfg.ledgerPath())
	if err != nil {
		return nil, nil, err
	}
	return catalog, ledger, nil
}

// authorize prompts for the shared admin secret and verifies it. It
// accepts a bcrypt hash in the configuration (compared with bcrypt) or
// a plain secret (compared in constant time).
func authorize(cfg Config, in *bufio.Reader) bool {
	fmt.Print("Admin password: ")
	line, err := in.ReadString('\n')
	if err != nil {
		return false
	}
	entered := strings.TrimRight(line, "\r\n")

	if strings.HasPrefix(cfg.AdminSecret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(cfg.AdminSecret), []byte(entered)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(cfg.AdminSecret), []byte(entered)) == 1
}

// printMarkdown renders markdown for the terminal. If rendering fails
// the raw markdown is printed instead.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// recordsMarkdown renders ledger records as a table, in the order given.
func recordsMarkdown(title string, records []buvette.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(records) == 0 {
		b.WriteString("No transactions.\n")
		return b.String()
	}
	b.WriteString("| Time | Member | Products | Amount | Payment |\n")
	b.WriteString("|---|---|---|---:|---|\n")
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			r.Time.Format("2006-01-02 15:04:05"), r.Member, r.Product, r.Amount, r.Method)
	}
	return b.String()
}

// stockMarkdown renders stock entries as a table.
func stockMarkdown(title string, entries []buvette.StockEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(entries) == 0 {
		b.WriteString("No products.\n")
		return b.String()
	}
	b.WriteString("| Barcode | Product | Price | Stock |\n")
	b.WriteString("|---|---|---:|---:|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", e.Code, e.Name, e.Price, e.Stock)
	}
	return b.String()
}
