package buvette

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Catalog file names inside the data directory. The formats are shared
// with earlier versions of the application and must not change:
// members and payment methods map barcode to display name, products
// map barcode to an object {name, price, stock}.
const (
	membersFile  = "members.json"
	productsFile = "products.json"
	paymentsFile = "payment_methods.json"
)

// Product is a catalog entry for something the stand sells. Stock may
// go negative through sales: overselling is allowed, only entry-time
// values are validated.
type Product struct {
	Name  string `json:"name"`
	Price Price  `json:"price"`
	Stock int    `json:"stock"`
}

// externalMethodName is the reserved payment method name whose
// confirmation goes through a payment link instead of a yes/no prompt.
const externalMethodName = "paypal"

// PaymentMethod is a way to settle an order. The external-confirmation
// variant is decided once here, at construction, so the state machine
// never compares method names itself.
type PaymentMethod struct {
	Name     string
	external bool
}

// NewPaymentMethod builds a PaymentMethod from its display name.
func NewPaymentMethod(name string) PaymentMethod {
	return PaymentMethod{Name: name, external: strings.EqualFold(name, externalMethodName)}
}

// RequiresExternalConfirmation reports whether confirming a payment
// with this method goes through an external artifact (a payment link
// rendered as a QR code) rather than an operator yes/no decision.
func (m PaymentMethod) RequiresExternalConfirmation() bool { return m.external }

// MemberEntry is a listing row for catalog-management screens.
type MemberEntry struct {
	Code Barcode
	Name string
}

// StockEntry is a listing row of the current stock.
type StockEntry struct {
	Code  Barcode
	Name  string
	Price Price
	Stock int
}

// Catalog holds the three barcode-keyed dictionaries and persists each
// one as its own JSON file. It is owned by a single running instance:
// there is no cross-process locking on the data directory.
type Catalog struct {
	dir      string
	members  map[Barcode]string
	products map[Barcode]Product
	payments map[Barcode]string
}

// OpenCatalog loads the three catalog files from dir, creating the
// directory and any missing file with an empty default. A file that
// cannot be parsed is renamed to a timestamped backup and recreated
// empty; this is logged and never fatal.
func OpenCatalog(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &PersistenceError{Path: dir, Err: err}
	}
	c := &Catalog{dir: dir}
	var err error
	if c.members, err = loadCatalogFile[string](filepath.Join(dir, membersFile)); err != nil {
		return nil, err
	}
	if c.products, err = loadCatalogFile[Product](filepath.Join(dir, productsFile)); err != nil {
		return nil, err
	}
	if c.payments, err = loadCatalogFile[string](filepath.Join(dir, paymentsFile)); err != nil {
		return nil, err
	}
	return c, nil
}

// loadCatalogFile reads one barcode-keyed dictionary. A missing file
// is created with an empty default. A corrupt file is moved aside to a
// timestamped backup and recreated empty so the till keeps running.
func loadCatalogFile[V any](path string) (map[Barcode]V, error) {
	m := make(map[Barcode]V)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if werr := writeFileAtomic(path, []byte("{}\n")); werr != nil {
			return nil, &PersistenceError{Path: path, Err: werr}
		}
		return m, nil
	}
	if err == nil {
		if uerr := json.Unmarshal(data, &m); uerr == nil {
			return m, nil
		} else {
			err = uerr
		}
	}
	// Unreadable or unparsable: back up and start over empty.
	backup := backupPath(path)
	if rerr := os.Rename(path, backup); rerr != nil {
		return nil, &PersistenceError{Path: path, Err: errors.Join(err, rerr)}
	}
	if werr := writeFileAtomic(path, []byte("{}\n")); werr != nil {
		return nil, &PersistenceError{Path: path, Err: werr}
	}
	log.Warn("catalog file reset", "err", &CorruptDataError{Path: path, Backup: backup, Err: err})
	return make(map[Barcode]V), nil
}

func backupPath(path string) string {
	stamp := time.Now().Format("20060102_150405")
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".backup_" + stamp + ext
}

// writeFileAtomic writes data to a temporary file in the same
// directory and renames it over path, so readers never observe a
// partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (c *Catalog) saveFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &PersistenceError{Path: name, Err: err}
	}
	path := filepath.Join(c.dir, name)
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}

// SaveMembers persists the member dictionary as a whole file.
func (c *Catalog) SaveMembers() error { return c.saveFile(membersFile, c.members) }

// SaveProducts persists the product dictionary as a whole file.
func (c *Catalog) SaveProducts() error { return c.saveFile(productsFile, c.products) }

// SavePaymentMethods persists the payment method dictionary as a whole file.
func (c *Catalog) SavePaymentMethods() error { return c.saveFile(paymentsFile, c.payments) }

// Member returns the display name registered for code.
func (c *Catalog) Member(code Barcode) (string, bool) {
	name, ok := c.members[code]
	return name, ok
}

// Product returns the product registered for code.
func (c *Catalog) Product(code Barcode) (Product, bool) {
	p, ok := c.products[code]
	return p, ok
}

// Payment returns the payment method registered for code.
func (c *Catalog) Payment(code Barcode) (PaymentMethod, bool) {
	name, ok := c.payments[code]
	if !ok {
		return PaymentMethod{}, false
	}
	return NewPaymentMethod(name), true
}

// Members lists all members sorted by display name.
func (c *Catalog) Members() []MemberEntry { return sortedEntries(c.members) }

// PaymentMethods lists all payment methods sorted by display name.
func (c *Catalog) PaymentMethods() []MemberEntry { return sortedEntries(c.payments) }

func sortedEntries(m map[Barcode]string) []MemberEntry {
	entries := make([]MemberEntry, 0, len(m))
	for code, name := range m {
		entries = append(entries, MemberEntry{Code: code, Name: name})
	}
	slices.SortFunc(entries, func(a, b MemberEntry) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(string(a.Code), string(b.Code))
	})
	return entries
}

// UpsertProduct validates and stores a product, persisting the whole
// dictionary. Price and stock are validated at entry time only; later
// sales may still drive stock negative.
func (c *Catalog) UpsertProduct(code Barcode, name string, price Price, stock int) error {
	if code == "" {
		return &ValidationError{Field: "barcode", Reason: "must not be empty"}
	}
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if stock < 0 {
		return &ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	prev, had := c.products[code]
	c.products[code] = Product{Name: name, Price: price, Stock: stock}
	if err := c.SaveProducts(); err != nil {
		if had {
			c.products[code] = prev
		} else {
			delete(c.products, code)
		}
		return err
	}
	return nil
}

// UpsertMember adds a member or updates the name behind an existing
// barcode. Claiming a barcode already owned by a differently named
// member is a conflict unless overwrite is set.
func (c *Catalog) UpsertMember(code Barcode, name string, overwrite bool) error {
	return upsertNamed(c.members, code, name, overwrite, c.SaveMembers)
}

// UpsertPaymentMethod is UpsertMember for payment methods.
func (c *Catalog) UpsertPaymentMethod(code Barcode, name string, overwrite bool) error {
	return upsertNamed(c.payments, code, name, overwrite, c.SavePaymentMethods)
}

func upsertNamed(m map[Barcode]string, code Barcode, name string, overwrite bool, save func() error) error {
	if code == "" {
		return &ValidationError{Field: "barcode", Reason: "must not be empty"}
	}
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if holder, ok := m[code]; ok && holder != name && !overwrite {
		return &ConflictError{Code: code, Holder: holder}
	}
	prev, had := m[code]
	m[code] = name
	if err := save(); err != nil {
		if had {
			m[code] = prev
		} else {
			delete(m, code)
		}
		return err
	}
	return nil
}

// RenameMember moves a member to a new barcode (and possibly a new
// name). Moving onto a barcode owned by another member is a conflict
// unless overwrite is set.
func (c *Catalog) RenameMember(old, code Barcode, name string, overwrite bool) error {
	return renameNamed(c.members, old, code, name, overwrite, c.SaveMembers)
}

// RenamePaymentMethod is RenameMember for payment methods.
func (c *Catalog) RenamePaymentMethod(old, code Barcode, name string, overwrite bool) error {
	return renameNamed(c.payments, old, code, name, overwrite, c.SavePaymentMethods)
}

func renameNamed(m map[Barcode]string, old, code Barcode, name string, overwrite bool, save func() error) error {
	if _, ok := m[old]; !ok {
		return &NotFoundError{Code: old}
	}
	if code == "" {
		return &ValidationError{Field: "barcode", Reason: "must not be empty"}
	}
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if code != old {
		if holder, ok := m[code]; ok && !overwrite {
			return &ConflictError{Code: code, Holder: holder}
		}
	}
	prevOld := m[old]
	prevNew, hadNew := m[code]
	delete(m, old)
	m[code] = name
	if err := save(); err != nil {
		m[old] = prevOld
		if hadNew {
			m[code] = prevNew
		} else if code != old {
			delete(m, code)
		}
		return err
	}
	return nil
}

// DeleteMember removes a member by barcode. Deleting an absent barcode
// is a no-op.
func (c *Catalog) DeleteMember(code Barcode) error {
	return deleteNamed(c.members, code, c.SaveMembers)
}

// DeletePaymentMethod removes a payment method by barcode. Deleting an
// absent barcode is a no-op.
func (c *Catalog) DeletePaymentMethod(code Barcode) error {
	return deleteNamed(c.payments, code, c.SavePaymentMethods)
}

func deleteNamed(m map[Barcode]string, code Barcode, save func() error) error {
	prev, ok := m[code]
	if !ok {
		return nil
	}
	delete(m, code)
	if err := save(); err != nil {
		m[code] = prev
		return err
	}
	return nil
}

// adjustStock shifts a product's stock by delta without persisting.
// Finalization uses it and decides when to save (and when to undo).
func (c *Catalog) adjustStock(code Barcode, delta int) {
	p, ok := c.products[code]
	if !ok {
		return
	}
	old := p.Stock
	p.Stock += delta
	c.products[code] = p
	log.Debug("stock adjusted", "product", p.Name, "from", old, "to", p.Stock)
}

// LowStock lists products whose stock is strictly under threshold,
// lowest stock first.
func (c *Catalog) LowStock(threshold int) []StockEntry {
	var entries []StockEntry
	for code, p := range c.products {
		if p.Stock < threshold {
			entries = append(entries, StockEntry{Code: code, Name: p.Name, Price: p.Price, Stock: p.Stock})
		}
	}
	slices.SortFunc(entries, func(a, b StockEntry) int {
		if a.Stock != b.Stock {
			return a.Stock - b.Stock
		}
		return strings.Compare(a.Name, b.Name)
	})
	return entries
}

// StockSnapshot lists products sorted by name. A non-empty filter
// keeps only products whose barcode or name contains it,
// case-insensitively. The filter must already be normalized: it can be
// a scanned code.
func (c *Catalog) StockSnapshot(filter string) []StockEntry {
	needle := strings.ToLower(filter)
	var entries []StockEntry
	for code, p := range c.products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(string(code)), needle) &&
			!strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		entries = append(entries, StockEntry{Code: code, Name: p.Name, Price: p.Price, Stock: p.Stock})
	}
	slices.SortFunc(entries, func(a, b StockEntry) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(string(a.Code), string(b.Code))
	})
	return entries
}

func (c *Catalog) String() string {
	return fmt.Sprintf("catalog %q: %d members, %d products, %d payment methods",
		c.dir, len(c.members), len(c.products), len(c.payments))
}
