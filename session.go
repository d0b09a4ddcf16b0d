package buvette

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Session state errors. They are warnings at the operator boundary:
// the scan is rejected and nothing is mutated.
var (
	// ErrNoMember rejects a product or payment scan before any member scan.
	ErrNoMember = errors.New("no member selected: scan the member barcode first")
	// ErrEmptyCart rejects a payment scan with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty: scan products first")
	// ErrPaymentPending rejects scans while a payment awaits its
	// confirm or cancel decision. Only one finalize is ever in flight.
	ErrPaymentPending = errors.New("a payment is awaiting confirmation")
)

// CartLine is one product in the current order. UnitPrice is the
// catalog price at the time of the first scan: a later price change
// does not affect lines already in the cart.
type CartLine struct {
	Code      Barcode
	Name      string
	UnitPrice Price
	Quantity  int
}

// Total returns unit price times quantity.
func (l CartLine) Total() Price { return l.UnitPrice.MulInt(l.Quantity) }

// ScanKind tells what a successful scan resolved to.
type ScanKind int

const (
	// ScanMember set (or replaced) the current member.
	ScanMember ScanKind = iota
	// ScanProduct added a product to the cart or bumped its quantity.
	ScanProduct
	// ScanPayment opened a pending payment awaiting confirm/cancel.
	ScanPayment
)

// Scan is the outcome of one accepted barcode.
type Scan struct {
	Kind    ScanKind
	Member  string          // for ScanMember
	Line    CartLine        // for ScanProduct, the line after the scan
	Payment *PendingPayment // for ScanPayment
}

// Session is the in-progress order of the current member: the single
// member slot plus the cart. Its lifecycle runs Idle (no member) to
// MemberSelected (member set) to a finalized or cancelled payment,
// both of which reset it to Idle.
type Session struct {
	catalog *Catalog
	ledger  *Ledger

	// PayPal builds the deep link surfaced when a payment method
	// requires external confirmation.
	PayPal PayLink

	member  string
	cart    map[Barcode]*CartLine
	order   []Barcode // cart insertion order, for stable descriptions
	pending *PendingPayment

	now func() time.Time
}

// NewSession creates an empty session over the given stores.
func NewSession(catalog *Catalog, ledger *Ledger) *Session {
	return &Session{
		catalog: catalog,
		ledger:  ledger,
		cart:    make(map[Barcode]*CartLine),
		now:     time.Now,
	}
}

// Member returns the current member's display name, if one is set.
func (s *Session) Member() (string, bool) { return s.member, s.member != "" }

// Idle reports whether the session is back to its initial state.
func (s *Session) Idle() bool { return s.member == "" && len(s.cart) == 0 && s.pending == nil }

// Lines returns the cart lines in insertion order.
func (s *Session) Lines() []CartLine {
	lines := make([]CartLine, 0, len(s.order))
	for _, code := range s.order {
		lines = append(lines, *s.cart[code])
	}
	return lines
}

// Total returns the sum of unit price times quantity over the cart.
func (s *Session) Total() Price {
	var total Price
	for _, line := range s.cart {
		total = total.Add(line.Total())
	}
	return total
}

// Reset empties the session back to Idle: no member, no cart, no
// pending payment.
func (s *Session) Reset() {
	s.member = ""
	s.cart = make(map[Barcode]*CartLine)
	s.order = nil
	s.pending = nil
}

// Scan feeds one normalized code through the state machine. The code
// is resolved against members first, then products, then payment
// methods; anything else is a NotFoundError. Rejected scans mutate
// nothing.
func (s *Session) Scan(code Barcode) (Scan, error) {
	if s.pending != nil {
		return Scan{}, ErrPaymentPending
	}

	if name, ok := s.catalog.Member(code); ok {
		// Replacing the member keeps the cart: the operator may be
		// correcting a member misscan without losing scanned products.
		s.member = name
		return Scan{Kind: ScanMember, Member: name}, nil
	}

	if product, ok := s.catalog.Product(code); ok {
		if s.member == "" {
			return Scan{}, ErrNoMember
		}
		line, ok := s.cart[code]
		if ok {
			line.Quantity++
		} else {
			line = &CartLine{Code: code, Name: product.Name, UnitPrice: product.Price, Quantity: 1}
			s.cart[code] = line
			s.order = append(s.order, code)
		}
		return Scan{Kind: ScanProduct, Line: *line}, nil
	}

	if method, ok := s.catalog.Payment(code); ok {
		if s.member == "" {
			return Scan{}, ErrNoMember
		}
		if len(s.cart) == 0 {
			return Scan{}, ErrEmptyCart
		}
		pending := &PendingPayment{
			session: s,
			Method:  method,
			Member:  s.member,
			Amount:  s.Total(),
		}
		if method.RequiresExternalConfirmation() {
			pending.link = s.PayPal.For(pending.Amount)
		}
		s.pending = pending
		return Scan{Kind: ScanPayment, Payment: pending}, nil
	}

	return Scan{}, &NotFoundError{Code: code}
}

// PendingPayment is the sub-state between a payment scan and the
// operator's (or payer's) decision. Confirm finalizes the transaction;
// Cancel drops back to the order with member and cart intact.
type PendingPayment struct {
	session *Session
	Method  PaymentMethod
	Member  string
	Amount  Price
	link    string
}

// Link returns the payment deep link for methods that require external
// confirmation, and "" otherwise.
func (p *PendingPayment) Link() string { return p.link }

// Confirm finalizes the transaction: the stock-decremented catalog is
// persisted, the record is appended to the ledger, and the session is
// reset to Idle. On failure no partial state remains observable: a
// catalog save failure leaves stock untouched, and a ledger append
// failure restores and re-persists the stock before returning.
func (p *PendingPayment) Confirm() (Record, error) {
	s := p.session
	if s.pending != p {
		return Record{}, fmt.Errorf("payment already settled")
	}

	record := Record{
		Time:    s.now(),
		Member:  p.Member,
		Product: describeCart(s.Lines()),
		Amount:  p.Amount,
		Method:  p.Method.Name,
	}

	lines := s.Lines()
	for _, line := range lines {
		s.catalog.adjustStock(line.Code, -line.Quantity)
	}
	if err := s.catalog.SaveProducts(); err != nil {
		for _, line := range lines {
			s.catalog.adjustStock(line.Code, line.Quantity)
		}
		return Record{}, err
	}
	if err := s.ledger.Append(record); err != nil {
		// Compensate the stock decrement so the catalog never shows a
		// sale the ledger does not have.
		for _, line := range lines {
			s.catalog.adjustStock(line.Code, line.Quantity)
		}
		if err2 := s.catalog.SaveProducts(); err2 != nil {
			err = errors.Join(err, err2)
		}
		// The pending payment stays: the operator may retry or cancel.
		return Record{}, err
	}

	log.Debug("transaction finalized", "member", record.Member, "amount", record.Amount.Fixed(), "method", record.Method)
	s.Reset()
	return record, nil
}

// Cancel abandons the payment. Member and cart are kept: cancelling a
// payment does not erase the order.
func (p *PendingPayment) Cancel() {
	if p.session.pending == p {
		p.session.pending = nil
	}
}

// describeCart renders the cart as "name (xqty)" per line, joined by
// "; ". The separator survives later field splitting because the CSV
// column separator is the comma.
func describeCart(lines []CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s (x%d)", line.Name, line.Quantity))
	}
	return strings.Join(parts, "; ")
}
