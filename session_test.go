package buvette

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	dir := t.TempDir()
	catalog, err := OpenCatalog(dir)
	if err != nil {
		t.Fatal(err)
	}
	catalog.UpsertMember("A1", "Alice", false)
	catalog.UpsertMember("B1", "Bob", false)
	catalog.UpsertProduct("P1", "Cola", P(1.5), 10)
	catalog.UpsertProduct("P2", "Chips", P(1), 3)
	catalog.UpsertPaymentMethod("X1", "Cash", false)
	catalog.UpsertPaymentMethod("PP1", "PayPal", false)

	ledger, err := OpenLedger(filepath.Join(dir, "transactions.csv"))
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession(catalog, ledger)
	s.now = func() time.Time { return time.Date(2025, 7, 12, 15, 4, 5, 0, time.UTC) }
	return s
}

func mustScan(t *testing.T, s *Session, code Barcode) Scan {
	t.Helper()
	scan, err := s.Scan(code)
	if err != nil {
		t.Fatalf("Scan(%s): %v", code, err)
	}
	return scan
}

// The full happy path: member, product twice, cash payment, confirm.
func TestSessionFullTransaction(t *testing.T) {
	s := testSession(t)

	if scan := mustScan(t, s, "A1"); scan.Kind != ScanMember || scan.Member != "Alice" {
		t.Fatalf("member scan = %+v", scan)
	}
	mustScan(t, s, "P1")
	if scan := mustScan(t, s, "P1"); scan.Line.Quantity != 2 {
		t.Fatalf("second product scan quantity = %d, want 2", scan.Line.Quantity)
	}
	if got := s.Total(); !got.Equal(P(3)) {
		t.Fatalf("Total = %s, want 3.00", got.Fixed())
	}

	scan := mustScan(t, s, "X1")
	if scan.Kind != ScanPayment {
		t.Fatalf("payment scan = %+v", scan)
	}
	record, err := scan.Payment.Confirm()
	if err != nil {
		t.Fatal(err)
	}

	if record.Member != "Alice" || record.Product != "Cola (x2)" || record.Amount.Fixed() != "3.00" || record.Method != "Cash" {
		t.Errorf("record = %+v", record)
	}
	if p, _ := s.catalog.Product("P1"); p.Stock != 8 {
		t.Errorf("stock = %d, want 8", p.Stock)
	}
	if !s.Idle() {
		t.Error("session not idle after finalize")
	}

	records, err := s.ledger.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Product != "Cola (x2)" {
		t.Errorf("ledger = %+v, want the single finalized record", records)
	}
	if got := records[0].Time.Format(ledgerTimeFormat); got != "2025-07-12 15:04:05" {
		t.Errorf("timestamp = %s", got)
	}
}

func TestCartDescriptionKeepsScanOrder(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	mustScan(t, s, "P2")
	mustScan(t, s, "P1")
	mustScan(t, s, "P2")

	scan := mustScan(t, s, "X1")
	record, err := scan.Payment.Confirm()
	if err != nil {
		t.Fatal(err)
	}
	if record.Product != "Chips (x2); Cola (x1)" {
		t.Errorf("description = %q, want first-scan order", record.Product)
	}
	if record.Amount.Fixed() != "3.50" {
		t.Errorf("amount = %s, want 3.50", record.Amount.Fixed())
	}
}

func TestScanRejections(t *testing.T) {
	tests := []struct {
		name  string
		scans []Barcode
		code  Barcode
		want  error
	}{
		{"product before member", nil, "P1", ErrNoMember},
		{"payment before member", nil, "X1", ErrNoMember},
		{"payment on empty cart", []Barcode{"A1"}, "X1", ErrEmptyCart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSession(t)
			for _, code := range tt.scans {
				mustScan(t, s, code)
			}
			_, err := s.Scan(tt.code)
			if !errors.Is(err, tt.want) {
				t.Errorf("Scan(%s) = %v, want %v", tt.code, err, tt.want)
			}
		})
	}
}

func TestScanUnknownCode(t *testing.T) {
	s := testSession(t)
	_, err := s.Scan("ZZZ")
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("Scan(ZZZ) = %v, want a NotFoundError", err)
	}
	if nferr.Code != "ZZZ" {
		t.Errorf("Code = %q, want ZZZ", nferr.Code)
	}
	if !s.Idle() {
		t.Error("rejected scan mutated the session")
	}
}

func TestMemberRescanKeepsCart(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")
	mustScan(t, s, "B1")

	if member, _ := s.Member(); member != "Bob" {
		t.Errorf("member = %q, want Bob", member)
	}
	if lines := s.Lines(); len(lines) != 1 || lines[0].Name != "Cola" {
		t.Errorf("cart lost on member rescan: %+v", lines)
	}
}

func TestPriceSnapshotAtScanTime(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")

	// Price change after the scan must not affect the cart line.
	if err := s.catalog.UpsertProduct("P1", "Cola", P(9.99), 10); err != nil {
		t.Fatal(err)
	}
	mustScan(t, s, "P1")

	if got := s.Total(); !got.Equal(P(3)) {
		t.Errorf("Total = %s, want 3.00 at the original price", got.Fixed())
	}
}

func TestPendingPaymentBlocksScans(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")
	mustScan(t, s, "X1")

	for _, code := range []Barcode{"A1", "P1", "X1"} {
		if _, err := s.Scan(code); !errors.Is(err, ErrPaymentPending) {
			t.Errorf("Scan(%s) during pending payment = %v, want ErrPaymentPending", code, err)
		}
	}
}

func TestCancelKeepsOrder(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")
	scan := mustScan(t, s, "X1")

	scan.Payment.Cancel()

	if member, _ := s.Member(); member != "Alice" {
		t.Errorf("member = %q, want Alice after cancel", member)
	}
	if lines := s.Lines(); len(lines) != 1 {
		t.Errorf("cart = %+v, want kept after cancel", lines)
	}
	// The order can be settled again.
	scan = mustScan(t, s, "X1")
	if _, err := scan.Payment.Confirm(); err != nil {
		t.Fatal(err)
	}
	if !s.Idle() {
		t.Error("session not idle after the second confirm")
	}
}

func TestPayPalPaymentCarriesLink(t *testing.T) {
	s := testSession(t)
	s.PayPal = PayLink{Handle: "stand59193"}
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")
	mustScan(t, s, "P1")

	scan := mustScan(t, s, "PP1")
	if !scan.Payment.Method.RequiresExternalConfirmation() {
		t.Fatal("PayPal must require external confirmation")
	}
	want := "https://paypal.me/stand59193/3.00"
	if got := scan.Payment.Link(); got != want {
		t.Errorf("Link = %q, want %q", got, want)
	}
}

func TestCashPaymentHasNoLink(t *testing.T) {
	s := testSession(t)
	s.PayPal = PayLink{Handle: "stand59193"}
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")

	scan := mustScan(t, s, "X1")
	if link := scan.Payment.Link(); link != "" {
		t.Errorf("Link = %q, want none for cash", link)
	}
}

func TestConfirmCompensatesStockOnLedgerFailure(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")
	scan := mustScan(t, s, "X1")

	// Make the append fail: replace the ledger file with a directory.
	if err := os.Remove(s.ledger.path); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(s.ledger.path, 0755); err != nil {
		t.Fatal(err)
	}

	_, err := scan.Payment.Confirm()
	if err == nil {
		t.Fatal("Confirm succeeded against an unwritable ledger")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want a PersistenceError", err)
	}

	// Stock is back where it started, in memory and on disk.
	if p, _ := s.catalog.Product("P1"); p.Stock != 10 {
		t.Errorf("in-memory stock = %d, want 10 after compensation", p.Stock)
	}
	reopened, err := OpenCatalog(s.catalog.dir)
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := reopened.Product("P1"); p.Stock != 10 {
		t.Errorf("persisted stock = %d, want 10 after compensation", p.Stock)
	}

	// The payment is still pending: the operator may retry or cancel.
	if _, err := s.Scan("P1"); !errors.Is(err, ErrPaymentPending) {
		t.Error("payment no longer pending after a failed confirm")
	}

	// Repair the ledger and retry.
	if err := os.Remove(s.ledger.path); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenLedger(s.ledger.path); err != nil {
		t.Fatal(err)
	}
	if _, err := scan.Payment.Confirm(); err != nil {
		t.Fatalf("retry after repair: %v", err)
	}
	if p, _ := s.catalog.Product("P1"); p.Stock != 9 {
		t.Errorf("stock = %d, want 9 after the successful retry", p.Stock)
	}
}

func TestConfirmTwiceFails(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")
	scan := mustScan(t, s, "X1")

	if _, err := scan.Payment.Confirm(); err != nil {
		t.Fatal(err)
	}
	if _, err := scan.Payment.Confirm(); err == nil {
		t.Error("second Confirm on the same payment must fail")
	}
	if p, _ := s.catalog.Product("P1"); p.Stock != 9 {
		t.Errorf("stock = %d, want a single decrement", p.Stock)
	}
}

func TestOversellingIsAllowed(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	for i := 0; i < 5; i++ {
		mustScan(t, s, "P2") // stock 3
	}
	scan := mustScan(t, s, "X1")
	if _, err := scan.Payment.Confirm(); err != nil {
		t.Fatal(err)
	}
	if p, _ := s.catalog.Product("P2"); p.Stock != -2 {
		t.Errorf("stock = %d, want -2", p.Stock)
	}
}

func TestReset(t *testing.T) {
	s := testSession(t)
	mustScan(t, s, "A1")
	mustScan(t, s, "P1")
	s.Reset()
	if !s.Idle() {
		t.Error("session not idle after Reset")
	}
	if _, err := s.Scan("P1"); !errors.Is(err, ErrNoMember) {
		t.Error("member survived Reset")
	}
}
