package buvette

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rcpark/buvette/date"
)

// ledgerTimeFormat is the timestamp written in the first ledger
// column. Always zero-padded, so file order is chronological order.
const ledgerTimeFormat = "2006-01-02 15:04:05"

// ledgerHeader is written once, when the ledger file is created.
var ledgerHeader = []string{"Timestamp", "Member", "Product", "Amount", "Payment Method"}

// Record is one finalized transaction. Records are immutable once
// appended.
type Record struct {
	Time    time.Time
	Member  string
	Product string // "Cola (x2); Chips (x1)" - lines joined by "; "
	Amount  Price
	Method  string
}

// Date returns the calendar day of the record.
func (r Record) Date() date.Date { return date.Of(r.Time) }

func (r Record) row() []string {
	return []string{r.Time.Format(ledgerTimeFormat), r.Member, r.Product, r.Amount.Fixed(), r.Method}
}

// Ledger is an append-only CSV transaction log. It holds no state
// beyond the file path: every query reads the file, every finalized
// transaction appends one row.
type Ledger struct {
	path string
}

// OpenLedger opens the ledger at path, creating it with the header row
// if it does not exist yet.
func OpenLedger(path string) (*Ledger, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &PersistenceError{Path: path, Err: err}
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, &PersistenceError{Path: path, Err: err}
		}
		w := csv.NewWriter(f)
		w.Write(ledgerHeader)
		w.Flush()
		if err := errors.Join(w.Error(), f.Close()); err != nil {
			return nil, &PersistenceError{Path: path, Err: err}
		}
	} else if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	return &Ledger{path: path}, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string { return l.path }

// Append writes one record at the end of the ledger file. The write is
// flushed and the file closed before Append returns.
func (l *Ledger) Append(r Record) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &PersistenceError{Path: l.path, Err: err}
	}
	w := csv.NewWriter(f)
	w.Write(r.row())
	w.Flush()
	if err := errors.Join(w.Error(), f.Close()); err != nil {
		return &PersistenceError{Path: l.path, Err: err}
	}
	return nil
}

// rows reads all data rows (header excluded) as raw fields. Rows that
// do not have exactly 5 fields are skipped, as earlier versions did:
// a half-written line must not take the till down.
func (l *Ledger) rows() ([][]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, &PersistenceError{Path: l.path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	first := true
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &PersistenceError{Path: l.path, Err: err}
		}
		if first {
			first = false // header
			continue
		}
		if len(fields) == len(ledgerHeader) {
			rows = append(rows, fields)
		}
	}
	return rows, nil
}

func parseRecord(fields []string) (Record, bool) {
	t, err := time.Parse(ledgerTimeFormat, fields[0])
	if err != nil {
		return Record{}, false
	}
	amount, err := ParsePrice(fields[3])
	if err != nil {
		return Record{}, false
	}
	return Record{Time: t, Member: fields[1], Product: fields[2], Amount: amount, Method: fields[4]}, true
}

// Records returns every parseable record in file (chronological) order.
func (l *Ledger) Records() ([]Record, error) {
	rows, err := l.rows()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(rows))
	for _, fields := range rows {
		if r, ok := parseRecord(fields); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// Recent returns the last n records, most recent first.
func (l *Ledger) Recent(n int) ([]Record, error) {
	records, err := l.Records()
	if err != nil {
		return nil, err
	}
	if n > len(records) {
		n = len(records)
	}
	recent := make([]Record, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		recent = append(recent, records[i])
	}
	return recent, nil
}

// FilterRange returns the records whose day falls inside rng, bounds
// included, in file order.
func (l *Ledger) FilterRange(rng date.Range) ([]Record, error) {
	records, err := l.Records()
	if err != nil {
		return nil, err
	}
	var filtered []Record
	for _, r := range records {
		if rng.Contains(r.Date()) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// ExportRange writes the header and the rows whose day falls inside
// rng, field-for-field as stored, to w. It returns the number of rows
// exported.
func (l *Ledger) ExportRange(rng date.Range, w io.Writer) (int, error) {
	rows, err := l.rows()
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	cw.Write(ledgerHeader)
	count := 0
	for _, fields := range rows {
		t, err := time.Parse(ledgerTimeFormat, fields[0])
		if err != nil {
			continue
		}
		if rng.Contains(date.Of(t)) {
			cw.Write(fields)
			count++
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, &PersistenceError{Path: l.path, Err: err}
	}
	return count, nil
}
