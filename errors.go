package buvette

import "fmt"

// Error taxonomy of the core. Nothing here is fatal: every error is
// recoverable at the operator-interaction boundary, and callers match
// on the concrete types with errors.As when they need to.

// ValidationError reports operator input rejected at entry time
// (empty name or barcode, negative price or stock). The operation is
// aborted and no state is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a scanned code that matches no catalog entry.
type NotFoundError struct {
	Code Barcode
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown barcode %q", string(e.Code))
}

// ConflictError reports a barcode already claimed by another entity
// during a rename. The caller must explicitly confirm the overwrite
// to proceed.
type ConflictError struct {
	Code   Barcode
	Holder string // display name of the current owner
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("barcode %q is already used by %q", string(e.Code), e.Holder)
}

// PersistenceError reports a file read or write failure. When it is
// returned, in-memory state has been left (or restored) to match the
// last successfully persisted state, so a retry is possible.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cannot persist %q: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CorruptDataError reports an unparsable catalog file. It is
// informational: the loader has already moved the corrupt file to
// Backup and reinitialized the store with an empty default.
type CorruptDataError struct {
	Path   string
	Backup string
	Err    error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt data file %q (backed up to %q): %v", e.Path, e.Backup, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }
