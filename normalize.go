package buvette

import "strings"

// Barcode is a scanned or manually typed code after exactly one pass
// through Normalize (or Raw). Lookups against the catalog are always
// keyed by Barcode, so a value that never went through normalization
// cannot be compared against catalog keys by accident.
//
// The remap table is not idempotent ('1' maps to '!', and '!' maps to
// '/'), so normalizing twice corrupts the code. Keeping the normalized
// form in its own type is what prevents that.
type Barcode string

// scannerLayoutMap corrects the output of a barcode scanner that types
// as a QWERTY keyboard on a host configured for AZERTY. When the
// scanner "presses" the key for '3', the host receives '"'; this table
// maps each received character back to the intended one.
var scannerLayoutMap = map[rune]rune{
	// AZERTY top row back to digits.
	'&': '1', 'é': '2', '"': '3', '\'': '4', '(': '5',
	'-': '6', 'è': '7', '_': '8', 'ç': '9', 'à': '0',
	// Swapped letter keys.
	'q': 'a', 'a': 'q', 'w': 'z', 'z': 'w',
	'Q': 'A', 'A': 'Q', 'W': 'Z', 'Z': 'W',
	// Punctuation.
	')': '-', '°': '_', '^': '[', '$': ']',
	'm': ';', '.': ':', 'ù': '\'', '%': '"',
	';': ',', ':': '.', '!': '/', 'M': '?',
	'*': '\\', 'µ': '|', '²': '`',
	// Digits received mean the scanner sent shifted QWERTY digits.
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
}

// Normalize applies the scanner layout remap to every rune of raw.
// Runes absent from the table pass through unchanged. Normalize is
// pure, total and deterministic; it must be applied exactly once to
// every scanned or typed code before catalog lookup.
func Normalize(raw string) Barcode {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if mapped, ok := scannerLayoutMap[r]; ok {
			b.WriteRune(mapped)
		} else {
			b.WriteRune(r)
		}
	}
	return Barcode(b.String())
}

// Raw marks a code as already being in the host layout, for setups
// where the scanner and the host agree and no remap is wanted.
func Raw(raw string) Barcode { return Barcode(raw) }
