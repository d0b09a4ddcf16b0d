package buvette

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Barcode
	}{
		{"digits from azerty top row", `&é"'(-è_çà`, "1234567890"},
		{"ean13 as received", `"é(àèéàé"è_((`, "3250720237855"},
		{"swapped letters", "qwzaQWZA", "azwqAZWQ"},
		{"punctuation", `m.ù%`, `;:'"`},
		{"digits mean shifted qwerty", "12345", `!@#$%`},
		{"passthrough", "BCDEfgh", "BCDEfgh"},
		{"empty", "", ""},
		{"mixed", "Té", "T2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsNotIdempotent(t *testing.T) {
	// '&' maps to '1' and '1' maps to '!'. Applying the table twice
	// corrupts the code, which is why Barcode exists as its own type.
	once := Normalize("&")
	twice := Normalize(string(once))
	if once != "1" {
		t.Fatalf("Normalize(\"&\") = %q, want \"1\"", once)
	}
	if twice == once {
		t.Fatalf("expected a second pass to corrupt the code, got %q twice", twice)
	}
}

func TestRaw(t *testing.T) {
	if got := Raw("&é"); got != "&é" {
		t.Errorf("Raw(\"&é\") = %q, want the input unchanged", got)
	}
}
