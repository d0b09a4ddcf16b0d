package labels

import (
	"image"
	"strings"
	"testing"
)

func TestMemberKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"John Doe", "MEM_JDO"},
		{"jean dupont", "MEM_JDU"},
		{"Éloïse Müller", "MEM_EMU"},
		{"Madonna", "MEM_MAD"},
		{"Al", "MEM_AL"},
		{"Jean-Pierre De La Fontaine", "MEM_JFO"},
		{"  spaced   out  ", "MEM_SOU"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MemberKey(tt.name); got != tt.want {
				t.Errorf("MemberKey(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Doe", "John_Doe"},
		{"Éloïse", "Éloïse"},
		{"a/b\\c:d", "a_b_c_d"},
		{"name.png", "name_png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeFilename(tt.in); got != tt.want {
				t.Errorf("SafeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	img, err := Generate("MEM_JDO")
	if err != nil {
		t.Fatal(err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != labelWidth || bounds.Dy() != labelHeight {
		t.Errorf("label size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), labelWidth, labelHeight)
	}

	if _, err := Generate(""); err == nil {
		t.Error("empty payload must be rejected")
	}
}

func TestSheet(t *testing.T) {
	var images []image.Image
	for _, payload := range []string{"MEM_JDO", "MEM_JDU", "MEM_EMU"} {
		img, err := Generate(payload)
		if err != nil {
			t.Fatal(err)
		}
		images = append(images, img)
	}

	page, err := Sheet(images, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Bounds().Dx() != sheetWidth || page.Bounds().Dy() != sheetHeight {
		t.Errorf("sheet size = %v, want %dx%d", page.Bounds(), sheetWidth, sheetHeight)
	}

	// The first label's top-left corner sits inside the margin.
	if _, _, _, a := page.At(sheetMargin+1, sheetMargin+1).RGBA(); a == 0 {
		t.Error("label area is transparent, expected drawn content")
	}
}

func TestSheetOverflow(t *testing.T) {
	img, err := Generate("MEM_JDO")
	if err != nil {
		t.Fatal(err)
	}
	// One column of full-height labels overflows an A4 page quickly.
	many := make([]image.Image, 40)
	for i := range many {
		many[i] = img
	}
	if _, err := Sheet(many, 1); err == nil {
		t.Error("expected an error when the sheet is full")
	}
}

func TestQRPNG(t *testing.T) {
	data, err := QRPNG("https://paypal.me/stand59193/3.00", 256)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty PNG")
	}
	// PNG signature.
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Errorf("not a PNG: % x", data[:8])
	}
}

func TestQRTerminal(t *testing.T) {
	out, err := QRTerminal("https://paypal.me/stand59193/3.00")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "█") {
		t.Error("terminal QR contains no block characters")
	}
}
