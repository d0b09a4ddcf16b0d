// Package labels generates the physical artifacts of the stand:
// Code 128 barcode labels for members and payment methods, a printable
// sheet collecting them, and QR codes for payment links.
package labels

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"
	"unicode"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/text/unicode/norm"
)

// Label dimensions in pixels. All labels are generated at the same
// size so the sheet can lay them out on a fixed grid.
const (
	labelWidth  = 400
	labelHeight = 160
)

// MemberKey derives a stable barcode payload from a member name:
// "MEM_" plus the first letter of the first name and the first two
// letters of the last name, accents folded and uppercased. A single
// name uses its first three letters.
func MemberKey(name string) string {
	folded := strings.ToUpper(foldAccents(strings.TrimSpace(name)))
	parts := strings.Fields(folded)
	switch {
	case len(parts) == 0:
		return ""
	case len(parts) == 1:
		return "MEM_" + head(parts[0], 3)
	default:
		return "MEM_" + head(parts[0], 1) + head(parts[len(parts)-1], 2)
	}
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// foldAccents strips combining marks: "é" becomes "e".
func foldAccents(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SafeFilename keeps letters and digits of name and replaces anything
// else with an underscore.
func SafeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Generate encodes payload as a Code 128 barcode image of the standard
// label size.
func Generate(payload string) (image.Image, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty barcode payload")
	}
	bc, err := code128.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("cannot encode %q: %w", payload, err)
	}
	scaled, err := barcode.Scale(bc, labelWidth, labelHeight)
	if err != nil {
		return nil, fmt.Errorf("cannot scale barcode for %q: %w", payload, err)
	}
	return scaled, nil
}

// WritePNG writes img to path as PNG.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// A4 canvas at 300 DPI, portrait.
const (
	sheetWidth  = 2480
	sheetHeight = 3508
	sheetMargin = 80
	cellSpacing = 30
)

// Sheet composes labels into a printable A4 page, filling columns left
// to right then wrapping to the next row. Labels are placed at their
// native size; images beyond the page are dropped with an error.
func Sheet(images []image.Image, columns int) (image.Image, error) {
	if columns < 1 {
		columns = 2
	}
	page := image.NewRGBA(image.Rect(0, 0, sheetWidth, sheetHeight))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	cellW := labelWidth + cellSpacing
	cellH := labelHeight + cellSpacing
	for i, img := range images {
		col := i % columns
		row := i / columns
		x := sheetMargin + col*cellW
		y := sheetMargin + row*cellH
		if x+labelWidth > sheetWidth-sheetMargin || y+labelHeight > sheetHeight-sheetMargin {
			return page, fmt.Errorf("sheet full after %d of %d labels", i, len(images))
		}
		target := image.Rect(x, y, x+labelWidth, y+labelHeight)
		draw.Draw(page, target, img, img.Bounds().Min, draw.Src)
	}
	return page, nil
}

// QRPNG encodes content as a QR code PNG of the given pixel size.
func QRPNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Low, size)
}

// QRTerminal renders content as a QR code made of terminal block
// characters, scannable straight off the screen.
func QRTerminal(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
