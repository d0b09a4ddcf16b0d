package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/rcpark/buvette"
	"github.com/rcpark/buvette/labels"
)

// labelsCmd generates printable barcode labels for members listed in a
// names file, registering each derived barcode in the catalog.
type labelsCmd struct {
	out   string
	sheet string
	cols  int
}

func (*labelsCmd) Name() string     { return "labels" }
func (*labelsCmd) Synopsis() string { return "Generate member barcode labels from a names file." }
func (*labelsCmd) Usage() string {
	return `labels [-out <dir>] [-sheet <file>] [-cols 5] <names-file>:
	Reads one member name per line, derives a MEM_ barcode for each,
	registers it in the catalog and writes one PNG label per member.
	With -sheet the labels are also composed into a printable A4 page.
	Requires the admin password.
`
}

func (c *labelsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "labels", "directory receiving the PNG labels")
	f.StringVar(&c.sheet, "sheet", "", "also compose the labels into this A4 PNG")
	f.IntVar(&c.cols, "cols", 5, "labels per row on the sheet")
}

func (c *labelsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one names file expected")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if !authorize(cfg, bufio.NewReader(os.Stdin)) {
		fmt.Fprintln(os.Stderr, "Error: not authorized")
		return subcommands.ExitFailure
	}
	catalog, err := buvette.OpenCatalog(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := os.MkdirAll(c.out, 0755); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	var images []image.Image
	for _, line := range strings.Split(string(data), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		key := labels.MemberKey(name)
		if key == "" {
			continue
		}
		// Derived keys can collide; let the holder win and report it.
		if err := catalog.UpsertMember(buvette.Raw(key), name, false); err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", name, err)
			continue
		}
		img, err := labels.Generate(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", name, err)
			continue
		}
		path := filepath.Join(c.out, labels.SafeFilename(name)+".png")
		if err := labels.WritePNG(path, img); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		images = append(images, img)
		fmt.Printf("%s -> %s (%s)\n", name, key, path)
	}

	if c.sheet != "" && len(images) > 0 {
		page, err := labels.Sheet(images, c.cols)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Warning:", err)
		}
		if err := labels.WritePNG(c.sheet, page); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote sheet with %d labels to %s\n", len(images), c.sheet)
	}
	return subcommands.ExitSuccess
}
