package buvette

import (
	"fmt"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
)

// openFoodFactsURL is the product endpoint of the Open Food Facts
// public API, keyed by barcode.
const openFoodFactsURL = "https://world.openfoodfacts.org/api/v0/product/%s.json"

// ProductLookup prefills product names from an external database. It
// is strictly best-effort: callers swallow errors and fall back to
// manual entry.
type ProductLookup struct {
	// Client used for requests. Defaults to a daily disk-cached client.
	Client *http.Client
	// BaseURL overrides the Open Food Facts endpoint, for tests.
	BaseURL string
}

func (f *ProductLookup) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return cachedClient()
}

func (f *ProductLookup) url(code Barcode) string {
	if f.BaseURL != "" {
		return fmt.Sprintf(f.BaseURL, code)
	}
	return fmt.Sprintf(openFoodFactsURL, code)
}

// Name looks up the product name registered for code. It returns an
// error when the product is unknown or the response unusable; the
// caller degrades to no prefill.
func (f *ProductLookup) Name(code Barcode) (string, error) {
	var jobj any
	if err := jwget(f.client(), f.url(code), &jobj); err != nil {
		return "", fmt.Errorf("product lookup for %q: %w", code, err)
	}

	status, err := jsonpath.Get("$.status", jobj)
	if err != nil || status != float64(1) {
		return "", fmt.Errorf("product %q not found upstream", code)
	}

	jval, err := jsonpath.Get("$.product.product_name", jobj)
	if err != nil {
		return "", fmt.Errorf("product lookup for %q: %w", code, err)
	}
	name, ok := jval.(string)
	if !ok || name == "" {
		return "", fmt.Errorf("product %q has no usable name upstream", code)
	}
	return name, nil
}
