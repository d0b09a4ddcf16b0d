package buvette

// PayLink builds paypal.me deep links embedding a payment amount.
// Rendering the link as a scannable graphic is a presentation concern;
// the core only produces the URL.
type PayLink struct {
	// Handle is the paypal.me account name, e.g. "rcpark59193".
	Handle string
}

// For returns the deep link requesting amount, with a dot decimal
// separator regardless of locale. It returns "" when no handle is
// configured.
func (p PayLink) For(amount Price) string {
	if p.Handle == "" {
		return ""
	}
	return "https://paypal.me/" + p.Handle + "/" + amount.Fixed()
}
