package domain

// FreshnessMark is the highest episode ID observed in the catalog.
// Valid is false when the catalog was empty.
type FreshnessMark struct {
	ID    int
	Valid bool
}

// Freshness classifies the outcome of a refresh.
type Freshness int

const (
	FreshnessNoNewContent Freshness = iota
	FreshnessNewContent
	FreshnessFailed
	FreshnessRefused
)

func (f Freshness) String() string {
	switch f {
	case FreshnessNewContent:
		return "new_content"
	case FreshnessFailed:
		return "failed"
	case FreshnessRefused:
		return "refused"
	default:
		return "no_new_content"
	}
}

// Notice returns the one-shot user-facing message for the outcome.
func (f Freshness) Notice() (title, body string) {
	switch f {
	case FreshnessNewContent:
		return "Updated", "New episodes loaded!"
	case FreshnessFailed:
		return "Refresh failed", "Please try again later."
	case FreshnessRefused:
		return "No connection", "Connect to the internet to refresh."
	default:
		return "No new content", "You're already on the latest episodes."
	}
}
