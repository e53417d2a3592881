package generation

import "fmt"

// Kind tags the terminal state of one generation call.
type Kind int

const (
	// KindSuccess carries the generated text.
	KindSuccess Kind = iota
	// KindFallback carries the deterministic fallback text produced after
	// retries were exhausted under persistent rate limiting.
	KindFallback
	// KindAPIError carries a generic user-facing message for a provider
	// error that is not a rate limit.
	KindAPIError
	// KindFatal carries a generic user-facing message for an unexpected
	// failure.
	KindFatal
)

// Outcome is the value every generation call resolves to. The service never
// returns a raw error to its caller; each failure mode becomes an Outcome.
type Outcome struct {
	Kind    Kind
	Text    string
	Message string
}

// OK reports whether the outcome carries usable text.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess || o.Kind == KindFallback
}

const (
	apiErrorMessage = "The language model provider returned an error. Please try again later."
	fatalMessage    = "An unexpected error occurred while generating a response."
)

func fallbackText(prompt string) string {
	return fmt.Sprintf("[fallback] rate limited; echoing prompt: %s", prompt)
}
