package catalog

import "errors"

// Failure taxonomy. Every failure is scoped to the single request or product
// that raised it; callers log and move on, they never abort sibling work.
var (
	// ErrMalformedListPayload marks a list-page body that is not valid JSON.
	ErrMalformedListPayload = errors.New("malformed list payload")
	// ErrMalformedDetailPayload marks a detail body whose results object is
	// absent or undecodable.
	ErrMalformedDetailPayload = errors.New("malformed detail payload")
	// ErrMissingDescriptionBlocks marks a detail record without the
	// description_blocks field. The source contract requires it, so absence
	// is a data-integrity error rather than a soft-missing case.
	ErrMissingDescriptionBlocks = errors.New("missing description_blocks")
	// ErrMissingFilterLabels marks a detail record without filter_labels.
	ErrMissingFilterLabels = errors.New("missing filter_labels")
	// ErrFetchFailure wraps terminal transport failures.
	ErrFetchFailure = errors.New("fetch failure")
)
