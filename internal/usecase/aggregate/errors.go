package aggregate

import "errors"

var (
	// ErrSourceUnavailable indicates a source could not be retrieved:
	// timeout, network failure, or a non-2xx response.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceUnparseable indicates a source responded with a document
	// that could not be parsed as a feed.
	ErrSourceUnparseable = errors.New("source unparseable")
)
