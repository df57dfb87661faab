// Package catalog loads the offer and plan documents valuation runs over.
package catalog

import "errors"

var (
	// ErrUnavailable indicates that a document could not be fetched or read.
	ErrUnavailable = errors.New("document unavailable")
	// ErrBadDocument indicates that a document could not be parsed.
	ErrBadDocument = errors.New("malformed document")
)
