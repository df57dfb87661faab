package feed

import "errors"

var (
	// ErrRequestFailed indicates a transport-level failure talking to the feed.
	ErrRequestFailed = errors.New("request failed")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrInvalidResponse indicates a malformed response from the feed.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrTypeNotFound indicates the lookup key is absent from the response.
	ErrTypeNotFound = errors.New("type not found in response")
	// ErrNoCandidates indicates that no usable candidates were extracted.
	ErrNoCandidates = errors.New("no candidates extracted from response")
	// ErrInvalidConfig indicates that the feed configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownSource indicates that no factory is registered under the key.
	ErrUnknownSource = errors.New("unknown source")
	// ErrNoSourcesEnabled indicates that the chain has no sources to try.
	ErrNoSourcesEnabled = errors.New("no sources enabled")
	// ErrAllSourcesFailed indicates that every source in the chain failed.
	ErrAllSourcesFailed = errors.New("all rate sources failed")
)
