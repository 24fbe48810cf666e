package core

import "errors"

// Pipeline stage names recorded in outcomes and logs.
const (
	StageFetch    = "fetch"
	StageParse    = "parse"
	StageFilter   = "filter"
	StageRewrite  = "rewrite"
	StageRebuild  = "rebuild"
	StageDispatch = "dispatch"
)

var (
	// ErrFetch classifies failures loading the raw message from the
	// store. Retrying may succeed.
	ErrFetch = errors.New("fetch failure")

	// ErrMalformed classifies messages whose structure cannot be
	// parsed or that lack a usable From address. Retrying the same
	// bytes cannot succeed.
	ErrMalformed = errors.New("malformed message")

	// ErrRebuild classifies messages whose declared structure is
	// inconsistent with their body. Permanent, like ErrMalformed.
	ErrRebuild = errors.New("rebuild failure")

	// ErrSend classifies dispatch failures. Retrying may succeed.
	ErrSend = errors.New("send failure")

	// ErrNotFound is reported by fetchers when the referenced
	// message does not exist in the store.
	ErrNotFound = errors.New("message not found")
)

// IsPermanent reports whether err can never be fixed by retrying the
// same reference with the same configuration.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrRebuild)
}
