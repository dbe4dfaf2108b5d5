package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrDataInconsistency marks stored data that produced an impossible price,
	// such as a discount above the original price.
	ErrDataInconsistency = errors.New("pricing data inconsistency")

	// ErrUpstreamFetch matches every *FetchError.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
)

// FetchError reports that the product or promotion list could not be loaded.
// It is never collapsed into an empty catalog.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrUpstreamFetch
}
