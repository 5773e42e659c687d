package naming

import "errors"

// Domain-specific errors for topic derivation.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrBlankDiscoveryPart is returned when DiscoveryTopic is called with
	// a blank component or item. A malformed discovery path must never be
	// built silently.
	ErrBlankDiscoveryPart = errors.New("naming: discovery component and item must be non-blank")
)
