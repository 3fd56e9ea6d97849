package pd

import (
	"errors"
	"fmt"
)

// ErrInvariant marks malformed input that the caller should have rejected
// earlier: dangling patch or node references, proxies missing from their
// patch's portlet order, several root patches. Such errors abort a
// compilation immediately.
var ErrInvariant = errors.New("invariant violation")

// Invariantf returns an error wrapping ErrInvariant.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
