package abstraction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/patchc/internal/pd"
)

// ErrInvariant is wrapped by every error signalling malformed input.
var ErrInvariant = pd.ErrInvariant

// ErrUnknownNodeType is returned (possibly wrapped) by a Loader that has no
// abstraction for the requested type.
var ErrUnknownNodeType = errors.New("unknown node type")

// ParseError is returned by a Loader whose abstraction source exists but is
// malformed.
type ParseError struct {
	Errors   []string
	Warnings []string
}

func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return "abstraction parsing failed"
	}
	return fmt.Sprintf("abstraction parsing failed:\n- %s", strings.Join(e.Errors, "\n- "))
}
