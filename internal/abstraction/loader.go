package abstraction

import (
	"context"

	"github.com/vk/patchc/internal/pd"
)

// Loaded is a successfully parsed abstraction.
type Loaded struct {
	Pd *pd.Pd
	// Warnings are non-fatal parser diagnostics.
	Warnings []string
}

// Loader fetches the abstraction registered under a node type name.
//
// Load returns an error wrapping ErrUnknownNodeType when no abstraction
// exists and a *ParseError when its source is malformed. Any other error is
// reported as a parse error of that type.
type Loader interface {
	Load(ctx context.Context, nodeType string) (*Loaded, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, nodeType string) (*Loaded, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, nodeType string) (*Loaded, error) {
	return f(ctx, nodeType)
}

// NoLoader knows no abstractions.
var NoLoader = LoaderFunc(func(context.Context, string) (*Loaded, error) {
	return nil, ErrUnknownNodeType
})
