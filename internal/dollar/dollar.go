// Package dollar substitutes Pd dollar arguments.
//
// A patch exposes the argument list [patchId, arg1, arg2, ...] so that `$0`
// addresses the id of the abstraction instance and `$1..$N` its creation
// arguments.
package dollar

import (
	"regexp"
	"strconv"

	"github.com/vk/patchc/internal/pd"
)

var (
	wholeToken = regexp.MustCompile(`^\$(\d+)$`)
	anyRef     = regexp.MustCompile(`\$(\d+)`)
)

// patchArgs returns the argument list addressed by dollar references.
func patchArgs(patch *pd.Patch) []any {
	var id any = patch.ID
	if n, err := strconv.Atoi(patch.ID); err == nil {
		id = n
	}
	return append([]any{id}, patch.Args...)
}

// Resolve substitutes dollar references in token using patch's id and args.
//
// A token made of exactly one reference yields the raw argument value, which
// may be a number. References embedded in a longer string are replaced with
// the textual form of the value; out-of-range or unset references stay
// literal. A bare out-of-range or unset reference reports false.
func Resolve(token string, patch *pd.Patch) (any, bool) {
	args := patchArgs(patch)

	if m := wholeToken.FindStringSubmatch(token); m != nil {
		i, err := strconv.Atoi(m[1])
		if err != nil || i >= len(args) || args[i] == nil {
			return nil, false
		}
		return args[i], true
	}

	return anyRef.ReplaceAllStringFunc(token, func(ref string) string {
		i, err := strconv.Atoi(ref[1:])
		if err != nil || i >= len(args) || args[i] == nil {
			return ref
		}
		return pd.FormatArg(args[i])
	}), true
}

// ResolveArgs resolves every string argument of args. Unresolvable bare
// references become nil so argument translation falls back to defaults.
func ResolveArgs(args []any, patch *pd.Patch) []any {
	if args == nil {
		return nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		s, ok := arg.(string)
		if !ok {
			out[i] = arg
			continue
		}
		v, ok := Resolve(s, patch)
		if !ok {
			out[i] = nil
			continue
		}
		out[i] = v
	}
	return out
}
