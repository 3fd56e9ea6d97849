package compiler

import (
	"context"
	"math"

	"github.com/vk/patchc/internal/ctxlog"
	"github.com/vk/patchc/internal/dollar"
	"github.com/vk/patchc/internal/pd"
)

// maxArraySize bounds the length of a zero-filled array buffer.
const maxArraySize = math.MaxInt32

// materializeArrays builds one buffer per array, keyed by its resolved name.
// Saved contents are copied; otherwise the buffer is zero-filled to the
// declared size.
func (c *compiler) materializeArrays(ctx context.Context) (map[string][]float64, error) {
	logger := ctxlog.FromContext(ctx)
	root, _ := c.doc.RootPatch()
	arrays := make(map[string][]float64, len(c.doc.Arrays))

	for _, id := range sortedKeys(c.doc.Arrays) {
		array := c.doc.Arrays[id]
		owner, ok := c.doc.Patches[array.RootPatchID]
		if !ok {
			owner = root
		}
		args := dollar.ResolveArgs(array.Args, owner)

		if len(args) == 0 || args[0] == nil {
			return nil, pd.Invariantf("array '%s' has no name", id)
		}
		name := pd.FormatArg(args[0])

		var data []float64
		if array.Data != nil {
			data = append([]float64(nil), array.Data...)
		} else {
			size := 0.0
			if len(args) > 1 {
				size, _ = pd.ParseNumber(args[1])
			}
			if size < 0 || math.IsNaN(size) || size > maxArraySize {
				return nil, pd.Invariantf("array '%s' has invalid size %v", name, args[1])
			}
			data = make([]float64, int(size))
		}

		if _, exists := arrays[name]; exists {
			logger.Warn("Array defined more than once, keeping the first definition.", "name", name, "id", id)
			continue
		}
		arrays[name] = data
	}
	return arrays, nil
}
