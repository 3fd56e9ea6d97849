package abstraction

import (
	"slices"

	"github.com/vk/patchc/internal/pd"
)

// namemap records the old to new id mapping of one renumbering.
type namemap struct {
	patches map[string]string
	arrays  map[string]string
}

// renumber returns a deep copy of doc whose patches and arrays carry fresh
// ids from alloc. Subpatch and array references are rewritten accordingly
// and every array is attached to the copy's root patch. doc is not modified.
func renumber(doc *pd.Pd, rootID string, alloc *IDAllocator) (*pd.Pd, namemap, error) {
	names := namemap{
		patches: make(map[string]string, len(doc.Patches)),
		arrays:  make(map[string]string, len(doc.Arrays)),
	}
	for _, id := range sortedKeys(doc.Patches) {
		names.patches[id] = alloc.Next()
	}
	for _, id := range sortedKeys(doc.Arrays) {
		names.arrays[id] = alloc.Next()
	}

	out := pd.New()
	out.RootPatchID = names.patches[rootID]

	for oldID, patch := range doc.Patches {
		c := patch.Clone()
		c.ID = names.patches[oldID]
		for localID, node := range c.Nodes {
			switch node.Kind {
			case pd.KindSubpatch:
				newID, ok := names.patches[node.PatchID]
				if !ok {
					return nil, names, pd.Invariantf("node '%s' of patch '%s' references missing patch '%s'", localID, oldID, node.PatchID)
				}
				node.PatchID = newID
			case pd.KindArray:
				newID, ok := names.arrays[node.ArrayID]
				if !ok {
					return nil, names, pd.Invariantf("node '%s' of patch '%s' references missing array '%s'", localID, oldID, node.ArrayID)
				}
				node.ArrayID = newID
			}
		}
		out.Patches[c.ID] = c
	}

	for oldID, array := range doc.Arrays {
		c := array.Clone()
		c.ID = names.arrays[oldID]
		c.RootPatchID = out.RootPatchID
		out.Arrays[c.ID] = c
	}
	return out, names, nil
}

// rootPatchOf returns the id of the root patch of a standalone document.
// An explicit RootPatchID wins; otherwise exactly one patch must be flagged
// IsRoot.
func rootPatchOf(doc *pd.Pd) (string, error) {
	if doc.RootPatchID != "" {
		if _, ok := doc.Patches[doc.RootPatchID]; !ok {
			return "", pd.Invariantf("root patch '%s' not found", doc.RootPatchID)
		}
		return doc.RootPatchID, nil
	}

	var roots []string
	for id, patch := range doc.Patches {
		if patch.IsRoot {
			roots = append(roots, id)
		}
	}
	switch len(roots) {
	case 0:
		return "", pd.Invariantf("no root patch")
	case 1:
		return roots[0], nil
	}
	pd.SortIDs(roots)
	return "", pd.Invariantf("several root patches: %v", roots)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, pd.CompareIDs)
	return keys
}
