package abstraction

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/patchc/internal/ctxlog"
	"github.com/vk/patchc/internal/dollar"
	"github.com/vk/patchc/internal/pd"
	"github.com/vk/patchc/internal/registry"
)

// Status is the outcome of Instantiate.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failure"
}

// Result is the structured outcome of abstraction instantiation.
type Result struct {
	Status Status
	// Pd is the expanded document. Nil on failure.
	Pd *pd.Pd
	// RootPatch is Pd's root patch. Nil on failure.
	RootPatch *pd.Patch
	// Abstractions holds each loaded abstraction as returned by the loader,
	// keyed by node type.
	Abstractions map[string]*pd.Pd
	// Warnings and Errors are keyed by node type.
	Warnings map[string][]string
	Errors   map[string][]string
	// UnknownNodeTypes lists, sorted, every type with neither a builder nor
	// an abstraction.
	UnknownNodeTypes []string
}

// OK reports whether instantiation succeeded.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

// Err summarizes a failed result as one error, or returns nil.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	var items []string
	for _, t := range r.UnknownNodeTypes {
		items = append(items, fmt.Sprintf("unknown node type '%s'", t))
	}
	for _, t := range sortedKeys(r.Errors) {
		for _, e := range r.Errors[t] {
			items = append(items, fmt.Sprintf("%s: %s", t, e))
		}
	}
	return fmt.Errorf("failed to resolve abstractions:\n- %s", strings.Join(items, "\n- "))
}

// loadOutcome is the cached result of loading one node type.
type loadOutcome struct {
	doc    *pd.Pd
	rootID string
}

type resolver struct {
	reg    *registry.Registry
	loader Loader
	alloc  *IDAllocator
	doc    *pd.Pd

	// cache holds every type the loader was asked about. A nil outcome
	// marks a type that failed to load.
	cache map[string]*loadOutcome
	// owners maps a patch id to the node that embeds it.
	owners map[string]string

	abstractions map[string]*pd.Pd
	warnings     map[string][]string
	errors       map[string][]string
	unknown      map[string]bool
}

// Instantiate expands every abstraction reachable from doc's root patch.
// doc is left untouched.
func Instantiate(ctx context.Context, doc *pd.Pd, reg *registry.Registry, loader Loader) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Instantiate: Starting abstraction resolution.", "patch_count", len(doc.Patches))

	rootID, err := rootPatchOf(doc)
	if err != nil {
		return nil, err
	}

	alloc := AllocatorAfter(doc)
	host, _, err := renumber(doc, rootID, alloc)
	if err != nil {
		return nil, err
	}
	logger.Debug("Instantiate: Host document renumbered.", "root", host.RootPatchID)

	r := &resolver{
		reg:          reg,
		loader:       loader,
		alloc:        alloc,
		doc:          host,
		cache:        make(map[string]*loadOutcome),
		owners:       make(map[string]string),
		abstractions: make(map[string]*pd.Pd),
		warnings:     make(map[string][]string),
		errors:       make(map[string][]string),
		unknown:      make(map[string]bool),
	}
	if err := r.walk(ctx, host.RootPatchID, host.RootPatchID, nil); err != nil {
		return nil, err
	}

	res := &Result{
		Abstractions: r.abstractions,
		Warnings:     r.warnings,
		Errors:       r.errors,
	}
	for t := range r.unknown {
		res.UnknownNodeTypes = append(res.UnknownNodeTypes, t)
	}
	pd.SortIDs(res.UnknownNodeTypes)

	if len(res.UnknownNodeTypes) > 0 || len(res.Errors) > 0 {
		res.Status = StatusFailure
		logger.Debug("Instantiate: Abstraction resolution failed.",
			"unknown_types", len(res.UnknownNodeTypes), "failed_types", len(res.Errors))
		return res, nil
	}

	res.Status = StatusSuccess
	res.Pd = host
	res.RootPatch = host.Patches[host.RootPatchID]
	logger.Debug("Instantiate: Abstraction resolution complete.",
		"patch_count", len(host.Patches), "abstraction_count", len(r.abstractions))
	return res, nil
}

// walk visits patchID and everything nested in it. instanceRoot is the root
// patch of the abstraction instance patchID belongs to; stack lists the
// abstraction types being expanded above it.
func (r *resolver) walk(ctx context.Context, patchID, instanceRoot string, stack []string) error {
	patch, ok := r.doc.Patches[patchID]
	if !ok {
		return pd.Invariantf("patch '%s' not found", patchID)
	}

	for _, localID := range patch.SortedNodeIDs() {
		node := patch.Nodes[localID]
		switch node.Kind {
		case pd.KindText, pd.KindInlet, pd.KindOutlet, pd.KindArray:
			continue
		case pd.KindSubpatch:
			if err := r.claim(node.PatchID, patchID, localID); err != nil {
				return err
			}
			if err := r.walk(ctx, node.PatchID, instanceRoot, stack); err != nil {
				return err
			}
			continue
		}

		if r.reg.Has(node.Type) {
			continue
		}
		if err := r.expand(ctx, patchID, localID, instanceRoot, stack); err != nil {
			return err
		}
	}
	return nil
}

// claim records that the node localID of patchID embeds child.
func (r *resolver) claim(child, patchID, localID string) error {
	owner := patchID + ":" + localID
	if prev, exists := r.owners[child]; exists {
		return pd.Invariantf("patch '%s' is embedded by both '%s' and '%s'", child, prev, owner)
	}
	r.owners[child] = owner
	return nil
}

// expand replaces an abstraction node with a subpatch holding a fresh copy
// of the loaded abstraction.
func (r *resolver) expand(ctx context.Context, patchID, localID, instanceRoot string, stack []string) error {
	node := r.doc.Patches[patchID].Nodes[localID]
	nodeType := node.Type

	for i, t := range stack {
		if t == nodeType {
			chain := append(append([]string(nil), stack[i:]...), nodeType)
			msg := fmt.Sprintf("abstraction recursion: %s", strings.Join(chain, " -> "))
			if !slices.Contains(r.errors[nodeType], msg) {
				r.addError(nodeType, msg)
			}
			return nil
		}
	}

	outcome, err := r.load(ctx, nodeType)
	if err != nil || outcome == nil {
		return err
	}

	instance, _, err := renumber(outcome.doc, outcome.rootID, r.alloc)
	if err != nil {
		return fmt.Errorf("abstraction '%s': %w", nodeType, err)
	}
	for id, p := range instance.Patches {
		if _, exists := r.doc.Patches[id]; exists {
			return pd.Invariantf("patch id '%s' allocated twice", id)
		}
		r.doc.Patches[id] = p
	}
	for id, a := range instance.Arrays {
		if _, exists := r.doc.Arrays[id]; exists {
			return pd.Invariantf("array id '%s' allocated twice", id)
		}
		r.doc.Arrays[id] = a
	}

	newRoot := r.doc.Patches[instance.RootPatchID]
	newRoot.IsRoot = true
	newRoot.Args = dollar.ResolveArgs(node.Args, r.doc.Patches[instanceRoot])

	node.Kind = pd.KindSubpatch
	node.Type = pd.TypeSubpatch
	node.PatchID = newRoot.ID
	if err := r.claim(newRoot.ID, patchID, localID); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Debug("Instantiated abstraction.",
		"type", nodeType, "node", localID, "patch", patchID, "root", newRoot.ID)

	return r.walk(ctx, newRoot.ID, newRoot.ID, append(stack, nodeType))
}

// load fetches nodeType once and caches the outcome. A nil outcome without
// error means the type could not be loaded and has been reported.
func (r *resolver) load(ctx context.Context, nodeType string) (*loadOutcome, error) {
	if outcome, seen := r.cache[nodeType]; seen {
		return outcome, nil
	}
	r.cache[nodeType] = nil

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading abstraction.", "type", nodeType)

	loaded, err := r.loader.Load(ctx, nodeType)
	var parseErr *ParseError
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownNodeType):
		r.unknown[nodeType] = true
		return nil, nil
	case errors.As(err, &parseErr):
		r.addWarnings(nodeType, parseErr.Warnings)
		if len(parseErr.Errors) == 0 {
			r.addError(nodeType, parseErr.Error())
		}
		for _, e := range parseErr.Errors {
			r.addError(nodeType, e)
		}
		return nil, nil
	default:
		r.addError(nodeType, err.Error())
		return nil, nil
	}

	if loaded == nil || loaded.Pd == nil {
		r.addError(nodeType, "loader returned no document")
		return nil, nil
	}
	r.addWarnings(nodeType, loaded.Warnings)

	rootID, err := rootPatchOf(loaded.Pd)
	if err != nil {
		return nil, fmt.Errorf("abstraction '%s': %w", nodeType, err)
	}

	r.abstractions[nodeType] = loaded.Pd
	outcome := &loadOutcome{doc: loaded.Pd, rootID: rootID}
	r.cache[nodeType] = outcome
	return outcome, nil
}

func (r *resolver) addError(nodeType, msg string) {
	r.errors[nodeType] = append(r.errors[nodeType], msg)
}

func (r *resolver) addWarnings(nodeType string, warnings []string) {
	if len(warnings) > 0 {
		r.warnings[nodeType] = append(r.warnings[nodeType], warnings...)
	}
}
