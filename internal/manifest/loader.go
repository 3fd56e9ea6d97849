package manifest

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/patchc/internal/ctxlog"
	"github.com/vk/patchc/internal/fsutil"
	"github.com/vk/patchc/internal/registry"
)

//go:embed builtin.hcl
var builtinSource []byte

// Loader reads HCL manifests into registry entries.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new manifest loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Builtin returns the entries declared by the embedded builtin manifest.
func (l *Loader) Builtin(ctx context.Context) (registry.Entries, error) {
	file, diags := l.parser.ParseHCL(builtinSource, "builtin.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse builtin manifest: %w", diags)
	}
	entries := registry.Entries{}
	if err := l.decodeInto(ctx, file, "builtin.hcl", entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Load reads every .hcl file under the given paths. A node type declared in
// two different files is an error.
func (l *Loader) Load(ctx context.Context, paths ...string) (registry.Entries, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	entries := registry.Entries{}
	for _, filename := range files {
		file, diags := l.parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
		}
		if err := l.decodeInto(ctx, file, filename, entries); err != nil {
			return nil, err
		}
	}

	logger.Debug("Manifest loading complete.", "node_types", len(entries))
	return entries, nil
}

func (l *Loader) decodeInto(ctx context.Context, file *hcl.File, filename string, entries registry.Entries) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}

	for _, block := range root.NodeTypes {
		if _, exists := entries[block.Type]; exists {
			return fmt.Errorf("manifest %s: node type '%s' is declared more than once", filename, block.Type)
		}
		def, err := translateNodeType(ctx, block)
		if err != nil {
			return fmt.Errorf("manifest %s: %w", filename, err)
		}
		entries.Add(def.nodeType, def.builder())
	}
	for _, alias := range root.Aliases {
		if _, exists := entries[alias.Name]; exists {
			return fmt.Errorf("manifest %s: node type '%s' is declared more than once", filename, alias.Name)
		}
		entries.Alias(alias.Name, alias.To)
	}
	return nil
}

// BuildRegistry combines the builtin manifest with user manifests found under
// paths and flattens the result. User declarations replace builtin ones.
func BuildRegistry(ctx context.Context, paths ...string) (*registry.Registry, error) {
	l := NewLoader()
	entries, err := l.Builtin(ctx)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		user, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		entries.Merge(user)
	}
	return registry.New(entries)
}
