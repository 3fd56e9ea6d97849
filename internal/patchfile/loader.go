package patchfile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/patchc/internal/abstraction"
	"github.com/vk/patchc/internal/ctxlog"
	"github.com/vk/patchc/internal/fsutil"
)

// DirLoader serves abstractions from YAML files found under a set of
// directories. An abstraction's type name is its file name without the
// extension.
type DirLoader struct {
	index map[string]string
}

// NewDirLoader indexes the .yaml and .yml files under paths. When two files
// share a name, the one found first wins.
func NewDirLoader(ctx context.Context, paths ...string) (*DirLoader, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFiles(paths, ".yaml", ".yml")
	if err != nil {
		return nil, fmt.Errorf("failed to index abstractions: %w", err)
	}

	l := &DirLoader{index: make(map[string]string, len(files))}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if prev, exists := l.index[name]; exists {
			logger.Warn("Abstraction shadowed by an earlier file.", "name", name, "used", prev, "ignored", file)
			continue
		}
		l.index[name] = file
	}
	logger.Debug("Abstraction index built.", "count", len(l.index))
	return l, nil
}

// Load implements abstraction.Loader.
func (l *DirLoader) Load(ctx context.Context, nodeType string) (*abstraction.Loaded, error) {
	path, ok := l.index[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", abstraction.ErrUnknownNodeType, nodeType)
	}
	ctxlog.FromContext(ctx).Debug("Reading abstraction.", "type", nodeType, "path", path)

	doc, warnings, err := Load(path)
	if err != nil {
		return nil, &abstraction.ParseError{Errors: []string{err.Error()}, Warnings: warnings}
	}
	return &abstraction.Loaded{Pd: doc, Warnings: warnings}, nil
}
