package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx, logger := With(ctx, "patch_id", "3")
	logger.Info("hello")
	FromContext(ctx).Info("again")

	assert.Contains(t, buf.String(), "patch_id=3")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("patch_id=3")))
}
