package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup_LevelParsing(t *testing.T) {
	ctx := context.Background()

	Setup(" DEBUG ")
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelDebug))

	Setup("error")
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelWarn))

	Setup("not-a-level")
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelInfo))
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelDebug))
}

func TestWithModule(t *testing.T) {
	Setup("info")

	logger := WithModule("engine")
	assert.NotNil(t, logger)
}
