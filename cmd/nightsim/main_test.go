package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfig(t *testing.T, doc string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nightlight.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	oldConfig, oldSteps, oldSpeed := config, steps, speed
	config, steps, speed = path, 4, 0
	t.Cleanup(func() {
		config, steps, speed = oldConfig, oldSteps, oldSpeed
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunRejectsBadLadder(t *testing.T) {
	withConfig(t, "ladder_top = 100\n")

	var err error
	assert.NotPanics(t, func() {
		err = run(context.Background(), discardLogger())
	})
	assert.ErrorContains(t, err, "invalid ladder")
}

func TestRunRejectsUnknownEffect(t *testing.T) {
	withConfig(t, "effect = \"strobe\"\n")

	err := run(context.Background(), discardLogger())
	assert.ErrorContains(t, err, "unknown effect")
}

func TestRunSteps(t *testing.T) {
	withConfig(t, "[sim]\nsamples = [10]\n")

	err := run(context.Background(), discardLogger())
	assert.ErrorIs(t, err, context.Canceled)
}
