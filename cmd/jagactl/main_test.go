package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sijagad/internal/config"
	"github.com/fastygo/sijagad/internal/infrastructure/outbox"
)

func TestUseCLIOutbox_RunsBesideServerQueue(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Outbox: config.OutboxConfig{
		Path:    filepath.Join(dir, "outbox.db"),
		CLIPath: filepath.Join(dir, "outbox-jagactl.db"),
	}}

	server, err := outbox.Open(cfg.Outbox.Path)
	require.NoError(t, err)
	defer server.Close()

	useCLIOutbox(cfg)
	assert.Equal(t, filepath.Join(dir, "outbox-jagactl.db"), cfg.Outbox.Path)

	cli, err := outbox.Open(cfg.Outbox.Path)
	require.NoError(t, err)
	assert.NoError(t, cli.Close())
}

func TestUseCLIOutbox_KeepsPathWhenUnset(t *testing.T) {
	cfg := &config.Config{Outbox: config.OutboxConfig{Path: "./data/outbox.db"}}
	useCLIOutbox(cfg)
	assert.Equal(t, "./data/outbox.db", cfg.Outbox.Path)
}
