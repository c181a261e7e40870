package viewport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/workspace"
)

func TestStatic_SetAndSize(t *testing.T) {
	p := NewStatic(workspace.Size{Width: 1200, Height: 800})

	got, err := p.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workspace.Size{Width: 1200, Height: 800}, got)

	p.Set(workspace.Size{Width: 640, Height: 480})
	got, _ = p.Size(context.Background())
	assert.Equal(t, workspace.Size{Width: 640, Height: 480}, got)
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(config.ViewportConfig{Provider: config.ViewportStatic, Width: 10, Height: 20})
	require.NoError(t, err)
	got, err := p.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workspace.Size{Width: 10, Height: 20}, got)

	_, err = FromConfig(config.ViewportConfig{Provider: "wayland"})
	assert.Error(t, err)
}

func TestNewTerminal_RejectsNonTerminal(t *testing.T) {
	_, err := NewTerminal(-1, 9, 18)
	assert.Error(t, err)
}
