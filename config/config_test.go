package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesOrgNew(t *testing.T) {
	ctx := Default()
	assert.Equal(t, 8, ctx.TabWidth)
	assert.True(t, ctx.AutoLink)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	ctx, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8, ctx.TabWidth)
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.toml")
	err := os.WriteFile(path, []byte("tab_width = 4\nauto_link = false\n"), 0o644)
	require.NoError(t, err)

	ctx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, ctx.TabWidth)
	assert.False(t, ctx.AutoLink)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("ORGCACHE_TAB_WIDTH", "2")
	ctx, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.TabWidth)
}
