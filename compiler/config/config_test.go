package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadParsesProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	err := os.WriteFile(path, []byte("optimize = false\nassembler = \"tools/jasmin.jar\"\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.Optimize)
	require.Equal(t, "tools/jasmin.jar", cfg.Assembler)
	require.Equal(t, Default().ArchiveExt, cfg.ArchiveExt)
}

func TestMergeFlagsOverrideProjectFile(t *testing.T) {
	cfg := Default()

	no := false
	cfg = cfg.Merge(Overrides{Optimize: &no, Assembler: "custom.jar"})

	require.False(t, cfg.Optimize)
	require.Equal(t, "custom.jar", cfg.Assembler)
	require.Equal(t, Default().ArchiveExt, cfg.ArchiveExt)
}

func TestFindWalksUpToProjectFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(""), 0o644))

	require.Equal(t, filepath.Join(root, FileName), Find(nested))
}

func TestFindNoProjectFile(t *testing.T) {
	require.Equal(t, "", Find(t.TempDir()))
}
