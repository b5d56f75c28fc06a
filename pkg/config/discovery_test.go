package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryDefaults(t *testing.T) {
	d := NewDiscovery()

	assert.NotEmpty(t, d.GetSearchPaths())
	assert.Contains(t, d.GetFilenames(), "qdax.yaml")
	assert.Contains(t, d.GetFilenames(), "config.yaml")
}

func TestDiscoverInPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qdax.yaml")
	require.NoError(t, os.WriteFile(path, []byte("experiment:\n  name: found\n"), 0644))

	d := NewDiscovery()
	files, err := d.DiscoverInPath(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0])
}

func TestDiscoverWithCustomPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qdax.yml"), []byte("{}\n"), 0644))

	d := NewDiscoveryWithPaths([]string{dir})
	files, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "qdax.yml"), files[0])

	first, err := d.DiscoverFirst()
	require.NoError(t, err)
	assert.Equal(t, files[0], first)
}

func TestDiscoverFirstWithNoFiles(t *testing.T) {
	d := NewDiscoveryWithPaths([]string{t.TempDir()})

	_, err := d.DiscoverFirst()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configuration files found")
}

func TestDiscoveryMutators(t *testing.T) {
	d := NewDiscoveryWithOptions([]string{"/a"}, []string{"one.yaml"})

	d.AddSearchPath("/b")
	assert.Equal(t, []string{"/a", "/b"}, d.GetSearchPaths())

	d.SetSearchPaths([]string{"/c"})
	assert.Equal(t, []string{"/c"}, d.GetSearchPaths())

	d.AddFilename("two.yaml")
	assert.Equal(t, []string{"one.yaml", "two.yaml"}, d.GetFilenames())

	d.SetFilenames([]string{"three.yaml"})
	assert.Equal(t, []string{"three.yaml"}, d.GetFilenames())
}

func TestCreateDefaultConfigFileInPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	d := NewDiscovery()
	path, err := d.CreateDefaultConfigFileInPath(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "qdax.yaml"), path)

	// Written file loads back as a valid config
	manager, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	require.NoError(t, manager.Load())
	assert.Equal(t, "pbt-experiment", manager.Get().Experiment.Name)

	// A second create refuses to overwrite
	_, err = d.CreateDefaultConfigFileInPath(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestDiscoveryValidate(t *testing.T) {
	valid := NewDiscoveryWithPaths([]string{t.TempDir()})
	assert.NoError(t, valid.Validate())

	missing := NewDiscoveryWithPaths([]string{"/nonexistent/qdax-config-path"})
	assert.Error(t, missing.Validate())

	empty := NewDiscoveryWithOptions(nil, nil)
	assert.Error(t, empty.Validate())
}

func TestRemoveDuplicates(t *testing.T) {
	result := removeDuplicates([]string{"/a", "/b", "/a", "/c", "/b"})
	assert.Equal(t, []string{"/a", "/b", "/c"}, result)
}
