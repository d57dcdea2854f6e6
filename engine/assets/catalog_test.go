package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/plumage3d/plumage/engine/assets/loaders"
	"github.com/plumage3d/plumage/engine/scene"
)

func fixtureNode(name string) *scene.Node {
	root := scene.NewNode("fragment")
	root.AddChild(scene.NewMeshNode(name, scene.NewBoxGeometry(name, 1, 1, 1), scene.DefaultMaterial()))
	return root
}

// writeFixture drops a valid fragment file at <root>/<category>/<category>_NN.plf.
func writeFixture(t *testing.T, root, category string, n int) {
	t.Helper()
	dir := filepath.Join(root, category)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, fmt.Sprintf("%s_%02d%s", category, n, loaders.FragmentExtension))
	require.NoError(t, loaders.EncodeFragment(path, fixtureNode(category), "flate"))
}

func TestGetRandomComponent(t *testing.T) {
	c := NewCatalog()
	c.Add("wing", fixtureNode("wing"), "wing_01.plf")
	c.MarkLoaded()

	rng := rand.New(rand.NewSource(1))

	comp := c.GetRandomComponent("wing", rng)
	require.NotNil(t, comp)
	require.NotNil(t, comp.Mesh)
	assert.Equal(t, "wing_01.plf", comp.SourceFile)

	// Each pick is an independent clone of the master.
	other := c.GetRandomComponent("wing", rng)
	require.NotNil(t, other)
	assert.NotSame(t, comp.Mesh, other.Mesh)
	assert.NotEqual(t, comp.ID, other.ID)
	comp.Mesh.Children[0].Mesh.Geometry.Vertices[0].Position.X = 42
	assert.NotEqual(t, float32(42), other.Mesh.Children[0].Mesh.Geometry.Vertices[0].Position.X)

	assert.Nil(t, c.GetRandomComponent("tail", rng))
}

func TestPopulate(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "torso", 1)
	writeFixture(t, root, "torso", 2)
	writeFixture(t, root, "wing", 1)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "head"), 0o755))

	c := NewCatalog()
	err := c.Populate(ScanConfig{
		Root:       root,
		Categories: []string{"torso", "wing", "head", ""},
	})
	require.NoError(t, err)

	assert.True(t, c.IsLoaded())
	assert.Equal(t, 2, c.Count("torso"))
	assert.Equal(t, 1, c.Count("wing"))
	assert.Equal(t, 0, c.Count("head"))
	assert.ElementsMatch(t, []string{"torso", "wing"}, c.Categories())
}

func TestPopulateStopsAfterConsecutiveMisses(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "tail", 1)
	writeFixture(t, root, "tail", 2)
	// A gap wider than the miss limit; the scan must not reach this file.
	writeFixture(t, root, "tail", 9)

	c := NewCatalog()
	err := c.Populate(ScanConfig{
		Root:       root,
		Categories: []string{"tail"},
		MissLimit:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Count("tail"))
}

func TestPopulateSkipsCorruptFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "foot", 1)
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "foot", "foot_02"+loaders.FragmentExtension),
		[]byte("not a fragment"), 0o644))

	c := NewCatalog()
	err := c.Populate(ScanConfig{Root: root, Categories: []string{"foot"}})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count("foot"))
}

func TestPopulateMissingRoot(t *testing.T) {
	c := NewCatalog()
	err := c.Populate(ScanConfig{Root: filepath.Join(t.TempDir(), "nope"), Categories: []string{"torso"}})
	assert.Error(t, err)
	assert.False(t, c.IsLoaded())
}

func TestWatcherReindexesChangedFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "belly", 1)

	c := NewCatalog()
	cfg := ScanConfig{Root: root, Categories: []string{"belly"}}
	require.NoError(t, c.Populate(cfg))
	require.Equal(t, 1, c.Count("belly"))

	w, err := c.Watch(cfg)
	require.NoError(t, err)
	defer w.Close()

	writeFixture(t, root, "belly", 2)
	assert.Eventually(t, func() bool { return c.Count("belly") == 2 },
		2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(root, "belly", "belly_02"+loaders.FragmentExtension)))
	assert.Eventually(t, func() bool { return c.Count("belly") == 1 },
		2*time.Second, 20*time.Millisecond)
}
