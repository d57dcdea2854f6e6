/*
Demo pipeline: populate a fragment catalog, synthesize a small flock of
creatures, re-skin them as point clouds and write WebP previews.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"

	"github.com/plumage3d/plumage/engine/assets"
	"github.com/plumage3d/plumage/engine/core"
	"github.com/plumage3d/plumage/engine/creature"
	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/preview"
	"github.com/plumage3d/plumage/engine/scene"
)

var categories = []string{"torso", "head", "belly", "wing", "tail", "foot"}

func main() {
	assetDir := flag.String("assets", "assets/fragments", "fragment asset root, one sub-directory per category")
	outDir := flag.String("out", "out", "directory for preview images")
	count := flag.Int("count", 3, "number of creatures to synthesize")
	fragments := flag.Int("fragments", 7, "fragments drawn per creature")
	seed := flag.Uint64("seed", 0, "random seed, 0 for time-based")
	tuningPath := flag.String("tuning", "", "optional TOML tuning file")
	flag.Parse()

	if err := run(*assetDir, *outDir, *count, *fragments, *seed, *tuningPath); err != nil {
		core.LogFatal(err.Error())
	}
}

func run(assetDir, outDir string, count, fragmentCount int, seed uint64, tuningPath string) error {
	core.MetricsInitialize()

	tuning := creature.DefaultTuning()
	if tuningPath != "" {
		var err error
		if tuning, err = creature.LoadTuning(tuningPath); err != nil {
			return err
		}
	}

	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewSource(seed))
	core.LogInfo("seed %d", seed)

	catalog := assets.NewCatalog()
	err := catalog.Populate(assets.ScanConfig{
		Root:        assetDir,
		Categories:  categories,
		MaxInFlight: 4,
		MissLimit:   5,
	})
	if err != nil {
		core.LogWarn("no fragment assets (%s), using built-in primitives", err.Error())
		registerBuiltins(catalog)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	synth := creature.NewSynthesizer(catalog, tuning, rng)
	skin := &creature.SkinOptions{
		PointCount:    9000,
		PointSize:     0.035,
		SkinThickness: 0.05,
		Opacity:       0.9,
	}

	for i := 0; i < count; i++ {
		c := <-synth.SynthesizeAsync(creature.SynthesisOptions{
			Categories:    categories,
			FragmentCount: fragmentCount,
			Skin:          skin,
		})
		if c.Skin == nil {
			core.LogWarn("creature %d produced no skin, skipping preview", i)
			continue
		}

		img := preview.RenderPointCloud(c.Skin, preview.RenderOptions{
			Size:   512,
			YawDeg: 25,
		})
		if img == nil {
			continue
		}
		path := filepath.Join(outDir, fmt.Sprintf("creature_%02d.webp", i))
		if err := preview.WriteWebP(path, img); err != nil {
			return err
		}
		core.LogInfo("wrote %s (%d fragments, %d points)", path, len(c.Fragments), len(c.Skin.Points.Samples))
	}

	core.LogInfo("synthesized %d creature(s), avg %.1fms", core.MetricsBuildCount(), core.MetricsBuildTime())
	return nil
}

// registerBuiltins fills the catalog with generated primitive fragments
// so the demo runs without any asset files on disk.
func registerBuiltins(catalog *assets.Catalog) {
	add := func(category string, geometry *scene.Geometry, colour math.Vec4) {
		material := &scene.Material{Name: category, DiffuseColour: colour}
		root := scene.NewNode(category)
		root.AddChild(scene.NewMeshNode(category, geometry, material))
		catalog.Add(category, root, "builtin:"+category)
	}

	add("torso", scene.NewEllipsoidGeometry("torso", 0.55, 0.45, 0.7, 14, 10), math.NewVec4(0.55, 0.42, 0.30, 1))
	add("torso", scene.NewEllipsoidGeometry("torso_round", 0.5, 0.5, 0.55, 14, 10), math.NewVec4(0.48, 0.46, 0.40, 1))
	add("head", scene.NewEllipsoidGeometry("head", 0.28, 0.26, 0.3, 12, 8), math.NewVec4(0.72, 0.60, 0.38, 1))
	add("head", scene.NewBoxGeometry("head_block", 0.4, 0.32, 0.38), math.NewVec4(0.62, 0.55, 0.45, 1))
	add("belly", scene.NewEllipsoidGeometry("belly", 0.4, 0.32, 0.45, 12, 8), math.NewVec4(0.85, 0.80, 0.68, 1))
	add("wing", scene.NewBoxGeometry("wing", 0.6, 0.08, 0.42), math.NewVec4(0.35, 0.32, 0.30, 1))
	add("wing", scene.NewEllipsoidGeometry("wing_oval", 0.34, 0.05, 0.24, 10, 6), math.NewVec4(0.30, 0.33, 0.38, 1))
	add("tail", scene.NewBoxGeometry("tail", 0.2, 0.06, 0.5), math.NewVec4(0.40, 0.36, 0.30, 1))
	add("foot", scene.NewBoxGeometry("foot", 0.12, 0.18, 0.2), math.NewVec4(0.80, 0.56, 0.25, 1))

	catalog.MarkLoaded()
}
