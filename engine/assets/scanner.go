package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/plumage3d/plumage/engine/assets/loaders"
	"github.com/plumage3d/plumage/engine/core"
)

// ScanConfig controls one-time catalog population. Fragment files follow a
// fixed naming convention: <Root>/<category>/<category>_NN.plf.
type ScanConfig struct {
	// Root is the asset directory holding one sub-directory per category.
	Root string
	// Categories to probe. Empty entries are skipped.
	Categories []string
	// MaxInFlight bounds how many files decode concurrently.
	MaxInFlight int
	// MissLimit stops probing further candidate names in a category after
	// this many consecutive missing files.
	MissLimit int
}

const probeCeiling = 999

// Populate scans the configured directories, decodes every fragment file
// found and marks the catalog loaded. Decode failures are logged and the
// file skipped; only a completely unreadable root is an error.
func (c *Catalog) Populate(cfg ScanConfig) error {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	if cfg.MissLimit <= 0 {
		cfg.MissLimit = 5
	}
	if _, err := os.Stat(cfg.Root); err != nil {
		return fmt.Errorf("catalog: asset root %s: %w", cfg.Root, err)
	}

	type probe struct {
		category string
		path     string
	}
	var candidates []probe
	for _, category := range cfg.Categories {
		if category == "" {
			continue
		}
		misses := 0
		for n := 1; n <= probeCeiling && misses < cfg.MissLimit; n++ {
			path := filepath.Join(cfg.Root, category,
				fmt.Sprintf("%s_%02d%s", category, n, loaders.FragmentExtension))
			if _, err := os.Stat(path); err != nil {
				misses++
				continue
			}
			misses = 0
			candidates = append(candidates, probe{category: category, path: path})
		}
	}

	// Decode with a bounded worker window; the catalog's own lock
	// serializes the inserts.
	jobs := make(chan probe)
	var wg sync.WaitGroup
	for i := 0; i < cfg.MaxInFlight; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				node, err := loaders.DecodeFragment(job.path)
				if err != nil {
					core.LogWarn("catalog: skipping %s: %s", job.path, err.Error())
					continue
				}
				c.Add(job.category, node, job.path)
			}
		}()
	}
	for _, job := range candidates {
		jobs <- job
	}
	close(jobs)
	wg.Wait()

	c.MarkLoaded()
	for _, category := range cfg.Categories {
		core.LogInfo("catalog: %d fragment(s) in category %q", c.Count(category), category)
	}
	return nil
}

// Watcher re-indexes fragment files as they change on disk, for iterating
// on assets without restarting. The catalog stays safe to read while the
// watcher runs; creature builds still clone whatever master is current.
type Watcher struct {
	catalog  *Catalog
	fsnotify *fsnotify.Watcher
	done     chan struct{}
}

// Watch starts a change watcher over the category directories.
func (c *Catalog) Watch(cfg ScanConfig) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, category := range cfg.Categories {
		dir := filepath.Join(cfg.Root, category)
		if err := fsWatch.Add(dir); err != nil {
			fsWatch.Close()
			return nil, fmt.Errorf("catalog: watch %s: %w", dir, err)
		}
	}

	w := &Watcher{
		catalog:  c,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(e.Name, loaders.FragmentExtension) {
				continue
			}
			category := filepath.Base(filepath.Dir(e.Name))
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				node, err := loaders.DecodeFragment(e.Name)
				if err != nil {
					core.LogWarn("catalog: re-index %s: %s", e.Name, err.Error())
					continue
				}
				w.catalog.replace(category, e.Name, node)
				core.LogDebug("catalog: re-indexed %s", e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				w.catalog.remove(category, e.Name)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("catalog watcher: %s", err.Error())

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.done)
}
