package creature

import (
	"time"

	"golang.org/x/exp/rand"

	"github.com/plumage3d/plumage/engine/assets"
	"github.com/plumage3d/plumage/engine/core"
)

// SynthesisOptions select what one synthesis draws from the catalog and
// whether the result is re-skinned.
type SynthesisOptions struct {
	// Categories are drawn from in order for the first pick (the torso
	// anchor) and then at random for the remaining fragments.
	Categories []string
	// FragmentCount is how many fragments to draw in total.
	FragmentCount int
	// Skin, when non-nil, re-skins the assembled creature and hides its
	// solid meshes.
	Skin *SkinOptions
}

// Synthesizer is the top-level pipeline: catalog picks, assembly, contact
// enforcement and optional skinning. The whole pipeline is synchronous;
// pacing belongs to the async decorator, never in here.
type Synthesizer struct {
	catalog *assets.Catalog
	tuning  *Tuning
	rng     *rand.Rand

	assembler *Assembler
	contact   *ContactPass
}

func NewSynthesizer(catalog *assets.Catalog, tuning *Tuning, rng *rand.Rand) *Synthesizer {
	if tuning == nil {
		tuning = DefaultTuning()
	}
	return &Synthesizer{
		catalog:   catalog,
		tuning:    tuning,
		rng:       rng,
		assembler: NewAssembler(tuning, rng),
		contact:   NewContactPass(tuning),
	}
}

// Synthesize draws fragments from the catalog, assembles them, enforces
// contact and optionally samples a skin. Categories with no fragments are
// simply skipped; an entirely empty draw yields an empty creature.
func (s *Synthesizer) Synthesize(opts SynthesisOptions) *Creature {
	clock := core.NewClock()
	clock.Start()

	fragments := s.draw(opts)
	c := s.AssembleFragments(fragments, opts.Skin)

	clock.Update()
	core.MetricsRecordBuild(clock.ElapsedMS())
	core.LogDebug("synthesized creature with %d fragment(s) in %.2fms", len(c.Fragments), clock.ElapsedMS())
	return c
}

// AssembleFragments runs the core pipeline over an explicit fragment
// list, for callers that bypass the catalog.
func (s *Synthesizer) AssembleFragments(fragments []Fragment, skin *SkinOptions) *Creature {
	c := s.assembler.Assemble(fragments)
	s.contact.EnsureConnectivity(c.Fragments)

	if skin != nil && len(c.Fragments) > 0 {
		c.Skin = SampleSkin(c.Root, *skin, s.rng)
	}
	return c
}

func (s *Synthesizer) draw(opts SynthesisOptions) []Fragment {
	if len(opts.Categories) == 0 || opts.FragmentCount <= 0 {
		return nil
	}

	var out []Fragment
	for i := 0; i < opts.FragmentCount; i++ {
		category := opts.Categories[0]
		if i > 0 {
			category = opts.Categories[s.rng.Intn(len(opts.Categories))]
		}
		component := s.catalog.GetRandomComponent(category, s.rng)
		if component == nil {
			core.LogDebug("catalog has no fragments for category %q, part omitted", category)
			continue
		}
		out = append(out, Fragment{Category: category, Mesh: component.Mesh})
	}
	return out
}

// SynthesizeAsync wraps Synthesize with the randomized pacing delay the
// UI-facing entry point wants (DelayMinMS..DelayMaxMS). The synthesis
// itself runs exactly as in the synchronous path; no work overlaps the
// delay. The returned channel delivers the creature once and closes.
func (s *Synthesizer) SynthesizeAsync(opts SynthesisOptions) <-chan *Creature {
	delayRange := s.tuning.DelayMaxMS - s.tuning.DelayMinMS
	if delayRange < 0 {
		delayRange = 0
	}
	delay := time.Duration(s.tuning.DelayMinMS) * time.Millisecond
	if delayRange > 0 {
		delay += time.Duration(s.rng.Intn(delayRange+1)) * time.Millisecond
	}

	out := make(chan *Creature, 1)
	go func() {
		defer close(out)
		c := s.Synthesize(opts)
		<-time.After(delay)
		out <- c
	}()
	return out
}
