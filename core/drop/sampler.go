// Package drop provides the Bernoulli drop-decision source the classifier
// consults for MsgFragment forwarding. The uniform[0,1) source itself is out
// of scope for this specification (spec.md §1, §6) — the only requirement is
// statistical independence across calls — so it is consumed behind an
// interface the caller may replace for deterministic tests, the same seam
// the teacher's Clock uses for time.
package drop

import "math/rand/v2"

// Sampler decides, for a given packet-drop probability pdr in [0, 1],
// whether the current MsgFragment should be dropped. true means "drop it".
type Sampler interface {
	Sample(pdr float32) bool
}

// uniformSampler is the default Sampler, backed by math/rand/v2.
type uniformSampler struct{}

// NewUniform returns the default Sampler: an independent uniform[0,1) draw
// compared against pdr.
func NewUniform() Sampler {
	return uniformSampler{}
}

func (uniformSampler) Sample(pdr float32) bool {
	return rand.Float64() < float64(pdr)
}
