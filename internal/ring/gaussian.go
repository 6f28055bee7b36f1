package ring

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// GaussianSampler draws coefficients from a discrete Gaussian of width
// Sigma, rejecting samples beyond Bound standard widths, folding the sign
// into the canonical [0,q) representative the way the teacher's
// ring.GaussiamSampler.SampleGaussian does ((q-coeffInt) for negative
// samples).
type GaussianSampler struct {
	Sigma float64
	Bound uint64
}

// NewGaussianSampler builds a sampler with bound set to 6*sigma, matching
// the tail cutoff the teacher's key-generation call sites use for the LWE
// error distribution.
func NewGaussianSampler(sigma float64) *GaussianSampler {
	return &GaussianSampler{Sigma: sigma, Bound: uint64(6 * sigma)}
}

// SampleSigned draws one signed Gaussian sample as a (magnitude, negative)
// pair via rejection on a uniform float in (0,1] mapped through the
// inverse error function tail-truncated at Bound standard deviations.
// Exposed (rather than only SampleCoeff) so callers that must embed the
// same signed value consistently into more than one CRT channel — as
// Ring-GSW key generation does — sample once and fold independently.
func (g *GaussianSampler) SampleSigned() (magnitude uint64, negative bool) {
	var buf [9]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("ring: crypto/rand failure: " + err.Error())
		}
		u := float64(binary.LittleEndian.Uint64(buf[:8])>>11) / (1 << 53) // uniform in [0,1)
		negative = buf[8]&1 == 1
		// Box-Muller-ish inverse via erfinv is overkill for a reference
		// implementation; use the standard discrete-Gaussian rejection
		// sampler instead: draw a candidate magnitude uniformly in
		// [0, Bound] and accept with probability exp(-m^2/2sigma^2).
		m := uint64(u * float64(g.Bound+1))
		var buf2 [8]byte
		if _, err := rand.Read(buf2[:]); err != nil {
			panic("ring: crypto/rand failure: " + err.Error())
		}
		accept := float64(binary.LittleEndian.Uint64(buf2[:])>>11) / (1 << 53)
		if accept <= math.Exp(-float64(m*m)/(2*g.Sigma*g.Sigma)) {
			return m, negative
		}
	}
}

// SampleCoeff returns one signed Gaussian sample reduced into [0, q).
func (g *GaussianSampler) SampleCoeff(q uint64) uint64 {
	m, neg := g.SampleSigned()
	if neg && m != 0 {
		return q - (m % q)
	}
	return m % q
}

// SamplePoly fills every coefficient of p with an independent Gaussian
// sample reduced mod q.
func (g *GaussianSampler) SamplePoly(p []uint64, q uint64) {
	for i := range p {
		p[i] = g.SampleCoeff(q)
	}
}
