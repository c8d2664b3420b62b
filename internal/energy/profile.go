// Package energy turns audio into the per-frame intensity signal that drives
// the effect renderers.
package energy

import (
	"fmt"
	"math"
)

// Default analysis window, in samples
const (
	DefaultFrameLength = 2048
	DefaultHopLength   = 512
)

// Profile is a normalized RMS energy envelope. Values[i] covers the window
// starting at i*HopSeconds.
type Profile struct {
	Values     []float64
	HopSeconds float64
	// Length of the analysed audio in seconds
	Length float64
}

// FromSamples frames mono samples into overlapping windows, takes the RMS of
// each and min-max normalizes the result to [0,1]. A flat envelope
// normalizes to all zeros.
func FromSamples(samples []float64, sampleRate, frameLength, hopLength int) (*Profile, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if frameLength <= 0 || hopLength <= 0 {
		return nil, fmt.Errorf("frame and hop length must be positive, got %d/%d", frameLength, hopLength)
	}
	if len(samples) < frameLength {
		return nil, fmt.Errorf("audio too short: %d samples, need at least %d", len(samples), frameLength)
	}

	n := 1 + (len(samples)-frameLength)/hopLength
	values := make([]float64, n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range values {
		window := samples[i*hopLength : i*hopLength+frameLength]
		var sum float64
		for _, s := range window {
			sum += s * s
		}
		rms := math.Sqrt(sum / float64(frameLength))
		values[i] = rms
		lo = math.Min(lo, rms)
		hi = math.Max(hi, rms)
	}

	span := hi - lo
	for i, v := range values {
		if span == 0 {
			values[i] = 0
			continue
		}
		values[i] = (v - lo) / span
	}

	return &Profile{
		Values:     values,
		HopSeconds: float64(hopLength) / float64(sampleRate),
		Length:     float64(len(samples)) / float64(sampleRate),
	}, nil
}

// FromValues wraps an externally computed envelope
func FromValues(values []float64, hopSeconds float64) *Profile {
	return &Profile{
		Values:     values,
		HopSeconds: hopSeconds,
		Length:     float64(len(values)) * hopSeconds,
	}
}

// Duration returns the length of the analysed audio in seconds
func (p *Profile) Duration() float64 {
	return p.Length
}

// At returns the energy of the window covering time t. Times before the
// start or past the end hold the first or last value. An empty profile
// reads as silence.
func (p *Profile) At(t float64) float64 {
	if len(p.Values) == 0 || p.HopSeconds <= 0 {
		return 0
	}
	i := int(math.Floor(t / p.HopSeconds))
	i = max(0, min(i, len(p.Values)-1))
	return p.Values[i]
}

// ForFrames samples the profile once per video frame
func (p *Profile) ForFrames(fps float64, frames int) []float64 {
	out := make([]float64, max(frames, 0))
	for i := range out {
		out[i] = p.At(float64(i) / fps)
	}
	return out
}
