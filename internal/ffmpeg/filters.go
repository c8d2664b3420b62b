package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// Scale adds a scale filter
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		// Return self without adding filter - allows chaining to continue
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// FPS adds an fps filter
func (fb *FilterBuilder) FPS(fps float64) *FilterBuilder {
	if fps <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("fps=%f", fps))
	return fb
}

// Format converts to the given pixel format
func (fb *FilterBuilder) Format(pixFmt string) *FilterBuilder {
	if pixFmt == "" {
		return fb
	}
	fb.filters = append(fb.filters, "format="+pixFmt)
	return fb
}

// FadeIn fades from black over the first seconds of the stream
func (fb *FilterBuilder) FadeIn(seconds float64) *FilterBuilder {
	if seconds <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("fade=t=in:st=0:d=%.3f", seconds))
	return fb
}

// FadeOut fades to black over seconds, starting at start
func (fb *FilterBuilder) FadeOut(start, seconds float64) *FilterBuilder {
	if seconds <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", start, seconds))
	return fb
}

// AudioVolume adjusts audio gain in decibels
func (fb *FilterBuilder) AudioVolume(volumeDB float64) *FilterBuilder {
	fb.filters = append(fb.filters, fmt.Sprintf("volume=%fdB", volumeDB))
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if fb == nil || len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}
