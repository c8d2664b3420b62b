package energy

import (
	"fmt"

	"github.com/rs/zerolog"
)

// AnalyzerConfig configures envelope extraction
type AnalyzerConfig struct {
	FrameLength   int
	HopLength     int
	SyncThreshold float64
}

// DefaultAnalyzerConfig matches the usual 2048/512 analysis window
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		FrameLength:   DefaultFrameLength,
		HopLength:     DefaultHopLength,
		SyncThreshold: 0.7,
	}
}

// Analysis is everything the renderers need from a track
type Analysis struct {
	Profile    *Profile
	SyncPoints []SyncPoint
	SampleRate int
}

// Duration returns the track length in seconds
func (a *Analysis) Duration() float64 {
	return a.Profile.Duration()
}

// Analyzer extracts energy envelopes from audio files
type Analyzer struct {
	logger zerolog.Logger
	config AnalyzerConfig
}

// NewAnalyzer creates an analyzer. Zero window sizes fall back to defaults.
func NewAnalyzer(logger zerolog.Logger, cfg AnalyzerConfig) *Analyzer {
	def := DefaultAnalyzerConfig()
	if cfg.FrameLength <= 0 {
		cfg.FrameLength = def.FrameLength
	}
	if cfg.HopLength <= 0 {
		cfg.HopLength = def.HopLength
	}
	return &Analyzer{
		logger: logger.With().Str("component", "energy").Logger(),
		config: cfg,
	}
}

// AnalyzeFile decodes path and analyses it
func (a *Analyzer) AnalyzeFile(path string) (*Analysis, error) {
	a.logger.Info().Str("input", path).Msg("decoding audio")

	audio, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load audio: %w", err)
	}
	return a.Analyze(audio)
}

// Analyze builds the energy profile and sync points for decoded audio
func (a *Analyzer) Analyze(audio *Audio) (*Analysis, error) {
	profile, err := FromSamples(audio.Samples, audio.SampleRate, a.config.FrameLength, a.config.HopLength)
	if err != nil {
		return nil, fmt.Errorf("failed to compute energy profile: %w", err)
	}

	points := profile.SyncPoints(a.config.SyncThreshold)

	a.logger.Info().
		Float64("duration", profile.Duration()).
		Int("sample_rate", audio.SampleRate).
		Int("windows", len(profile.Values)).
		Int("sync_points", len(points)).
		Msg("energy analysis complete")

	return &Analysis{
		Profile:    profile,
		SyncPoints: points,
		SampleRate: audio.SampleRate,
	}, nil
}
