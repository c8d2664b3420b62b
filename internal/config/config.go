package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/keagan/beatreel/internal/effects"
)

type contextKey string

const configKey contextKey = "config"

// APIKeyEnv is read (after .env) when imagegen.api_key is empty
const APIKeyEnv = "HUGGINGFACE_API_KEY"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir"`
	TempDir     string `yaml:"temp_dir"`
	Concurrency int    `yaml:"concurrency"`

	Video    VideoConfig       `yaml:"video"`
	Energy   EnergyConfig      `yaml:"energy"`
	Post     effects.PostChain `yaml:"post"`
	FFmpeg   FFmpegConfig      `yaml:"ffmpeg"`
	ImageGen ImageGenConfig    `yaml:"imagegen"`
}

type VideoConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	FPS           int    `yaml:"fps"`
	Theme         string `yaml:"theme"`
	ParticleCount int    `yaml:"particle_count"`

	// Seed pins every random source; 0 draws a fresh seed per run
	Seed uint64 `yaml:"seed"`

	Transition         effects.TransitionKind `yaml:"transition"`
	TransitionDuration float64                `yaml:"transition_duration"`
	StillDuration      float64                `yaml:"still_duration"`
}

type EnergyConfig struct {
	FrameLength   int             `yaml:"frame_length"`
	HopLength     int             `yaml:"hop_length"`
	SyncThreshold float64         `yaml:"sync_threshold"`
	Smoothing     SmoothingConfig `yaml:"smoothing"`
}

type SmoothingConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
}

type ImageGenConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	APIKey         string        `yaml:"api_key,omitempty"`
	Style          string        `yaml:"style"`
	NegativePrompt string        `yaml:"negative_prompt"`
	Steps          int           `yaml:"steps"`
	Guidance       float64       `yaml:"guidance"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Load reads configuration from file or returns defaults. A .env file in
// the working directory is loaded first; existing variables win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if cfg.ImageGen.APIKey == "" {
		cfg.ImageGen.APIKey = os.Getenv(APIKeyEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// YAML renders the configuration without the API key
func (c *Config) YAML() ([]byte, error) {
	out := *c
	out.ImageGen.APIKey = ""
	return yaml.Marshal(&out)
}

// Save writes configuration to file. The API key is never written.
func (c *Config) Save(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings no renderer can honor
func (c *Config) Validate() error {
	v := c.Video
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("video size must be positive, got %dx%d", v.Width, v.Height)
	}
	if v.Width%2 != 0 || v.Height%2 != 0 {
		return fmt.Errorf("video size must be even, got %dx%d", v.Width, v.Height)
	}
	if v.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", v.FPS)
	}
	if v.ParticleCount <= 0 {
		return fmt.Errorf("particle_count must be positive, got %d", v.ParticleCount)
	}
	if v.TransitionDuration <= 0 || v.StillDuration <= 0 {
		return fmt.Errorf("transition and still durations must be positive")
	}
	if c.Energy.SyncThreshold < 0 || c.Energy.SyncThreshold > 1 {
		return fmt.Errorf("sync_threshold must be within [0,1], got %g", c.Energy.SyncThreshold)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:     "./work",
		TempDir:     "./temp",
		Concurrency: 4,
		Video: VideoConfig{
			Width:              1080,
			Height:             1920,
			FPS:                30,
			Theme:              "abstract",
			ParticleCount:      100,
			Transition:         effects.TransitionFade,
			TransitionDuration: 1.0,
			StillDuration:      3.0,
		},
		Energy: EnergyConfig{
			FrameLength:   2048,
			HopLength:     512,
			SyncThreshold: 0.7,
			Smoothing: SmoothingConfig{
				Enabled:   true,
				Frequency: 6.0,
				Damping:   0.7,
			},
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			Preset:     "medium",
			CRF:        23,
		},
		ImageGen: ImageGenConfig{
			Endpoint:       "https://api-inference.huggingface.co/models/runwayml/stable-diffusion-v1-5",
			Style:          "realistic",
			NegativePrompt: "blurry, bad quality, distorted, deformed, ugly, bad anatomy",
			Steps:          50,
			Guidance:       7.5,
			Timeout:        2 * time.Minute,
		},
	}
}

// Default returns a fresh default configuration
func Default() *Config {
	return defaultConfig()
}

func findConfigFile() string {
	candidates := []string{
		"./beatreel.yaml",
		"./beatreel.yml",
		filepath.Join(os.Getenv("HOME"), ".beatreel", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
