package pipeline

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/keagan/beatreel/internal/config"
	"github.com/keagan/beatreel/internal/energy"
	"github.com/keagan/beatreel/internal/ffmpeg"
	"github.com/keagan/beatreel/internal/frame"
	"github.com/keagan/beatreel/internal/imagegen"
	"github.com/keagan/beatreel/internal/scene"
	"github.com/keagan/beatreel/pkg/util"
)

// fadeSeconds is the fade in and out applied to every encoded reel
const fadeSeconds = 0.5

// Pipeline orchestrates analysis, rendering, encoding and muxing
type Pipeline struct {
	logger   zerolog.Logger
	config   *config.Config
	ffmpeg   *ffmpeg.Executor
	analyzer *energy.Analyzer
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	ffmpegExec, err := ffmpeg.New(logger, ffmpeg.Options{
		BinaryPath: cfg.FFmpeg.BinaryPath,
		ProbePath:  cfg.FFmpeg.ProbePath,
		Threads:    cfg.FFmpeg.Threads,
		Preset:     cfg.FFmpeg.Preset,
		CRF:        cfg.FFmpeg.CRF,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	if err := util.EnsureDir(cfg.TempDir); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		config:   cfg,
		ffmpeg:   ffmpegExec,
		analyzer: energy.NewAnalyzer(logger, analyzerConfig(cfg)),
	}, nil
}

func analyzerConfig(cfg *config.Config) energy.AnalyzerConfig {
	return energy.AnalyzerConfig{
		FrameLength:   cfg.Energy.FrameLength,
		HopLength:     cfg.Energy.HopLength,
		SyncThreshold: cfg.Energy.SyncThreshold,
	}
}

// RendererOptions maps configuration onto scene renderer options
func RendererOptions(cfg *config.Config) scene.Options {
	opts := scene.Options{
		Width:         cfg.Video.Width,
		Height:        cfg.Video.Height,
		FPS:           cfg.Video.FPS,
		ParticleCount: cfg.Video.ParticleCount,
		Seed:          cfg.Video.Seed,
		Post:          cfg.Post,
		Workers:       cfg.Concurrency,
	}
	if s := cfg.Energy.Smoothing; s.Enabled {
		opts.Smoothing = &scene.Smoothing{Frequency: s.Frequency, Damping: s.Damping}
	}
	return opts
}

// encodeOptions applies the standard fades for a reel of the given length
func (p *Pipeline) encodeOptions(output string, duration float64) ffmpeg.EncodeOptions {
	filters := ffmpeg.NewFilterBuilder()
	if duration > 4*fadeSeconds {
		filters.FadeIn(fadeSeconds).FadeOut(duration-fadeSeconds, fadeSeconds)
	}
	return ffmpeg.EncodeOptions{
		Output:  output,
		Width:   p.config.Video.Width,
		Height:  p.config.Video.Height,
		FPS:     float64(p.config.Video.FPS),
		Filters: filters,
		ProgressFunc: func(pr *ffmpeg.Progress) {
			p.logger.Debug().Int("frame", pr.Frame).Str("speed", pr.Speed).Msg("encoding")
		},
	}
}

// MusicVideo analyses audioPath, renders a themed background that follows
// its energy and muxes the track back in
func (p *Pipeline) MusicVideo(ctx context.Context, audioPath string, opts MusicOptions) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With().Str("run", runID).Logger()

	if audioPath == "" {
		return nil, fmt.Errorf("audio path cannot be empty")
	}
	if !util.FileExists(audioPath) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}

	logger.Info().
		Str("input", audioPath).
		Str("theme", string(opts.Theme)).
		Str("output", opts.Output).
		Msg("starting music video pipeline")

	// Stage 1: decode, going through ffmpeg for formats we cannot read
	analysisPath := audioPath
	if !energy.Supported(audioPath) {
		analysisPath = util.TempPath(p.config.TempDir, "beatreel-audio", ".wav")
		defer util.CleanupFiles(analysisPath)
		if err := p.ffmpeg.ExtractAudio(ctx, audioPath, analysisPath, ffmpeg.AnalysisFormat()); err != nil {
			return nil, err
		}
	}

	analysis, err := p.analyzer.AnalyzeFile(analysisPath)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze audio: %w", err)
	}

	duration := analysis.Duration()
	if opts.Duration > 0 && opts.Duration < duration {
		duration = opts.Duration
	}

	// Stage 2: render and encode the silent background
	renderer, err := scene.NewRenderer(logger, RendererOptions(p.config))
	if err != nil {
		return nil, err
	}

	silent := util.TempPath(p.config.TempDir, "beatreel-video", ".mp4")
	defer util.CleanupFiles(silent)

	frames, err := p.encode(ctx, silent, duration, opts.FramesDir, func(sink scene.FrameSink) error {
		return renderer.RenderBackground(ctx, analysis, duration, opts.Theme, sink)
	})
	if err != nil {
		return nil, err
	}

	// Stage 3: bring the original track back, cut to the rendered length
	track := audioPath
	if duration < analysis.Duration() {
		track = util.TempPath(p.config.TempDir, "beatreel-trim", ".wav")
		defer util.CleanupFiles(track)
		if err := p.ffmpeg.TrimAudio(ctx, audioPath, track, 0, util.SecondsToDuration(duration)); err != nil {
			return nil, err
		}
	}
	if err := p.ffmpeg.MuxAudio(ctx, silent, track, opts.Output, ffmpeg.MuxOptions{VolumeDB: opts.VolumeDB}); err != nil {
		return nil, err
	}
	if err := p.verify(ctx, opts.Output, true); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      runID,
		Output:     opts.Output,
		Frames:     frames,
		Duration:   duration,
		SyncPoints: len(analysis.SyncPoints),
		Seed:       renderer.Seed(),
		Elapsed:    time.Since(start),
	}

	logger.Info().
		Int("frames", result.Frames).
		Dur("elapsed", result.Elapsed).
		Msg("music video pipeline complete")

	return result, nil
}

// Slideshow loads or generates the stills, joins them with transitions and
// optionally lays an audio track underneath
func (p *Pipeline) Slideshow(ctx context.Context, opts SlideshowOptions) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With().Str("run", runID).Logger()

	if opts.Output == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	if len(opts.Images)+len(opts.Prompts) == 0 {
		return nil, fmt.Errorf("slideshow needs at least one image or prompt")
	}
	if opts.Audio != "" && !util.FileExists(opts.Audio) {
		return nil, fmt.Errorf("audio file not found: %s", opts.Audio)
	}
	if opts.StillDuration <= 0 {
		opts.StillDuration = p.config.Video.StillDuration
	}
	if opts.TransitionDuration <= 0 {
		opts.TransitionDuration = p.config.Video.TransitionDuration
	}

	if opts.Style == "" && len(opts.Prompts) > 0 {
		style, err := imagegen.ParseStyle(p.config.ImageGen.Style)
		if err != nil {
			return nil, err
		}
		opts.Style = style
	}

	stills, err := p.loadStills(ctx, opts)
	if err != nil {
		return nil, err
	}

	renderer, err := scene.NewRenderer(logger, RendererOptions(p.config))
	if err != nil {
		return nil, err
	}

	duration := SlideshowDuration(len(stills), opts.StillDuration, opts.TransitionDuration)
	silent := opts.Output
	if opts.Audio != "" {
		silent = util.TempPath(p.config.TempDir, "beatreel-video", ".mp4")
		defer util.CleanupFiles(silent)
	}

	frames, err := p.encode(ctx, silent, duration, "", func(sink scene.FrameSink) error {
		return renderer.RenderSlideshow(ctx, stills, opts.Transition, opts.TransitionDuration, sink)
	})
	if err != nil {
		return nil, err
	}

	if opts.Audio != "" {
		if err := p.ffmpeg.MuxAudio(ctx, silent, opts.Audio, opts.Output, ffmpeg.MuxOptions{VolumeDB: opts.VolumeDB}); err != nil {
			return nil, err
		}
	}
	if err := p.verify(ctx, opts.Output, opts.Audio != ""); err != nil {
		return nil, err
	}

	logger.Info().
		Int("stills", len(stills)).
		Int("frames", frames).
		Msg("slideshow pipeline complete")

	return &Result{
		RunID:    runID,
		Output:   opts.Output,
		Frames:   frames,
		Duration: duration,
		Seed:     renderer.Seed(),
		Elapsed:  time.Since(start),
	}, nil
}

// SlideshowDuration approximates the rendered length: every hold plus one
// transition between each pair
func SlideshowDuration(stills int, still, transition float64) float64 {
	if stills <= 0 {
		return 0
	}
	return float64(stills)*still + float64(stills-1)*transition
}

// Join concatenates finished reels. Stream copy needs matching inputs;
// re-encoding normalizes them to the configured frame size and rate.
func (p *Pipeline) Join(ctx context.Context, inputs []string, output string, reencode bool) error {
	return p.ffmpeg.Concat(ctx, ffmpeg.ConcatOptions{
		Inputs:   inputs,
		Output:   output,
		ReEncode: reencode,
		Width:    p.config.Video.Width,
		Height:   p.config.Video.Height,
		FPS:      float64(p.config.Video.FPS),
	})
}

// verify probes a finished output and checks it carries the configured
// frame size and, when expected, an audio stream
func (p *Pipeline) verify(ctx context.Context, output string, wantAudio bool) error {
	info, err := p.ffmpeg.ProbeVideo(ctx, output)
	if err != nil {
		return err
	}
	if err := info.Check(p.config.Video.Width, p.config.Video.Height, wantAudio); err != nil {
		return fmt.Errorf("output check failed: %w", err)
	}
	p.logger.Debug().
		Str("output", output).
		Dur("duration", info.Duration).
		Int("frames", info.Frames).
		Msg("output verified")
	return nil
}

// encode runs render against a frame encoder for output, teeing into a PNG
// directory when framesDir is set, and returns the frame count
func (p *Pipeline) encode(ctx context.Context, output string, duration float64, framesDir string, render func(scene.FrameSink) error) (int, error) {
	enc, err := p.ffmpeg.NewFrameEncoder(ctx, p.encodeOptions(output, duration))
	if err != nil {
		return 0, err
	}

	var sink scene.FrameSink = enc
	if framesDir != "" {
		dir, err := scene.NewDirSink(framesDir)
		if err != nil {
			enc.Close()
			return 0, err
		}
		sink = teeSink{enc, dir}
	}

	if err := render(sink); err != nil {
		enc.Close()
		os.Remove(output)
		return 0, fmt.Errorf("render failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}
	return enc.Frames(), nil
}

type teeSink []scene.FrameSink

func (t teeSink) WriteFrame(ctx context.Context, f *frame.Buffer) error {
	for _, s := range t {
		if err := s.WriteFrame(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// loadStills decodes images and generates prompts concurrently, keeping
// input order
func (p *Pipeline) loadStills(ctx context.Context, opts SlideshowOptions) ([]scene.Still, error) {
	w, h := p.config.Video.Width, p.config.Video.Height
	stills := make([]scene.Still, len(opts.Images)+len(opts.Prompts))

	var client *imagegen.Client
	if len(opts.Prompts) > 0 {
		var err error
		client, err = p.imageClient()
		if err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.config.Concurrency))

	for i, path := range opts.Images {
		g.Go(func() error {
			f, err := LoadImage(path, w, h)
			if err != nil {
				return err
			}
			stills[i] = scene.Still{Frame: f, Duration: opts.StillDuration}
			return nil
		})
	}
	for i, prompt := range opts.Prompts {
		g.Go(func() error {
			f, err := client.GenerateScene(gctx, prompt, opts.Style, w, h)
			if err != nil {
				return fmt.Errorf("prompt %d: %w", i, err)
			}
			stills[len(opts.Images)+i] = scene.Still{Frame: f, Duration: opts.StillDuration}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to prepare stills: %w", err)
	}
	return stills, nil
}

func (p *Pipeline) imageClient() (*imagegen.Client, error) {
	ic := p.config.ImageGen
	return imagegen.NewClient(p.logger, imagegen.Options{
		Endpoint:       ic.Endpoint,
		APIKey:         ic.APIKey,
		NegativePrompt: ic.NegativePrompt,
		Steps:          ic.Steps,
		Guidance:       ic.Guidance,
		Timeout:        ic.Timeout,
	})
}

// LoadImage decodes a PNG or JPEG file and fits it to width x height
func LoadImage(path string, width, height int) (*frame.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return frame.FromImage(img, width, height), nil
}
