package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keagan/beatreel/internal/frame"
)

// stderrTailLines is how much ffmpeg output is kept for error reports
const stderrTailLines = 20

// FrameEncoder pipes raw rgb24 frames into an ffmpeg process. It is not
// safe for concurrent use; frames are encoded in the order written.
type FrameEncoder struct {
	logger zerolog.Logger
	opts   EncodeOptions
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	tail   []string
	wg     sync.WaitGroup
	frames int
	closed bool
}

// buildEncodeArgs assembles the ffmpeg arguments for a rawvideo session
func (e *Executor) buildEncodeArgs(opts EncodeOptions) []string {
	codec := opts.VideoCodec
	if codec == "" {
		codec = DefaultVideoCodec
	}
	pixFmt := opts.PixelFormat
	if pixFmt == "" {
		pixFmt = DefaultPixelFormat
	}

	args := append(e.baseArgs(),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%g", opts.FPS),
		"-i", "pipe:0",
		"-an",
	)

	if filters := opts.Filters.Build(); filters != "" {
		args = append(args, "-vf", filters)
	}

	return append(args,
		"-c:v", codec,
		"-crf", fmt.Sprintf("%d", e.crf),
		"-preset", e.preset,
		"-pix_fmt", pixFmt,
		opts.Output,
	)
}

func validateEncodeOptions(opts EncodeOptions) error {
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if opts.Width%2 != 0 || opts.Height%2 != 0 {
		return fmt.Errorf("frame size must be even for yuv420p, got %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return fmt.Errorf("FPS must be positive")
	}
	return nil
}

// NewFrameEncoder starts ffmpeg and returns a sink for frames of the
// configured size. Close must be called to finish the file.
func (e *Executor) NewFrameEncoder(ctx context.Context, opts EncodeOptions) (*FrameEncoder, error) {
	if err := validateEncodeOptions(opts); err != nil {
		return nil, fmt.Errorf("invalid encode options: %w", err)
	}

	args := e.buildEncodeArgs(opts)
	e.logger.Debug().Strs("args", args).Msg("starting frame encoder")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	enc := &FrameEncoder{
		logger: e.logger.With().Str("output", opts.Output).Logger(),
		opts:   opts,
		cmd:    cmd,
		stdin:  stdin,
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	enc.wg.Add(1)
	go func() {
		defer enc.wg.Done()
		streamOutput(stderr, opts.ProgressFunc, func(line string) {
			enc.logger.Debug().Str("ffmpeg", line).Msg("encoding")
			enc.tail = append(enc.tail, line)
			if len(enc.tail) > stderrTailLines {
				enc.tail = enc.tail[1:]
			}
		})
	}()

	enc.logger.Info().
		Int("width", opts.Width).
		Int("height", opts.Height).
		Float64("fps", opts.FPS).
		Msg("frame encoder started")

	return enc, nil
}

// WriteFrame sends one frame to ffmpeg
func (fe *FrameEncoder) WriteFrame(ctx context.Context, f *frame.Buffer) error {
	if fe.closed {
		return fmt.Errorf("encoder is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Width != fe.opts.Width || f.Height != fe.opts.Height {
		return fmt.Errorf("frame is %dx%d, encoder expects %dx%d", f.Width, f.Height, fe.opts.Width, fe.opts.Height)
	}
	if _, err := fe.stdin.Write(f.Pix); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", fe.frames, err)
	}
	fe.frames++
	return nil
}

// Frames returns the number of frames written so far
func (fe *FrameEncoder) Frames() int {
	return fe.frames
}

// Close flushes stdin and waits for ffmpeg to finish the file
func (fe *FrameEncoder) Close() error {
	if fe.closed {
		return nil
	}
	fe.closed = true

	closeErr := fe.stdin.Close()
	fe.wg.Wait()
	if err := fe.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w\n%s", err, strings.Join(fe.tail, "\n"))
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close encoder input: %w", closeErr)
	}

	fe.logger.Info().Int("frames", fe.frames).Msg("encoding complete")
	return nil
}
