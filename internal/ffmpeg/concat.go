package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConcatOptions defines concatenation parameters. When re-encoding, a
// non-zero Width, Height and FPS normalize every input to that geometry.
type ConcatOptions struct {
	Inputs       []string
	Output       string
	ReEncode     bool
	Width        int
	Height       int
	FPS          float64
	ProgressFunc ProgressFunc
}

// Concat joins rendered clips end to end
func (e *Executor) Concat(ctx context.Context, opts ConcatOptions) error {
	if len(opts.Inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Info().
		Int("inputs", len(opts.Inputs)).
		Str("output", opts.Output).
		Msg("concatenating videos")

	listFile, err := writeConcatList(opts.Inputs)
	if err != nil {
		return fmt.Errorf("failed to create concat file: %w", err)
	}
	defer os.Remove(listFile)

	runOpts := RunOptions{
		Args:            e.concatArgs(listFile, opts),
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("concatenating")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("concat failed: %w", err)
	}
	return nil
}

func (e *Executor) concatArgs(listFile string, opts ConcatOptions) []string {
	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
	}

	if !opts.ReEncode {
		return append(args, "-c", "copy", opts.Output)
	}

	filters := NewFilterBuilder().
		Scale(opts.Width, opts.Height).
		FPS(opts.FPS).
		Format(DefaultPixelFormat).
		Build()
	return append(args,
		"-vf", filters,
		"-c:v", DefaultVideoCodec,
		"-crf", fmt.Sprintf("%d", e.crf),
		"-preset", e.preset,
		"-c:a", DefaultAudioCodec,
		opts.Output,
	)
}

// writeConcatList generates a temporary file list for the concat demuxer
func writeConcatList(inputs []string) (string, error) {
	tmpFile, err := os.CreateTemp("", "beatreel-concat-*.txt")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	for _, input := range inputs {
		absPath, err := filepath.Abs(input)
		if err != nil {
			return "", err
		}
		// single quotes inside a quoted entry are written as '\''
		escaped := strings.ReplaceAll(absPath, "'", `'\''`)
		if _, err := fmt.Fprintf(tmpFile, "file '%s'\n", escaped); err != nil {
			return "", err
		}
	}

	return tmpFile.Name(), nil
}
