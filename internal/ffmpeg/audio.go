package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/keagan/beatreel/pkg/util"
)

// AudioFormat defines audio extraction format options
type AudioFormat struct {
	Codec      string
	SampleRate int
	Channels   int
}

// AnalysisFormat is mono 16-bit PCM, enough for energy analysis
func AnalysisFormat() AudioFormat {
	return AudioFormat{
		Codec:      "pcm_s16le",
		SampleRate: 22050,
		Channels:   1,
	}
}

// ExtractAudio decodes the audio stream of input into a separate file
func (e *Executor) ExtractAudio(ctx context.Context, input, output string, format AudioFormat) error {
	if input == "" || output == "" {
		return fmt.Errorf("input and output paths are required")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Str("codec", format.Codec).
		Int("sample_rate", format.SampleRate).
		Msg("extracting audio")

	args := []string{
		"-i", input,
		"-vn", // no video
		"-acodec", format.Codec,
		"-ar", fmt.Sprintf("%d", format.SampleRate),
		"-ac", fmt.Sprintf("%d", format.Channels),
		output,
	}

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("audio extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}
	return nil
}

// TrimAudio copies start..start+duration of input to output, re-encoding
// for sample accuracy
func (e *Executor) TrimAudio(ctx context.Context, input, output string, start, duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("invalid trim duration: %v", duration)
	}

	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Dur("start", start).
		Dur("duration", duration).
		Msg("trimming audio")

	args := []string{
		"-i", input,
		"-ss", util.FormatDuration(start),
		"-t", util.FormatDuration(duration),
		"-vn",
		output,
	}

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("audio trim")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("audio trim failed: %w", err)
	}
	return nil
}

// MuxOptions tunes how the audio track is laid under the video
type MuxOptions struct {
	VolumeDB     float64 // gain applied to the track; 0 leaves it untouched
	ProgressFunc ProgressFunc
}

// MuxAudio combines a silent video with an audio track, stopping at the
// shorter of the two
func (e *Executor) MuxAudio(ctx context.Context, video, audio, output string, mux MuxOptions) error {
	if video == "" {
		return fmt.Errorf("video path is required")
	}
	if audio == "" {
		return fmt.Errorf("audio path is required")
	}
	if output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Info().
		Str("video", video).
		Str("audio", audio).
		Str("output", output).
		Float64("volume_db", mux.VolumeDB).
		Msg("combining video and audio")

	opts := RunOptions{
		Args:            muxArgs(video, audio, output, mux.VolumeDB),
		ProgressHandler: mux.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("mux output")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("audio mux failed: %w", err)
	}

	e.logger.Info().Str("output", output).Msg("audio mux completed")
	return nil
}

func muxArgs(video, audio, output string, volumeDB float64) []string {
	args := []string{
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", DefaultAudioCodec,
	}
	if volumeDB != 0 {
		args = append(args, "-af", NewFilterBuilder().AudioVolume(volumeDB).Build())
	}
	return append(args,
		"-shortest",
		"-movflags", "+faststart",
		output,
	)
}
