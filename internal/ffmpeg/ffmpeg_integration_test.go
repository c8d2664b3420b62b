package ffmpeg_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/beatreel/internal/effects"
	"github.com/keagan/beatreel/internal/ffmpeg"
)

// local helper (cannot use unexported ones from ffmpeg package)
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func TestIntegration_ParticlesWithAudio(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).With().Str("test", "integration_particles_audio").Logger()

	e, err := ffmpeg.New(logger, ffmpeg.Options{Threads: 2, Preset: "ultrafast"})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	dir := t.TempDir()
	silent := filepath.Join(dir, "silent.mp4")
	tone := filepath.Join(dir, "tone.wav")
	output := filepath.Join(dir, "reel.mp4")

	const w, h, fps = 96, 160, 24
	enc, err := e.NewFrameEncoder(ctx, ffmpeg.EncodeOptions{
		Output:  silent,
		Width:   w,
		Height:  h,
		FPS:     fps,
		Filters: ffmpeg.NewFilterBuilder().FadeIn(0.25),
	})
	if err != nil {
		t.Fatalf("NewFrameEncoder failed: %v", err)
	}

	ps, err := effects.NewParticleSystem(w, h, 40, effects.NewRand(7))
	if err != nil {
		t.Fatalf("NewParticleSystem failed: %v", err)
	}
	for i := 0; i < fps; i++ {
		ps.Update(float64(i) / fps)
		if err := enc.WriteFrame(ctx, ps.Render()); err != nil {
			t.Fatalf("WriteFrame failed: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder close failed: %v", err)
	}

	err = e.Run(ctx, ffmpeg.RunOptions{Args: []string{
		"-f", "lavfi",
		"-i", "sine=frequency=440:duration=2",
		tone,
	}})
	if err != nil {
		t.Fatalf("tone generation failed: %v", err)
	}

	start := time.Now()
	if err := e.MuxAudio(ctx, silent, tone, output, ffmpeg.MuxOptions{VolumeDB: -3}); err != nil {
		t.Fatalf("MuxAudio failed: %v", err)
	}

	info, err := e.ProbeVideo(ctx, output)
	if err != nil {
		t.Fatalf("ProbeVideo failed: %v", err)
	}
	if err := info.Check(w, h, true); err != nil {
		t.Error(err)
	}
	// -shortest trims the two second tone to the one second video
	if info.Duration > 1500*time.Millisecond {
		t.Errorf("expected output trimmed to video length, got %v", info.Duration)
	}

	logger.Info().
		Dur("duration", info.Duration).
		Str("video_codec", info.VideoCodec).
		Str("audio_codec", info.AudioCodec).
		Dur("elapsed", time.Since(start)).
		Msg("integration reel muxed")
}
