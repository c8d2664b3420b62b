package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/beatreel/internal/frame"
)

// TestResults stores results from the ffmpeg-backed tests for the summary
type TestResults struct {
	ExecutorPath  string
	ProbeResults  *VideoInfo
	FramesEncoded int
	Errors        []string
	TestDuration  time.Duration
}

var globalResults = &TestResults{
	Errors: make([]string, 0),
}

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

// fakeExecutor builds an executor without looking up binaries
func fakeExecutor(threads int) *Executor {
	return &Executor{
		logger:      zerolog.Nop(),
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		threads:     threads,
		preset:      DefaultPreset,
		crf:         DefaultCRF,
	}
}

func argAfter(args []string, flag string) (string, bool) {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return "", false
	}
	return args[i+1], true
}

func TestFilterBuilder(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.Scale(1920, 1080).FPS(30).Build()

	expected := "scale=1920:1080,fps=30.000000"
	if filter != expected {
		t.Errorf("expected %q, got %q", expected, filter)
	}
}

func TestFilterBuilderEmpty(t *testing.T) {
	if filter := NewFilterBuilder().Build(); filter != "" {
		t.Errorf("expected empty string, got %q", filter)
	}

	var fb *FilterBuilder
	if filter := fb.Build(); filter != "" {
		t.Errorf("nil builder should build empty string, got %q", filter)
	}
}

func TestFilterBuilderSkipsInvalid(t *testing.T) {
	filter := NewFilterBuilder().
		Scale(0, 1080).
		FPS(-1).
		Format("").
		FadeIn(0).
		FadeOut(4, 0).
		Build()
	if filter != "" {
		t.Errorf("invalid filters should be skipped, got %q", filter)
	}
}

func TestFilterBuilderFades(t *testing.T) {
	filter := NewFilterBuilder().
		FadeIn(0.5).
		FadeOut(9.5, 0.5).
		Format("yuv420p").
		Build()

	expected := "fade=t=in:st=0:d=0.500,fade=t=out:st=9.500:d=0.500,format=yuv420p"
	if filter != expected {
		t.Errorf("expected %q, got %q", expected, filter)
	}
}

func TestBaseArgs(t *testing.T) {
	args := fakeExecutor(4).baseArgs()
	if args[0] != "-y" {
		t.Errorf("expected overwrite flag first, got %v", args)
	}
	if v, ok := argAfter(args, "-threads"); !ok || v != "4" {
		t.Errorf("expected -threads 4, got %v", args)
	}
	if v, ok := argAfter(args, "-progress"); !ok || v != "pipe:2" {
		t.Errorf("expected progress on stderr, got %v", args)
	}

	if slices.Contains(fakeExecutor(0).baseArgs(), "-threads") {
		t.Error("zero threads should leave thread count to ffmpeg")
	}
}

func TestBuildEncodeArgs(t *testing.T) {
	e := fakeExecutor(0)
	args := e.buildEncodeArgs(EncodeOptions{
		Output:  "out.mp4",
		Width:   1080,
		Height:  1920,
		FPS:     30,
		Filters: NewFilterBuilder().FadeIn(1),
	})

	checks := map[string]string{
		"-f":   "rawvideo",
		"-s":   "1080x1920",
		"-r":   "30",
		"-i":   "pipe:0",
		"-vf":  "fade=t=in:st=0:d=1.000",
		"-c:v": DefaultVideoCodec,
		"-crf": fmt.Sprintf("%d", DefaultCRF),
	}
	for flag, want := range checks {
		if got, ok := argAfter(args, flag); !ok || got != want {
			t.Errorf("%s: expected %q, got %q", flag, want, got)
		}
	}

	// input pix_fmt is rgb24, output falls back to the default
	first := slices.Index(args, "-pix_fmt")
	if args[first+1] != "rgb24" {
		t.Errorf("expected rgb24 input, got %q", args[first+1])
	}
	if args[len(args)-2] != DefaultPixelFormat {
		t.Errorf("expected output pix_fmt %q, got %v", DefaultPixelFormat, args)
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output must be the final argument, got %v", args)
	}
	if slices.Contains(e.buildEncodeArgs(EncodeOptions{Output: "o.mp4", Width: 2, Height: 2, FPS: 1}), "-vf") {
		t.Error("no -vf expected without filters")
	}
}

func TestValidateEncodeOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    EncodeOptions
		wantErr bool
	}{
		{"valid", EncodeOptions{Output: "a.mp4", Width: 1080, Height: 1920, FPS: 30}, false},
		{"missing output", EncodeOptions{Width: 2, Height: 2, FPS: 30}, true},
		{"zero size", EncodeOptions{Output: "a.mp4", Width: 0, Height: 2, FPS: 30}, true},
		{"odd width", EncodeOptions{Output: "a.mp4", Width: 101, Height: 100, FPS: 30}, true},
		{"odd height", EncodeOptions{Output: "a.mp4", Width: 100, Height: 99, FPS: 30}, true},
		{"zero fps", EncodeOptions{Output: "a.mp4", Width: 2, Height: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEncodeOptions(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateEncodeOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilterBuilderAudioVolume(t *testing.T) {
	if got := NewFilterBuilder().AudioVolume(-6).Build(); got != "volume=-6.000000dB" {
		t.Errorf("unexpected volume filter %q", got)
	}
}

func TestMuxArgs(t *testing.T) {
	args := muxArgs("v.mp4", "a.wav", "out.mp4", 0)
	if slices.Contains(args, "-af") {
		t.Errorf("no audio filter expected at unity gain, got %v", args)
	}
	if v, _ := argAfter(args, "-c:v"); v != "copy" {
		t.Errorf("video stream should be copied, got %q", v)
	}
	if !slices.Contains(args, "-shortest") {
		t.Error("mux should stop at the shorter stream")
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output must be last, got %v", args)
	}

	louder := muxArgs("v.mp4", "a.wav", "out.mp4", 3.5)
	if af, _ := argAfter(louder, "-af"); af != "volume=3.500000dB" {
		t.Errorf("expected volume filter, got %q in %v", af, louder)
	}
	if louder[len(louder)-1] != "out.mp4" {
		t.Errorf("output must stay last, got %v", louder)
	}
}

func TestStreamOutput(t *testing.T) {
	input := strings.Join([]string{
		"Input #0, rawvideo, from 'pipe:0':",
		"frame=10",
		"fps=29.97",
		"bitrate=512.0kbits/s",
		"out_time=00:00:00.333333",
		"speed=1.5x",
		"progress=continue",
		"frame=0",
		"progress=continue",
		"frame=20",
		"progress=end",
	}, "\n")

	var updates []Progress
	var lines int
	streamOutput(strings.NewReader(input), func(p *Progress) {
		updates = append(updates, *p)
	}, func(string) {
		lines++
	})

	if lines != 11 {
		t.Errorf("expected every line logged, got %d", lines)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates (zero frame skipped), got %d", len(updates))
	}
	first := updates[0]
	if first.Frame != 10 || first.FPS != 29.97 || first.Speed != "1.5x" || first.Bitrate != "512.0kbits/s" {
		t.Errorf("unexpected first update: %+v", first)
	}
	if updates[1].Frame != 20 || updates[1].Speed != "" {
		t.Errorf("progress blocks should not leak fields: %+v", updates[1])
	}
}

func TestParseProbe(t *testing.T) {
	output := []byte(`{
		"format": {"duration": "2.500000", "bit_rate": "128000"},
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1080, "height": 1920, "pix_fmt": "yuv420p", "r_frame_rate": "30/1", "nb_frames": "75"},
			{"codec_type": "audio", "codec_name": "aac", "sample_rate": "44100", "channels": 2},
			{"codec_type": "audio", "codec_name": "mp3"}
		]
	}`)

	info, err := parseProbe("clip.mp4", output)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.Width != 1080 || info.Height != 1920 {
		t.Errorf("expected 1080x1920, got %dx%d", info.Width, info.Height)
	}
	if info.FPS != 30 {
		t.Errorf("expected 30 fps, got %f", info.FPS)
	}
	if info.Duration != 2500*time.Millisecond {
		t.Errorf("expected 2.5s, got %v", info.Duration)
	}
	if info.Bitrate != 128000 {
		t.Errorf("expected bitrate 128000, got %d", info.Bitrate)
	}
	if info.Frames != 75 || info.PixelFormat != "yuv420p" {
		t.Errorf("expected 75 yuv420p frames, got %d %s", info.Frames, info.PixelFormat)
	}
	if !info.HasAudio || info.AudioCodec != "aac" || info.SampleRate != 44100 || info.Channels != 2 {
		t.Errorf("expected first audio stream to win, got %+v", info)
	}

	if err := info.Check(1080, 1920, true); err != nil {
		t.Errorf("Check failed: %v", err)
	}
	if err := info.Check(720, 1280, false); err == nil {
		t.Error("expected size mismatch")
	}
	if err := (&VideoInfo{FilePath: "silent.mp4", VideoCodec: "h264", Width: 8, Height: 8}).Check(8, 8, true); err == nil {
		t.Error("expected missing audio error")
	}
	if err := (&VideoInfo{FilePath: "audio.m4a"}).Check(8, 8, false); err == nil {
		t.Error("expected missing video error")
	}

	if _, err := parseProbe("bad", []byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "it's.mp4")}

	listFile, err := writeConcatList(inputs)
	if err != nil {
		t.Fatalf("writeConcatList failed: %v", err)
	}
	defer os.Remove(listFile)

	data, err := os.ReadFile(listFile)
	if err != nil {
		t.Fatalf("failed to read list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "file '") {
		t.Errorf("unexpected entry: %q", lines[0])
	}
	if !strings.Contains(lines[1], `it'\''s.mp4`) {
		t.Errorf("quote not escaped: %q", lines[1])
	}
}

func TestConcatValidation(t *testing.T) {
	e := fakeExecutor(0)
	ctx := context.Background()

	if err := e.Concat(ctx, ConcatOptions{Output: "out.mp4"}); err == nil {
		t.Error("expected error for no inputs")
	}
	if err := e.Concat(ctx, ConcatOptions{Inputs: []string{"a.mp4"}}); err == nil {
		t.Error("expected error for missing output")
	}
}

func TestConcatArgs(t *testing.T) {
	e := fakeExecutor(0)

	copied := e.concatArgs("list.txt", ConcatOptions{Output: "out.mp4"})
	if v, _ := argAfter(copied, "-c"); v != "copy" {
		t.Errorf("expected stream copy, got %v", copied)
	}
	if slices.Contains(copied, "-vf") {
		t.Errorf("stream copy cannot filter, got %v", copied)
	}

	reencoded := e.concatArgs("list.txt", ConcatOptions{
		Output:   "out.mp4",
		ReEncode: true,
		Width:    1080,
		Height:   1920,
		FPS:      30,
	})
	if vf, _ := argAfter(reencoded, "-vf"); vf != "scale=1080:1920,fps=30.000000,format=yuv420p" {
		t.Errorf("unexpected normalize filter %q", vf)
	}
	if v, _ := argAfter(reencoded, "-c:v"); v != DefaultVideoCodec {
		t.Errorf("expected %s, got %q", DefaultVideoCodec, v)
	}
	if reencoded[len(reencoded)-1] != "out.mp4" {
		t.Errorf("output must be last, got %v", reencoded)
	}

	bare := e.concatArgs("list.txt", ConcatOptions{Output: "out.mp4", ReEncode: true})
	if vf, _ := argAfter(bare, "-vf"); vf != "format=yuv420p" {
		t.Errorf("without geometry only the pixel format is forced, got %q", vf)
	}
}

func TestRunRequiresArgs(t *testing.T) {
	if err := fakeExecutor(0).Run(context.Background(), RunOptions{}); err == nil {
		t.Error("expected error for empty args")
	}
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New(zerolog.New(os.Stderr), Options{Threads: 4})
	if err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("Executor creation failed: %v", err))
		t.Fatalf("failed to create executor: %v", err)
	}
	if e.ffmpegPath == "" || e.ffprobePath == "" {
		t.Error("binary paths are empty")
	}
	if e.preset != DefaultPreset || e.crf != DefaultCRF {
		t.Errorf("expected defaults, got preset=%q crf=%d", e.preset, e.crf)
	}

	globalResults.ExecutorPath = e.ffmpegPath
	t.Logf("ffmpeg: %s", e.ffmpegPath)
	t.Logf("ffprobe: %s", e.ffprobePath)

	if _, err := New(zerolog.Nop(), Options{BinaryPath: "/nonexistent/ffmpeg"}); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestFrameEncoder(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	e, err := New(logger, Options{Threads: 2, Preset: "ultrafast"})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	output := filepath.Join(t.TempDir(), "frames.mp4")
	const w, h, n = 64, 48, 15

	start := time.Now()
	enc, err := e.NewFrameEncoder(ctx, EncodeOptions{Output: output, Width: w, Height: h, FPS: 15})
	if err != nil {
		t.Fatalf("NewFrameEncoder failed: %v", err)
	}

	f := frame.New(w, h)
	for i := 0; i < n; i++ {
		f.Fill(frame.RGB{R: uint8(i * 16), G: 64, B: 200})
		if err := enc.WriteFrame(ctx, f); err != nil {
			t.Fatalf("WriteFrame %d failed: %v", i, err)
		}
	}
	if err := enc.WriteFrame(ctx, frame.New(w+2, h)); err == nil {
		t.Error("expected error for mismatched frame size")
	}
	if err := enc.Close(); err != nil {
		globalResults.Errors = append(globalResults.Errors, fmt.Sprintf("encode failed: %v", err))
		t.Fatalf("Close failed: %v", err)
	}
	if err := enc.WriteFrame(ctx, f); err == nil {
		t.Error("expected error writing to closed encoder")
	}
	globalResults.FramesEncoded = enc.Frames()

	info, err := e.ProbeVideo(ctx, output)
	if err != nil {
		t.Fatalf("ProbeVideo failed: %v", err)
	}
	globalResults.ProbeResults = info
	globalResults.TestDuration = time.Since(start)

	if info.Width != w || info.Height != h {
		t.Errorf("expected %dx%d, got %dx%d", w, h, info.Width, info.Height)
	}
	if info.HasAudio {
		t.Error("raw frame encode should have no audio")
	}
	t.Logf("encoded %d frames: %dx%d @ %.2f fps, %v", enc.Frames(), info.Width, info.Height, info.FPS, info.Duration)
}

func TestProbeVideoInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New(zerolog.New(os.Stderr), Options{})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	if _, err := e.ProbeVideo(ctx, "nonexistent.mp4"); err == nil {
		t.Error("ProbeVideo should fail for non-existent file")
	}

	invalidPath := filepath.Join(t.TempDir(), "invalid.txt")
	os.WriteFile(invalidPath, []byte("not a video"), 0644)
	if _, err := e.ProbeVideo(ctx, invalidPath); err == nil {
		t.Error("ProbeVideo should fail for invalid video file")
	}
}

// TestMain runs after all tests and prints summary
func TestMain(m *testing.M) {
	code := m.Run()
	printTestSummary()
	os.Exit(code)
}

func printTestSummary() {
	if globalResults.ExecutorPath == "" {
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("TEST SUMMARY - FFmpeg Layer")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("\nFFmpeg Binary: %s\n", globalResults.ExecutorPath)

	if globalResults.ProbeResults != nil {
		fmt.Println("\nENCODE RESULTS:")
		fmt.Printf("  Frames:        %d\n", globalResults.FramesEncoded)
		fmt.Printf("  Resolution:    %dx%d @ %.2f fps\n",
			globalResults.ProbeResults.Width,
			globalResults.ProbeResults.Height,
			globalResults.ProbeResults.FPS)
		fmt.Printf("  Duration:      %v\n", globalResults.ProbeResults.Duration)
		fmt.Printf("  Video Codec:   %s\n", globalResults.ProbeResults.VideoCodec)
		fmt.Printf("  Encode Time:   %v\n", globalResults.TestDuration)
	}

	if len(globalResults.Errors) > 0 {
		fmt.Println("\nERRORS ENCOUNTERED:")
		for i, err := range globalResults.Errors {
			fmt.Printf("  %d. %s\n", i+1, err)
		}
	} else {
		fmt.Println("\nALL TESTS PASSED - No critical errors")
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}
