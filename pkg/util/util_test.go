package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{61*time.Second + 250*time.Millisecond, "00:01:01.250"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03.000"},
		{-time.Second, "00:00:00.000"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"45.5", 45500 * time.Millisecond, false},
		{"01:30", 90 * time.Second, false},
		{"01:00:02", time.Hour + 2*time.Second, false},
		{" 2 ", 2 * time.Second, false},
		{"abc", 0, true},
		{"1:2:3:4", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	if got := ParseFrameRate("30/1"); got != 30 {
		t.Errorf("expected 30, got %f", got)
	}
	if got := ParseFrameRate("30000/1001"); got < 29.97 || got > 29.98 {
		t.Errorf("expected ~29.97, got %f", got)
	}
	for _, bad := range []string{"", "30", "30/0", "x/1"} {
		if got := ParseFrameRate(bad); got != 0 {
			t.Errorf("ParseFrameRate(%q) = %f, want 0", bad, got)
		}
	}
}

func TestFrameCount(t *testing.T) {
	if got := FrameCount(2*time.Second, 30); got != 60 {
		t.Errorf("expected 60 frames, got %d", got)
	}
	if got := FrameCount(1010*time.Millisecond, 30); got != 31 {
		t.Errorf("partial frame should round up, got %d", got)
	}
	if got := FrameCount(0, 30); got != 0 {
		t.Errorf("expected 0 frames, got %d", got)
	}
	if got := FrameTime(15, 30); got != 0.5 {
		t.Errorf("expected 0.5s, got %f", got)
	}
}

func TestTempPath(t *testing.T) {
	dir := t.TempDir()
	a := TempPath(dir, "reel", ".mp4")
	b := TempPath(dir, "reel", ".mp4")
	if a == b {
		t.Error("temp paths should be unique")
	}
	if filepath.Dir(a) != dir || !strings.HasSuffix(a, ".mp4") {
		t.Errorf("unexpected temp path %q", a)
	}
	if FileExists(a) {
		t.Error("temp path should not be created")
	}
}

func TestEnsureDirAndCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	p := filepath.Join(dir, "x.txt")
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	CleanupFiles(p, filepath.Join(dir, "missing"))
	if FileExists(p) {
		t.Error("file should be removed")
	}
	if got := ReplaceExt("song.mp3", ".wav"); got != "song.wav" {
		t.Errorf("ReplaceExt = %q", got)
	}
	if got := ReplaceExt("music/song.mp4", "-reel.mp4"); got != "music/song-reel.mp4" {
		t.Errorf("ReplaceExt = %q", got)
	}
}
