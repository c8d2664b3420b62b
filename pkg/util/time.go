package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatDuration converts time.Duration to ffmpeg timestamp format
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := d.Seconds()
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// ParseTimestamp parses HH:MM:SS.mmm, MM:SS or plain seconds
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp format: %s", s)
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid timestamp format: %s", s)
		}
		total = total*60 + v
	}
	return time.Duration(total * float64(time.Second)), nil
}

// ParseFrameRate parses frame rate from ffprobe format (e.g., "30/1")
func ParseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// FrameCount is the number of frames needed to cover d at fps, rounded up
func FrameCount(d time.Duration, fps int) int {
	if d <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()*float64(fps) - 1e-9))
}

// FrameTime is the presentation time of frame i in seconds
func FrameTime(i, fps int) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(i) / float64(fps)
}

// SecondsToDuration converts float seconds, as used by the renderers
func SecondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
