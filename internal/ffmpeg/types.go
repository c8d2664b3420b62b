package ffmpeg

import "time"

// VideoInfo is what ffprobe reports about a rendered reel
type VideoInfo struct {
	FilePath    string
	Duration    time.Duration
	Bitrate     int64
	VideoCodec  string
	Width       int
	Height      int
	FPS         float64
	Frames      int
	PixelFormat string
	HasAudio    bool
	AudioCodec  string
	SampleRate  int
	Channels    int
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Default encoding settings
const (
	DefaultCRF         = 23
	DefaultPreset      = "medium"
	DefaultVideoCodec  = "libx264"
	DefaultAudioCodec  = "aac"
	DefaultPixelFormat = "yuv420p"
)

// EncodeOptions configures a raw frame encoding session
type EncodeOptions struct {
	Output       string
	Width        int
	Height       int
	FPS          float64
	VideoCodec   string
	PixelFormat  string
	Filters      *FilterBuilder
	ProgressFunc ProgressFunc
}
