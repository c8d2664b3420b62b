package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/keagan/beatreel/pkg/util"
)

// ProbeVideo reads stream metadata from a rendered reel
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", filePath, err)
	}

	return parseProbe(filePath, output)
}

// parseProbe decodes ffprobe JSON. The first video and first audio
// stream win; later streams of the same type are ignored.
func parseProbe(filePath string, output []byte) (*VideoInfo, error) {
	var doc probeDoc
	if err := json.Unmarshal(output, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{
		FilePath: filePath,
		Duration: seconds(doc.Format.Duration),
		Bitrate:  atoi64(doc.Format.BitRate),
	}

	for _, s := range doc.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec != "" {
				continue
			}
			info.VideoCodec = s.CodecName
			info.Width, info.Height = s.Width, s.Height
			info.PixelFormat = s.PixFmt
			info.FPS = util.ParseFrameRate(s.RFrameRate)
			info.Frames = int(atoi64(s.NbFrames))
		case "audio":
			if info.HasAudio {
				continue
			}
			info.HasAudio = true
			info.AudioCodec = s.CodecName
			info.SampleRate = int(atoi64(s.SampleRate))
			info.Channels = s.Channels
		}
	}

	return info, nil
}

// Check reports whether the probed file carries a video stream of the
// given size and, when wantAudio is set, an audio stream.
func (v *VideoInfo) Check(width, height int, wantAudio bool) error {
	if v.VideoCodec == "" {
		return fmt.Errorf("%s: no video stream", v.FilePath)
	}
	if v.Width != width || v.Height != height {
		return fmt.Errorf("%s: size %dx%d, expected %dx%d", v.FilePath, v.Width, v.Height, width, height)
	}
	if wantAudio && !v.HasAudio {
		return fmt.Errorf("%s: no audio stream", v.FilePath)
	}
	return nil
}

func seconds(s string) time.Duration {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return util.SecondsToDuration(f)
}

func atoi64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type probeDoc struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	PixFmt     string `json:"pix_fmt"`
	RFrameRate string `json:"r_frame_rate"`
	NbFrames   string `json:"nb_frames"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}
