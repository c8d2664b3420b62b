package scene

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/keagan/beatreel/internal/frame"
)

// FrameSink consumes rendered frames in presentation order.
// *ffmpeg.FrameEncoder satisfies it.
type FrameSink interface {
	WriteFrame(ctx context.Context, f *frame.Buffer) error
}

// MemorySink keeps every frame it is given
type MemorySink struct {
	Frames []*frame.Buffer
}

func (s *MemorySink) WriteFrame(ctx context.Context, f *frame.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Frames = append(s.Frames, f)
	return nil
}

// Len returns the number of frames written
func (s *MemorySink) Len() int {
	return len(s.Frames)
}

// DirSink writes numbered PNG files, frame_00000.png onward
type DirSink struct {
	Dir   string
	count int
}

// NewDirSink creates dir if needed
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	return &DirSink{Dir: dir}, nil
}

func (s *DirSink) WriteFrame(ctx context.Context, f *frame.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("frame_%05d.png", s.count))
	if err := WritePNG(path, f); err != nil {
		return err
	}
	s.count++
	return nil
}

// WritePNG encodes a single frame to path
func WritePNG(path string, f *frame.Buffer) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(out, f.ToNRGBA()); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return out.Close()
}

// Count returns the number of frames written
func (s *DirSink) Count() int {
	return s.count
}
