package energy

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Audio is decoded mono PCM scaled to [-1,1]
type Audio struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the length in seconds
func (a *Audio) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Supported reports whether Load can decode the file natively
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3":
		return true
	}
	return false
}

// Load decodes a WAV or MP3 file to mono samples. Other formats should be
// converted to WAV first.
func Load(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
}

func decodeWAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels <= 0 || bitDepth <= 0 {
		return nil, fmt.Errorf("invalid WAV format: %d channels, %d bits", channels, bitDepth)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range samples {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / scale
	}

	return &Audio{Samples: samples, SampleRate: int(dec.SampleRate)}, nil
}

// go-mp3 always yields 16-bit little-endian stereo
func decodeMP3(r io.Reader) (*Audio, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("invalid MP3 file: %w", err)
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}

	const frameSize = 4
	samples := make([]float64, len(data)/frameSize)
	for i := range samples {
		l := int16(binary.LittleEndian.Uint16(data[i*frameSize:]))
		r := int16(binary.LittleEndian.Uint16(data[i*frameSize+2:]))
		samples[i] = (float64(l) + float64(r)) / 2 / 32768
	}

	return &Audio{Samples: samples, SampleRate: dec.SampleRate()}, nil
}
