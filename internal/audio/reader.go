package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned for WAV files the recognizer cannot
// consume: non-PCM encodings, bit depths other than 16, or more than two
// channels.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Info describes the PCM stream as declared by the WAV header.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Reader streams fixed-size little-endian PCM16 frames out of a WAV file.
type Reader struct {
	file *os.File
	dec  *wav.Decoder
	pcm  *audio.IntBuffer
	info Info
}

// Open opens path, validates the WAV header, and positions the reader at the
// start of the PCM data.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		file.Close()
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != 1 {
		file.Close()
		return nil, fmt.Errorf("%w: encoding %d is not PCM", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	if dec.BitDepth != 16 {
		file.Close()
		return nil, fmt.Errorf("%w: %d-bit samples, want 16-bit", ErrUnsupportedFormat, dec.BitDepth)
	}
	if dec.NumChans != 1 && dec.NumChans != 2 {
		file.Close()
		return nil, fmt.Errorf("%w: %d channels, want mono or stereo", ErrUnsupportedFormat, dec.NumChans)
	}
	if err := dec.FwdToPCM(); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek to PCM data: %w", err)
	}

	return &Reader{
		file: file,
		dec:  dec,
		info: Info{
			SampleRate: int(dec.SampleRate),
			Channels:   int(dec.NumChans),
			BitDepth:   int(dec.BitDepth),
		},
	}, nil
}

// Info returns the header-derived stream parameters.
func (r *Reader) Info() Info {
	return r.info
}

// ReadFrame fills frame with little-endian PCM16 bytes and returns the number
// of bytes written. It returns io.EOF once the stream is exhausted.
func (r *Reader) ReadFrame(frame []byte) (int, error) {
	samples := len(frame) / 2
	if samples == 0 {
		return 0, fmt.Errorf("frame buffer too small: %d bytes", len(frame))
	}
	if r.pcm == nil || len(r.pcm.Data) != samples {
		r.pcm = &audio.IntBuffer{
			Format: &audio.Format{NumChannels: r.info.Channels, SampleRate: r.info.SampleRate},
			Data:   make([]int, samples),
		}
	}

	n, err := r.dec.PCMBuffer(r.pcm)
	if err != nil {
		return 0, fmt.Errorf("read PCM frame: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		sample := int16(r.pcm.Data[i])
		frame[i*2] = byte(sample)
		frame[i*2+1] = byte(sample >> 8)
	}
	return n * 2, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
