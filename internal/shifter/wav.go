package shifter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	// WAVEFORMATEXTENSIBLE: 16 byte base, cbSize, valid bits, channel mask,
	// then the SubFormat GUID whose first two bytes are the format tag.
	extensibleFmtSize  = 40
	subFormatTagOffset = 24
)

// Clip is a decoded WAV file with samples in [-1, 1), one slice per channel.
type Clip struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Frames is the length of the clip in sample frames.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// ReadClip decodes an integer PCM WAV file of 16, 24 or 32 bits.
func ReadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid wav file", ErrUnsupportedFormat, path)
	}
	format := int(d.WavAudioFormat)
	if format == wavFormatExtensible {
		// the decoder drops the extension, so read the tag from the fmt chunk
		if format, err = subFormat(path); err != nil {
			return nil, err
		}
	}
	if format != wavFormatPCM {
		return nil, fmt.Errorf("%w: %s uses wav format %#x, want integer PCM", ErrUnsupportedFormat, path, format)
	}
	depth := int(d.BitDepth)
	if !supportedDepth(depth) {
		return nil, fmt.Errorf("%w: %s has %d-bit samples", ErrUnsupportedFormat, path, depth)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	numChans := int(d.NumChans)
	if numChans < 1 {
		return nil, fmt.Errorf("%w: %s has no channels", ErrUnsupportedFormat, path)
	}
	frames := len(buf.Data) / numChans
	scale := fullScale(depth)

	channels := make([][]float64, numChans)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChans; ch++ {
			channels[ch][i] = float64(buf.Data[i*numChans+ch]) / scale
		}
	}

	return &Clip{
		SampleRate: int(d.SampleRate),
		BitDepth:   depth,
		Channels:   channels,
	}, nil
}

// WriteClip encodes c as integer PCM, clipping samples outside [-1, 1).
func WriteClip(path string, c *Clip) (err error) {
	if len(c.Channels) == 0 {
		return fmt.Errorf("write %s: clip has no channels", path)
	}
	if !supportedDepth(c.BitDepth) {
		return fmt.Errorf("%w: %d-bit output", ErrUnsupportedFormat, c.BitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	numChans := len(c.Channels)
	frames := c.Frames()
	scale := fullScale(c.BitDepth)

	data := make([]int, frames*numChans)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChans; ch++ {
			v := math.Round(c.Channels[ch][i] * scale)
			if v > scale-1 {
				v = scale - 1
			} else if v < -scale {
				v = -scale
			}
			data[i*numChans+ch] = int(v)
		}
	}

	enc := wav.NewEncoder(f, c.SampleRate, c.BitDepth, numChans, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: c.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}

// subFormat returns the format tag of the SubFormat GUID of an extensible
// WAV file.
func subFormat(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	p := riff.New(f)
	if err := p.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}
	for {
		ch, err := p.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("%w: %s has no fmt chunk", ErrUnsupportedFormat, path)
			}
			return 0, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}
		if ch.Size < extensibleFmtSize {
			return 0, fmt.Errorf("%w: %s has a truncated extensible fmt chunk", ErrUnsupportedFormat, path)
		}
		buf := make([]byte, ch.Size)
		if _, err := io.ReadFull(ch, buf); err != nil {
			return 0, fmt.Errorf("read fmt chunk of %s: %w", path, err)
		}
		return int(binary.LittleEndian.Uint16(buf[subFormatTagOffset:])), nil
	}
}

func supportedDepth(depth int) bool {
	return depth == 16 || depth == 24 || depth == 32
}

func fullScale(depth int) float64 {
	return math.Ldexp(1, depth-1)
}
