// Package wav reads and writes PCM WAV files and provides the frame-level
// operations the assembly pipeline needs: duration from frame count, sample
// range extraction and file concatenation.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Format describes the PCM layout of a WAV file.
type Format struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// BytesPerFrame returns the size of one sample frame across all channels.
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitsPerSample / 8
}

// File is a decoded WAV file: its format plus raw PCM frame data.
type File struct {
	Format Format
	Data   []byte
}

// ErrNotWAV indicates the input is not a RIFF/WAVE stream.
var ErrNotWAV = errors.New("not a WAV stream")

// DurationSeconds computes the duration from the frame count, never from
// header fields.
func (f *File) DurationSeconds() float64 {
	bpf := f.Format.BytesPerFrame()
	if bpf == 0 || f.Format.SampleRate == 0 {
		return 0
	}
	frames := len(f.Data) / bpf
	return float64(frames) / float64(f.Format.SampleRate)
}

// FrameCount returns the number of sample frames in the file.
func (f *File) FrameCount() int {
	bpf := f.Format.BytesPerFrame()
	if bpf == 0 {
		return 0
	}
	return len(f.Data) / bpf
}

// ExtractRange copies the frames between startSec and endSec into a new File
// with the same format. Bounds are clamped to the file and aligned to frame
// boundaries; an inverted range yields an empty file.
func (f *File) ExtractRange(startSec, endSec float64) *File {
	bpf := f.Format.BytesPerFrame()
	frames := f.FrameCount()
	start := int(startSec * float64(f.Format.SampleRate))
	end := int(endSec * float64(f.Format.SampleRate))
	if start < 0 {
		start = 0
	}
	if end > frames {
		end = frames
	}
	if start >= end {
		return &File{Format: f.Format}
	}
	data := make([]byte, (end-start)*bpf)
	copy(data, f.Data[start*bpf:end*bpf])
	return &File{Format: f.Format, Data: data}
}

// Decode parses a WAV stream. Only uncompressed PCM is supported.
func Decode(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var format Format
	var data []byte
	sawFmt := false
	pos := 12
	for pos+8 <= len(raw) {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(raw) {
			size = len(raw) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("wav fmt chunk too short: %d bytes", size)
			}
			audioFormat := binary.LittleEndian.Uint16(raw[body : body+2])
			if audioFormat != 1 {
				return nil, fmt.Errorf("unsupported wav audio format %d", audioFormat)
			}
			format = Format{
				Channels:      int(binary.LittleEndian.Uint16(raw[body+2 : body+4])),
				SampleRate:    int(binary.LittleEndian.Uint32(raw[body+4 : body+8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(raw[body+14 : body+16])),
			}
			sawFmt = true
		case "data":
			data = raw[body : body+size]
		}
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}
	if !sawFmt {
		return nil, errors.New("wav stream has no fmt chunk")
	}
	out := make([]byte, len(data))
	copy(out, data)
	return &File{Format: format, Data: out}, nil
}

// DecodeFile reads and decodes the WAV file at path.
func DecodeFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav %s: %w", path, err)
	}
	defer f.Close()
	decoded, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	return decoded, nil
}

// Encode writes f as a canonical 44-byte-header PCM WAV stream.
func Encode(w io.Writer, f *File) error {
	var buf bytes.Buffer
	bpf := f.Format.BytesPerFrame()
	byteRate := f.Format.SampleRate * bpf

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(f.Data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(f.Format.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(f.Format.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(bpf))
	binary.Write(&buf, binary.LittleEndian, uint16(f.Format.BitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(f.Data)))
	buf.Write(f.Data)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// WriteFile encodes f to path, creating or truncating it.
func WriteFile(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav %s: %w", path, err)
	}
	defer out.Close()
	if err := Encode(out, f); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close wav %s: %w", path, err)
	}
	return nil
}

// Concat joins the WAV files at paths into a single file at dest. All inputs
// must share the format of the first file.
func Concat(paths []string, dest string) error {
	if len(paths) == 0 {
		return errors.New("concat: no input files")
	}
	var merged *File
	for _, path := range paths {
		f, err := DecodeFile(path)
		if err != nil {
			return err
		}
		if merged == nil {
			merged = &File{Format: f.Format, Data: f.Data}
			continue
		}
		if f.Format != merged.Format {
			return fmt.Errorf("concat: format mismatch in %s: %+v != %+v", path, f.Format, merged.Format)
		}
		merged.Data = append(merged.Data, f.Data...)
	}
	return WriteFile(dest, merged)
}

// Sample returns the 16-bit sample value for frame i, channel 0. The caller
// is responsible for i being within FrameCount.
func (f *File) Sample(i int) int16 {
	bpf := f.Format.BytesPerFrame()
	off := i * bpf
	return int16(binary.LittleEndian.Uint16(f.Data[off : off+2]))
}
