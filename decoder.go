package id3

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

type Decoder struct {
	r io.Reader
	h TagHeader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Check reports whether r starts with an ID3v2 tag. It doesn't
// consume any data.
func Check(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(len(Magic))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}

	return bytes.Equal(b, Magic[:]), nil
}

// ParseHeader parses only the ID3 header.
func (d *Decoder) ParseHeader() (TagHeader, error) {
	var b [tagHeaderSize]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Too short to hold a tag.
			return TagHeader{}, ErrNotEnoughData
		}
		return TagHeader{}, fmt.Errorf("reading tag header: %w", err)
	}

	header, err := parseTagHeader(b[:])
	if err != nil {
		return TagHeader{}, err
	}

	d.h = header
	return header, nil
}

// Parse parses a tag.
//
// A tag whose header can't be read results in an error. Everything
// past the header is parsed leniently: a bad extended header is
// ignored, malformed frames are dropped and parsing stops silently at
// the first thing that isn't a frame header, which is usually padding.
func (d *Decoder) Parse() (*Tag, error) {
	header, err := d.ParseHeader()
	if err != nil {
		return nil, err
	}

	// Read the whole tag. Files that are shorter than the tag claims are
	// truncated rather than rejected.
	data := make([]byte, header.Size)
	n, err := io.ReadFull(d.r, data)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("reading tag body: %w", err)
	}
	data = data[:n]

	// Tag level unsynchronisation. ID3v2.4 does this per frame.
	if header.Version < Version24 && header.Flags.Unsynchronisation {
		data = desync(data)
	}

	tag := &Tag{}

	if header.Flags.ExtendedHeader {
		ext, err := parseExtendedHeader(header.Version, data)
		if err != nil {
			// Certain taggers set the flag without writing an extended
			// header.
			Logging.Info("resetting incorrectly-set extended header flag", "err", err)
			header.Flags.ExtendedHeader = false
		} else {
			tag.ExtendedHeader = ext
			if header.Version == Version24 {
				data = data[ext.Size():]
			} else {
				data = data[ext.Size()+4:]
			}
		}
	}

	tag.Header = header
	c := frameContext{header: header}
	unknowns := parseFrames(c, data, &tag.Frames)
	tag.UnknownFrames = UnknownFrames{version: header.Version, frames: unknowns}

	return tag, nil
}

// frameResult is the outcome of parsing a single frame. A result with
// neither a frame nor an unknown frame was dropped.
type frameResult struct {
	frame   Frame
	unknown *UnknownFrame
}

func (r frameResult) dropped() bool {
	return r.frame == nil && r.unknown == nil
}

// parseFrames parses frames from data into frames until data is
// exhausted or no further frame header can be read. It returns the
// unknown frames it encountered.
func parseFrames(c frameContext, data []byte, frames *FrameMap) []UnknownFrame {
	var unknowns []UnknownFrame

	for len(data) > 0 {
		res, n, err := parseFrame(c, data)
		if err != nil {
			break
		}
		data = data[n:]

		switch {
		case res.frame != nil:
			frames.Add(res.frame)
		case res.unknown != nil:
			Logging.Debug("found unknown frame", "id", res.unknown.ID())
			unknowns = append(unknowns, *res.unknown)
		}
	}

	return unknowns
}

// parseFrame parses the frame at the start of data and returns the
// number of bytes it occupied. An error means that no frame header
// could be read; a malformed frame body is not an error but a dropped
// frame.
func parseFrame(c frameContext, data []byte) (frameResult, int, error) {
	v := c.header.Version

	h, err := parseFrameHeader(v, data)
	if err != nil {
		return frameResult{}, 0, err
	}

	start := frameLayouts[v].headerSize()
	end := start + h.size
	if end > len(data) {
		return frameResult{}, 0, ErrNotEnoughData
	}
	if h.size == 0 {
		Logging.Debug("dropping empty frame", "id", h.id)
		return frameResult{}, end, nil
	}

	body := data[start:end]
	unknown := &UnknownFrame{Header: h, Data: clone(body)}

	if v == Version22 {
		id, ok := v22Frames[h.id]
		if !ok {
			return frameResult{unknown: unknown}, end, nil
		}
		h.id = id
	}

	if h.flags.Encrypted {
		// Encryption methods are registered by ENCR frames and are not
		// something we can undo.
		return frameResult{unknown: unknown}, end, nil
	}

	frame := newFrame(h)
	if frame == nil {
		return frameResult{unknown: unknown}, end, nil
	}

	body, err = unwrapBody(v, h.flags, body)
	if err == nil {
		err = frame.parse(c, body)
	}
	if err != nil {
		Logging.Debug("dropping frame", "id", h.id, "err", err)
		return frameResult{}, end, nil
	}

	frame.header().flags = h.flags.plain()
	return frameResult{frame: frame}, end, nil
}

// unwrapBody undoes the transformations that frame flags apply to a
// frame body: the extra header data of grouped, compressed and
// length-indicated frames, ID3v2.4 unsynchronisation and compression.
func unwrapBody(v Version, flags FrameFlags, body []byte) ([]byte, error) {
	skip := func(n int) error {
		if len(body) < n {
			return ErrNotEnoughData
		}
		body = body[n:]
		return nil
	}

	switch v {
	case Version23:
		if flags.Compressed {
			// decompressed size
			if err := skip(4); err != nil {
				return nil, err
			}
		}
		if flags.Grouped {
			if err := skip(1); err != nil {
				return nil, err
			}
		}
	case Version24:
		if flags.Grouped {
			if err := skip(1); err != nil {
				return nil, err
			}
		}
		if flags.HasDataLength {
			if err := skip(4); err != nil {
				return nil, err
			}
		}
		if flags.Unsynchronisation {
			body = desync(body)
		}
	}

	if flags.Compressed {
		r, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, ErrMalformedData
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, ErrMalformedData
		}
		body = out
	}

	return body, nil
}
