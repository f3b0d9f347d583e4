package id3

import (
	"io"
)

type Encoder struct {
	w io.Writer
	v Version
}

// NewEncoder returns an encoder that writes frames for version v.
func NewEncoder(w io.Writer, v Version) *Encoder {
	return &Encoder{w: w, v: v.saveVersion()}
}

func (e *Encoder) WriteFrame(f Frame) error {
	_, err := e.w.Write(renderFrame(e.v, f))
	return err
}

// renderFrame renders a frame, header included, for version v. The
// header's size is updated to the size of the rendered body.
func renderFrame(v Version, f Frame) []byte {
	body := f.encode(v)

	h := f.header()
	h.flags = h.flags.plain()
	h.size = len(body)

	return concat(h.serialize(v, len(body)), body)
}

// renderBody renders everything that follows the tag header: the
// extended header, the known frames and, if they were read with the
// same version, the unknown frames. It also reports whether any frame
// was rendered at all.
func (t *Tag) renderBody() (data []byte, empty bool) {
	v := t.Header.Version

	if t.ExtendedHeader != nil {
		data = t.ExtendedHeader.render(v)
	}
	start := len(data)

	data = append(data, t.Frames.Render(t.Header)...)

	// Unknown frames could be anything, including frames whose layout
	// changed between versions, so they don't survive a version change.
	if t.UnknownFrames.version == v {
		data = append(data, t.UnknownFrames.render(v)...)
	} else if t.UnknownFrames.Len() > 0 {
		Logging.Warn("dropping unknown frames",
			"count", t.UnknownFrames.Len(), "read", t.UnknownFrames.version, "saving", v)
	}

	return data, len(data) == start
}

// Encode writes the tag, header and padding included, to w. The tag is
// upgraded to the version it would be saved as first.
func (t *Tag) Encode(w io.Writer) error {
	t.prepareSave()

	body, _ := t.renderBody()
	size := len(body) + Padding
	if size > maxSyncsafe {
		return ErrTooLarge
	}
	t.Header.Size = size

	return writeMany(w, t.Header.serialize(), body, make([]byte, Padding))
}

func writeMany(w io.Writer, data ...[]byte) error {
	for _, data := range data {
		_, err := w.Write(data)
		if err != nil {
			return err
		}
	}

	return nil
}
