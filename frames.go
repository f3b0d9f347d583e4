package id3

import (
	"fmt"
)

// Frame is implemented by every known frame type. The set of frame
// types is closed; frames this package does not know are kept as
// UnknownFrame.
type Frame interface {
	// ID returns the four character frame id.
	ID() string
	// Size returns the size of the frame body as it was last read.
	Size() int
	Flags() FrameFlags
	// Key disambiguates frames that may appear more than once in a
	// tag, such as comments with different descriptions. It defaults
	// to the frame id.
	Key() string
	// Value returns the primary value of the frame as text.
	Value() string

	header() *FrameHeader
	parse(c frameContext, data []byte) error
	encode(v Version) []byte
}

// FrameFlags are the per-frame flags of ID3v2.3 and ID3v2.4 frames.
// ID3v2.2 frames have no flags.
type FrameFlags struct {
	TagShouldDiscard  bool
	FileShouldDiscard bool
	ReadOnly          bool
	Compressed        bool
	Encrypted         bool
	Grouped           bool
	// Unsynchronisation and HasDataLength only exist in ID3v2.4.
	Unsynchronisation bool
	HasDataLength     bool
}

// FrameHeader is the header shared by all frames.
type FrameHeader struct {
	id    string
	size  int
	flags FrameFlags
}

func (h FrameHeader) ID() string        { return h.id }
func (h FrameHeader) Size() int         { return h.size }
func (h FrameHeader) Flags() FrameFlags { return h.flags }
func (h FrameHeader) Key() string       { return h.id }

func (h *FrameHeader) SetFlags(flags FrameFlags) { h.flags = flags }

func (h *FrameHeader) header() *FrameHeader { return h }

type frameFlagBits struct {
	tagDiscard  uint16
	fileDiscard uint16
	readOnly    uint16
	grouped     uint16
	compressed  uint16
	encrypted   uint16
	unsync      uint16
	dataLength  uint16
}

// frameLayout describes the frame header of one version.
type frameLayout struct {
	idLen    int
	sizeLen  int
	syncsafe bool
	flags    *frameFlagBits
}

var frameLayouts = map[Version]frameLayout{
	Version22: {idLen: 3, sizeLen: 3},
	Version23: {idLen: 4, sizeLen: 4, flags: &frameFlagBits{
		tagDiscard:  0x8000,
		fileDiscard: 0x4000,
		readOnly:    0x2000,
		compressed:  0x0080,
		encrypted:   0x0040,
		grouped:     0x0020,
	}},
	Version24: {idLen: 4, sizeLen: 4, syncsafe: true, flags: &frameFlagBits{
		tagDiscard:  0x4000,
		fileDiscard: 0x2000,
		readOnly:    0x1000,
		grouped:     0x0040,
		compressed:  0x0008,
		encrypted:   0x0004,
		unsync:      0x0002,
		dataLength:  0x0001,
	}},
}

func (l frameLayout) headerSize() int {
	if l.flags == nil {
		return l.idLen + l.sizeLen
	}
	return l.idLen + l.sizeLen + 2
}

func (b *frameFlagBits) decode(raw uint16) FrameFlags {
	is := func(mask uint16) bool { return mask != 0 && raw&mask != 0 }
	return FrameFlags{
		TagShouldDiscard:  is(b.tagDiscard),
		FileShouldDiscard: is(b.fileDiscard),
		ReadOnly:          is(b.readOnly),
		Compressed:        is(b.compressed),
		Encrypted:         is(b.encrypted),
		Grouped:           is(b.grouped),
		Unsynchronisation: is(b.unsync),
		HasDataLength:     is(b.dataLength),
	}
}

func (b *frameFlagBits) encode(f FrameFlags) uint16 {
	var raw uint16
	put := func(v bool, mask uint16) {
		if v {
			raw |= mask
		}
	}
	put(f.TagShouldDiscard, b.tagDiscard)
	put(f.FileShouldDiscard, b.fileDiscard)
	put(f.ReadOnly, b.readOnly)
	put(f.Compressed, b.compressed)
	put(f.Encrypted, b.encrypted)
	put(f.Grouped, b.grouped)
	put(f.Unsynchronisation, b.unsync)
	put(f.HasDataLength, b.dataLength)
	return raw
}

// NotAFrameHeader is returned when the bytes at the current position
// do not form a frame header. This usually means the frame loop ran
// into padding.
type NotAFrameHeader struct {
	ID []byte
}

func (err NotAFrameHeader) Error() string {
	return fmt.Sprintf("Not a frame header (ID = %q)", err.ID)
}

func (err NotAFrameHeader) Is(target error) bool {
	return target == ErrMalformedData
}

// parseFrameHeader parses the frame header at the start of b for
// version v.
func parseFrameHeader(v Version, b []byte) (FrameHeader, error) {
	layout, ok := frameLayouts[v]
	if !ok {
		return FrameHeader{}, UnsupportedVersion{v}
	}
	if len(b) < layout.headerSize() {
		return FrameHeader{}, ErrNotEnoughData
	}

	id := b[:layout.idLen]
	if !validFrameID(id) {
		return FrameHeader{}, NotAFrameHeader{ID: clone(id)}
	}

	var (
		sizeBytes = b[layout.idLen : layout.idLen+layout.sizeLen]
		size      int
		err       error
	)
	switch {
	case layout.sizeLen == 3:
		size = beUint24(sizeBytes)
	case layout.syncsafe:
		size, err = desynchsafeInt(sizeBytes)
		if err != nil {
			return FrameHeader{}, err
		}
	default:
		size = int(beUint32(sizeBytes))
	}

	h := FrameHeader{id: string(id), size: size}
	if layout.flags != nil {
		h.flags = layout.flags.decode(beUint16(b[layout.idLen+layout.sizeLen:]))
	}

	return h, nil
}

func validFrameID(id []byte) bool {
	for _, b := range id {
		// Allow 0-9
		if b >= '0' && b <= '9' {
			continue
		}

		// Allow A-Z
		if b >= 'A' && b <= 'Z' {
			continue
		}

		return false
	}

	return true
}

// serialize renders the frame header for version v with a body of
// size bytes.
func (h FrameHeader) serialize(v Version, size int) []byte {
	layout := frameLayouts[v]

	out := make([]byte, 0, layout.headerSize())
	out = append(out, h.id...)

	switch {
	case layout.sizeLen == 3:
		out = append(out, byte(size>>16), byte(size>>8), byte(size))
	case layout.syncsafe:
		out = append(out, synchsafeBytes(size)...)
	default:
		out = append(out, intToBytes(uint32(size))...)
	}

	if layout.flags != nil {
		raw := layout.flags.encode(h.flags)
		out = append(out, byte(raw>>8), byte(raw))
	}

	return out
}

// plain returns the flags with every body transformation
// cleared. Frames are always written uncompressed and in the clear.
func (f FrameFlags) plain() FrameFlags {
	return FrameFlags{
		TagShouldDiscard:  f.TagShouldDiscard,
		FileShouldDiscard: f.FileShouldDiscard,
		ReadOnly:          f.ReadOnly,
	}
}

// frameContext carries the state that frame parsing needs beyond the
// frame body.
type frameContext struct {
	header TagHeader
	depth  int
}

func (c frameContext) nested() frameContext {
	return frameContext{header: c.header, depth: c.depth + 1}
}

// frameTable maps frame ids to constructors for the frame types that
// aren't covered by the text and URL frame prefixes.
var frameTable = map[string]func(FrameHeader) Frame{
	"TXXX": func(h FrameHeader) Frame { return &UserTextFrame{FrameHeader: h} },
	"WXXX": func(h FrameHeader) Frame { return &UserURLFrame{FrameHeader: h} },
	"TIPL": func(h FrameHeader) Frame { return &CreditsFrame{FrameHeader: h} },
	"TMCL": func(h FrameHeader) Frame { return &CreditsFrame{FrameHeader: h} },
	"IPLS": func(h FrameHeader) Frame { return &CreditsFrame{FrameHeader: h} },
	"COMM": func(h FrameHeader) Frame { return &CommentsFrame{FrameHeader: h} },
	"USLT": func(h FrameHeader) Frame { return &UnsyncLyricsFrame{FrameHeader: h} },
	"SYLT": func(h FrameHeader) Frame { return &SyncedLyricsFrame{FrameHeader: h} },
	"ETCO": func(h FrameHeader) Frame { return &EventTimingCodesFrame{FrameHeader: h} },
	"OWNE": func(h FrameHeader) Frame { return &OwnershipFrame{FrameHeader: h} },
	"USER": func(h FrameHeader) Frame { return &TermsOfUseFrame{FrameHeader: h} },
	"CHAP": func(h FrameHeader) Frame { return &ChapterFrame{FrameHeader: h} },
	"CTOC": func(h FrameHeader) Frame { return &TableOfContentsFrame{FrameHeader: h} },
	"GEOB": func(h FrameHeader) Frame { return &GeneralObjectFrame{FrameHeader: h} },
	"APIC": func(h FrameHeader) Frame { return &PictureFrame{FrameHeader: h} },
	"PRIV": func(h FrameHeader) Frame { return &PrivateFrame{FrameHeader: h} },
	"UFID": func(h FrameHeader) Frame { return &FileIDFrame{FrameHeader: h} },
	"PCNT": func(h FrameHeader) Frame { return &PlayCounterFrame{FrameHeader: h} },
	"POPM": func(h FrameHeader) Frame { return &PopularimeterFrame{FrameHeader: h} },
	"MCDI": func(h FrameHeader) Frame { return &MusicCDIDFrame{FrameHeader: h} },
	"ASPI": func(h FrameHeader) Frame { return &AudioSeekPointFrame{FrameHeader: h} },
}

// newFrame returns an empty frame for the header's id, or nil if the
// id isn't known.
func newFrame(h FrameHeader) Frame {
	if ctor, ok := frameTable[h.id]; ok {
		return ctor(h)
	}

	switch h.id[0] {
	case 'T':
		return &TextFrame{FrameHeader: h}
	case 'W':
		return &URLFrame{FrameHeader: h}
	}

	return nil
}
