package id3

import (
	"bytes"
	"fmt"
)

const tagHeaderSize = 10

var Magic = [3]byte{0x49, 0x44, 0x33}

// Version is the major version of an ID3v2 tag.
type Version byte

const (
	Version22 Version = 2
	Version23 Version = 3
	Version24 Version = 4
)

func (v Version) String() string {
	return fmt.Sprintf("ID3v2.%d", byte(v))
}

// saveVersion returns the version a tag of version v is written as.
// ID3v2.2 can be read but never written.
func (v Version) saveVersion() Version {
	if v >= Version24 {
		return Version24
	}
	return Version23
}

// HeaderFlags are the flags of the tag header. Their bit positions
// depend on the version, see tagLayouts.
type HeaderFlags struct {
	Unsynchronisation bool
	ExtendedHeader    bool
	Experimental      bool
	Footer            bool
}

// tagLayout holds the bit positions of the tag header flags for one
// version. A zero mask means the version has no such flag.
type tagLayout struct {
	unsync       byte
	extended     byte
	experimental byte
	footer       byte
	// unsupported bits make the whole tag unreadable
	unsupported byte
}

var tagLayouts = map[Version]tagLayout{
	// 0x40 is the never-specified v2.2 compression scheme.
	Version22: {unsync: 0x80, unsupported: 0x40},
	Version23: {unsync: 0x80, extended: 0x40, experimental: 0x20},
	Version24: {unsync: 0x80, extended: 0x40, experimental: 0x20, footer: 0x10},
}

// TagHeader is the fixed 10 byte header at the start of a tag.
type TagHeader struct {
	Version Version
	Minor   byte
	Flags   HeaderFlags
	// Size is the size of the tag excluding this header.
	Size int
}

func newTagHeader(v Version) TagHeader {
	return TagHeader{Version: v}
}

// parseTagHeader parses a tag header. A missing magic is reported as
// ErrMalformedData; Open turns it into ErrNotFound.
func parseTagHeader(b []byte) (TagHeader, error) {
	if len(b) < tagHeaderSize {
		return TagHeader{}, ErrNotEnoughData
	}

	var magic [3]byte
	copy(magic[:], b)
	if magic != Magic {
		return TagHeader{}, notATagHeader{magic}
	}

	version := Version(b[3])
	layout, ok := tagLayouts[version]
	if !ok || b[4] == 0xFF {
		return TagHeader{}, UnsupportedVersion{version}
	}
	if b[5]&layout.unsupported != 0 {
		return TagHeader{}, ErrUnsupported
	}

	size, err := desynchsafeInt(b[6:10])
	if err != nil {
		return TagHeader{}, err
	}

	return TagHeader{
		Version: version,
		Minor:   b[4],
		Flags: HeaderFlags{
			Unsynchronisation: has(b[5], layout.unsync),
			ExtendedHeader:    has(b[5], layout.extended),
			Experimental:      has(b[5], layout.experimental),
			Footer:            has(b[5], layout.footer),
		},
		Size: size,
	}, nil
}

func (h TagHeader) serialize() []byte {
	layout := tagLayouts[h.Version]

	var flags byte
	flags |= set(h.Flags.Unsynchronisation, layout.unsync)
	flags |= set(h.Flags.ExtendedHeader, layout.extended)
	flags |= set(h.Flags.Experimental, layout.experimental)
	flags |= set(h.Flags.Footer, layout.footer)

	return concat(Magic[:], []byte{byte(h.Version), h.Minor, flags}, synchsafeBytes(h.Size))
}

func has(b, mask byte) bool {
	return mask != 0 && b&mask != 0
}

func set(v bool, mask byte) byte {
	if v {
		return mask
	}
	return 0
}

// Extended header flag bits.
const (
	extCRC23 = 0x80 // first flag byte, v2.3

	extUpdate24       = 0x40
	extCRC24          = 0x20
	extRestrictions24 = 0x10
)

// ExtendedHeader is the optional block between the tag header and the
// first frame. Its layout differs between ID3v2.3 and ID3v2.4; the raw
// data after the size field is kept as-is.
type ExtendedHeader struct {
	version Version
	data    []byte
}

// parseExtendedHeader parses the extended header at the start of b.
func parseExtendedHeader(v Version, b []byte) (*ExtendedHeader, error) {
	if len(b) < 4 {
		return nil, ErrNotEnoughData
	}

	switch v {
	case Version23:
		size := int(beUint32(b))
		if size < 6 {
			return nil, ErrMalformedData
		}
		if 4+size > len(b) {
			return nil, ErrNotEnoughData
		}
		return &ExtendedHeader{version: v, data: clone(b[4 : 4+size])}, nil
	case Version24:
		size, err := desynchsafeInt(b)
		if err != nil {
			return nil, err
		}
		if size < 6 {
			return nil, ErrMalformedData
		}
		if size > len(b) {
			return nil, ErrNotEnoughData
		}
		data := b[4:size]
		if data[0] != 1 {
			// the number of flag bytes is always one
			return nil, ErrMalformedData
		}
		if _, err := extFields24(data); err != nil {
			return nil, err
		}
		return &ExtendedHeader{version: v, data: clone(data)}, nil
	}

	return nil, ErrUnsupported
}

// Size returns the size the extended header declares for itself.
// ID3v2.3 excludes the size field, ID3v2.4 includes it.
func (e *ExtendedHeader) Size() int {
	if e.version == Version24 {
		return len(e.data) + 4
	}
	return len(e.data)
}

// Data returns the extended header after its size field.
func (e *ExtendedHeader) Data() []byte { return e.data }

func (e *ExtendedHeader) Version() Version { return e.version }

// extFlags24 lists the v2.4 extended header flags in the order their
// data follows the flag byte.
var extFlags24 = []byte{extUpdate24, extCRC24, extRestrictions24}

// extFields24 splits the data of a v2.4 extended header into the
// length-prefixed field of each set flag. Fields keep their length
// byte.
func extFields24(data []byte) (map[byte][]byte, error) {
	if len(data) < 2 {
		return nil, ErrNotEnoughData
	}

	fields := make(map[byte][]byte)
	pos := 2
	for _, flag := range extFlags24 {
		if data[1]&flag == 0 {
			continue
		}
		if pos >= len(data) || pos+1+int(data[pos]) > len(data) {
			return nil, ErrNotEnoughData
		}
		end := pos + 1 + int(data[pos])
		fields[flag] = data[pos:end]
		pos = end
	}
	return fields, nil
}

// IsUpdate reports whether a v2.4 extended header marks the tag as an
// update of an earlier tag.
func (e *ExtendedHeader) IsUpdate() bool {
	return e.version == Version24 && len(e.data) > 1 && e.data[1]&extUpdate24 != 0
}

// HasCRC reports whether the extended header carries a CRC.
func (e *ExtendedHeader) HasCRC() bool {
	switch e.version {
	case Version23:
		return len(e.data) > 0 && e.data[0]&extCRC23 != 0
	case Version24:
		return len(e.data) > 1 && e.data[1]&extCRC24 != 0
	}
	return false
}

// Restrictions returns the v2.4 tag restrictions byte, if present.
func (e *ExtendedHeader) Restrictions() (byte, bool) {
	if e.version != Version24 {
		return 0, false
	}
	fields, err := extFields24(e.data)
	if err != nil {
		return 0, false
	}
	f := fields[extRestrictions24]
	if len(f) < 2 {
		return 0, false
	}
	return f[1], true
}

// update converts the extended header to the layout of version v.
// Restrictions survive a round trip within v2.4 only; a CRC never
// survives a conversion since the body it covers is re-rendered.
func (e *ExtendedHeader) update(v Version) {
	v = v.saveVersion()
	if e.version == v {
		return
	}

	switch v {
	case Version23:
		e.data = []byte{0, 0, 0, 0, 0, 0}
	case Version24:
		e.data = []byte{1, 0}
	}
	e.version = v
}

// stripCRC removes a stale CRC from the extended header.
func (e *ExtendedHeader) stripCRC() {
	if !e.HasCRC() {
		return
	}

	switch e.version {
	case Version23:
		if len(e.data) < 6 {
			e.data = []byte{0, 0, 0, 0, 0, 0}
			return
		}
		e.data = concat([]byte{e.data[0] &^ extCRC23, e.data[1]}, e.data[2:6])
	case Version24:
		flags := e.data[1] &^ extCRC24
		fields, err := extFields24(e.data)
		if err != nil {
			// the CRC can't be located; keep only the flags without data
			e.data = []byte{1, flags &^ (extUpdate24 | extRestrictions24)}
			return
		}
		out := []byte{1, flags}
		for _, flag := range extFlags24 {
			if flag != extCRC24 {
				out = append(out, fields[flag]...)
			}
		}
		e.data = out
	}
}

// render serializes the extended header for version v.
func (e *ExtendedHeader) render(v Version) []byte {
	e.update(v)

	if e.version == Version24 {
		return concat(synchsafeBytes(len(e.data)+4), e.data)
	}
	return concat(intToBytes(uint32(len(e.data))), e.data)
}

func clone(b []byte) []byte {
	return bytes.Clone(b)
}
