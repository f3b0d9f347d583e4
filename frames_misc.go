package id3

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// GeneralObjectFrame is a GEOB frame, an arbitrary file embedded in
// the tag.
type GeneralObjectFrame struct {
	FrameHeader
	Encoding    Encoding
	MIMEType    string
	Filename    string
	Description string
	Data        []byte
}

func (f *GeneralObjectFrame) Key() string { return f.id + ":" + f.Description }

func (f *GeneralObjectFrame) Value() string {
	return fmt.Sprintf("%s (%s, %d bytes)", f.Filename, f.MIMEType, len(f.Data))
}

func (f *GeneralObjectFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}
	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}

	pos := 1
	mime, n := decodeTerminated(ISO88591, data[pos:])
	pos += n
	filename, n := decodeTerminated(enc, data[pos:])
	pos += n
	desc, n := decodeTerminated(enc, data[pos:])
	pos += n

	f.Encoding = enc
	f.MIMEType = mime
	f.Filename = filename
	f.Description = desc
	f.Data = clone(data[pos:])

	return nil
}

func (f *GeneralObjectFrame) encode(v Version) []byte {
	enc := f.Encoding.fit(v, f.Filename, f.Description)
	return concat(
		[]byte{byte(enc)},
		encodeTerminated(ISO88591, f.MIMEType),
		encodeTerminated(enc, f.Filename),
		encodeTerminated(enc, f.Description),
		f.Data,
	)
}

// PictureType is the type of an attached picture.
type PictureType byte

const (
	PictureOther      PictureType = 0x00
	PictureFileIcon   PictureType = 0x01
	PictureFrontCover PictureType = 0x03
	PictureBackCover  PictureType = 0x04
	PictureArtist     PictureType = 0x08
)

func (t PictureType) String() string {
	if int(t) < len(PictureTypes) {
		return PictureTypes[t]
	}
	return "Reserved"
}

// PictureFrame is an APIC frame. ID3v2.2 PIC frames are read into a
// PictureFrame as well.
type PictureFrame struct {
	FrameHeader
	Encoding    Encoding
	MIMEType    string
	Type        PictureType
	Description string
	Data        []byte
}

func NewPictureFrame(mime string, typ PictureType, desc string, data []byte) *PictureFrame {
	return &PictureFrame{
		FrameHeader: FrameHeader{id: "APIC"},
		Encoding:    UTF8,
		MIMEType:    mime,
		Type:        typ,
		Description: desc,
		Data:        data,
	}
}

func (f *PictureFrame) Key() string { return f.id + ":" + f.Description }

func (f *PictureFrame) Value() string {
	return fmt.Sprintf("%s (%s, %d bytes)", f.Type, f.MIMEType, len(f.Data))
}

func (f *PictureFrame) parse(c frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}
	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}

	pos := 1
	var mime string
	if c.header.Version == Version22 {
		// PIC frames have a three character image format instead of a
		// MIME type.
		if len(data) < 5 {
			return ErrNotEnoughData
		}
		mime = pictureFormatToMIME(decodeString(ISO88591, data[1:4]))
		pos = 4
	} else {
		var n int
		mime, n = decodeTerminated(ISO88591, data[pos:])
		pos += n
	}
	if pos >= len(data) {
		return ErrNotEnoughData
	}

	f.Encoding = enc
	f.MIMEType = mime
	f.Type = PictureType(data[pos])
	pos++

	desc, n := decodeTerminated(enc, data[pos:])
	f.Description = desc
	f.Data = clone(data[pos+n:])

	return nil
}

func (f *PictureFrame) encode(v Version) []byte {
	enc := f.Encoding.fit(v, f.Description)
	return concat(
		[]byte{byte(enc)},
		encodeTerminated(ISO88591, f.MIMEType),
		[]byte{byte(f.Type)},
		encodeTerminated(enc, f.Description),
		f.Data,
	)
}

func pictureFormatToMIME(format string) string {
	switch strings.ToUpper(format) {
	case "JPG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	case "-->":
		// the data is a URL
		return format
	}
	return "image/" + strings.ToLower(format)
}

// PrivateFrame is a PRIV frame.
type PrivateFrame struct {
	FrameHeader
	Owner string
	Data  []byte
}

func (f *PrivateFrame) Key() string   { return f.id + ":" + f.Owner }
func (f *PrivateFrame) Value() string { return hex.EncodeToString(f.Data) }

func (f *PrivateFrame) parse(_ frameContext, data []byte) error {
	owner, n := decodeTerminated(ISO88591, data)
	f.Owner = owner
	f.Data = clone(data[n:])
	return nil
}

func (f *PrivateFrame) encode(Version) []byte {
	return concat(encodeTerminated(ISO88591, f.Owner), f.Data)
}

// FileIDFrame is a UFID frame.
type FileIDFrame struct {
	FrameHeader
	Owner      string
	Identifier []byte
}

func (f *FileIDFrame) Key() string   { return f.id + ":" + f.Owner }
func (f *FileIDFrame) Value() string { return string(f.Identifier) }

func (f *FileIDFrame) parse(_ frameContext, data []byte) error {
	owner, n := decodeTerminated(ISO88591, data)
	if len(data)-n > 64 {
		return ErrMalformedData
	}
	f.Owner = owner
	f.Identifier = clone(data[n:])
	return nil
}

func (f *FileIDFrame) encode(Version) []byte {
	return concat(encodeTerminated(ISO88591, f.Owner), f.Identifier)
}

// PlayCounterFrame is a PCNT frame.
type PlayCounterFrame struct {
	FrameHeader
	Count uint64
}

func (f *PlayCounterFrame) Value() string { return strconv.FormatUint(f.Count, 10) }

func (f *PlayCounterFrame) parse(_ frameContext, data []byte) error {
	count, err := parseCounter(data)
	if err != nil {
		return err
	}
	f.Count = count
	return nil
}

func (f *PlayCounterFrame) encode(Version) []byte {
	return encodeCounter(f.Count)
}

// PopularimeterFrame is a POPM frame.
type PopularimeterFrame struct {
	FrameHeader
	Email string
	// Rating ranges from 1 (worst) to 255 (best). 0 means unknown.
	Rating  byte
	Counter uint64
}

func (f *PopularimeterFrame) Key() string { return f.id + ":" + f.Email }

func (f *PopularimeterFrame) Value() string {
	return strconv.Itoa(int(f.Rating))
}

func (f *PopularimeterFrame) parse(_ frameContext, data []byte) error {
	email, n := decodeTerminated(ISO88591, data)
	if n >= len(data) {
		return ErrNotEnoughData
	}

	f.Email = email
	f.Rating = data[n]
	f.Counter = 0

	// The counter may be omitted.
	if rest := data[n+1:]; len(rest) > 0 {
		count, err := parseCounter(rest)
		if err != nil {
			return err
		}
		f.Counter = count
	}

	return nil
}

func (f *PopularimeterFrame) encode(Version) []byte {
	out := concat(encodeTerminated(ISO88591, f.Email), []byte{f.Rating})
	if f.Counter > 0 {
		out = append(out, encodeCounter(f.Counter)...)
	}
	return out
}

// parseCounter parses a big endian counter of at least four bytes.
// Counters too large for a uint64 are rejected.
func parseCounter(data []byte) (uint64, error) {
	if len(data) < 4 {
		return 0, ErrNotEnoughData
	}
	if len(data) > 8 {
		return 0, ErrMalformedData
	}

	var count uint64
	for _, b := range data {
		count = count<<8 | uint64(b)
	}
	return count, nil
}

func encodeCounter(count uint64) []byte {
	if count <= 0xFFFFFFFF {
		return intToBytes(uint32(count))
	}

	b := binary.BigEndian.AppendUint64(nil, count)
	for len(b) > 4 && b[0] == 0 {
		b = b[1:]
	}
	return b
}

// AudioSeekPointFrame is an ASPI frame, an index of seek points into
// the audio data. It only exists in ID3v2.4.
type AudioSeekPointFrame struct {
	FrameHeader
	// Start and Length describe the indexed part of the audio data in
	// bytes from the start of the file.
	Start  uint32
	Length uint32
	// BitsPerPoint is either 8 or 16.
	BitsPerPoint byte
	Points       []uint16
}

func (f *AudioSeekPointFrame) Value() string {
	return fmt.Sprintf("%d seek points", len(f.Points))
}

func (f *AudioSeekPointFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 11 {
		return ErrNotEnoughData
	}

	count := int(beUint16(data[8:]))
	bits := data[10]
	if bits != 8 && bits != 16 {
		return ErrMalformedData
	}
	width := int(bits / 8)
	if len(data) < 11+count*width {
		return ErrNotEnoughData
	}

	f.Start = beUint32(data)
	f.Length = beUint32(data[4:])
	f.BitsPerPoint = bits
	f.Points = make([]uint16, count)
	for i := range f.Points {
		pos := 11 + i*width
		if width == 1 {
			f.Points[i] = uint16(data[pos])
		} else {
			f.Points[i] = beUint16(data[pos:])
		}
	}

	return nil
}

func (f *AudioSeekPointFrame) encode(Version) []byte {
	bits := f.BitsPerPoint
	if bits != 8 {
		bits = 16
	}

	out := concat(intToBytes(f.Start), intToBytes(f.Length))
	out = append(out, byte(len(f.Points)>>8), byte(len(f.Points)), bits)
	for _, p := range f.Points {
		if bits == 8 {
			out = append(out, byte(p))
		} else {
			out = append(out, byte(p>>8), byte(p))
		}
	}
	return out
}

// MusicCDIDFrame is an MCDI frame. Data is the table of contents of
// the CD, as read from it.
type MusicCDIDFrame struct {
	FrameHeader
	Data []byte
}

func (f *MusicCDIDFrame) Value() string { return hex.EncodeToString(f.Data) }

func (f *MusicCDIDFrame) parse(_ frameContext, data []byte) error {
	f.Data = clone(data)
	return nil
}

func (f *MusicCDIDFrame) encode(Version) []byte {
	return f.Data
}
