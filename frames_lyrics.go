package id3

import (
	"bytes"
	"fmt"
	"strings"
)

// TimestampFormat is the unit of the timestamps in ETCO and SYLT frames.
type TimestampFormat byte

const (
	TimestampMPEGFrames TimestampFormat = 0x01
	TimestampMillis     TimestampFormat = 0x02
)

func (f TimestampFormat) String() string {
	switch f {
	case TimestampMPEGFrames:
		return "MPEG frames"
	case TimestampMillis:
		return "milliseconds"
	}
	return fmt.Sprintf("unknown (%#02x)", byte(f))
}

// SyncedContentType describes what a SYLT frame contains. Values
// outside the table are kept as-is.
type SyncedContentType byte

const (
	ContentOther SyncedContentType = iota
	ContentLyrics
	ContentTextTranscription
	ContentMovement
	ContentEvents
	ContentChord
	ContentTrivia
	ContentWebpageURLs
	ContentImageURLs
)

var syncedContentTypes = map[SyncedContentType]string{
	ContentOther:             "Other",
	ContentLyrics:            "Lyrics",
	ContentTextTranscription: "Text transcription",
	ContentMovement:          "Movement/part name",
	ContentEvents:            "Events",
	ContentChord:             "Chord",
	ContentTrivia:            "Trivia",
	ContentWebpageURLs:       "URLs to webpages",
	ContentImageURLs:         "URLs to images",
}

func (t SyncedContentType) String() string {
	if s, ok := syncedContentTypes[t]; ok {
		return s
	}
	return "Reserved"
}

// CommentsFrame is a COMM frame.
type CommentsFrame struct {
	FrameHeader
	Encoding    Encoding
	Language    string
	Description string
	Text        string
}

func NewCommentsFrame(lang, desc, text string) *CommentsFrame {
	return &CommentsFrame{
		FrameHeader: FrameHeader{id: "COMM"},
		Encoding:    UTF8,
		Language:    lang,
		Description: desc,
		Text:        text,
	}
}

func (f *CommentsFrame) Key() string   { return f.id + ":" + f.Description + ":" + f.Language }
func (f *CommentsFrame) Value() string { return f.Text }

func (f *CommentsFrame) parse(_ frameContext, data []byte) error {
	enc, lang, desc, text, err := parseLangDescText(data)
	if err != nil {
		return err
	}
	f.Encoding, f.Language, f.Description, f.Text = enc, lang, desc, text
	return nil
}

func (f *CommentsFrame) encode(v Version) []byte {
	return encodeLangDescText(v, f.Encoding, f.Language, f.Description, f.Text)
}

// UnsyncLyricsFrame is a USLT frame.
type UnsyncLyricsFrame struct {
	FrameHeader
	Encoding    Encoding
	Language    string
	Description string
	Lyrics      string
}

func (f *UnsyncLyricsFrame) Key() string   { return f.id + ":" + f.Description + ":" + f.Language }
func (f *UnsyncLyricsFrame) Value() string { return f.Lyrics }

func (f *UnsyncLyricsFrame) parse(_ frameContext, data []byte) error {
	enc, lang, desc, text, err := parseLangDescText(data)
	if err != nil {
		return err
	}
	f.Encoding, f.Language, f.Description, f.Lyrics = enc, lang, desc, text
	return nil
}

func (f *UnsyncLyricsFrame) encode(v Version) []byte {
	return encodeLangDescText(v, f.Encoding, f.Language, f.Description, f.Lyrics)
}

// parseLangDescText parses the layout shared by COMM and USLT: an
// encoding, a three letter language, a terminated description and the
// text.
func parseLangDescText(data []byte) (enc Encoding, lang, desc, text string, err error) {
	if len(data) < 1 {
		return 0, "", "", "", ErrNotEnoughData
	}
	enc, err = parseEncoding(data[0])
	if err != nil {
		return 0, "", "", "", err
	}
	if len(data) < enc.nulWidth()+4 {
		return 0, "", "", "", ErrNotEnoughData
	}

	lang = decodeString(ISO88591, data[1:4])
	desc, n := decodeTerminated(enc, data[4:])
	text, _ = decodeTerminated(enc, data[4+n:])

	return enc, lang, desc, text, nil
}

func encodeLangDescText(v Version, enc Encoding, lang, desc, text string) []byte {
	enc = enc.fit(v, desc, text)
	return concat([]byte{byte(enc)}, language(lang), encodeTerminated(enc, desc), encodeString(enc, text))
}

// language returns lang as exactly three bytes.
func language(lang string) []byte {
	b := encodeString(ISO88591, lang)
	if len(b) >= 3 {
		return b[:3]
	}
	return append(b, bytes.Repeat([]byte{' '}, 3-len(b))...)
}

// SyncedText is a single timed entry of a SYLT frame.
type SyncedText struct {
	Text      string
	Timestamp uint32
}

// SyncedLyricsFrame is a SYLT frame.
type SyncedLyricsFrame struct {
	FrameHeader
	Encoding    Encoding
	Language    string
	Format      TimestampFormat
	ContentType SyncedContentType
	Description string
	Lyrics      []SyncedText
}

func (f *SyncedLyricsFrame) Key() string { return f.id + ":" + f.Description + ":" + f.Language }

func (f *SyncedLyricsFrame) Value() string {
	lines := make([]string, len(f.Lyrics))
	for i, l := range f.Lyrics {
		lines[i] = strings.TrimSuffix(l.Text, "\n")
	}
	return strings.Join(lines, "\n")
}

func (f *SyncedLyricsFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}
	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}
	if len(data) < enc.nulWidth()+6 {
		return ErrNotEnoughData
	}

	f.Encoding = enc
	f.Language = decodeString(ISO88591, data[1:4])
	f.Format = TimestampFormat(data[4])
	f.ContentType = SyncedContentType(data[5])

	desc, n := decodeTerminated(enc, data[6:])
	f.Description = desc

	// Some taggers only write a BOM for the description. Remember its
	// byte order and reuse it for lyrics that don't have their own.
	implicit := enc
	if enc == UTF16BOM {
		switch {
		case bytes.HasPrefix(data[6:], bomLE):
			implicit = utf16LE
		case bytes.HasPrefix(data[6:], bomBE):
			implicit = UTF16BE
		}
	}

	f.Lyrics = nil
	pos := 6 + n
	for pos < len(data) {
		lyricEnc := enc
		if enc == UTF16BOM && !bytes.HasPrefix(data[pos:], bomLE) && !bytes.HasPrefix(data[pos:], bomBE) {
			lyricEnc = implicit
		}

		text, n := decodeTerminated(lyricEnc, data[pos:])
		pos += n
		if pos+4 > len(data) {
			break
		}

		f.Lyrics = append(f.Lyrics, SyncedText{Text: text, Timestamp: beUint32(data[pos:])})
		pos += 4
	}

	return nil
}

func (f *SyncedLyricsFrame) encode(v Version) []byte {
	all := []string{f.Description}
	for _, l := range f.Lyrics {
		all = append(all, l.Text)
	}
	enc := f.Encoding.fit(v, all...)

	out := concat(
		[]byte{byte(enc)},
		language(f.Language),
		[]byte{byte(f.Format), byte(f.ContentType)},
		encodeTerminated(enc, f.Description),
	)
	for _, l := range f.Lyrics {
		out = append(out, encodeTerminated(enc, l.Text)...)
		out = append(out, intToBytes(l.Timestamp)...)
	}
	return out
}
