package id3

import (
	"sort"
	"strings"
)

// TextFrame is one of the T??? text information frames. A frame can
// hold several values; ID3v2.4 separates them with NUL bytes,
// ID3v2.3 with slashes.
type TextFrame struct {
	FrameHeader
	Encoding Encoding
	Text     []string
}

func NewTextFrame(id string, text ...string) *TextFrame {
	return &TextFrame{
		FrameHeader: FrameHeader{id: id},
		Encoding:    UTF8,
		Text:        text,
	}
}

func (f *TextFrame) Value() string {
	return strings.Join(f.Text, ", ")
}

func (f *TextFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}

	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}
	f.Encoding = enc
	f.Text = splitText(decodeString(enc, data[1:]))

	return nil
}

func (f *TextFrame) encode(v Version) []byte {
	enc := f.Encoding.fit(v, f.Text...)
	return append([]byte{byte(enc)}, encodeText(enc, v, f.Text)...)
}

// UserTextFrame is a TXXX frame.
type UserTextFrame struct {
	FrameHeader
	Encoding    Encoding
	Description string
	Text        []string
}

func NewUserTextFrame(desc string, text ...string) *UserTextFrame {
	return &UserTextFrame{
		FrameHeader: FrameHeader{id: "TXXX"},
		Encoding:    UTF8,
		Description: desc,
		Text:        text,
	}
}

func (f *UserTextFrame) Key() string   { return f.id + ":" + f.Description }
func (f *UserTextFrame) Value() string { return strings.Join(f.Text, ", ") }

func (f *UserTextFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}

	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}
	desc, n := decodeTerminated(enc, data[1:])

	f.Encoding = enc
	f.Description = desc
	f.Text = splitText(decodeString(enc, data[1+n:]))

	return nil
}

func (f *UserTextFrame) encode(v Version) []byte {
	enc := f.Encoding.fit(v, append([]string{f.Description}, f.Text...)...)
	return concat([]byte{byte(enc)}, encodeTerminated(enc, f.Description), encodeText(enc, v, f.Text))
}

// CreditsFrame is a TIPL, TMCL or IPLS frame: a mapping from roles or
// instruments to the people involved.
type CreditsFrame struct {
	FrameHeader
	Encoding Encoding
	People   map[string]string
}

func NewCreditsFrame(id string) *CreditsFrame {
	return &CreditsFrame{
		FrameHeader: FrameHeader{id: id},
		Encoding:    UTF8,
		People:      make(map[string]string),
	}
}

// IsMusicianCredits reports whether the frame lists instruments rather
// than roles.
func (f *CreditsFrame) IsMusicianCredits() bool { return f.id == "TMCL" }

func (f *CreditsFrame) Value() string {
	var parts []string
	for _, role := range f.roles() {
		parts = append(parts, role+": "+f.People[role])
	}
	return strings.Join(parts, ", ")
}

func (f *CreditsFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}

	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}
	f.Encoding = enc
	f.People = make(map[string]string)

	pos := 1
	for pos < len(data) {
		role, n := decodeTerminated(enc, data[pos:])
		pos += n

		people, n := decodeTerminated(enc, data[pos:])
		pos += n

		if role != "" {
			f.People[role] = people
		}
	}

	return nil
}

func (f *CreditsFrame) encode(v Version) []byte {
	roles := f.roles()

	all := make([]string, 0, 2*len(roles))
	for _, role := range roles {
		all = append(all, role, f.People[role])
	}
	enc := f.Encoding.fit(v, all...)

	out := []byte{byte(enc)}
	for _, s := range all {
		out = append(out, encodeTerminated(enc, s)...)
	}
	return out
}

func (f *CreditsFrame) roles() []string {
	roles := make([]string, 0, len(f.People))
	for role := range f.People {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// URLFrame is one of the W??? URL link frames.
type URLFrame struct {
	FrameHeader
	URL string
}

func NewURLFrame(id, url string) *URLFrame {
	return &URLFrame{FrameHeader: FrameHeader{id: id}, URL: url}
}

func (f *URLFrame) Value() string { return f.URL }

func (f *URLFrame) parse(_ frameContext, data []byte) error {
	f.URL, _ = decodeTerminated(ISO88591, data)
	return nil
}

func (f *URLFrame) encode(Version) []byte {
	return encodeString(ISO88591, f.URL)
}

// UserURLFrame is a WXXX frame.
type UserURLFrame struct {
	FrameHeader
	Encoding    Encoding
	Description string
	URL         string
}

func (f *UserURLFrame) Key() string   { return f.id + ":" + f.Description }
func (f *UserURLFrame) Value() string { return f.URL }

func (f *UserURLFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}

	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}
	desc, n := decodeTerminated(enc, data[1:])

	f.Encoding = enc
	f.Description = desc
	f.URL, _ = decodeTerminated(ISO88591, data[1+n:])

	return nil
}

func (f *UserURLFrame) encode(v Version) []byte {
	enc := f.Encoding.fit(v, f.Description)
	return concat([]byte{byte(enc)}, encodeTerminated(enc, f.Description), encodeString(ISO88591, f.URL))
}

// splitText splits a decoded text frame into its values.
func splitText(s string) []string {
	s = strings.TrimSuffix(s, "\x00")
	parts := strings.Split(s, "\x00")
	for i, p := range parts {
		// every value of a UTF-16 frame carries its own BOM
		parts[i] = strings.TrimPrefix(p, "\ufeff")
	}
	return parts
}

// encodeText encodes the values of a text frame without a trailing
// terminator.
func encodeText(enc Encoding, v Version, text []string) []byte {
	if v < Version24 {
		return encodeString(enc, strings.Join(text, "/"))
	}

	var out []byte
	for i, s := range text {
		if i > 0 {
			out = append(out, enc.nul()...)
		}
		out = append(out, encodeString(enc, s)...)
	}
	return out
}
