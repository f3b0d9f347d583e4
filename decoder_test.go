package id3

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"testing"
)

func tag23(flags byte, body []byte) []byte {
	return concat([]byte{'I', 'D', '3', 3, 0, flags}, synchsafeBytes(len(body)), body)
}

func tag24(flags byte, body []byte) []byte {
	return concat([]byte{'I', 'D', '3', 4, 0, flags}, synchsafeBytes(len(body)), body)
}

func mustParse(t *testing.T, data []byte) *Tag {
	t.Helper()

	tag, err := NewDecoder(bytes.NewReader(data)).Parse()
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	return tag
}

func TestCheck(t *testing.T) {
	tests := []struct {
		in  []byte
		out bool
	}{
		{[]byte("ID3\x04\x00"), true},
		{[]byte("fLaC"), false},
		{[]byte("ID"), false},
	}

	for _, test := range tests {
		r := bufio.NewReader(bytes.NewReader(test.in))
		ok, err := Check(r)
		if err != nil {
			t.Fatal(err)
		}
		if ok != test.out {
			t.Errorf("Check(%q): Expected: %t - Got: %t", test.in, test.out, ok)
		}
		if r.Buffered() != len(test.in) {
			t.Errorf("Check consumed data")
		}
	}
}

func TestParse(t *testing.T) {
	body := concat(
		frame24("TIT2", []byte("\x03Song")),
		frame24("TPE1", []byte("\x03Artist")),
		// an empty frame is dropped
		frame24("TALB", nil),
		frame24("XYZW", []byte{1, 2, 3}),
		// a frame with an invalid encoding is dropped
		frame24("TCOM", []byte{0x09, 'x'}),
		frame24("TCON", []byte("\x03Rock")),
		make([]byte, 64),
	)

	tag := mustParse(t, tag24(0, body))

	if tag.Version() != Version24 {
		t.Errorf("Expected: %s - Got: %s", Version24, tag.Version())
	}
	want := []string{"TIT2", "TPE1", "TCON"}
	if keys := tag.Frames.Keys(); !equalStrings(keys, want) {
		t.Errorf("Expected: %v - Got: %v", want, keys)
	}
	if tag.Title() != "Song" || tag.Artist() != "Artist" {
		t.Errorf("unexpected tag %v", tag.Frames.Keys())
	}

	unknown := tag.UnknownFrames.Frames()
	if len(unknown) != 1 || unknown[0].ID() != "XYZW" || !bytes.Equal(unknown[0].Data, []byte{1, 2, 3}) {
		t.Errorf("unexpected unknown frames %+v", unknown)
	}
	if tag.UnknownFrames.Version() != Version24 {
		t.Errorf("unknown frames have version %s", tag.UnknownFrames.Version())
	}
}

func TestParseTruncated(t *testing.T) {
	data := tag24(0, concat(frame24("TIT2", []byte("\x03Song")), frame24("TALB", []byte("\x03Album"))))
	// cut into the second frame
	tag := mustParse(t, data[:len(data)-3])

	if tag.Title() != "Song" || tag.Frames.Len() != 1 {
		t.Errorf("unexpected frames %v", tag.Frames.Keys())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in  []byte
		err error
	}{
		{[]byte("ID3"), ErrNotEnoughData},
		{[]byte("RIFF\x00\x00\x00\x00\x00\x00"), ErrMalformedData},
		{[]byte("ID3\x09\x00\x00\x00\x00\x00\x00"), ErrUnsupported},
	}

	for _, test := range tests {
		if _, err := NewDecoder(bytes.NewReader(test.in)).Parse(); !errors.Is(err, test.err) {
			t.Errorf("Parse(%q): Expected: %v - Got: %v", test.in, test.err, err)
		}
	}
}

func TestParseUnsynchronised(t *testing.T) {
	// Latin-1 "ÿa"
	frame := frame23("TIT2", 0, []byte{0x00, 0xFF, 'a'})
	tag := mustParse(t, tag23(0x80, resync(frame)))

	if tag.Title() != "ÿa" {
		t.Errorf("Expected: ÿa - Got: %q", tag.Title())
	}
}

func TestParseFrameUnsynchronisation(t *testing.T) {
	body := resync([]byte{0x00, 0xFF, 'a'})
	frame := concat([]byte("TIT2"), synchsafeBytes(len(body)+4), []byte{0x00, 0x03}, intToBytes(3), body)
	tag := mustParse(t, tag24(0, frame))

	f, ok := tag.Frames.Get("TIT2").(*TextFrame)
	if !ok {
		t.Fatalf("Expected a TIT2 frame, got %v", tag.Frames.Keys())
	}
	if f.Value() != "ÿa" {
		t.Errorf("Expected: ÿa - Got: %q", f.Value())
	}
	if f.Flags() != (FrameFlags{}) {
		t.Errorf("Expected transformation flags to be cleared, got %+v", f.Flags())
	}
}

func TestParseCompressed(t *testing.T) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write([]byte("\x00Compressed title"))
	w.Close()

	body := concat(intToBytes(17), buf.Bytes())
	tag := mustParse(t, tag23(0, frame23("TIT2", 0x0080, body)))

	if tag.Title() != "Compressed title" {
		t.Errorf("Expected: Compressed title - Got: %q", tag.Title())
	}

	// garbage instead of zlib data
	tag = mustParse(t, tag23(0, frame23("TIT2", 0x0080, []byte{0, 0, 0, 4, 1, 2, 3, 4})))
	if tag.Frames.Len() != 0 {
		t.Errorf("Expected the frame to be dropped, got %v", tag.Frames.Keys())
	}
}

func TestParseEncrypted(t *testing.T) {
	tag := mustParse(t, tag23(0, frame23("TIT2", 0x0040, []byte("\x01\x02\x03"))))

	if tag.Frames.Len() != 0 || tag.UnknownFrames.Len() != 1 {
		t.Errorf("Expected one unknown frame, got %v and %d unknown", tag.Frames.Keys(), tag.UnknownFrames.Len())
	}
}

func TestParseExtendedHeader23(t *testing.T) {
	ext := []byte{0, 0, 0, 6, 0, 0, 0, 0, 0, 0}
	tag := mustParse(t, tag23(0x40, concat(ext, frame23("TIT2", 0, []byte("\x00Song")))))

	if tag.ExtendedHeader == nil || tag.ExtendedHeader.Size() != 6 {
		t.Errorf("Expected an extended header, got %+v", tag.ExtendedHeader)
	}
	if tag.Title() != "Song" {
		t.Errorf("Expected: Song - Got: %q", tag.Title())
	}
}

func TestParseBogusExtendedHeaderFlag(t *testing.T) {
	tag := mustParse(t, tag23(0x40, frame23("TIT2", 0, []byte("\x00Song"))))

	if tag.ExtendedHeader != nil || tag.Header.Flags.ExtendedHeader {
		t.Errorf("Expected the extended header flag to be reset")
	}
	if tag.Title() != "Song" {
		t.Errorf("Expected: Song - Got: %q", tag.Title())
	}
}

func TestParse22(t *testing.T) {
	frame := func(id string, body []byte) []byte {
		return concat([]byte(id), []byte{byte(len(body) >> 16), byte(len(body) >> 8), byte(len(body))}, body)
	}
	body := concat(
		frame("TT2", []byte("\x00Song")),
		frame("COM", []byte("\x00engdesc\x00Comment")),
		frame("XXX", []byte{1, 2}),
	)
	data := concat([]byte{'I', 'D', '3', 2, 0, 0}, synchsafeBytes(len(body)), body)

	tag := mustParse(t, data)

	if tag.Title() != "Song" {
		t.Errorf("Expected: Song - Got: %q", tag.Title())
	}
	if !tag.Frames.Contains("COMM:desc:eng") {
		t.Errorf("Expected a COMM frame, got %v", tag.Frames.Keys())
	}
	if tag.UnknownFrames.Len() != 1 || tag.UnknownFrames.Version() != Version22 {
		t.Errorf("unexpected unknown frames %+v", tag.UnknownFrames)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
