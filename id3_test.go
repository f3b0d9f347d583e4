package id3

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// audio stands in for the MPEG data that follows a tag.
var audio = []byte{0xFF, 0xFB, 0x90, 0x64, 0x00, 0x0F, 0xF0, 0x00}

func writeTestFile(t *testing.T, data ...[]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.mp3")
	if err := os.WriteFile(path, concat(data...), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTestFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestSaveAndOpen(t *testing.T) {
	path := writeTestFile(t, audio)

	tag := NewTag()
	tag.Frames.Add(NewTextFrame("TIT2", "Song"))
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	data := readTestFile(t, path)
	// 10 bytes of frame header, 5 bytes of body
	if tag.Header.Size != 15+Padding {
		t.Errorf("Expected: %d - Got: %d", 15+Padding, tag.Header.Size)
	}
	if len(data) != tagHeaderSize+15+Padding+len(audio) || !bytes.HasSuffix(data, audio) {
		t.Errorf("unexpected file layout, %d bytes", len(data))
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Version() != Version24 {
		t.Errorf("Expected: %s - Got: %s", Version24, reopened.Version())
	}
	f := reopened.Frames.Get("TIT2")
	if f == nil || f.Value() != "Song" {
		t.Errorf("Expected TIT2 to be Song, got %v", f)
	}
}

func TestSaveShrinkingTag(t *testing.T) {
	old := concat(frame24("TIT2", []byte("\x03Song")), make([]byte, 2048-15))
	music := make([]byte, 100000)
	path := writeTestFile(t, tag24(0, old), music)

	tag, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	// the old tag had 2033 bytes to spare, but padding is capped at 1%
	// of the file
	fileLen := tagHeaderSize + 2048 + len(music)
	want := 15 + fileLen/100
	if tag.Header.Size != want {
		t.Errorf("Expected: %d - Got: %d", want, tag.Header.Size)
	}

	data := readTestFile(t, path)
	if len(data) != tagHeaderSize+want+len(music) {
		t.Errorf("unexpected file size %d", len(data))
	}
}

func TestComputePadding(t *testing.T) {
	tests := []struct {
		oldSize, newSize, fileLen int64
		padding                   int64
	}{
		{2048, 1024, 500000, 1024},
		{1024, 2048, 500000, 1024},
		{2048, 1024, 50000, 500},
		{0, 100, 0, 1024},
		{100, 100, 1000000, 1024},
	}

	for _, test := range tests {
		res := computePadding(test.oldSize, test.newSize, test.fileLen)
		if res != test.padding {
			t.Errorf("computePadding(%d, %d, %d): Expected: %d - Got: %d",
				test.oldSize, test.newSize, test.fileLen, test.padding, res)
		}
	}

	if size := 1024 + computePadding(2048, 1024, 500000); size != 2048 {
		t.Errorf("Expected: 2048 - Got: %d", size)
	}
	if size := 2048 + computePadding(1024, 2048, 500000); size != 3072 {
		t.Errorf("Expected: 3072 - Got: %d", size)
	}
}

func TestSaveWithoutExistingTag(t *testing.T) {
	path := writeTestFile(t, audio)

	tag := NewTag()
	tag.SetTitle("Song")
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	data := readTestFile(t, path)
	if !bytes.HasPrefix(data, []byte("ID3")) || !bytes.HasSuffix(data, audio) {
		t.Errorf("Expected the tag to be inserted before the audio data")
	}
}

func TestSaveCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.mp3")

	tag := NewTag()
	tag.SetTitle("Song")
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Title() != "Song" {
		t.Errorf("Expected: Song - Got: %s", reopened.Title())
	}
}

func TestSaveEmptyTagRemovesIt(t *testing.T) {
	path := writeTestFile(t, tag24(0, frame24("TIT2", []byte("\x03Song"))), audio)

	tag, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	tag.Clear()
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	if data := readTestFile(t, path); !bytes.Equal(data, audio) {
		t.Errorf("Expected only the audio data to remain, got % x", data)
	}
	if _, err := Open(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveTooLarge(t *testing.T) {
	defer func(padding int) { Padding = padding }(Padding)
	Padding = maxSyncsafe

	path := writeTestFile(t, audio)
	tag := NewTag()
	tag.SetTitle("Song")

	if err := tag.Save(path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
	if data := readTestFile(t, path); !bytes.Equal(data, audio) {
		t.Errorf("Expected the file to be unchanged")
	}
}

func TestSaveVersion23(t *testing.T) {
	path := writeTestFile(t, audio)

	tag := WithVersion(Version23)
	tag.SetTitle("日本語")
	tag.SetArtists([]string{"AC", "DC"})
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Version() != Version23 {
		t.Errorf("Expected: %s - Got: %s", Version23, reopened.Version())
	}
	if reopened.Title() != "日本語" {
		t.Errorf("Expected: 日本語 - Got: %s", reopened.Title())
	}
	// ID3v2.3 has no way to separate values other than a slash
	if reopened.Artist() != "AC/DC" {
		t.Errorf("Expected: AC/DC - Got: %s", reopened.Artist())
	}
}

func TestSaveUpgrades22(t *testing.T) {
	body := concat([]byte("TT2"), []byte{0, 0, 5}, []byte("\x00Song"))
	path := writeTestFile(t, []byte{'I', 'D', '3', 2, 0, 0}, synchsafeBytes(len(body)), body, audio)

	tag, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Version() != Version23 || reopened.Title() != "Song" {
		t.Errorf("unexpected tag %s %q", reopened.Version(), reopened.Title())
	}
	if !bytes.HasSuffix(readTestFile(t, path), audio) {
		t.Errorf("audio data was damaged")
	}
}

func TestSaveResetsFlags(t *testing.T) {
	footer := []byte{'3', 'D', 'I', 4, 0, 0x10, 0, 0, 0, 16}
	path := writeTestFile(t, tag24(0x10, frame24("TIT2", []byte("\x03Song"))), footer, audio)

	tag, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if !tag.Header.Flags.Footer {
		t.Fatal("Expected the footer flag to be set")
	}
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	data := readTestFile(t, path)
	if bytes.Contains(data, []byte("3DI")) {
		t.Errorf("Expected the old footer to be replaced")
	}
	if !bytes.HasSuffix(data, audio) {
		t.Errorf("audio data was damaged")
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Header.Flags != (HeaderFlags{}) {
		t.Errorf("Expected no header flags, got %+v", reopened.Header.Flags)
	}
}

func TestSaveStripsCRC(t *testing.T) {
	ext := []byte{0, 0, 0, 10, extCRC23, 0, 0, 0, 0, 0, 0xDE, 0xAD, 0xBE, 0xEF}
	path := writeTestFile(t, tag23(0x40, concat(ext, frame23("TIT2", 0, []byte("\x00Song")))), audio)

	tag, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if tag.ExtendedHeader == nil || !tag.ExtendedHeader.HasCRC() {
		t.Fatal("Expected an extended header with a CRC")
	}
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.ExtendedHeader == nil || reopened.ExtendedHeader.HasCRC() {
		t.Errorf("Expected an extended header without CRC, got %+v", reopened.ExtendedHeader)
	}
	if reopened.Title() != "Song" {
		t.Errorf("Expected: Song - Got: %q", reopened.Title())
	}
}

func TestSaveBrokenExtendedHeader(t *testing.T) {
	// update and CRC flags set, but no room for their data
	ext := []byte{0, 0, 0, 6, 1, extUpdate24 | extCRC24}
	path := writeTestFile(t, tag24(0x40, concat(ext, frame24("TIT2", []byte("\x03A")))), audio)

	tag, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if tag.ExtendedHeader != nil || tag.Header.Flags.ExtendedHeader {
		t.Fatal("Expected the extended header to be rejected")
	}
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}
}

func TestSaveKeepsUnsupportedTag(t *testing.T) {
	old := concat([]byte{'I', 'D', '3', 5, 0, 0}, synchsafeBytes(4), []byte{1, 2, 3, 4})
	path := writeTestFile(t, old, audio)

	tag := NewTag()
	tag.SetTitle("Song")
	if err := tag.Save(path); err != nil {
		t.Fatal(err)
	}

	data := readTestFile(t, path)
	if !bytes.HasPrefix(data, []byte{'I', 'D', '3', 4}) {
		t.Errorf("Expected a new tag at the start of the file, got % x", data[:10])
	}
	if !bytes.HasSuffix(data, concat(old, audio)) {
		t.Errorf("Expected the unsupported tag to be kept")
	}
}

func TestOpenWithoutTag(t *testing.T) {
	tests := [][]byte{
		audio,
		nil,
		[]byte("ID3\x04"),
	}

	for _, data := range tests {
		path := writeTestFile(t, data)
		if _, err := Open(path); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open(% x): Expected ErrNotFound, got %v", data, err)
		}
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.mp3")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestEncode(t *testing.T) {
	tag := NewTag()
	tag.SetTitle("Song")
	tag.SetAlbum("Album")

	var buf bytes.Buffer
	if err := tag.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != tagHeaderSize+tag.Header.Size {
		t.Errorf("Expected %d bytes, got %d", tagHeaderSize+tag.Header.Size, buf.Len())
	}

	res := mustParse(t, buf.Bytes())
	if res.Title() != "Song" || res.Album() != "Album" {
		t.Errorf("unexpected frames %v", res.Frames.Keys())
	}
}

func TestAccessors(t *testing.T) {
	tag := NewTag()

	tag.SetArtists([]string{"Simon", "Garfunkel"})
	if tag.Artist() != "Simon" || len(tag.Artists()) != 2 {
		t.Errorf("unexpected artists %q", tag.Artists())
	}

	tag.SetBPM(120)
	if tag.BPM() != 120 {
		t.Errorf("Expected: 120 - Got: %d", tag.BPM())
	}

	tag.SetLength(3*time.Minute + 500*time.Millisecond)
	if tag.GetTextFrame("TLEN") != "180500" {
		t.Errorf("unexpected TLEN %q", tag.GetTextFrame("TLEN"))
	}

	rt := time.Date(2009, 11, 10, 23, 0, 0, 0, time.UTC)
	tag.SetRecordingTime(rt)
	if tag.GetTextFrame("TDRC") != "2009-11-10T23:00:00" || !tag.RecordingTime().Equal(rt) {
		t.Errorf("unexpected recording time %q", tag.GetTextFrame("TDRC"))
	}

	tag.SetTextFrame("TXXX:MusicBrainz Album Id", "abc")
	if tag.GetTextFrame("TXXX:MusicBrainz Album Id") != "abc" || len(tag.UserTextFrames()) != 1 {
		t.Errorf("unexpected user text frames %v", tag.Frames.Keys())
	}

	tag.SetComments([]Comment{{Language: "eng", Text: "one"}, {Language: "eng", Description: "x", Text: "two"}})
	if comments := tag.Comments(); len(comments) != 2 || comments[1].Text != "two" {
		t.Errorf("unexpected comments %+v", comments)
	}

	tag.Frames.Add(NewChapterFrame("chp1", 0, 1000))
	if len(tag.Chapters()) != 1 || !tag.HasFrame("CHAP") {
		t.Errorf("Expected one chapter")
	}
}

func TestSetTextFrameKeepsFlags(t *testing.T) {
	tag := NewTag()
	f := NewTextFrame("TIT2", "Old")
	f.SetFlags(FrameFlags{ReadOnly: true})
	tag.Frames.Add(f)

	tag.SetTitle("New")
	if !tag.Frames.Get("TIT2").Flags().ReadOnly {
		t.Errorf("Expected flags to be kept")
	}
}

func TestRecordingTime23(t *testing.T) {
	tag := WithVersion(Version23)
	tag.SetTextFrame("TYER", "2004")
	tag.SetTextFrame("TDAT", "0305")

	want := time.Date(2004, 5, 3, 0, 0, 0, 0, time.UTC)
	if res := tag.RecordingTime(); !res.Equal(want) {
		t.Errorf("Expected: %s - Got: %s", want, res)
	}
}

func TestTimeParsing(t *testing.T) {
	tests := []struct {
		in  string
		out time.Time
	}{
		{"2009-11-10T23:01:02", time.Date(2009, 11, 10, 23, 01, 02, 0, time.UTC)},
		{"2009-11-10T23:01", time.Date(2009, 11, 10, 23, 01, 0, 0, time.UTC)},
		{"2009-11-10T23", time.Date(2009, 11, 10, 23, 0, 0, 0, time.UTC)},
		{"2009-11-10", time.Date(2009, 11, 10, 0, 0, 0, 0, time.UTC)},
		{"2009-11", time.Date(2009, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"2009", time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for i, test := range tests {
		res, precision, err := parseTime(test.in)
		if err != nil {
			t.Fatalf("Couldn't parse time '%s': %s", test.in, err)
		}

		if res != test.out {
			t.Fatalf("Time '%s' parsed to '%s' instead of '%s'", test.in, res, test.out)
		}
		if precision != i {
			t.Errorf("Time '%s' has precision %d instead of %d", test.in, precision, i)
		}
	}

	if _, _, err := parseTime("yesterday"); err == nil {
		t.Errorf("Expected an error for an invalid time")
	}
}

func TestUserFrameNameParsing(t *testing.T) {
	tests := []struct {
		in      string
		outName string
		outBool bool
	}{
		{"TLEN", "", false},
		{"TXXX:", "", false},
		{"TXXX:User frame", "User frame", true},
	}

	for _, test := range tests {
		out, ok := frameNameToUserFrame(test.in)
		if out != test.outName || ok != test.outBool {
			t.Fatalf("Didn't parse user frame name correctly. Expected: %q/%t, got %q/%t",
				test.outName, test.outBool, out, ok)
		}
	}
}

func ExampleTag_GetTextFrame() {
	tag := NewTag()
	tag.SetTitle("Song")
	tag.SetTextFrame("TXXX:MusicBrainz Album Artist Id", "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d")

	fmt.Println(tag.GetTextFrame("TIT2")) // Same as tag.Title()
	fmt.Println(tag.GetTextFrame("TXXX:MusicBrainz Album Artist Id"))
	// Output:
	// Song
	// b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d
}
