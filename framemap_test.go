package id3

import (
	"bytes"
	"testing"
)

func TestFrameMapCollision(t *testing.T) {
	var m FrameMap
	m.Add(NewTextFrame("TIT2", "First"))
	m.Add(NewTextFrame("TALB", "Album"))
	m.Add(NewTextFrame("TIT2", "Second"))

	if m.Len() != 2 {
		t.Fatalf("Expected 2 frames, got %v", m.Keys())
	}
	if v := m.Get("TIT2").Value(); v != "Second" {
		t.Errorf("Expected: Second - Got: %s", v)
	}
	// the replacement keeps the position of the frame it replaced
	if keys := m.Keys(); !equalStrings(keys, []string{"TIT2", "TALB"}) {
		t.Errorf("unexpected order %v", keys)
	}
}

func TestFrameMapKeys(t *testing.T) {
	var m FrameMap
	m.Add(NewCommentsFrame("eng", "", "one"))
	m.Add(NewCommentsFrame("deu", "", "zwei"))
	m.Add(NewCommentsFrame("eng", "iTunNORM", "three"))
	m.Add(NewTextFrame("TIT2", "Title"))

	if m.Len() != 4 {
		t.Fatalf("Expected 4 frames, got %v", m.Keys())
	}
	if n := len(m.GetAll("COMM")); n != 3 {
		t.Errorf("Expected 3 comments, got %d", n)
	}
	if !m.ContainsID("COMM") || !m.Contains("COMM::deu") || m.Contains("COMM") {
		t.Errorf("unexpected keys %v", m.Keys())
	}

	if f := m.Remove("COMM::deu"); f == nil || f.Value() != "zwei" {
		t.Errorf("Remove returned %v", f)
	}
	if f := m.Remove("COMM::deu"); f != nil {
		t.Errorf("Expected nothing to remove, got %v", f)
	}

	removed := m.RemoveAll("COMM")
	if len(removed) != 2 {
		t.Errorf("Expected 2 removed frames, got %d", len(removed))
	}
	if keys := m.Keys(); !equalStrings(keys, []string{"TIT2"}) {
		t.Errorf("unexpected keys %v", keys)
	}

	m.Clear()
	if m.Len() != 0 || m.Get("TIT2") != nil {
		t.Errorf("Expected an empty map after Clear")
	}
}

func TestFrameMapRender(t *testing.T) {
	var m FrameMap
	m.Add(NewTextFrame("TIT2", "Song"))
	m.Add(NewURLFrame("WOAR", "https://example.com/"))

	want := concat(
		frame24("TIT2", []byte("\x03Song")),
		frame24("WOAR", []byte("https://example.com/")),
	)
	if res := m.Render(newTagHeader(Version24)); !bytes.Equal(res, want) {
		t.Errorf("Expected: % x - Got: % x", want, res)
	}
}

func TestUnknownFramesVersion(t *testing.T) {
	data := tag23(0, concat(
		frame23("TIT2", 0, []byte("\x00Song")),
		frame23("XYZW", 0x2000, []byte{1, 2, 3}),
	))
	unknown := frame23("XYZW", 0x2000, []byte{1, 2, 3})

	tag := mustParse(t, data)
	body, _ := tag.renderBody()
	if !bytes.Contains(body, unknown) {
		t.Errorf("Expected unknown frame to be kept when the version doesn't change")
	}

	tag.Update(Version24)
	body, _ = tag.renderBody()
	if bytes.Contains(body, []byte("XYZW")) {
		t.Errorf("Expected unknown frame to be dropped when the version changes")
	}
}
