package id3

import "bytes"

// FrameMap is an ordered collection of frames, keyed by Frame.Key.
// The zero value is an empty map ready to use.
//
// Keys are unique. Adding a frame whose key is already present replaces
// the existing frame in place: the newest frame wins and keeps the
// position of the frame it replaced.
type FrameMap struct {
	keys   []string
	frames map[string]Frame
}

// Add adds f to the map, replacing any frame with the same key.
func (m *FrameMap) Add(f Frame) {
	if m.frames == nil {
		m.frames = make(map[string]Frame)
	}

	key := f.Key()
	if _, ok := m.frames[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.frames[key] = f
}

// Get returns the frame stored under key, or nil.
func (m *FrameMap) Get(key string) Frame {
	return m.frames[key]
}

// Lookup returns the frame stored under key.
func (m *FrameMap) Lookup(key string) (Frame, bool) {
	f, ok := m.frames[key]
	return f, ok
}

// Contains reports whether a frame is stored under key.
func (m *FrameMap) Contains(key string) bool {
	_, ok := m.frames[key]
	return ok
}

// ContainsID reports whether any frame has the given id.
func (m *FrameMap) ContainsID(id string) bool {
	for _, key := range m.keys {
		if m.frames[key].ID() == id {
			return true
		}
	}
	return false
}

// GetAll returns all frames with the given id, in order.
func (m *FrameMap) GetAll(id string) []Frame {
	var out []Frame
	for _, key := range m.keys {
		if f := m.frames[key]; f.ID() == id {
			out = append(out, f)
		}
	}
	return out
}

// Remove removes and returns the frame stored under key.
func (m *FrameMap) Remove(key string) Frame {
	f, ok := m.frames[key]
	if !ok {
		return nil
	}

	delete(m.frames, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return f
}

// RemoveAll removes and returns all frames with the given id.
func (m *FrameMap) RemoveAll(id string) []Frame {
	var (
		removed []Frame
		keys    = m.keys[:0]
	)
	for _, key := range m.keys {
		f := m.frames[key]
		if f.ID() == id {
			removed = append(removed, f)
			delete(m.frames, key)
			continue
		}
		keys = append(keys, key)
	}
	m.keys = keys
	return removed
}

func (m *FrameMap) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *FrameMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Frames returns the frames in insertion order.
func (m *FrameMap) Frames() []Frame {
	out := make([]Frame, len(m.keys))
	for i, key := range m.keys {
		out[i] = m.frames[key]
	}
	return out
}

func (m *FrameMap) Clear() {
	m.keys = nil
	m.frames = nil
}

// Render serializes every frame for the version in h. ID3v2.2 frames
// are rendered as ID3v2.3 frames.
func (m *FrameMap) Render(h TagHeader) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, h.Version)
	for _, key := range m.keys {
		// writes to a bytes.Buffer don't fail
		_ = enc.WriteFrame(m.frames[key])
	}
	return buf.Bytes()
}

// UnknownFrame is a frame this package can't interpret. Its body is
// kept verbatim.
type UnknownFrame struct {
	Header FrameHeader
	Data   []byte
}

func (f UnknownFrame) ID() string { return f.Header.id }

// UnknownFrames holds the unknown frames of a tag together with the
// version they were read with. They are only written back to a tag of
// that same version, since their layout can't be migrated.
type UnknownFrames struct {
	version Version
	frames  []UnknownFrame
}

func (u *UnknownFrames) Version() Version       { return u.version }
func (u *UnknownFrames) Frames() []UnknownFrame { return u.frames }
func (u *UnknownFrames) Len() int               { return len(u.frames) }

func (u *UnknownFrames) render(v Version) []byte {
	var out []byte
	for _, f := range u.frames {
		out = append(out, f.Header.serialize(v, len(f.Data))...)
		out = append(out, f.Data...)
	}
	return out
}
