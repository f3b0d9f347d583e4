package id3

import "strconv"

// ChapterFrame is a CHAP frame. It carries its own frames, usually a
// TIT2 with the chapter's title.
type ChapterFrame struct {
	FrameHeader
	ElementID string
	// Times are in milliseconds.
	StartTime uint32
	EndTime   uint32
	// Offsets are byte offsets into the file. 0xFFFFFFFF means the
	// offset is unused.
	StartOffset uint32
	EndOffset   uint32
	Frames      FrameMap
}

func NewChapterFrame(elementID string, start, end uint32) *ChapterFrame {
	return &ChapterFrame{
		FrameHeader: FrameHeader{id: "CHAP"},
		ElementID:   elementID,
		StartTime:   start,
		EndTime:     end,
		StartOffset: 0xFFFFFFFF,
		EndOffset:   0xFFFFFFFF,
	}
}

func (f *ChapterFrame) Key() string { return f.id + ":" + f.ElementID }

func (f *ChapterFrame) Value() string {
	s := f.ElementID + " [" + strconv.FormatUint(uint64(f.StartTime), 10) + "-" +
		strconv.FormatUint(uint64(f.EndTime), 10) + "]"
	if title, ok := f.Frames.Lookup("TIT2"); ok {
		s += " " + title.Value()
	}
	return s
}

func (f *ChapterFrame) parse(c frameContext, data []byte) error {
	if len(data) < 18 {
		return ErrNotEnoughData
	}

	id, pos := decodeTerminated(ISO88591, data)
	if pos+16 > len(data) {
		return ErrNotEnoughData
	}

	f.ElementID = id
	f.StartTime = beUint32(data[pos:])
	f.EndTime = beUint32(data[pos+4:])
	f.StartOffset = beUint32(data[pos+8:])
	f.EndOffset = beUint32(data[pos+12:])

	f.Frames.Clear()
	parseEmbedded(c, f.Key(), data[pos+16:], &f.Frames)

	return nil
}

func (f *ChapterFrame) encode(v Version) []byte {
	return concat(
		encodeTerminated(ISO88591, f.ElementID),
		intToBytes(f.StartTime),
		intToBytes(f.EndTime),
		intToBytes(f.StartOffset),
		intToBytes(f.EndOffset),
		f.Frames.Render(newTagHeader(v)),
	)
}

const (
	tocOrdered  = 0x01
	tocTopLevel = 0x02
)

// TableOfContentsFrame is a CTOC frame. Elements lists the element ids
// of its CHAP and CTOC children.
type TableOfContentsFrame struct {
	FrameHeader
	ElementID string
	TopLevel  bool
	Ordered   bool
	Elements  []string
	Frames    FrameMap
}

func NewTableOfContentsFrame(elementID string, elements ...string) *TableOfContentsFrame {
	return &TableOfContentsFrame{
		FrameHeader: FrameHeader{id: "CTOC"},
		ElementID:   elementID,
		Elements:    elements,
	}
}

func (f *TableOfContentsFrame) Key() string { return f.id + ":" + f.ElementID }

func (f *TableOfContentsFrame) Value() string {
	if title, ok := f.Frames.Lookup("TIT2"); ok {
		return f.ElementID + " " + title.Value()
	}
	return f.ElementID
}

func (f *TableOfContentsFrame) parse(c frameContext, data []byte) error {
	if len(data) < 4 {
		return ErrNotEnoughData
	}

	id, pos := decodeTerminated(ISO88591, data)
	if pos+2 > len(data) {
		return ErrNotEnoughData
	}

	f.ElementID = id
	f.TopLevel = data[pos]&tocTopLevel != 0
	f.Ordered = data[pos]&tocOrdered != 0
	count := int(data[pos+1])
	pos += 2

	f.Elements = nil
	for i := 0; i < count && pos < len(data); i++ {
		elem, n := decodeTerminated(ISO88591, data[pos:])
		f.Elements = append(f.Elements, elem)
		pos += n
	}

	f.Frames.Clear()
	parseEmbedded(c, f.Key(), data[pos:], &f.Frames)

	return nil
}

func (f *TableOfContentsFrame) encode(v Version) []byte {
	var flags byte
	if f.TopLevel {
		flags |= tocTopLevel
	}
	if f.Ordered {
		flags |= tocOrdered
	}

	elements := f.Elements
	if len(elements) > 0xFF {
		Logging.Warn("truncating table of contents", "element", f.ElementID, "entries", len(elements))
		elements = elements[:0xFF]
	}

	out := concat(encodeTerminated(ISO88591, f.ElementID), []byte{flags, byte(len(elements))})
	for _, elem := range elements {
		out = append(out, encodeTerminated(ISO88591, elem)...)
	}
	return append(out, f.Frames.Render(newTagHeader(v))...)
}

// parseEmbedded parses the frames embedded in a CHAP or CTOC frame.
// Embedded frames may embed frames themselves; past MaxNestingDepth
// they are skipped. Unknown embedded frames are not kept.
func parseEmbedded(c frameContext, owner string, data []byte, frames *FrameMap) {
	if len(data) == 0 {
		return
	}
	if c.depth >= MaxNestingDepth {
		Logging.Warn("skipping embedded frames nested too deeply", "frame", owner, "depth", c.depth)
		return
	}

	unknowns := parseFrames(c.nested(), data, frames)
	if len(unknowns) > 0 {
		Logging.Warn("dropping unknown embedded frames", "frame", owner, "count", len(unknowns))
	}
}
