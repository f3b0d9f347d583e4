package id3

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotFound is returned by Open for files that don't start with
	// a readable tag.
	ErrNotFound = errors.New("no ID3v2 tag found")
	// ErrMalformedData means that data violates the format.
	ErrMalformedData = errors.New("malformed data")
	// ErrUnsupported means that data is well-formed but uses a feature
	// this package doesn't handle.
	ErrUnsupported = errors.New("unsupported feature")
	// ErrNotEnoughData means that data is shorter than its structure
	// requires.
	ErrNotEnoughData = errors.New("not enough data")
	// ErrTooLarge is returned when a rendered tag exceeds the largest
	// size a tag header can declare.
	ErrTooLarge = errors.New("tag too large")
)

type notATagHeader struct {
	Magic [3]byte
}

func (err notATagHeader) Error() string {
	return fmt.Sprintf("Not an ID3v2 header: %q", err.Magic)
}

func (err notATagHeader) Is(target error) bool {
	return target == ErrMalformedData
}

type UnsupportedVersion struct {
	Version Version
}

func (err UnsupportedVersion) Error() string {
	return fmt.Sprintf("Unsupported version: %s", err.Version)
}

func (err UnsupportedVersion) Is(target error) bool {
	return target == ErrUnsupported
}

// Enables logging if set to true.
var Logging LogFlag

// Padding is the amount of padding written after a tag that grew or
// is written from scratch.
var Padding = 1024

// MaxNestingDepth limits how deeply CHAP and CTOC frames may embed
// each other. Deeper frames are skipped.
var MaxNestingDepth = 8

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "id3",
	Level:  log.DebugLevel,
})

// SetLogger replaces the logger used when Logging is enabled.
func SetLogger(l *log.Logger) {
	logger = l
}

type LogFlag bool

func (l LogFlag) Debug(msg string, keyvals ...interface{}) {
	if l {
		logger.Debug(msg, keyvals...)
	}
}

func (l LogFlag) Info(msg string, keyvals ...interface{}) {
	if l {
		logger.Info(msg, keyvals...)
	}
}

func (l LogFlag) Warn(msg string, keyvals ...interface{}) {
	if l {
		logger.Warn(msg, keyvals...)
	}
}

func (l LogFlag) Error(msg string, keyvals ...interface{}) {
	if l {
		logger.Error(msg, keyvals...)
	}
}

const TimeFormat = "2006-01-02T15:04:05"

// timeFormats are the ID3v2.4 timestamp layouts, most precise first.
var timeFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Indices into timeFormats.
const (
	precisionHour = 2
	precisionDay  = 3
)

type Tag struct {
	Header         TagHeader
	ExtendedHeader *ExtendedHeader
	Frames         FrameMap
	UnknownFrames  UnknownFrames
}

type Comment struct {
	Language    string
	Description string
	Text        string
}

// NewTag returns an empty ID3v2.4 tag.
func NewTag() *Tag {
	return WithVersion(Version24)
}

// WithVersion returns an empty tag that will be saved as version v.
// ID3v2.2 tags are saved as ID3v2.3.
func WithVersion(v Version) *Tag {
	v = v.saveVersion()
	return &Tag{
		Header:        newTagHeader(v),
		UnknownFrames: UnknownFrames{version: v},
	}
}

// Open reads the tag at the start of the file at path. Files without a
// tag, or with a tag header that can't be read, result in ErrNotFound.
func Open(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tag, err := NewDecoder(f).Parse()
	if err != nil {
		if errors.Is(err, ErrMalformedData) || errors.Is(err, ErrNotEnoughData) {
			Logging.Debug("no tag", "path", path, "err", err)
			return nil, ErrNotFound
		}
		return nil, err
	}

	return tag, nil
}

// Version returns the version the tag was read as, or will be saved as.
func (t *Tag) Version() Version {
	return t.Header.Version
}

// Update migrates the tag to version v, converting or dropping frames
// that don't belong in v, even if the tag already has that version.
// Updating to ID3v2.2 updates to ID3v2.3 instead. Save always updates
// the tag to its own version.
func (t *Tag) Update(v Version) {
	v = v.saveVersion()
	if t.Header.Version != v {
		Logging.Info("updating tag", "from", t.Header.Version, "to", v)
	}
	migrate(&t.Frames, v)

	t.Header.Version = v
	if t.ExtendedHeader != nil {
		t.ExtendedHeader.update(v)
	}
}

// Clear removes all frames from the tag. Saving a cleared tag removes
// the tag from the file.
func (t *Tag) Clear() {
	t.ExtendedHeader = nil
	t.Frames.Clear()
	t.UnknownFrames.frames = nil
}

// prepareSave brings the tag into a state that can be written: a
// version we can write and only the header flags we support.
func (t *Tag) prepareSave() {
	t.Update(t.Header.Version)

	t.Header.Minor = 0
	t.Header.Flags.Unsynchronisation = false
	t.Header.Flags.Experimental = false
	t.Header.Flags.Footer = false
	t.Header.Flags.ExtendedHeader = t.ExtendedHeader != nil
	if t.ExtendedHeader != nil {
		t.ExtendedHeader.stripCRC()
	}
}

// Save writes the tag to the file at path, replacing any tag that is
// already there. The file is created if it doesn't exist. A tag
// without frames removes the existing tag.
func (t *Tag) Save(path string) error {
	t.prepareSave()

	region, err := readTagRegion(path)
	if err != nil {
		return err
	}

	body, empty := t.renderBody()

	var data []byte
	if empty {
		Logging.Info("tag is empty, removing it", "path", path)
	} else {
		padding := computePadding(region.size, int64(len(body)), region.fileLen)
		size := int64(len(body)) + padding
		if size > maxSyncsafe {
			return ErrTooLarge
		}

		t.Header.Size = int(size)
		data = concat(t.Header.serialize(), body, make([]byte, padding))
	}

	if err := writeReplaced(path, data, region.length); err != nil {
		Logging.Error("saving tag", "path", path, "err", err)
		return err
	}

	Logging.Debug("saved tag", "path", path, "version", t.Header.Version, "size", t.Header.Size)
	return nil
}

// computePadding returns the padding for a tag body of newSize bytes
// that replaces a tag of oldSize bytes in a file of fileLen bytes.
// Shrinking tags keep some of their old space, up to 1% of the file,
// so that later edits can happen in place.
func computePadding(oldSize, newSize, fileLen int64) int64 {
	if newSize < oldSize {
		return min(oldSize-newSize, fileLen/100)
	}
	return int64(Padding)
}

func (t *Tag) Album() string {
	return t.GetTextFrame("TALB")
}

func (t *Tag) SetAlbum(album string) {
	t.SetTextFrame("TALB", album)
}

func (t *Tag) Artists() []string {
	return t.GetTextFrameSlice("TPE1")
}

func (t *Tag) SetArtists(artists []string) {
	t.SetTextFrameSlice("TPE1", artists)
}

func (t *Tag) Artist() string {
	artists := t.Artists()
	if len(artists) > 0 {
		return artists[0]
	}

	return ""
}

func (t *Tag) SetArtist(artist string) {
	t.SetTextFrame("TPE1", artist)
}

func (t *Tag) Band() string {
	return t.GetTextFrame("TPE2")
}

func (t *Tag) SetBand(band string) {
	t.SetTextFrame("TPE2", band)
}

func (t *Tag) Conductor() string {
	return t.GetTextFrame("TPE3")
}

func (t *Tag) SetConductor(name string) {
	t.SetTextFrame("TPE3", name)
}

func (t *Tag) BPM() int {
	return t.GetTextFrameNumber("TBPM")
}

func (t *Tag) SetBPM(bpm int) {
	t.SetTextFrameNumber("TBPM", bpm)
}

func (t *Tag) Composers() []string {
	return t.GetTextFrameSlice("TCOM")
}

func (t *Tag) SetComposers(composers []string) {
	t.SetTextFrameSlice("TCOM", composers)
}

func (t *Tag) Composer() string {
	composers := t.Composers()
	if len(composers) > 0 {
		return composers[0]
	}

	return ""
}

func (t *Tag) SetComposer(composer string) {
	t.SetTextFrame("TCOM", composer)
}

func (t *Tag) Title() string {
	return t.GetTextFrame("TIT2")
}

func (t *Tag) SetTitle(title string) {
	t.SetTextFrame("TIT2", title)
}

func (t *Tag) Length() time.Duration {
	return time.Duration(t.GetTextFrameNumber("TLEN")) * time.Millisecond
}

func (t *Tag) SetLength(d time.Duration) {
	t.SetTextFrameNumber("TLEN", int(d.Milliseconds()))
}

func (t *Tag) Language() string {
	langs := t.GetTextFrameSlice("TLAN")
	if len(langs) == 0 {
		return ""
	}

	return langs[0]
}

func (t *Tag) SetLanguage(lang string) {
	t.SetTextFrame("TLAN", lang)
}

func (t *Tag) Publisher() string {
	return t.GetTextFrame("TPUB")
}

func (t *Tag) SetPublisher(publisher string) {
	t.SetTextFrame("TPUB", publisher)
}

func (t *Tag) Track() string {
	return t.GetTextFrame("TRCK")
}

func (t *Tag) SetTrack(track string) {
	t.SetTextFrame("TRCK", track)
}

// RecordingTime returns the recording time. ID3v2.3 tags store it in
// TYER, TDAT and TIME.
func (t *Tag) RecordingTime() time.Time {
	if t.Header.Version.saveVersion() == Version23 && !t.Frames.Contains("TDRC") {
		if m := mergeRecordingTime(&t.Frames); m != nil {
			ts, _, _ := parseTime(m.Value())
			return ts
		}
		return time.Time{}
	}
	return t.GetTextFrameTime("TDRC")
}

func (t *Tag) SetRecordingTime(rt time.Time) {
	t.SetTextFrameTime("TDRC", rt)
}

func (t *Tag) OriginalReleaseTime() time.Time {
	return t.GetTextFrameTime("TDOR")
}

func (t *Tag) SetOriginalReleaseTime(rt time.Time) {
	t.SetTextFrameTime("TDOR", rt)
}

func (t *Tag) Mood() string {
	return t.GetTextFrame("TMOO")
}

func (t *Tag) SetMood(mood string) {
	t.SetTextFrame("TMOO", mood)
}

func (t *Tag) Comments() []Comment {
	var comments []Comment
	for _, f := range t.Frames.GetAll("COMM") {
		comment, ok := f.(*CommentsFrame)
		if !ok {
			continue
		}
		comments = append(comments, Comment{
			Language:    comment.Language,
			Description: comment.Description,
			Text:        comment.Text,
		})
	}

	return comments
}

// SetComments replaces all comments.
func (t *Tag) SetComments(comments []Comment) {
	t.Frames.RemoveAll("COMM")
	for _, c := range comments {
		t.Frames.Add(NewCommentsFrame(c.Language, c.Description, c.Text))
	}
}

// Chapters returns the tag's chapters in the order they appear.
func (t *Tag) Chapters() []*ChapterFrame {
	var out []*ChapterFrame
	for _, f := range t.Frames.GetAll("CHAP") {
		if c, ok := f.(*ChapterFrame); ok {
			out = append(out, c)
		}
	}
	return out
}

func (t *Tag) HasFrame(id string) bool {
	return t.Frames.ContainsID(id)
}

// GetTextFrame returns the text frame specified by name.
//
// To access user text frames, specify the name like "TXXX:The
// description".
func (t *Tag) GetTextFrame(name string) string {
	if _, ok := frameNameToUserFrame(name); ok {
		if f, ok := t.Frames.Get(name).(*UserTextFrame); ok {
			return f.Value()
		}
		return ""
	}

	f := t.Frames.Get(name)
	if f == nil {
		return ""
	}
	return f.Value()
}

func (t *Tag) GetTextFrameNumber(name string) int {
	s := t.GetTextFrame(name)
	if s == "" {
		return 0
	}

	i, _ := strconv.Atoi(s)
	return i
}

func (t *Tag) GetTextFrameSlice(name string) []string {
	switch f := t.Frames.Get(name).(type) {
	case *TextFrame:
		return f.Text
	case *UserTextFrame:
		return f.Text
	}
	return nil
}

// GetTextFrameTime returns the timestamp in a text frame. Timestamps
// that can't be parsed yield the zero time.
func (t *Tag) GetTextFrameTime(name string) time.Time {
	s := t.GetTextFrame(name)
	if s == "" {
		return time.Time{}
	}

	ft, _, err := parseTime(s)
	if err != nil {
		Logging.Debug("invalid timestamp", "frame", name, "value", s)
		return time.Time{}
	}

	return ft
}

func (t *Tag) SetTextFrame(name string, value string) {
	t.SetTextFrameSlice(name, []string{value})
}

func (t *Tag) SetTextFrameNumber(name string, value int) {
	t.SetTextFrame(name, strconv.Itoa(value))
}

// SetTextFrameSlice sets a text frame with multiple values, replacing
// any existing frame. The frame's flags are kept.
func (t *Tag) SetTextFrameSlice(name string, value []string) {
	var f Frame
	if desc, ok := frameNameToUserFrame(name); ok {
		f = NewUserTextFrame(desc, value...)
	} else {
		f = NewTextFrame(name, value...)
	}

	if old := t.Frames.Get(name); old != nil {
		f.header().flags = old.Flags()
	}
	t.Frames.Add(f)
}

func (t *Tag) SetTextFrameTime(name string, value time.Time) {
	t.SetTextFrame(name, value.Format(TimeFormat))
}

// UserTextFrames returns all TXXX frames.
func (t *Tag) UserTextFrames() []*UserTextFrame {
	var res []*UserTextFrame
	for _, f := range t.Frames.GetAll("TXXX") {
		if f, ok := f.(*UserTextFrame); ok {
			res = append(res, f)
		}
	}

	return res
}

// parseTime parses an ID3v2.4 timestamp. It also returns the index of
// the matching layout in timeFormats, which tells how precise the
// timestamp is.
func parseTime(input string) (res time.Time, precision int, err error) {
	for i, format := range timeFormats {
		res, err = time.Parse(format, input)
		if err == nil {
			return res, i, nil
		}
	}

	return time.Time{}, 0, err
}

func frameNameToUserFrame(name string) (frameName string, ok bool) {
	if len(name) < 6 {
		return "", false
	}

	if !strings.HasPrefix(name, "TXXX:") {
		return "", false
	}

	return name[5:], true
}
