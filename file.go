package id3

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
)

// tagRegion describes the tag that is currently at the start of a
// file.
type tagRegion struct {
	// size is the size the tag header declares.
	size int64
	// length is the number of bytes the tag occupies on disk, header
	// and footer included. It is zero if the file has no tag.
	length  int64
	fileLen int64
}

// readTagRegion finds the tag at the start of the file at path. A
// missing file is treated like an empty one.
func readTagRegion(path string) (tagRegion, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return tagRegion{}, nil
	}
	if err != nil {
		return tagRegion{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return tagRegion{}, err
	}
	region := tagRegion{fileLen: fi.Size()}

	h, err := NewDecoder(f).ParseHeader()
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			Logging.Info("keeping tag of unsupported version", "path", path, "err", err)
			return region, nil
		}
		if errors.Is(err, ErrMalformedData) || errors.Is(err, ErrNotEnoughData) {
			// no tag to replace
			return region, nil
		}
		return tagRegion{}, err
	}

	region.size = int64(h.Size)
	region.length = int64(h.Size) + tagHeaderSize
	if h.Flags.Footer {
		region.length += tagHeaderSize
	}
	region.length = min(region.length, region.fileLen)

	return region, nil
}

// writeReplaced replaces the first oldLen bytes of the file at path
// with data. The new content is written to a temporary file which then
// atomically replaces the original, so that a failed write leaves the
// original untouched.
func writeReplaced(path string, data []byte, oldLen int64) error {
	src, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		src = nil
	case err != nil:
		return err
	default:
		defer src.Close()
		if _, err := src.Seek(oldLen, io.SeekStart); err != nil {
			return err
		}
	}

	out, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644), renameio.WithExistingPermissions())
	if err != nil {
		return err
	}
	defer out.Cleanup()

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("writing tag: %w", err)
	}
	if src != nil {
		if _, err := io.Copy(out, src); err != nil {
			return fmt.Errorf("copying audio data: %w", err)
		}
	}

	return out.CloseAtomicallyReplace()
}
