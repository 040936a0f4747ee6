// Package store implements the ImgFS on-disk image filesystem: a single
// regular file holding a fixed-width header, a fixed-size metadata table,
// and an append-only region of JPEG blobs.
//
// The on-disk layout is packed, little-endian, and stable across versions
// of this package (see layout.go for exact byte offsets). Every field is
// encoded with an explicit little-endian byte order, so a store file reads
// back the same on machines of either endianness.
package store

import (
	"encoding/binary"
	"fmt"
)

// Resolution identifies one of the three rendered variants of an image.
type Resolution int

const (
	ResThumb Resolution = iota
	ResSmall
	ResOrig
	numResolutions
)

func (r Resolution) String() string {
	switch r {
	case ResThumb:
		return "thumbnail"
	case ResSmall:
		return "small"
	case ResOrig:
		return "original"
	default:
		return "unknown"
	}
}

// Suffix is the fixed filename suffix imgfscmd's read command appends to
// an output file, matching the original create_name's _orig/_small/_thumb
// convention.
func (r Resolution) Suffix() string {
	switch r {
	case ResThumb:
		return "thumb"
	case ResSmall:
		return "small"
	case ResOrig:
		return "orig"
	default:
		return "unknown"
	}
}

// ParseResolution maps the five accepted query-variable spellings onto a
// Resolution. It is intentionally case-sensitive, matching §4.3 of the
// specification.
func ParseResolution(name string) (Resolution, bool) {
	switch name {
	case "thumb", "thumbnail":
		return ResThumb, true
	case "small":
		return ResSmall, true
	case "orig", "original":
		return ResOrig, true
	default:
		return 0, false
	}
}

const (
	// MaxNameLen is the maximum length of the store's human-readable name,
	// not counting the terminating NUL.
	MaxNameLen = 31
	nameField  = MaxNameLen + 1

	// MaxImgIDLen is the maximum length of an image id, not counting the
	// terminating NUL.
	MaxImgIDLen = 127
	imgIDField  = MaxImgIDLen + 1

	shaLen = 32 // sha256.Size

	headerReserved = 12
	entryReserved  = 8

	// headerSize is the fixed size in bytes of the on-disk header.
	headerSize = nameField + 4 + 4 + 4 + 2*4 + headerReserved

	// entrySize is the fixed size in bytes of one metadata entry.
	entrySize = 2 + imgIDField + shaLen + 4 + 4 + int(numResolutions)*4 + int(numResolutions)*8 + entryReserved
)

const (
	validEmpty    uint16 = 0
	validNonEmpty uint16 = 1
)

// header is the in-memory mirror of the on-disk store header.
type header struct {
	Name       string
	Version    uint32
	Count      uint32
	MaxFiles   uint32
	ResizedRes [4]uint16 // thumb.w, thumb.h, small.w, small.h
}

func (h *header) encode() []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:nameField], []byte(h.Name))
	off := nameField
	binary.LittleEndian.PutUint32(buf[off:], h.Version)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.Count)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.MaxFiles)
	off += 4
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint16(buf[off:], h.ResizedRes[i])
		off += 2
	}
	return buf
}

func decodeHeader(buf []byte) (*header, error) {
	if len(buf) != headerSize {
		return nil, fmt.Errorf("store: short header: got %d bytes, want %d", len(buf), headerSize)
	}
	h := &header{}
	h.Name = cstring(buf[0:nameField])
	off := nameField
	h.Version = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	h.Count = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	h.MaxFiles = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	for i := 0; i < 4; i++ {
		h.ResizedRes[i] = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	return h, nil
}

func (h *header) thumbRes() (w, hgt uint16) { return h.ResizedRes[0], h.ResizedRes[1] }
func (h *header) smallRes() (w, hgt uint16) { return h.ResizedRes[2], h.ResizedRes[3] }

// metaEntry is the in-memory mirror of one on-disk metadata entry.
type metaEntry struct {
	Valid  uint16
	ImgID  string
	SHA    [shaLen]byte
	Width  uint32
	Height uint32
	Size   [numResolutions]uint32
	Offset [numResolutions]uint64
}

func (e *metaEntry) isValid() bool { return e.Valid == validNonEmpty }

func (e *metaEntry) encode() []byte {
	buf := make([]byte, entrySize)
	binary.LittleEndian.PutUint16(buf[0:], e.Valid)
	off := 2
	copy(buf[off:off+imgIDField], []byte(e.ImgID))
	off += imgIDField
	copy(buf[off:off+shaLen], e.SHA[:])
	off += shaLen
	binary.LittleEndian.PutUint32(buf[off:], e.Width)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], e.Height)
	off += 4
	for r := 0; r < int(numResolutions); r++ {
		binary.LittleEndian.PutUint32(buf[off:], e.Size[r])
		off += 4
	}
	for r := 0; r < int(numResolutions); r++ {
		binary.LittleEndian.PutUint64(buf[off:], e.Offset[r])
		off += 8
	}
	return buf
}

func decodeMetaEntry(buf []byte) (*metaEntry, error) {
	if len(buf) != entrySize {
		return nil, fmt.Errorf("store: short metadata entry: got %d bytes, want %d", len(buf), entrySize)
	}
	e := &metaEntry{}
	e.Valid = binary.LittleEndian.Uint16(buf[0:])
	off := 2
	e.ImgID = cstring(buf[off : off+imgIDField])
	off += imgIDField
	copy(e.SHA[:], buf[off:off+shaLen])
	off += shaLen
	e.Width = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	e.Height = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	for r := 0; r < int(numResolutions); r++ {
		e.Size[r] = binary.LittleEndian.Uint32(buf[off:])
		off += 4
	}
	for r := 0; r < int(numResolutions); r++ {
		e.Offset[r] = binary.LittleEndian.Uint64(buf[off:])
		off += 8
	}
	return e, nil
}

// cstring trims a fixed-width, NUL-padded byte field down to its string
// content.
func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// entryOffset returns the file offset of metadata slot index.
func entryOffset(index int) int64 {
	return int64(headerSize) + int64(index)*int64(entrySize)
}

// blobRegionStart is the first valid offset for appended blob bytes.
func blobRegionStart(maxFiles uint32) int64 {
	return int64(headerSize) + int64(maxFiles)*int64(entrySize)
}
