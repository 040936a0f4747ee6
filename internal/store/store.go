package store

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/prasoul/imgfs/internal/ferrors"
)

// Default and maximum create-time bounds, per the specification's CLI
// defaults table.
const (
	DefaultMaxFiles = 128
	DefaultThumbRes = 64
	DefaultSmallRes = 256
	MaxThumbRes     = 128
	MaxSmallRes     = 512

	storeName = "ImgFS2024"
)

// CreateOptions configures a new store at creation time.
type CreateOptions struct {
	MaxFiles     uint32
	ThumbResW    uint16
	ThumbResH    uint16
	SmallResW    uint16
	SmallResH    uint16
}

// DefaultCreateOptions returns the specification's default bounds.
func DefaultCreateOptions() CreateOptions {
	return CreateOptions{
		MaxFiles:  DefaultMaxFiles,
		ThumbResW: DefaultThumbRes,
		ThumbResH: DefaultThumbRes,
		SmallResW: DefaultSmallRes,
		SmallResH: DefaultSmallRes,
	}
}

func (o CreateOptions) validate() error {
	if o.MaxFiles < 1 {
		return ferrors.New(ferrors.MaxFiles, "max_files must be >= 1")
	}
	if o.ThumbResW == 0 || o.ThumbResH == 0 || o.ThumbResW > MaxThumbRes || o.ThumbResH > MaxThumbRes {
		return ferrors.New(ferrors.Resolutions, fmt.Sprintf("thumb_res must be in (0, %d]", MaxThumbRes))
	}
	if o.SmallResW == 0 || o.SmallResH == 0 || o.SmallResW > MaxSmallRes || o.SmallResH > MaxSmallRes {
		return ferrors.New(ferrors.Resolutions, fmt.Sprintf("small_res must be in (0, %d]", MaxSmallRes))
	}
	return nil
}

// OpenMode selects how the backing file is opened.
type OpenMode int

const (
	ReadWrite OpenMode = iota
	ReadOnly
)

// Store owns the backing file, its header, and its in-memory metadata
// table. All exported methods are safe for concurrent use: a single mutex
// serializes every operation, matching §5 of the specification (one
// process-global lock covering list/read/insert/delete including the
// read path's internal lazy-resize).
type Store struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	readOnly bool
	hdr      *header
	meta     []*metaEntry
	flockd   bool
}

// Create initializes a new store file at path with the given options and
// leaves it closed; callers must Open it to use it.
func Create(path string, opts CreateOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return ferrors.Wrap(ferrors.IO, "creating store file", err)
	}
	defer f.Close()

	h := &header{
		Name:       storeName,
		Version:    0,
		Count:      0,
		MaxFiles:   opts.MaxFiles,
		ResizedRes: [4]uint16{opts.ThumbResW, opts.ThumbResH, opts.SmallResW, opts.SmallResH},
	}
	if _, err := f.Write(h.encode()); err != nil {
		return ferrors.Wrap(ferrors.IO, "writing header", err)
	}

	empty := (&metaEntry{}).encode()
	for i := uint32(0); i < opts.MaxFiles; i++ {
		if _, err := f.Write(empty); err != nil {
			return ferrors.Wrap(ferrors.IO, "writing metadata table", err)
		}
	}
	return nil
}

// Open opens an existing store file and loads its metadata table into
// memory. The in-memory table is authoritative for reads; every mutation
// goes through to disk before the call returns (write-through).
func Open(path string, mode OpenMode) (*Store, error) {
	flag := os.O_RDWR
	if mode == ReadOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IO, "opening store file", err)
	}

	locked := false
	if mode == ReadWrite {
		if err := flockExclusive(f); err != nil {
			f.Close()
			return nil, ferrors.Wrap(ferrors.IO, "locking store file", err)
		}
		locked = true
	}

	hdrBuf := make([]byte, headerSize)
	if _, err := readFull(f, hdrBuf, 0); err != nil {
		f.Close()
		return nil, ferrors.Wrap(ferrors.IO, "reading header", err)
	}
	h, err := decodeHeader(hdrBuf)
	if err != nil {
		f.Close()
		return nil, ferrors.Wrap(ferrors.IO, "decoding header", err)
	}

	meta := make([]*metaEntry, h.MaxFiles)
	entryBuf := make([]byte, entrySize)
	for i := uint32(0); i < h.MaxFiles; i++ {
		if _, err := readFull(f, entryBuf, entryOffset(int(i))); err != nil {
			f.Close()
			return nil, ferrors.Wrap(ferrors.IO, "reading metadata table", err)
		}
		e, err := decodeMetaEntry(entryBuf)
		if err != nil {
			f.Close()
			return nil, ferrors.Wrap(ferrors.IO, "decoding metadata entry", err)
		}
		meta[i] = e
	}

	s := &Store{
		file:     f,
		path:     path,
		readOnly: mode == ReadOnly,
		hdr:      h,
		meta:     meta,
		flockd:   locked,
	}
	logrus.WithFields(logrus.Fields{
		"path":      path,
		"name":      h.Name,
		"version":   h.Version,
		"count":     h.Count,
		"max_files": h.MaxFiles,
	}).Info("store: opened")
	return s, nil
}

// Close flushes (nothing is buffered — every mutation is write-through)
// and releases the file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	logrus.WithField("path", s.path).Info("store: closed")
	if err != nil {
		return ferrors.Wrap(ferrors.IO, "closing store file", err)
	}
	return nil
}

// Header snapshot accessors, used by the dispatcher's startup banner and
// by tests verifying P8 (create/reopen round-trip).

func (s *Store) Name() string       { s.mu.Lock(); defer s.mu.Unlock(); return s.hdr.Name }
func (s *Store) Version() uint32    { s.mu.Lock(); defer s.mu.Unlock(); return s.hdr.Version }
func (s *Store) Count() uint32      { s.mu.Lock(); defer s.mu.Unlock(); return s.hdr.Count }
func (s *Store) MaxFiles() uint32   { s.mu.Lock(); defer s.mu.Unlock(); return s.hdr.MaxFiles }
func (s *Store) ThumbRes() (w, h uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hdr.thumbRes()
}
func (s *Store) SmallRes() (w, h uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hdr.smallRes()
}

func readFull(f *os.File, buf []byte, offset int64) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.ReadAt(buf[n:], offset+int64(n))
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *Store) writeHeader() error {
	if _, err := s.file.WriteAt(s.hdr.encode(), 0); err != nil {
		return ferrors.Wrap(ferrors.IO, "writing header", err)
	}
	return nil
}

func (s *Store) writeEntry(index int) error {
	if _, err := s.file.WriteAt(s.meta[index].encode(), entryOffset(index)); err != nil {
		return ferrors.Wrap(ferrors.IO, "writing metadata entry", err)
	}
	return nil
}
