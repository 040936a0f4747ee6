package store

import (
	"crypto/sha256"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/prasoul/imgfs/internal/ferrors"
	"github.com/prasoul/imgfs/internal/store/codec"
)

// Insert adds blob under id, deduplicating by content hash. See §4.1 of
// the specification for the exact step ordering this method follows:
// capacity check, slot selection, tentative metadata population, the
// duplicate-id/duplicate-content scan, and finally the append-and-commit.
//
// Checks run in this order: argument validation, then the read-only and
// capacity (Full) checks, then the codec's dimension probe, and only then
// any write to the store file.
func (s *Store) Insert(blob []byte, id string) error {
	if id == "" || len(id) > MaxImgIDLen {
		return ferrors.New(ferrors.InvalidImgID, fmt.Sprintf("image id must be 1..%d bytes", MaxImgIDLen))
	}
	if len(blob) == 0 {
		return ferrors.New(ferrors.InvalidArgument, "empty image blob")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return ferrors.New(ferrors.IO, "store opened read-only")
	}
	if s.hdr.Count == s.hdr.MaxFiles {
		return ferrors.New(ferrors.Full, "store is full")
	}

	slot := -1
	for i, e := range s.meta {
		if !e.isValid() {
			slot = i
			break
		}
	}
	if slot == -1 {
		// Invariant 1 guarantees this cannot happen when Count < MaxFiles,
		// but surface a clear error rather than index out of range.
		return ferrors.New(ferrors.Full, "no empty slot available")
	}

	prior := *s.meta[slot] // snapshot for rollback

	width, height, err := codec.Dimensions(blob)
	if err != nil {
		return ferrors.Wrap(ferrors.CodecFailure, "reading image dimensions", err)
	}

	sha := sha256.Sum256(blob)

	entry := &metaEntry{
		Valid:  validNonEmpty,
		ImgID:  id,
		SHA:    sha,
		Width:  width,
		Height: height,
	}
	entry.Size[ResOrig] = uint32(len(blob))
	s.meta[slot] = entry

	// Deduplication pass: scan every other NON_EMPTY entry.
	sharedContent := false
	for j, other := range s.meta {
		if j == slot || !other.isValid() {
			continue
		}
		if other.ImgID == id {
			s.meta[slot] = &prior // restore tentative entry
			return ferrors.New(ferrors.DuplicateID, fmt.Sprintf("image id %q already in use", id))
		}
		if other.SHA == sha {
			entry.Size = other.Size
			entry.Offset = other.Offset
			sharedContent = true
		}
	}

	if !sharedContent {
		pos, err := s.file.Seek(0, 2) // SEEK_END
		if err != nil {
			s.meta[slot] = &prior
			return ferrors.Wrap(ferrors.IO, "seeking to end of store file", err)
		}
		if _, err := s.file.Write(blob); err != nil {
			s.meta[slot] = &prior
			return ferrors.Wrap(ferrors.IO, "appending image blob", err)
		}
		entry.Offset[ResOrig] = uint64(pos)
	}

	s.hdr.Count++
	s.hdr.Version++

	if err := s.writeEntry(slot); err != nil {
		s.meta[slot] = &prior
		s.hdr.Count--
		s.hdr.Version--
		return err
	}
	if err := s.writeHeader(); err != nil {
		s.meta[slot] = &prior
		s.hdr.Count--
		s.hdr.Version--
		return err
	}

	logrus.WithFields(logrus.Fields{
		"img_id":  id,
		"version": s.hdr.Version,
		"dedup":   sharedContent,
	}).Info("store: inserted")
	return nil
}
