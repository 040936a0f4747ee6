package store

import (
	"github.com/sirupsen/logrus"

	"github.com/prasoul/imgfs/internal/ferrors"
)

// Delete marks id's slot EMPTY. The blob bytes it pointed at are never
// reclaimed: the append-only region only ever grows, matching §4.1's
// description of delete as a metadata-only operation.
func (s *Store) Delete(id string) error {
	if id == "" {
		return ferrors.New(ferrors.InvalidImgID, "empty image id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return ferrors.New(ferrors.IO, "store opened read-only")
	}

	slot := -1
	for i, e := range s.meta {
		if e.isValid() && e.ImgID == id {
			slot = i
			break
		}
	}
	if slot == -1 {
		return ferrors.New(ferrors.ImageNotFound, "image id "+id+" not found")
	}

	prior := *s.meta[slot]
	s.meta[slot] = &metaEntry{}

	s.hdr.Count--
	s.hdr.Version++

	if err := s.writeEntry(slot); err != nil {
		s.meta[slot] = &prior
		s.hdr.Count++
		s.hdr.Version--
		return err
	}
	if err := s.writeHeader(); err != nil {
		s.meta[slot] = &prior
		s.hdr.Count++
		s.hdr.Version--
		return err
	}

	logrus.WithFields(logrus.Fields{
		"img_id":  id,
		"version": s.hdr.Version,
	}).Info("store: deleted")
	return nil
}
