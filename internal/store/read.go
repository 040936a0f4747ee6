package store

import (
	"github.com/sirupsen/logrus"

	"github.com/prasoul/imgfs/internal/ferrors"
	"github.com/prasoul/imgfs/internal/store/codec"
)

// Read returns the bytes of image id at the requested resolution. If the
// variant has never been materialized, it is lazily rendered from the
// original and cached on disk before being returned — see §4.1.a of the
// specification. Lazy materialization does not bump the store's version:
// it changes the entry's size/offset fields only.
func (s *Store) Read(id string, res Resolution) ([]byte, error) {
	if id == "" {
		return nil, ferrors.New(ferrors.InvalidImgID, "empty image id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot := -1
	for i, e := range s.meta {
		if e.isValid() && e.ImgID == id {
			slot = i
			break
		}
	}
	if slot == -1 {
		return nil, ferrors.New(ferrors.ImageNotFound, "image id "+id+" not found")
	}

	entry := s.meta[slot]

	if entry.Size[res] == 0 && res != ResOrig {
		if err := s.materialize(slot, res); err != nil {
			return nil, err
		}
		entry = s.meta[slot]
	}

	buf := make([]byte, entry.Size[res])
	if _, err := readFull(s.file, buf, int64(entry.Offset[res])); err != nil {
		return nil, ferrors.Wrap(ferrors.IO, "reading image blob", err)
	}

	logrus.WithFields(logrus.Fields{
		"img_id":     id,
		"resolution": res.String(),
	}).Debug("store: read")
	return buf, nil
}

// materialize renders the requested resolution from the original blob and
// appends it to the store, updating the entry's size/offset in place.
// Caller must hold s.mu and have already confirmed slot is NON_EMPTY.
func (s *Store) materialize(slot int, res Resolution) error {
	entry := s.meta[slot]
	prior := *entry

	orig := make([]byte, entry.Size[ResOrig])
	if _, err := readFull(s.file, orig, int64(entry.Offset[ResOrig])); err != nil {
		return ferrors.Wrap(ferrors.IO, "reading original image for resize", err)
	}

	var targetW, targetH uint16
	switch res {
	case ResThumb:
		targetW, targetH = s.hdr.thumbRes()
	case ResSmall:
		targetW, targetH = s.hdr.smallRes()
	default:
		return ferrors.New(ferrors.InvalidArgument, "cannot materialize the original resolution")
	}

	resized, err := codec.FitToHeight(orig, targetW, targetH)
	if err != nil {
		s.meta[slot] = &prior
		return ferrors.Wrap(ferrors.CodecFailure, "resizing image", err)
	}

	pos, err := s.file.Seek(0, 2)
	if err != nil {
		s.meta[slot] = &prior
		return ferrors.Wrap(ferrors.IO, "seeking to end of store file", err)
	}
	if _, err := s.file.Write(resized); err != nil {
		s.meta[slot] = &prior
		return ferrors.Wrap(ferrors.IO, "appending resized image", err)
	}

	entry.Size[res] = uint32(len(resized))
	entry.Offset[res] = uint64(pos)

	if err := s.writeEntry(slot); err != nil {
		s.meta[slot] = &prior
		return err
	}

	logrus.WithFields(logrus.Fields{
		"img_id":     entry.ImgID,
		"resolution": res.String(),
	}).Info("store: materialized variant")
	return nil
}
