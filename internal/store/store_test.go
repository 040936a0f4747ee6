package store

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"testing"
)

// testJPEG renders a tiny solid-color JPEG at w x h for use as fixture data.
func testJPEG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding fixture jpeg: %v", err)
	}
	return buf.Bytes()
}

func openTestStore(t *testing.T, opts CreateOptions) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.imgfs")
	if err := Create(path, opts); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s, err := Open(path, ReadWrite)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestCreateOpenRoundTrip(t *testing.T) {
	opts := DefaultCreateOptions()
	opts.MaxFiles = 4
	s, path := openTestStore(t, opts)

	if got, want := s.Name(), storeName; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
	if got := s.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
	if got := s.MaxFiles(); got != 4 {
		t.Errorf("MaxFiles() = %d, want 4", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path, ReadOnly)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if got := s2.Version(); got != 0 {
		t.Errorf("Version() after reopen = %d, want 0", got)
	}
}

func TestInsertAndRead(t *testing.T) {
	opts := DefaultCreateOptions()
	opts.MaxFiles = 4
	s, _ := openTestStore(t, opts)

	blob := testJPEG(t, 20, 10, color.RGBA{255, 0, 0, 255})
	if err := s.Insert(blob, "pic1"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := s.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
	if got := s.Version(); got != 1 {
		t.Errorf("Version() = %d, want 1", got)
	}

	got, err := s.Read("pic1", ResOrig)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("Read returned %d bytes, want %d bytes matching the original blob", len(got), len(blob))
	}
}

func TestInsertDuplicateID(t *testing.T) {
	opts := DefaultCreateOptions()
	opts.MaxFiles = 4
	s, _ := openTestStore(t, opts)

	blob := testJPEG(t, 20, 10, color.RGBA{0, 255, 0, 255})
	if err := s.Insert(blob, "dup"); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if err := s.Insert(blob, "dup"); err == nil {
		t.Fatal("expected duplicate-id error, got nil")
	}
	if got := s.Count(); got != 1 {
		t.Errorf("Count() after duplicate insert = %d, want 1", got)
	}
}

func TestInsertContentDedup(t *testing.T) {
	opts := DefaultCreateOptions()
	opts.MaxFiles = 4
	s, _ := openTestStore(t, opts)

	blob := testJPEG(t, 30, 15, color.RGBA{0, 0, 255, 255})
	if err := s.Insert(blob, "a"); err != nil {
		t.Fatalf("Insert a: %v", err)
	}
	if err := s.Insert(blob, "b"); err != nil {
		t.Fatalf("Insert b: %v", err)
	}

	a, err := s.Read("a", ResOrig)
	if err != nil {
		t.Fatalf("Read a: %v", err)
	}
	b, err := s.Read("b", ResOrig)
	if err != nil {
		t.Fatalf("Read b: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("deduplicated entries should read back identical bytes")
	}
}

func TestInsertFull(t *testing.T) {
	opts := DefaultCreateOptions()
	opts.MaxFiles = 1
	s, _ := openTestStore(t, opts)

	blob := testJPEG(t, 8, 8, color.RGBA{1, 2, 3, 255})
	if err := s.Insert(blob, "one"); err != nil {
		t.Fatalf("Insert one: %v", err)
	}
	err := s.Insert(blob, "two")
	if err == nil {
		t.Fatal("expected Full error inserting into a store at capacity")
	}
}

func TestReadNotFound(t *testing.T) {
	opts := DefaultCreateOptions()
	s, _ := openTestStore(t, opts)

	if _, err := s.Read("missing", ResOrig); err == nil {
		t.Fatal("expected error reading a nonexistent id")
	}
}

func TestLazyResize(t *testing.T) {
	opts := DefaultCreateOptions()
	opts.MaxFiles = 4
	opts.ThumbResW, opts.ThumbResH = 16, 16
	s, _ := openTestStore(t, opts)

	blob := testJPEG(t, 100, 50, color.RGBA{9, 9, 9, 255})
	if err := s.Insert(blob, "pic"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	thumb, err := s.Read("pic", ResThumb)
	if err != nil {
		t.Fatalf("Read thumb: %v", err)
	}
	if len(thumb) == 0 {
		t.Fatal("expected non-empty materialized thumbnail")
	}

	versionBefore := s.Version()
	if _, err := s.Read("pic", ResThumb); err != nil {
		t.Fatalf("second Read thumb: %v", err)
	}
	if got := s.Version(); got != versionBefore {
		t.Errorf("Version() changed from %d to %d on a cache hit", versionBefore, got)
	}
}

func TestDelete(t *testing.T) {
	opts := DefaultCreateOptions()
	opts.MaxFiles = 4
	s, _ := openTestStore(t, opts)

	blob := testJPEG(t, 8, 8, color.RGBA{1, 1, 1, 255})
	if err := s.Insert(blob, "gone"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := s.Count(); got != 0 {
		t.Errorf("Count() after delete = %d, want 0", got)
	}
	if _, err := s.Read("gone", ResOrig); err == nil {
		t.Error("expected error reading a deleted id")
	}
}

func TestList(t *testing.T) {
	opts := DefaultCreateOptions()
	opts.MaxFiles = 4
	s, _ := openTestStore(t, opts)

	empty, err := s.List(ListText)
	if err != nil {
		t.Fatalf("List empty: %v", err)
	}
	if empty != "<empty imgFS>\n" {
		t.Errorf("List(empty) = %q, want the empty-store placeholder", empty)
	}

	blob := testJPEG(t, 5, 5, color.RGBA{1, 1, 1, 255})
	if err := s.Insert(blob, "only"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	out, err := s.List(ListJSON)
	if err != nil {
		t.Fatalf("List json: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("only")) {
		t.Errorf("List(json) = %q, want it to contain the inserted id", out)
	}
}
