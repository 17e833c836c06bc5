package camera

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePng(t *testing.T, filename string, w int) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, 2))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writePng(t, filepath.Join(dir, "b.png"), 2)
	writePng(t, filepath.Join(dir, "a.png"), 1)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, expected := range []int{1, 2, 1} {
		frame, ok := src.Snapshot()
		if !ok {
			t.Fatal("expected a frame")
		}
		img, err := frame.Decode()
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != expected {
			t.Errorf("wrong frame order, expected width=%v, got=%v", expected, img.Bounds().Dx())
		}
	}
}

func TestDirSourceEmpty(t *testing.T) {
	if _, err := NewDirSource(t.TempDir()); err == nil {
		t.Error("expected error for a directory without images")
	}
}

func TestPreviewDoesNotAdvance(t *testing.T) {
	dir := t.TempDir()
	writePng(t, filepath.Join(dir, "a.png"), 1)
	writePng(t, filepath.Join(dir, "b.png"), 2)
	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, ok := Preview(src); !ok {
			t.Fatal("expected a preview frame")
		}
	}
	frame, _ := src.Snapshot()
	img, err := frame.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1 {
		t.Errorf("preview consumed frames")
	}
}
