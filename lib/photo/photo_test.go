package photo

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestDataURL(t *testing.T) {
	frame := Frame{Data: []byte("jpeg bytes"), Mime: MimeJPEG}
	url := frame.DataURL()
	if url != "data:image/jpeg;base64,anBlZyBieXRlcw==" {
		t.Errorf("unexpected data url %v", url)
	}

	parsed, err := ParseDataURL(url)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Mime != MimeJPEG || !bytes.Equal(parsed.Data, frame.Data) {
		t.Errorf("wrong frame %+v", parsed)
	}
	if parsed.Key() != frame.Key() {
		t.Errorf("equal bytes must give equal keys")
	}
}

func TestParseDataURLErrors(t *testing.T) {
	for _, url := range []string{
		"",
		"image/png;base64,AAAA",
		"data:image/png;base64",
		"data:image/png,AAAA",
		"data:image/png;base64,###",
	} {
		if _, err := ParseDataURL(url); !errors.Is(err, ErrDataURL) {
			t.Errorf("%q: expected ErrDataURL, got %v", url, err)
		}
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.Set(1, 1, color.White)
	frame, err := EncodeJPEG(img)
	if err != nil {
		t.Fatal(err)
	}
	if frame.IsEmpty() || frame.Mime != MimeJPEG {
		t.Fatalf("unexpected frame %v", frame.Mime)
	}
	decoded, err := frame.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Size() != (image.Point{8, 6}) {
		t.Errorf("wrong size %v", decoded.Bounds().Size())
	}
}
