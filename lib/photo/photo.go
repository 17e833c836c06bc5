// Package photo holds the encoded still images passed between the
// capture sequencer, the handoff channel and the strip composer.
package photo

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	// decoders for frames that come from disk or a camera
	_ "image/gif"
	_ "image/png"
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"

	JPEGQuality = 92
)

var ErrDataURL = errors.New("malformed data url")

// Frame is one encoded still. Data is never modified after creation.
type Frame struct {
	Data []byte
	Mime string
}

func (f Frame) IsEmpty() bool { return len(f.Data) == 0 }

// Key identifies the frame content; equal bytes give equal keys.
func (f Frame) Key() string {
	sum := sha1.Sum(f.Data)
	return hex.EncodeToString(sum[:])
}

func (f Frame) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(f.Data))
	return img, err
}

func (f Frame) DataURL() string {
	mime := f.Mime
	if mime == "" {
		mime = MimeJPEG
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// ParseDataURL accepts base64 data urls only, which is what DataURL emits.
func ParseDataURL(url string) (Frame, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return Frame{}, ErrDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Frame{}, ErrDataURL
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return Frame{}, fmt.Errorf("%w: not base64", ErrDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrDataURL, err)
	}
	return Frame{Data: data, Mime: mime}, nil
}

func EncodeJPEG(img image.Image) (Frame, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Frame{}, err
	}
	return Frame{Data: buf.Bytes(), Mime: MimeJPEG}, nil
}
