package camera

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kbinani/screenshot"
	"github.com/nvlled/photocage/lib/logger"
	"github.com/nvlled/photocage/lib/photo"
)

// Source returns the current still, or false when no frame is ready yet.
type Source interface {
	Snapshot() (photo.Frame, bool)
}

type FuncSource func() (photo.Frame, bool)

// Peeker is a Source that can show what it would capture without
// consuming it.
type Peeker interface {
	Peek() (photo.Frame, bool)
}

// Preview reads a frame for display only.
func Preview(src Source) (photo.Frame, bool) {
	if p, ok := src.(Peeker); ok {
		return p.Peek()
	}
	return src.Snapshot()
}

func (fn FuncSource) Snapshot() (photo.Frame, bool) { return fn() }

// ScreenSource treats a rectangle of the display as the camera.
// An empty Bounds captures the whole primary display.
type ScreenSource struct {
	Bounds image.Rectangle

	mu      sync.Mutex
	lastErr string
}

func NewScreenSource(bounds image.Rectangle) *ScreenSource {
	return &ScreenSource{Bounds: bounds}
}

func (src *ScreenSource) Snapshot() (photo.Frame, bool) {
	bounds := src.Bounds
	if bounds.Empty() {
		if screenshot.NumActiveDisplays() == 0 {
			return photo.Frame{}, false
		}
		bounds = screenshot.GetDisplayBounds(0)
	}

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		src.logOnce(err)
		return photo.Frame{}, false
	}
	frame, err := photo.EncodeJPEG(img)
	if err != nil {
		src.logOnce(err)
		return photo.Frame{}, false
	}
	return frame, true
}

// logOnce keeps a camera that is not ready from flooding the log every tick.
func (src *ScreenSource) logOnce(err error) {
	src.mu.Lock()
	defer src.mu.Unlock()
	if err.Error() == src.lastErr {
		return
	}
	src.lastErr = err.Error()
	logger.Scope("camera").Debugf("screen capture not ready: %v", err)
}

var imageExts = map[string]string{
	".jpg":  photo.MimeJPEG,
	".jpeg": photo.MimeJPEG,
	".png":  photo.MimePNG,
	".gif":  "image/gif",
}

// DirSource plays back the image files of a directory in name order,
// wrapping around at the end.
type DirSource struct {
	files []string
	next  int
	mu    sync.Mutex
}

func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExts[ext]; ok && !entry.IsDir() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %v", dir)
	}
	sort.Strings(files)
	return &DirSource{files: files}, nil
}

func (src *DirSource) Snapshot() (photo.Frame, bool) {
	src.mu.Lock()
	filename := src.files[src.next]
	src.next = (src.next + 1) % len(src.files)
	src.mu.Unlock()

	frame, err := ReadFrame(filename)
	if err != nil {
		logger.Scope("camera").Warnf("skipping %v: %v", filename, err)
		return photo.Frame{}, false
	}
	return frame, true
}

func (src *DirSource) Peek() (photo.Frame, bool) {
	src.mu.Lock()
	filename := src.files[src.next]
	src.mu.Unlock()

	frame, err := ReadFrame(filename)
	return frame, err == nil
}

func ReadFrame(filename string) (photo.Frame, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return photo.Frame{}, err
	}
	mime, ok := imageExts[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		mime = photo.MimeJPEG
	}
	return photo.Frame{Data: data, Mime: mime}, nil
}
