package lib

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	DefaultSettingsFile  = "photocage-config.json"
	defaultOutputFilePng = "photo-strip.png"
	defaultOutputFileGif = "photo-strip.gif"
	defaultWindowTitle   = "photocage"
)

type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

type OutputType int

const (
	OutputTypePng OutputType = iota
	OutputTypeGif

	OutputType_Size
)

func (otype OutputType) String() string {
	switch otype {
	case OutputTypePng:
		return "png"
	case OutputTypeGif:
		return "gif"
	}
	return "invalid-output-type"
}

func (otype OutputType) DefaultFilename() string {
	if otype == OutputTypeGif {
		return defaultOutputFileGif
	}
	return defaultOutputFilePng
}

type OutputMethod int

const (
	OutputMethodOverwrite OutputMethod = iota
	OutputMethodNewFile

	OutputMethod_Size
)

func (method OutputMethod) String() string {
	switch method {
	case OutputMethodNewFile:
		return "new file"
	case OutputMethodOverwrite:
		return "overwrite"
	}
	return "invalid-output-method"
}

// Settings is the persisted part of the app state. The session itself,
// photos included, is never written here.
type Settings struct {
	OutputFilename string       `json:"outputFilename"`
	OutputType     OutputType   `json:"outputType"`
	OutputMethod   OutputMethod `json:"outputMethod"`

	// CameraRect is the screen region used as the camera. Empty means
	// the whole primary display.
	CameraRect Rect `json:"cameraRect"`

	WindowRect  Rect   `json:"windowRect"`
	WindowTitle string `json:"windowTitle"`
}

func DefaultSettings() Settings {
	return Settings{
		OutputFilename: defaultOutputFilePng,
		OutputType:     OutputTypePng,
		OutputMethod:   OutputMethodNewFile,
		WindowRect:     Rect{X: 40, Y: 40, W: 960, H: 720},
		WindowTitle:    defaultWindowTitle,
	}
}

// SettingsPath places the settings file next to the executable.
func SettingsPath() string {
	binPath, err := os.Executable()
	if err != nil {
		return DefaultSettingsFile
	}
	return filepath.Join(filepath.Dir(binPath), DefaultSettingsFile)
}

// LoadSettings reads filename over the defaults. A missing file is not an
// error.
func LoadSettings(filename string) (Settings, error) {
	settings := DefaultSettings()

	file, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&settings); err != nil {
		return DefaultSettings(), fmt.Errorf("%v: %w", filename, err)
	}

	if settings.OutputType < 0 || settings.OutputType >= OutputType_Size {
		settings.OutputType = OutputTypePng
	}
	if settings.OutputMethod < 0 || settings.OutputMethod >= OutputMethod_Size {
		settings.OutputMethod = OutputMethodNewFile
	}
	if settings.OutputFilename == "" {
		settings.OutputFilename = settings.OutputType.DefaultFilename()
	}
	if settings.WindowRect.IsEmpty() {
		settings.WindowRect = DefaultSettings().WindowRect
	}
	return settings, nil
}

func SaveSettings(filename string, settings Settings) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(settings)
}
