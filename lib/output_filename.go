package lib

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

func TrimExt(filename string) (baseFilename, ext string) {
	ext = filepath.Ext(filename)
	baseFilename = strings.TrimSuffix(filename, ext)
	return
}

// ReplaceExt swaps the extension of filename, adding one if missing.
func ReplaceExt(filename, ext string) string {
	base, _ := TrimExt(filename)
	return base + "." + strings.TrimPrefix(ext, ".")
}

// IncrementFilename bumps the trailing counter: strip.png -> strip-1.png,
// strip-1.png -> strip-2.png.
func IncrementFilename(filename string) string {
	base, num, ext := splitCounter(filename)
	if base == "" && ext == "" {
		return ""
	}
	return fmt.Sprintf("%v-%v%v", base, num+1, ext)
}

// NextFreeFilename returns filename when nothing exists there yet,
// otherwise a name one past the highest counter already used beside it.
func NextFreeFilename(filename string) (string, error) {
	_, err := os.Stat(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return filename, nil
	}
	if err != nil {
		return "", err
	}

	base, _, ext := splitCounter(filename)
	matches, err := filepath.Glob(base + "*" + ext)
	if err != nil {
		return "", err
	}
	highest := 0
	for _, match := range matches {
		matchBase, num, matchExt := splitCounter(match)
		if matchBase == base && matchExt == ext && num > highest {
			highest = num
		}
	}
	return fmt.Sprintf("%v-%v%v", base, highest+1, ext), nil
}

func splitCounter(filename string) (base string, num int, ext string) {
	ext = filepath.Ext(filename)
	base = strings.TrimSuffix(filename, ext)

	// dotfiles: ".file" has no extension
	if base == "" && ext != "" {
		base, ext = ext, ""
	}
	if base == "" {
		return "", 0, ""
	}

	end := len(base)
	for end > 0 && unicode.IsDigit(rune(base[end-1])) {
		end--
	}
	if n, err := strconv.Atoi(base[end:]); err == nil {
		num = n
	}
	base = base[:end]
	base = strings.TrimSuffix(base, "-")
	return base, num, ext
}
