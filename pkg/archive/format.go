package archive

import (
	"path/filepath"
	"strings"
)

// Format is a supported archive container.
type Format string

// Supported formats.
const (
	FormatZip    Format = "zip"
	FormatTar    Format = "tar"
	FormatTarGz  Format = "tar.gz"
	FormatTarLz4 Format = "tar.lz4"
)

// suffixes are matched case-insensitively, longest first.
var suffixes = []struct {
	suffix string
	format Format
}{
	{suffix: ".tar.lz4", format: FormatTarLz4},
	{suffix: ".tar.gz", format: FormatTarGz},
	{suffix: ".tgz", format: FormatTarGz},
	{suffix: ".tar", format: FormatTar},
	{suffix: ".zip", format: FormatZip},
}

// Detect returns the format of path judged by its file name.
func Detect(path string) (Format, bool) {
	base := strings.ToLower(filepath.Base(path))

	for _, s := range suffixes {
		if strings.HasSuffix(base, s.suffix) && len(base) > len(s.suffix) {
			return s.format, true
		}
	}

	return "", false
}

// Name returns the base name of path without its container extension.
func Name(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)

	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) && len(lower) > len(s.suffix) {
			return base[:len(base)-len(s.suffix)]
		}
	}

	return base
}
