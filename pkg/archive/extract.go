// Package archive extracts archived repositories into temporary working
// trees that are removed when released.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/codelex/pkg/safeconv"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WorkingTree is an extracted archive on disk. Release removes it; it is
// safe to call Release more than once.
type WorkingTree struct {
	root string
	once sync.Once
	err  error
}

// Root returns the directory holding the extracted entries.
func (w *WorkingTree) Root() string {
	return w.root
}

// Release removes the working tree.
func (w *WorkingTree) Release() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.root)
	})

	return w.err
}

// Config configures an Extractor.
type Config struct {
	// TempDir is where working trees are created; empty means os.TempDir().
	TempDir string
	// MaxExtractedSize caps the bytes written per archive; 0 disables the cap.
	MaxExtractedSize int64
}

// Extractor unpacks archives.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for skipped entries.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg Config, opts ...Option) *Extractor {
	e := &Extractor{cfg: cfg, logger: slog.Default()}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Supported reports whether path names a supported archive.
func (e *Extractor) Supported(path string) bool {
	_, ok := Detect(path)

	return ok
}

// Name returns the repository name of an archive: its base name without the
// container extension.
func (e *Extractor) Name(path string) string {
	return Name(path)
}

// Extract unpacks the archive at path into a new working tree. On failure the
// partially written tree is removed and an *ExtractionError is returned.
func (e *Extractor) Extract(ctx context.Context, path string) (*WorkingTree, error) {
	format, ok := Detect(path)
	if !ok {
		return nil, &ExtractionError{Archive: path, Err: ErrUnsupported}
	}

	root, err := os.MkdirTemp(e.cfg.TempDir, "codelex-")
	if err != nil {
		return nil, &ExtractionError{Archive: path, Err: fmt.Errorf("create working tree: %w", err)}
	}

	tree := &WorkingTree{root: root}
	w := &writer{ctx: ctx, root: root, budget: e.cfg.MaxExtractedSize, logger: e.logger, archive: path}

	switch format {
	case FormatZip:
		err = w.extractZip(path)
	case FormatTar, FormatTarGz, FormatTarLz4:
		err = w.extractTar(path, format)
	}

	if err != nil {
		if rmErr := tree.Release(); rmErr != nil {
			e.logger.Warn("failed to remove partial working tree", "root", root, "error", rmErr)
		}

		return nil, &ExtractionError{Archive: path, Err: err}
	}

	e.logger.Debug("archive extracted",
		"archive", path, "root", root, "entries", w.entries, "size", humanize.Bytes(safeconv.ByteCount(w.written)))

	return tree, nil
}

type writer struct {
	ctx     context.Context //nolint:containedctx // scoped to one extraction.
	root    string
	archive string
	budget  int64
	written int64
	entries int
	logger  *slog.Logger
}

func (w *writer) extractZip(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := w.ctx.Err(); err != nil {
			return err
		}

		mode := f.Mode()

		switch {
		case mode.IsDir():
			if err := w.mkdir(f.Name); err != nil {
				return err
			}
		case mode.IsRegular():
			if err := w.writeZipEntry(f); err != nil {
				return err
			}
		default:
			w.logger.Debug("skipping archive entry", "archive", w.archive, "entry", f.Name, "mode", mode.String())
		}
	}

	return nil
}

func (w *writer) writeZipEntry(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	return w.writeFile(f.Name, rc)
}

func (w *writer) extractTar(path string, format Format) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open tar: %w", err)
	}
	defer file.Close()

	var src io.Reader = file

	switch format {
	case FormatTarGz:
		gz, gzErr := gzip.NewReader(file)
		if gzErr != nil {
			return fmt.Errorf("open gzip stream: %w", gzErr)
		}
		defer gz.Close()

		src = gz
	case FormatTarLz4:
		src = lz4.NewReader(file)
	case FormatZip, FormatTar:
	}

	tr := tar.NewReader(src)

	for {
		if err := w.ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := w.mkdir(hdr.Name); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := w.writeFile(hdr.Name, tr); err != nil {
				return err
			}
		default:
			w.logger.Debug("skipping archive entry", "archive", w.archive, "entry", hdr.Name, "type", string(hdr.Typeflag))
		}
	}
}

// target resolves an entry name inside root. Entries escaping root are
// reported with ok=false.
func (w *writer) target(name string) (string, bool) {
	clean := filepath.Join(w.root, filepath.FromSlash(name))

	rel, err := filepath.Rel(w.root, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		w.logger.Debug("skipping archive entry outside working tree", "archive", w.archive, "entry", name)

		return "", false
	}

	return clean, true
}

func (w *writer) mkdir(name string) error {
	dir, ok := w.target(name)
	if !ok {
		return nil
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", name, err)
	}

	return nil
}

func (w *writer) writeFile(name string, r io.Reader) error {
	dst, ok := w.target(name)
	if !ok {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", name, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	src := r
	if w.budget > 0 {
		src = io.LimitReader(r, w.budget-w.written+1)
	}

	n, copyErr := io.Copy(out, src)
	closeErr := out.Close()
	w.written += n
	w.entries++

	if copyErr != nil {
		return fmt.Errorf("write %s: %w", name, copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", name, closeErr)
	}

	if w.budget > 0 && w.written > w.budget {
		return fmt.Errorf("%w: more than %s", ErrSizeBudget, humanize.Bytes(safeconv.ByteCount(w.budget)))
	}

	return nil
}
