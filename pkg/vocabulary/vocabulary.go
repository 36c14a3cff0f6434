// Package vocabulary extracts the documentation and code vocabularies of a
// repository so their overlap can be scored.
package vocabulary

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/codelex/pkg/alg/jaccard"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/comments"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/identifiers"
	"github.com/Sumatoshi-tech/codelex/pkg/pysyntax"
	"github.com/Sumatoshi-tech/codelex/pkg/textutil"
)

// DefaultReadmePrefix selects documentation files by case-insensitive name prefix.
const DefaultReadmePrefix = "readme"

// TokenSets are the two vocabularies of a repository.
type TokenSets struct {
	Docs map[string]struct{}
	Code map[string]struct{}
}

// Score returns the Jaccard similarity of the two vocabularies.
func (s TokenSets) Score() float64 {
	return jaccard.Score(s.Docs, s.Code)
}

// Tokenize lower-cases text and returns the set of its [a-z0-9_] runs.
func Tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	addTokens(out, text)

	return out
}

func addTokens(set map[string]struct{}, text string) {
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), isSeparator) {
		set[tok] = struct{}{}
	}
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		return false
	default:
		return true
	}
}

// Config configures an Extractor.
type Config struct {
	ReadmePrefix  string
	CommentMarker string
}

// Extractor builds TokenSets from an extracted repository.
type Extractor struct {
	parser pysyntax.FileParser
	cfg    Config
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor parsing with parser.
func NewExtractor(parser pysyntax.FileParser, cfg Config, opts ...Option) *Extractor {
	if cfg.ReadmePrefix == "" {
		cfg.ReadmePrefix = DefaultReadmePrefix
	}

	if cfg.CommentMarker == "" {
		cfg.CommentMarker = comments.DefaultMarker
	}

	e := &Extractor{parser: parser, cfg: cfg, logger: slog.Default()}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract returns the vocabularies of the repository at root. Docs come from
// README files, docstrings and comments; code from declared and referenced
// names in files. A file that cannot be read or parsed contributes nothing.
// The only error is a cancelled ctx.
func (e *Extractor) Extract(ctx context.Context, root string, files []string) (TokenSets, error) {
	sets := TokenSets{Docs: make(map[string]struct{}), Code: make(map[string]struct{})}

	for _, text := range e.readmes(root) {
		addTokens(sets.Docs, text)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return sets, err
		}

		e.addFile(ctx, &sets, path)
	}

	return sets, nil
}

func (e *Extractor) addFile(ctx context.Context, sets *TokenSets, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		e.logger.Debug("vocabulary: skipping unreadable file", "path", path, "error", err)

		return
	}

	tree, err := e.parser.ParseFile(ctx, path, content)
	if err != nil {
		e.logger.Debug("vocabulary: skipping unparsable file", "path", path, "error", err)

		return
	}

	for _, c := range commentTexts(tree, e.cfg.CommentMarker) {
		addTokens(sets.Docs, c)
	}

	if tree.HasErrors {
		e.logger.Debug("vocabulary: syntax errors, using comments only", "path", path)

		return
	}

	for _, d := range Docstrings(tree) {
		addTokens(sets.Docs, d)
	}

	for _, name := range identifiers.FromSyntax(tree) {
		addTokens(sets.Code, name)
	}
}

// readmes returns the contents of README files under root in path order.
func (e *Extractor) readmes(root string) []string {
	var paths []string

	prefix := strings.ToLower(e.cfg.ReadmePrefix)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasPrefix(strings.ToLower(d.Name()), prefix) {
			paths = append(paths, path)
		}

		return nil
	})

	slices.Sort(paths)

	texts := make([]string, 0, len(paths))

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			e.logger.Debug("vocabulary: skipping unreadable readme", "path", p, "error", err)

			continue
		}

		if textutil.IsBinary(data) {
			e.logger.Debug("vocabulary: skipping binary readme", "path", p)

			continue
		}

		texts = append(texts, string(data))
	}

	return texts
}

func commentTexts(tree *pysyntax.Tree, marker string) []string {
	var out []string

	pysyntax.Inspect(tree.Root, func(n, _ *pysyntax.Node) bool {
		if n.Type == "comment" {
			text := tree.Text(n)
			for marker != "" && strings.HasPrefix(text, marker) {
				text = text[len(marker):]
			}

			out = append(out, strings.TrimSpace(text))

			return false
		}

		return true
	})

	return out
}
