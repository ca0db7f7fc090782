// Package parser classifies the lines of org and markdown note files and
// assembles them into a document tree of headings and links.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/linkorg/internal/apperr"
	"github.com/starford/linkorg/internal/models"
)

// Parse reads r line by line and returns the document it describes. Lines
// that match no pattern are logged at debug level and skipped. Lines have no
// length limit. The only errors are an unknown dialect and a failing reader.
func Parse(r io.Reader, name string, d models.Dialect, logger *slog.Logger) (*models.Document, error) {
	g, err := grammarFor(d)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	doc := models.NewDocument(name)
	b := NewBuilder(doc)

	br := bufio.NewReader(r)
	n := 0
	for {
		text, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w %s: line %d: %w", apperr.ErrUnreadable, name, n+1, err)
		}
		if text == "" && err != nil {
			break
		}
		n++
		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
		if line := g.classify(text, n); line.Kind != Unclassifiable {
			b.Add(line)
		} else {
			logger.Debug("line can't be classified",
				slog.String("file", name),
				slog.Int("line", n),
				slog.String("text", text))
		}
		if err != nil {
			break
		}
	}
	return doc, nil
}

// ParseFile parses the note at path. The dialect is resolved from the
// extension before the file is opened.
func ParseFile(path string, logger *slog.Logger) (*models.Document, error) {
	d, err := DialectFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", apperr.ErrUnreadable, path, err)
	}
	defer f.Close()

	return Parse(f, filepath.Base(path), d, logger)
}
