// Package assemble turns an ordered list of collected files into the single
// document text that gets uploaded, and slices that text into chunks sized
// for the remote API.
package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/matsoncook/GoogleDocsApi/pkg/collect"
)

// Separator is appended after every file body.
var Separator = "\n" + strings.Repeat("-", 72) + "\n\n"

// Build concatenates the files into one document. Each file contributes a
// "### <relative path> ###" header, its decoded body and the separator.
// A file that cannot be read contributes an inline error marker instead of
// aborting the run. The result is trimmed of trailing whitespace and ends
// with exactly one newline.
func Build(files []collect.File, baseDir, encodingName string, logger *zap.Logger) (string, error) {
	dec, err := newDecoder(encodingName)
	if err != nil {
		return "", err
	}

	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		logger.Warn("Failed to resolve base directory, headers will use absolute paths",
			zap.String("directory", baseDir), zap.Error(err))
		absDir = baseDir
	}

	var b strings.Builder
	for _, f := range files {
		body, readErr := readFile(f.Path, dec)
		if readErr != nil {
			logger.Warn("Failed to read file, embedding error marker",
				zap.String("path", f.Path), zap.Error(readErr))
			body = fmt.Sprintf("[Error reading %s: %v]\n", f.Path, readErr)
		}

		b.WriteString("### " + headerPath(f.Path, absDir) + " ###\n\n")
		b.WriteString(body)
		b.WriteString(Separator)
	}

	return strings.TrimRightFunc(b.String(), unicode.IsSpace) + "\n", nil
}

// headerPath renders the path relative to the base directory when possible,
// slash-separated; files outside the base directory keep their absolute path.
func headerPath(path, absDir string) string {
	rel, err := filepath.Rel(absDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// readFile reads and decodes one file. Bytes that are invalid under the
// encoding come back as U+FFFD rather than failing the decode.
func readFile(path string, dec *encoding.Decoder) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	decoded, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decoding failed: %w", err)
	}
	return string(decoded), nil
}

// newDecoder resolves an IANA encoding name ("utf-8", "iso-8859-1", ...)
// to a decoder.
func newDecoder(name string) (*encoding.Decoder, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return enc.NewDecoder(), nil
}
