// Package collect resolves a directory and glob pattern into the ordered
// list of files that feed the assembler.
package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// SortMode selects the key used to order collected files.
type SortMode string

const (
	SortByName  SortMode = "name"  // case-insensitive base name
	SortByMTime SortMode = "mtime" // modification time
	SortByCTime SortMode = "ctime" // inode change time where available
)

// ParseSortMode validates a --sort flag value.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case SortByName, SortByMTime, SortByCTime:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("invalid sort mode %q (expected name, mtime or ctime)", s)
}

// File is a matched file together with the keys the sort modes need.
// Immutable once collected.
type File struct {
	Path  string    // absolute path
	Name  string    // base name
	MTime time.Time // modification time
	CTime time.Time // change time; falls back to MTime on platforms without one
}

// Collect resolves baseDir, matches pattern beneath it and returns the
// regular files in sorted order. The pattern uses doublestar syntax, so
// "*.txt" stays at the top level while "**/*.txt" recurses. It is an error
// for the directory to be missing or for the pattern to match nothing.
func Collect(baseDir, pattern string, mode SortMode, logger *zap.Logger) ([]File, error) {
	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", baseDir, err)
	}

	info, err := os.Stat(absDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory not found: %s", absDir)
	}

	matches, err := doublestar.Glob(os.DirFS(absDir), pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	logger.Debug("Glob matched paths",
		zap.String("directory", absDir),
		zap.String("pattern", pattern),
		zap.Int("matches", len(matches)))

	var files []File
	for _, m := range matches {
		path := filepath.Join(absDir, filepath.FromSlash(m))
		fi, err := os.Stat(path)
		if err != nil {
			logger.Warn("Skipping unstatable match", zap.String("path", path), zap.Error(err))
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, File{
			Path:  path,
			Name:  fi.Name(),
			MTime: fi.ModTime(),
			CTime: changeTime(fi),
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files matched pattern %q in %s", pattern, absDir)
	}

	sortFiles(files, mode)
	return files, nil
}

// sortFiles orders files in place by the chosen key. The sort is stable;
// there is no tie-break beyond the key itself.
func sortFiles(files []File, mode SortMode) {
	switch mode {
	case SortByMTime:
		sort.SliceStable(files, func(i, j int) bool {
			return files[i].MTime.Before(files[j].MTime)
		})
	case SortByCTime:
		sort.SliceStable(files, func(i, j int) bool {
			return files[i].CTime.Before(files[j].CTime)
		})
	default:
		sort.SliceStable(files, func(i, j int) bool {
			return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
		})
	}
}
