package app

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"importguard/internal/shared/util"
)

// DiscoverOptions describes which files make up one validation run.
type DiscoverOptions struct {
	Root         string
	SourceDir    string
	EntryFiles   []string
	ExcludeDirs  []string
	ExcludeFiles []string
}

// DiscoverFiles returns candidate files as slash-separated paths relative to
// Root: the source tree in lexical walk order, then the entry files that
// exist. Each path appears once. A missing source directory is skipped; any
// other walk failure is returned.
func DiscoverFiles(opts DiscoverOptions, supported func(string) bool) ([]string, error) {
	dirGlobs, err := util.CompileGlobs("exclude dir", opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := util.CompileGlobs("exclude file", opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	root := opts.Root
	if root == "" {
		root = "."
	}

	seen := make(map[string]bool)
	files := make([]string, 0)
	add := func(abs string) {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			rel = abs
		}
		rel = filepath.ToSlash(rel)
		if !seen[rel] {
			seen[rel] = true
			files = append(files, rel)
		}
	}

	sourceRoot := filepath.Join(root, opts.SourceDir)
	err = filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if d.IsDir() {
			if path != sourceRoot && util.MatchAny(dirGlobs, base) {
				return filepath.SkipDir
			}
			return nil
		}
		if !supported(path) || util.MatchAny(fileGlobs, base) {
			return nil
		}
		if !d.Type().IsRegular() && !listedSymlink(path, d) {
			return nil
		}
		add(path)
		return nil
	})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("source directory not found, skipping", "path", sourceRoot)
	case err != nil:
		return nil, err
	}

	for _, entry := range opts.EntryFiles {
		path := filepath.Join(root, entry)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			slog.Debug("entry file not present", "path", path)
			continue
		}
		add(path)
	}

	return files, nil
}

// listedSymlink reports whether a non-regular entry is a symlink that is
// listed as a file: one to a file, or a dangling one, which later surfaces
// as an unreadable file. Links to directories are neither listed nor followed.
func listedSymlink(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err != nil || !info.IsDir()
}
