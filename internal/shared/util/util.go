package util

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BaseName returns the segment after the last '/' or OS separator.
// A value without separators is returned unchanged.
func BaseName(p string) string {
	idx := strings.LastIndexByte(p, '/')
	if filepath.Separator != '/' {
		if i := strings.LastIndexByte(p, filepath.Separator); i > idx {
			idx = i
		}
	}
	return p[idx+1:]
}

// RelativeSlash returns p relative to root using forward slashes.
// When p is not under root the slash form of p is returned.
func RelativeSlash(root, p string) string {
	if root == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// UniqueCleanPaths cleans paths, drops empties and duplicates, and keeps first-seen order.
func UniqueCleanPaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// WriteFileWithDirs creates parent directories (0755) and writes the file with perm.
func WriteFileWithDirs(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}
