package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/campus-crawler/pkg/failure"
)

// GetFileExtension extracts the file extension from a path, or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove the leading dot
	return strings.TrimPrefix(ext, ".")
}

// EnsureDir checks if a given directory plus the following path exists, then creates one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	target := filepath.Join(targetPath...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// RemoveGlob deletes every regular file matching the given glob pattern.
// Used by durable state owners to wipe their files on a restarted crawl.
func RemoveGlob(pattern string) failure.ClassifiedError {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		if err := os.Remove(match); err != nil {
			return &FileError{
				Message:   fmt.Sprintf("%v", err),
				Retryable: false,
				Cause:     ErrCauseRemoveError,
			}
		}
	}
	return nil
}

// ReadWordFile reads a whitespace-separated token file into a set.
func ReadWordFile(path string) (map[string]struct{}, failure.ClassifiedError) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseReadError,
		}
	}
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(string(content)) {
		set[tok] = struct{}{}
	}
	return set, nil
}
