package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// TempPath returns a unique, not yet created path in dir
func TempPath(dir, prefix, ext string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, prefix+"-"+uuid.NewString()+ext)
}

// CleanupFiles removes multiple files, ignoring errors
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// ReplaceExt swaps the extension of path, ext includes the dot
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
