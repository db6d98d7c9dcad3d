package disk

import (
	"path/filepath"
	"testing"
)

// TestingNewFile returns a memory-backed storage unit. This prevents unnecessary disk I/O in tests.
func TestingNewFile(name string) *File {
	return OpenMem(name)
}

// TestingNewTempFile returns a file-backed storage unit under a temp directory.
// the generated file is removed after the test is completed.
func TestingNewTempFile(t *testing.T) (*File, error) {
	return Open(filepath.Join(t.TempDir(), "main.db"))
}
