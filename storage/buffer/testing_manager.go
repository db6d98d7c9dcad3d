package buffer

import (
	"github.com/melesdb/melesdb/storage/disk"
)

// the production storage unit must satisfy the contract
var _ File = (*disk.File)(nil)

// TestingNewManager initializes a buffer manager with a memory-backed storage
// unit. This prevents unnecessary disk I/O in tests.
func TestingNewManager(poolSize uint32) (*Manager, *disk.File) {
	return NewManager(poolSize), disk.TestingNewFile("test")
}
