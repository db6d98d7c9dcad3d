/*
This file defines the backing store interface and its implementations.
We don't want to execute disk I/O in test, so it's better to use byte slice instead of actual file in test.
For this reason, store interface is defined. All page I/O is offset-addressed
(io.ReaderAt/io.WriterAt), so the store carries no seek position.
The implementations are:
- fileStore: wrapper of os.File
- memStore: wrapper of memfile.File, which emulates os.File on a byte slice.
  this is intended to be used in test and for ephemeral units.
*/
package disk

import (
	"io"
	"os"

	"github.com/dsnet/golib/memfile"
	"github.com/pkg/errors"
)

// store implements the operations necessary for a melesdb page file.
type store interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	Sync() error
	Close() error
}

// fileStore is file-backed store
type fileStore struct {
	*os.File
}

// Size returns the store's size
func (fs fileStore) Size() (int64, error) {
	stat, err := fs.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "Stat failed")
	}
	return stat.Size(), nil
}

// memStore is memory-backed store
type memStore struct {
	*memfile.File
}

// Size returns the store's size
func (ms memStore) Size() (int64, error) {
	return int64(len(ms.Bytes())), nil
}

// Sync doesn't do anything
func (ms memStore) Sync() error {
	// on-memory byte slice doesn't need sync
	return nil
}

// Close doesn't do anything
func (ms memStore) Close() error {
	return nil
}
