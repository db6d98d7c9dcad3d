/*
Disk layer manages storage units.

A storage unit is one File: a flat collection of fixed-size pages addressed by
page number. The buffer manager (see storage/buffer) holds non-owning File
handles and identifies a cached page by (handle, page number), so two handles
are two units even when they name the same path. Callers should keep one
handle per unit.

Deleted page numbers are remembered in memory and handed out again by
AllocatePage before the unit grows. The free set is not persisted: a reopened
unit sees formerly deleted slots as zero pages and counts them in NumPages.
Reclaiming them durably needs a free map page, which melesdb does not have yet.
*/
package disk

import (
	"os"
	"sync"

	"github.com/dsnet/golib/memfile"
	"github.com/melesdb/melesdb/storage/page"
	"github.com/pkg/errors"
)

var (
	// ErrPageNotExist is returned when the page number is out of the unit's range or the page has been deleted
	ErrPageNotExist = errors.New("page does not exist in the storage unit")
	// ErrPageNumberExceedsMax is returned when no fresh page number is left in the unit
	ErrPageNumberExceedsMax = errors.New("page number exceeds the max")
)

// File is a storage unit.
type File struct {
	name string
	st   store

	// mu serializes store access and the bookkeeping below.
	// a handle may be shared between goroutines.
	mu sync.Mutex
	// npages is the number of page slots in the unit, deleted slots included
	npages page.PageID
	// freed is deleted page numbers, reused LIFO by AllocatePage
	freed []page.PageID
}

// Open opens the page file at path, creating it when absent.
func Open(path string) (*File, error) {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "os.OpenFile failed")
	}
	f := &File{name: path, st: fileStore{fd}}
	size, err := f.st.Size()
	if err != nil {
		fd.Close()
		return nil, errors.Wrap(err, "Size failed")
	}
	if size%page.PageSize != 0 {
		fd.Close()
		return nil, errors.Errorf("file size %d of %s is not page-aligned", size, path)
	}
	f.npages = page.PageID(size / page.PageSize)
	return f, nil
}

// OpenMem opens a memory-backed unit. The name is for diagnostics only.
func OpenMem(name string) *File {
	return &File{
		name: name,
		st:   memStore{memfile.New(make([]byte, 0))},
	}
}

// Name returns the unit's identifier for diagnostics and error messages
func (f *File) Name() string {
	return f.name
}

// NumPages returns the number of page slots in the unit, deleted slots included
func (f *File) NumPages() page.PageID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.npages
}

// ReadPage reads the page's content into p
func (f *File) ReadPage(pageID page.PageID, p page.PagePtr) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.exists(pageID) {
		return errors.Wrapf(ErrPageNotExist, "read page %d of %s", pageID, f.name)
	}
	n, err := f.st.ReadAt(p[:], page.CalculateFileOffset(pageID))
	if err != nil {
		return errors.Wrap(err, "ReadAt failed")
	}
	if n != page.PageSize {
		return errors.Errorf("ReadAt failed to read the whole page: %d", n)
	}
	return nil
}

// WritePage writes the page's content, addressed by the number embedded in it
func (f *File) WritePage(p page.PagePtr) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	pageID := page.GetNumber(p)
	if !f.exists(pageID) {
		return errors.Wrapf(ErrPageNotExist, "write page %d of %s", pageID, f.name)
	}
	return f.writeAt(pageID, p)
}

// AllocatePage assigns a fresh page number and returns the zero-filled content
// with the number embedded. The slot is written out before the call returns.
func (f *File) AllocatePage() (page.PagePtr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var pageID page.PageID
	reused := false
	if n := len(f.freed); n > 0 {
		pageID = f.freed[n-1]
		reused = true
	} else {
		if f.npages > page.MaxPageID {
			return nil, errors.Wrapf(ErrPageNumberExceedsMax, "allocate page in %s", f.name)
		}
		pageID = f.npages
	}

	p := page.NewPagePtr()
	page.SetNumber(p, pageID)
	if err := f.writeAt(pageID, p); err != nil {
		return nil, errors.Wrap(err, "writeAt failed")
	}
	if reused {
		f.freed = f.freed[:len(f.freed)-1]
	} else {
		f.npages++
	}
	return p, nil
}

// DeletePage removes the page from the unit. The slot is zero-filled and its
// number becomes reusable.
func (f *File) DeletePage(pageID page.PageID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.exists(pageID) {
		return errors.Wrapf(ErrPageNotExist, "delete page %d of %s", pageID, f.name)
	}
	if err := f.writeAt(pageID, page.NewPagePtr()); err != nil {
		return errors.Wrap(err, "writeAt failed")
	}
	f.freed = append(f.freed, pageID)
	return nil
}

// Sync flushes the backing store
func (f *File) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.st.Sync(); err != nil {
		return errors.Wrap(err, "Sync failed")
	}
	return nil
}

// Close closes the backing store. The handle must not be used afterwards.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.st.Close(); err != nil {
		return errors.Wrap(err, "Close failed")
	}
	return nil
}

// exists reports whether the page number is allocated and not deleted.
// f.mu is expected to be held when this function is called.
func (f *File) exists(pageID page.PageID) bool {
	if pageID >= f.npages {
		return false
	}
	for _, freed := range f.freed {
		if freed == pageID {
			return false
		}
	}
	return true
}

// writeAt writes the whole page at its slot.
// f.mu is expected to be held when this function is called.
func (f *File) writeAt(pageID page.PageID, p page.PagePtr) error {
	n, err := f.st.WriteAt(p[:], page.CalculateFileOffset(pageID))
	if err != nil {
		return errors.Wrap(err, "WriteAt failed")
	}
	if n != page.PageSize {
		return errors.Errorf("WriteAt failed to write the whole page: %d", n)
	}
	return nil
}
