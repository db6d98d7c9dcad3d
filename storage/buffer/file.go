package buffer

import "github.com/melesdb/melesdb/storage/page"

// File is the storage unit whose pages the buffer manager caches.
// *disk.File implements it. The manager never owns the handle: it does not
// open or close units, it only moves pages through them.
//
// Handles are compared by identity (==), so implementations must be
// comparable and callers must keep one handle per unit. Two handles are two
// units even when they name the same path.
type File interface {
	// Name identifies the unit in diagnostics and error messages
	Name() string
	// ReadPage reads an existing page's content into p
	ReadPage(pageID page.PageID, p page.PagePtr) error
	// WritePage writes the content, addressed by the number embedded in it
	WritePage(p page.PagePtr) error
	// AllocatePage assigns a fresh page number and returns the zero-filled
	// content with the number embedded
	AllocatePage() (page.PagePtr, error)
	// DeletePage removes the page from the unit
	DeletePage(pageID page.PageID) error
}
