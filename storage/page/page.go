/*
Package page defines the unit of I/O in melesdb.

A storage unit (see storage/disk) is organized as a collection of fixed-size
pages, and the buffer manager caches pages in page-sized frames. The first
bytes of every page hold the page's own number, so a page image is
self-describing: the disk layer can address a write from the image alone.
The rest of the page is opaque payload owned by whichever layer put it there.
*/
package page

import (
	"encoding/binary"
	"math"
)

// PageSize is the byte size of page. 8KB, the usual default for disk-oriented engines.
const PageSize = 8192

// PageID is the unique identifier given to each page within its storage unit.
// Page numbers are dense: a unit with n pages uses numbers 0..n-1.
type PageID uint32

const (
	// first page id in a storage unit
	FirstPageID PageID = 0
	// invalid page id. never stored in a page image
	InvalidPageID PageID = math.MaxUint32
	// max page id
	MaxPageID PageID = math.MaxUint32 - 1
)

// page layout: the embedded page number, then payload
const (
	pageNumberOffset = 0
	payloadOffset    = pageNumberOffset + 4
)

// PayloadSize is the byte size usable by callers within one page
const PayloadSize = PageSize - payloadOffset

// PagePtr is pointer to page
// melesdb defines page as pointer explicitly
// because page should not be passed by value in many cases (for concurrent access and space-efficiency)
type PagePtr *[PageSize]byte

// NewPagePtr returns 0-filled page pointer
func NewPagePtr() PagePtr {
	p := &[PageSize]byte{}
	return PagePtr(p)
}

// InitializePage zero-fills the page and embeds its number.
// The disk layer calls this when a fresh page is allocated.
func InitializePage(p PagePtr, pageID PageID) {
	for i := range p {
		p[i] = 0
	}
	SetNumber(p, pageID)
}

// GetNumber returns the page number embedded in the page image
func GetNumber(p PagePtr) PageID {
	return PageID(binary.LittleEndian.Uint32(p[pageNumberOffset:payloadOffset]))
}

// SetNumber embeds the page number into the page image
func SetNumber(p PagePtr, pageID PageID) {
	binary.LittleEndian.PutUint32(p[pageNumberOffset:payloadOffset], uint32(pageID))
}

// Payload returns the caller-usable region of the page.
// The returned slice aliases the page, it is not a copy.
func Payload(p PagePtr) []byte {
	return p[payloadOffset:]
}

// CalculateFileOffset calculates the page's offset within the storage unit
// the page size is fixed (8KB) so that it is easy to calculate the offset
func CalculateFileOffset(pageID PageID) int64 {
	return int64(pageID) * PageSize
}
