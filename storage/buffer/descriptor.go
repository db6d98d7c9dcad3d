/*
Descriptor stores metadata about each frame.

Metadata in descriptor for the cache replacement policy:

1. pin count
- This is used to grasp whether the frame is now referred by callers.
- If the frame has been pinned, then the frame cannot be evicted.
- So the flow is: pin the frame (via FetchPage/AllocatePage) -> do anything
- with the content -> unpin the frame (via UnpinPage) after the process is completed.
- IMPORTANT: the caller is responsible for UnpinPage, exactly once per fetch.

2. referenced bit
- This is used to grasp whether the frame was used after clock sweep inspected it previous time.
- If the bit is down, then the frame is considered as not-recently-used so it can be evicted.
- Clock sweep clears the bit when it inspects the frame (the second chance).

3. dirty bit
- This is used to grasp whether the page in the frame is updated and not written out to its unit yet.
- When clock sweep tries to evict the frame, if it is dirty,
- the content must be written back before the frame is reused.
- The bit is sticky: it stays up until write-back, however many clean unpins follow.

The valid bit ties the descriptor to the page table: a valid frame has exactly
one page-table entry pointing at it, an invalid frame has none and all of its
metadata is cleared.

All fields are guarded by the manager's mutex; the descriptor itself carries no lock.
*/
package buffer

import (
	"github.com/melesdb/melesdb/storage/page"
)

// descriptor is the metadata of one frame
type descriptor struct {
	// frameID is the frame this descriptor describes. fixed at construction
	frameID FrameID
	// file is the non-owning handle of the unit whose page occupies the frame. nil when invalid
	file File
	// pageID is the number of the page occupying the frame
	pageID page.PageID
	// pinCount is how many callers hold the frame's content right now
	pinCount int
	// dirty means the content has changes not yet written back
	dirty bool
	// referenced means the frame was used since clock sweep last inspected it
	referenced bool
	// valid means the frame caches a page
	valid bool
}

// newDescriptors initializes descriptors of all frames
// this is expected to be called during initialization
func newDescriptors(n uint32) []*descriptor {
	descs := make([]*descriptor, n)
	for i := range descs {
		descs[i] = &descriptor{
			frameID: FrameID(i),
			pageID:  page.InvalidPageID,
		}
	}
	return descs
}

// set claims the frame for the page: valid, pinned once, referenced, clean
func (d *descriptor) set(file File, pageID page.PageID) {
	d.file = file
	d.pageID = pageID
	d.pinCount = 1
	d.dirty = false
	d.referenced = true
	d.valid = true
}

// reset returns the descriptor to the invalid state
func (d *descriptor) reset() {
	d.file = nil
	d.pageID = page.InvalidPageID
	d.pinCount = 0
	d.dirty = false
	d.referenced = false
	d.valid = false
}

// pin takes one more pin on the frame
func (d *descriptor) pin() {
	d.pinCount++
}

// unpin releases one pin. the caller checks pinCount first
func (d *descriptor) unpin() {
	d.pinCount--
}
