package buffer

import "github.com/melesdb/melesdb/storage/page"

// FrameID is the index of a frame in the pool and of its descriptor
type FrameID int32

const (
	// InvalidFrameID means no frame
	InvalidFrameID FrameID = -1
	// first frame id in the pool
	FirstFrameID FrameID = 0
)

// newFramePool allocates the fixed pool of page-sized frames
// pages are fetched from their storage units into these
// frame-related metadata is managed in a different structure called `descriptor`
func newFramePool(n uint32) []page.PagePtr {
	frames := make([]page.PagePtr, n)
	for i := range frames {
		frames[i] = page.NewPagePtr()
	}
	return frames
}
