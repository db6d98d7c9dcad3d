/*
Errors the buffer manager hands back fall into three groups.

- ErrBufferExceeded: the pool is saturated. every frame is pinned, so there is
  nothing to evict. the caller can release pins and retry.
- protocol violations, PageNotPinnedError and PagePinnedError: the caller
  broke the pin discipline. both name the unit, the page and the frame.
- BadFrameError: the manager's own bookkeeping is inconsistent. this is a bug,
  not a caller mistake, and it is always surfaced, never repaired silently.

A page-table miss is not an error anywhere: lookups report it with an ok bool
and UnpinPage treats it as a no-op.
*/
package buffer

import (
	"fmt"

	"github.com/melesdb/melesdb/storage/page"
	"github.com/pkg/errors"
)

// ErrBufferExceeded is returned when every frame is pinned and nothing can be evicted
var ErrBufferExceeded = errors.New("buffer exceeded: all frames are pinned")

// PageNotPinnedError reports an unpin of a page with no outstanding pin.
// pin/unpin must balance; this unpin had no matching fetch.
type PageNotPinnedError struct {
	FileName string
	PageID   page.PageID
	FrameID  FrameID
}

func (e *PageNotPinnedError) Error() string {
	return fmt.Sprintf("page %d of %s in frame %d is not pinned", e.PageID, e.FileName, e.FrameID)
}

// PagePinnedError reports a flush of a unit one of whose pages is still pinned
type PagePinnedError struct {
	FileName string
	PageID   page.PageID
	FrameID  FrameID
}

func (e *PagePinnedError) Error() string {
	return fmt.Sprintf("page %d of %s in frame %d is still pinned", e.PageID, e.FileName, e.FrameID)
}

// BadFrameError reports a frame whose descriptor state is inconsistent:
// the frame is owned by a unit but marked invalid
type BadFrameError struct {
	FrameID    FrameID
	Dirty      bool
	Valid      bool
	Referenced bool
}

func (e *BadFrameError) Error() string {
	return fmt.Sprintf("frame %d is in a bad state: dirty %t valid %t referenced %t",
		e.FrameID, e.Dirty, e.Valid, e.Referenced)
}
