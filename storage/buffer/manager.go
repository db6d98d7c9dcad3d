/*
Buffer manager caches pages of storage units in a fixed pool of page-sized frames.

Disk I/O is expensive so pages should be cached in memory, and the buffer
manager is responsible for this. The pool size is fixed at construction:
fetching an uncached page claims a frame from clock sweep (see clock_sweep.go),
which evicts a victim and writes its content back to its unit first when dirty.

access rules for frames:
- a fetched or freshly allocated page is pinned. a pinned frame is never
  evicted, so its content handle stays valid. the caller must call UnpinPage
  exactly once per fetch after it completes using the content.
- the caller reports its dirtiness verdict at unpin time. the dirty bit is
  sticky: a clean unpin after a dirty one does not lose the earlier verdict,
  only write-back clears it.
- the same page fetched again while cached pins the same frame once more; the
  pin count says how many callers hold it.
- synchronizing readers and writers of one pinned content is the caller's
  business. engine latches live above this layer.

The manager state (descriptor table, page table, clock hand) is guarded by one
mutex, so the victim write-back is atomic with the eviction decision and an
enumeration sees a consistent snapshot. There are no background goroutines;
every operation, including I/O, completes on the caller's goroutine.

Storage units are non-owning File handles (see file.go). The manager never
opens or closes them and forgets a unit once its pages are flushed or evicted.
*/
package buffer

import (
	"fmt"
	"io"
	"sync"

	"github.com/melesdb/melesdb/storage/page"
	"github.com/pkg/errors"
)

const (
	// defaultPoolBytes is the default size of the whole frame pool
	defaultPoolBytes = 1 << 20

	// DefaultPoolSize is the number of frames when the caller has no opinion
	DefaultPoolSize = defaultPoolBytes / page.PageSize
)

// Manager manages the frame pool
type Manager struct {
	// frames hold the cached page content. frames[i] is described by descriptors[i]
	frames []page.PagePtr
	// descriptors of each frame
	descriptors []*descriptor
	// table maps (storage unit, page number) to the frame caching the page
	table *pageTable
	// nextVictimFrame is the clock hand: the frame clock sweep inspected last.
	// it starts at the pool's last frame so that the first tick inspects frame 0
	nextVictimFrame FrameID
	// mu guards descriptors, table and the clock hand together
	mu sync.Mutex
}

// NewManager initializes the buffer manager with a pool of poolSize frames
func NewManager(poolSize uint32) *Manager {
	if poolSize == 0 {
		poolSize = 1
	}
	return &Manager{
		frames:          newFramePool(poolSize),
		descriptors:     newDescriptors(poolSize),
		table:           newPageTable(poolSize),
		nextVictimFrame: FrameID(poolSize) - 1,
	}
}

/*
FetchPage returns the content of the page, caching it when needed.
The page is pinned: the caller must call UnpinPage exactly once after it
completes using the content, reporting whether it changed it.

when the page is already cached, no I/O happens: the frame takes one more pin
and its referenced bit goes up.
when it is not, clock sweep claims a frame and the page is read from its unit
into it. a read failure leaves the frame invalid, to be claimed again later.
*/
func (m *Manager) FetchPage(file File, pageID page.PageID) (page.PagePtr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frameID, ok := m.table.lookup(file, pageID); ok {
		desc := m.descriptors[frameID]
		desc.referenced = true
		desc.pin()
		return m.frames[frameID], nil
	}

	frameID, err := m.allocateFrame()
	if err != nil {
		return nil, errors.Wrap(err, "allocateFrame failed")
	}
	if err := file.ReadPage(pageID, m.frames[frameID]); err != nil {
		return nil, errors.Wrap(err, "ReadPage failed")
	}
	if err := m.table.insert(file, pageID, frameID); err != nil {
		return nil, errors.Wrap(err, "table.insert failed")
	}
	m.descriptors[frameID].set(file, pageID)
	return m.frames[frameID], nil
}

// UnpinPage releases one pin of the page and records the caller's dirtiness verdict.
// Unpinning a page that is not cached is a no-op: the page may have been
// disposed while the caller still held its content.
// Unpinning a page with no outstanding pin fails with PageNotPinnedError.
func (m *Manager) UnpinPage(file File, pageID page.PageID, dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.table.lookup(file, pageID)
	if !ok {
		return nil
	}
	desc := m.descriptors[frameID]
	if desc.pinCount == 0 {
		return &PageNotPinnedError{FileName: file.Name(), PageID: pageID, FrameID: frameID}
	}
	desc.unpin()
	if dirty {
		desc.dirty = true
	}
	return nil
}

/*
FlushFile writes back every dirty cached page of the unit and evicts all of
the unit's pages from the pool.

The flush is all or nothing: the unit's frames are validated first, and a
pinned page (the caller broke the pin protocol) or a corrupted frame aborts
the call, at the first offender in frame order, before any frame is touched.
Clean frames are still evicted, only the write is skipped.
*/
func (m *Manager) FlushFile(file File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, desc := range m.descriptors {
		if desc.file != file {
			continue
		}
		if desc.pinCount > 0 {
			return &PagePinnedError{FileName: file.Name(), PageID: desc.pageID, FrameID: desc.frameID}
		}
		if !desc.valid {
			return &BadFrameError{FrameID: desc.frameID, Dirty: desc.dirty, Valid: desc.valid, Referenced: desc.referenced}
		}
	}

	for _, desc := range m.descriptors {
		if desc.file != file {
			continue
		}
		if desc.dirty {
			if err := file.WritePage(m.frames[desc.frameID]); err != nil {
				return errors.Wrap(err, "WritePage failed")
			}
		}
		m.table.remove(file, desc.pageID)
		desc.reset()
	}
	return nil
}

/*
AllocatePage creates a brand-new page in the unit and caches it pinned.
It returns the page number and the content; the caller releases the content
with UnpinPage like a fetched page.

The unit assigns the number first, then clock sweep claims a frame, the fresh
page image (zero payload, number embedded) is copied into that frame and that
frame's descriptor is initialized. Write-back of the untouched frame would
persist exactly the fresh page.
*/
func (m *Manager) AllocatePage(file File) (page.PageID, page.PagePtr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := file.AllocatePage()
	if err != nil {
		return page.InvalidPageID, nil, errors.Wrap(err, "AllocatePage failed")
	}
	pageID := page.GetNumber(p)

	frameID, err := m.allocateFrame()
	if err != nil {
		return page.InvalidPageID, nil, errors.Wrap(err, "allocateFrame failed")
	}
	copy(m.frames[frameID][:], p[:])
	if err := m.table.insert(file, pageID, frameID); err != nil {
		return page.InvalidPageID, nil, errors.Wrap(err, "table.insert failed")
	}
	m.descriptors[frameID].set(file, pageID)
	return pageID, m.frames[frameID], nil
}

// DisposePage permanently deletes the page from its unit, evicting it from
// the pool first when cached.
// The pin count is not checked: disposing a pinned page invalidates the frame
// under its pinner. The cached content is never written back, and the
// unit-side delete is issued whether or not the page was cached.
func (m *Manager) DisposePage(file File, pageID page.PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frameID, ok := m.table.lookup(file, pageID); ok {
		m.table.remove(file, pageID)
		m.descriptors[frameID].reset()
	}
	if err := file.DeletePage(pageID); err != nil {
		return errors.Wrap(err, "DeletePage failed")
	}
	return nil
}

// Dump writes the state of every frame, one line each, and the number of
// valid frames at the end. The lines reflect one consistent snapshot.
func (m *Manager) Dump(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	valid := 0
	for _, desc := range m.descriptors {
		name := "-"
		if desc.file != nil {
			name = desc.file.Name()
		}
		if desc.valid {
			valid++
		}
		if _, err := fmt.Fprintf(w, "frame %d: file %s page %d pin %d dirty %t referenced %t valid %t\n",
			desc.frameID, name, desc.pageID, desc.pinCount, desc.dirty, desc.referenced, desc.valid); err != nil {
			return errors.Wrap(err, "Fprintf failed")
		}
	}
	if _, err := fmt.Fprintf(w, "%d frames valid\n", valid); err != nil {
		return errors.Wrap(err, "Fprintf failed")
	}
	return nil
}
