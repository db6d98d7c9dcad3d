/*
This is the page table: the mapping from (storage unit, page number) to the
frame caching the page.

The table is a chained hash table. The bucket count is fixed at construction,
sized a little above the pool size, so chains stay short and never rehash
(the table can hold at most one entry per frame). The bucket index comes from
murmur3 over the unit's name and the page number; entry equality is handle
identity, so two handles sharing a name can coexist in one bucket.

The table carries no lock of its own. It is guarded by the manager's mutex.
*/
package buffer

import (
	"encoding/binary"

	"github.com/melesdb/melesdb/storage/page"
	"github.com/pkg/errors"
	"github.com/spaolacci/murmur3"
)

// tableEntry is one chained entry of the page table
type tableEntry struct {
	file    File
	pageID  page.PageID
	frameID FrameID
}

// pageTable maps cached pages to their frames
type pageTable struct {
	buckets [][]tableEntry
}

// newPageTable initializes the page table for a pool of n frames
func newPageTable(n uint32) *pageTable {
	// 1.2x the pool size
	size := n + n/5 + 1
	return &pageTable{
		buckets: make([][]tableEntry, size),
	}
}

// hash returns the bucket index for the page
func (pt *pageTable) hash(file File, pageID page.PageID) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(pageID))
	h := murmur3.New32()
	h.Write([]byte(file.Name()))
	h.Write(b[:])
	return h.Sum32() % uint32(len(pt.buckets))
}

// lookup returns the id of the frame caching the page. ok is false on a miss
func (pt *pageTable) lookup(file File, pageID page.PageID) (FrameID, bool) {
	for _, e := range pt.buckets[pt.hash(file, pageID)] {
		if e.file == file && e.pageID == pageID {
			return e.frameID, true
		}
	}
	return InvalidFrameID, false
}

// insert adds the mapping for a page. a mapping for the page must not exist
// yet; a duplicate means the manager's bookkeeping broke and is surfaced
func (pt *pageTable) insert(file File, pageID page.PageID, frameID FrameID) error {
	i := pt.hash(file, pageID)
	for _, e := range pt.buckets[i] {
		if e.file == file && e.pageID == pageID {
			return errors.Errorf("page %d of %s is already cached in frame %d", pageID, file.Name(), e.frameID)
		}
	}
	pt.buckets[i] = append(pt.buckets[i], tableEntry{file: file, pageID: pageID, frameID: frameID})
	return nil
}

// remove deletes the mapping for a page. removing an absent mapping is a no-op
func (pt *pageTable) remove(file File, pageID page.PageID) {
	i := pt.hash(file, pageID)
	bucket := pt.buckets[i]
	for j, e := range bucket {
		if e.file == file && e.pageID == pageID {
			bucket[j] = bucket[len(bucket)-1]
			pt.buckets[i] = bucket[:len(bucket)-1]
			return
		}
	}
}
