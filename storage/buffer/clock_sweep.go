/*
The cache replacement policy is clock sweep, an approximation of LRU.
Instead of maintaining a global timestamp, each frame carries one referenced
bit and the pool is treated as a ring.

The clock hand advances before every inspection, so the hand always rests on
the frame inspected last and a fresh manager (hand at the last frame)
inspects frame 0 first. A frame under the hand is skipped while pinned,
spared once while its referenced bit is up (the second chance), and evicted
otherwise, with dirty content written back to its unit first.

for more details about the policy family, see
https://github.com/postgres/postgres/blob/master/src/backend/storage/buffer/README#L155-L246
*/
package buffer

import (
	"github.com/pkg/errors"
)

// clockSweepTick moves the clock hand ahead and returns the frame now under it
// m.mu is expected to be held, so a plain increment with wraparound is enough
func (m *Manager) clockSweepTick() FrameID {
	m.nextVictimFrame = (m.nextVictimFrame + 1) % FrameID(len(m.frames))
	return m.nextVictimFrame
}

// allocateFrame runs clock sweep and returns the frame where a page will be
// cached next. The returned frame is invalid, unpinned and clean; the caller
// claims it by inserting the page-table entry and setting the descriptor.
// m.mu is expected to be held when this function is called.
func (m *Manager) allocateFrame() (FrameID, error) {
	// when pinnedCount reaches the pool size, the sweep saw every frame
	// pinned in a row and nothing can be evicted.
	// an unpinned frame resets the count: only a full pinned lap is saturation
	pinnedCount := 0
	for {
		victimFrameID := m.clockSweepTick()
		desc := m.descriptors[victimFrameID]

		// an invalid frame is free, claim it as is
		if !desc.valid {
			return victimFrameID, nil
		}
		if desc.pinCount != 0 {
			// pinned frames must not be evicted and keep their referenced bit
			pinnedCount++
			if pinnedCount == len(m.frames) {
				return InvalidFrameID, ErrBufferExceeded
			}
			continue
		}
		pinnedCount = 0
		if desc.referenced {
			// the frame was used since the sweep last inspected it, spare it once
			desc.referenced = false
			continue
		}
		// victim decided. dirty content must be written back before the frame is reused
		if desc.dirty {
			if err := desc.file.WritePage(m.frames[victimFrameID]); err != nil {
				return InvalidFrameID, errors.Wrap(err, "WritePage failed")
			}
		}
		m.table.remove(desc.file, desc.pageID)
		desc.reset()
		return victimFrameID, nil
	}
}
