package buffer

import (
	"testing"

	"github.com/melesdb/melesdb/storage/disk"
	"github.com/melesdb/melesdb/storage/page"
	"github.com/stretchr/testify/assert"
)

func TestNewDescriptors(t *testing.T) {
	descs := newDescriptors(3)
	assert.Equal(t, 3, len(descs))
	for i, desc := range descs {
		// every frame starts invalid with its id fixed
		assert.Equal(t, FrameID(i), desc.frameID)
		assert.False(t, desc.valid)
		assert.False(t, desc.dirty)
		assert.False(t, desc.referenced)
		assert.Equal(t, 0, desc.pinCount)
		assert.Nil(t, desc.file)
		assert.Equal(t, page.InvalidPageID, desc.pageID)
	}
}

func TestDescriptorSet(t *testing.T) {
	f := disk.TestingNewFile("set")
	desc := &descriptor{frameID: 1}
	desc.set(f, page.PageID(3))

	assert.Equal(t, File(f), desc.file)
	assert.Equal(t, page.PageID(3), desc.pageID)
	assert.Equal(t, 1, desc.pinCount)
	assert.False(t, desc.dirty)
	assert.True(t, desc.referenced)
	assert.True(t, desc.valid)
}

func TestDescriptorReset(t *testing.T) {
	f := disk.TestingNewFile("reset")
	desc := &descriptor{frameID: 1}
	desc.set(f, page.PageID(3))
	desc.dirty = true
	desc.reset()

	assert.Nil(t, desc.file)
	assert.Equal(t, page.InvalidPageID, desc.pageID)
	assert.Equal(t, 0, desc.pinCount)
	assert.False(t, desc.dirty)
	assert.False(t, desc.referenced)
	assert.False(t, desc.valid)
	// the frame id survives reset
	assert.Equal(t, FrameID(1), desc.frameID)
}

func TestDescriptorPinUnpin(t *testing.T) {
	f := disk.TestingNewFile("pin")
	desc := &descriptor{}
	desc.set(f, page.FirstPageID)

	desc.pin()
	assert.Equal(t, 2, desc.pinCount)
	desc.unpin()
	desc.unpin()
	assert.Equal(t, 0, desc.pinCount)
}
