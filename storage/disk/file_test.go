package disk

import (
	"testing"

	"github.com/melesdb/melesdb/storage/page"
	"github.com/stretchr/testify/assert"
)

// shortStore drops the last byte of every page transfer
type shortStore struct{}

func (shortStore) ReadAt(b []byte, off int64) (int, error)  { return len(b) - 1, nil }
func (shortStore) WriteAt(b []byte, off int64) (int, error) { return len(b) - 1, nil }
func (shortStore) Size() (int64, error)                     { return 0, nil }
func (shortStore) Sync() error                              { return nil }
func (shortStore) Close() error                             { return nil }

func TestOpen(t *testing.T) {
	f, err := TestingNewTempFile(t)
	assert.Nil(t, err)
	assert.Equal(t, page.PageID(0), f.NumPages())

	// the unit keeps its size across reopen
	_, err = f.AllocatePage()
	assert.Nil(t, err)
	_, err = f.AllocatePage()
	assert.Nil(t, err)
	assert.Nil(t, f.Sync())

	path := f.Name()
	assert.Nil(t, f.Close())

	f, err = Open(path)
	assert.Nil(t, err)
	assert.Equal(t, page.PageID(2), f.NumPages())
}

func TestAllocatePage(t *testing.T) {
	f := TestingNewFile("alloc")

	// page numbers are dense from the first page id
	for i := 0; i < 3; i++ {
		p, err := f.AllocatePage()
		assert.Nil(t, err)
		assert.Equal(t, page.PageID(i), page.GetNumber(p))
	}
	assert.Equal(t, page.PageID(3), f.NumPages())
}

func TestAllocatePageNumberExhausted(t *testing.T) {
	f := TestingNewFile("full")
	// pretend every fresh page number has been handed out
	f.npages = page.MaxPageID + 1

	_, err := f.AllocatePage()
	assert.ErrorIs(t, err, ErrPageNumberExceedsMax)

	// freed numbers are still reusable in a full unit
	f.freed = append(f.freed, 7)
	p, err := f.AllocatePage()
	assert.Nil(t, err)
	assert.Equal(t, page.PageID(7), page.GetNumber(p))
}

func TestReadWritePage(t *testing.T) {
	f := TestingNewFile("rw")
	p, err := f.AllocatePage()
	assert.Nil(t, err)
	pageID := page.GetNumber(p)

	// a fresh page reads back zero-filled with the number embedded
	got := page.NewPagePtr()
	err = f.ReadPage(pageID, got)
	assert.Nil(t, err)
	assert.Equal(t, pageID, page.GetNumber(got))
	assert.Equal(t, make([]byte, page.PayloadSize), page.Payload(got))

	// content written by the embedded number reads back unchanged
	expected := page.TestingNewRandomPage(pageID)
	err = f.WritePage(expected)
	assert.Nil(t, err)
	err = f.ReadPage(pageID, got)
	assert.Nil(t, err)
	assert.Equal(t, expected, got)
}

func TestReadPageNotExist(t *testing.T) {
	f := TestingNewFile("missing")
	_, err := f.AllocatePage()
	assert.Nil(t, err)

	tests := []struct {
		name   string
		pageID page.PageID
	}{
		{
			name:   "page number out of range",
			pageID: 1,
		},
		{
			name:   "invalid page number",
			pageID: page.InvalidPageID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ReadPage(tt.pageID, page.NewPagePtr())
			assert.ErrorIs(t, err, ErrPageNotExist)
		})
	}
}

func TestWritePageNotExist(t *testing.T) {
	f := TestingNewFile("missing")
	p := page.TestingNewRandomPage(5)
	err := f.WritePage(p)
	assert.ErrorIs(t, err, ErrPageNotExist)
}

func TestPageIOShortTransfer(t *testing.T) {
	f := &File{name: "short", st: shortStore{}, npages: 1}

	// a short transfer must surface as an error, not a partial page
	err := f.ReadPage(page.FirstPageID, page.NewPagePtr())
	assert.ErrorContains(t, err, "whole page")
	err = f.WritePage(page.NewPagePtr())
	assert.ErrorContains(t, err, "whole page")
}

func TestDeletePage(t *testing.T) {
	f := TestingNewFile("delete")
	for i := 0; i < 3; i++ {
		_, err := f.AllocatePage()
		assert.Nil(t, err)
	}

	err := f.DeletePage(1)
	assert.Nil(t, err)
	err = f.ReadPage(1, page.NewPagePtr())
	assert.ErrorIs(t, err, ErrPageNotExist)
	// deleted slots still count as slots
	assert.Equal(t, page.PageID(3), f.NumPages())

	// deleting twice fails
	err = f.DeletePage(1)
	assert.ErrorIs(t, err, ErrPageNotExist)

	err = f.DeletePage(2)
	assert.Nil(t, err)

	// deleted numbers are reused LIFO and come back zero-filled
	p, err := f.AllocatePage()
	assert.Nil(t, err)
	assert.Equal(t, page.PageID(2), page.GetNumber(p))
	assert.Equal(t, make([]byte, page.PayloadSize), page.Payload(p))

	p, err = f.AllocatePage()
	assert.Nil(t, err)
	assert.Equal(t, page.PageID(1), page.GetNumber(p))

	// the free set is drained, so the unit grows again
	p, err = f.AllocatePage()
	assert.Nil(t, err)
	assert.Equal(t, page.PageID(3), page.GetNumber(p))
}

func TestDeletePageNotExist(t *testing.T) {
	f := TestingNewFile("delete")
	err := f.DeletePage(0)
	assert.ErrorIs(t, err, ErrPageNotExist)
}
