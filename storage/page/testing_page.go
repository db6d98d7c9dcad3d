package page

import (
	"math/rand"
)

// TestingNewRandomPage returns a page with the number embedded and a randomized payload
func TestingNewRandomPage(pageID PageID) PagePtr {
	p := NewPagePtr()
	SetNumber(p, pageID)
	rand.Read(Payload(p))
	return p
}
