package generator

import "sync"

// DocumentCell holds the current accepted document. Every successful store
// bumps the version; a failed run never touches the cell.
type DocumentCell struct {
	mu      sync.RWMutex
	doc     Document
	version uint64
}

// Load returns the current document and its version. Version 0 means empty.
func (c *DocumentCell) Load() (Document, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc, c.version
}

// Store overwrites the document unconditionally (last write wins).
func (c *DocumentCell) Store(doc Document) Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storeLocked(doc)
}

// CompareAndSwap stores doc only if the cell is still at version expected.
func (c *DocumentCell) CompareAndSwap(expected uint64, doc Document) (Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != expected {
		return c.doc, false
	}
	return c.storeLocked(doc), true
}

func (c *DocumentCell) storeLocked(doc Document) Document {
	c.version++
	doc.Version = c.version
	c.doc = doc
	return doc
}
