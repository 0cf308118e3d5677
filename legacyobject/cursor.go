// Package legacyobject assembles the typed onestore object graph (C7)
// out of a parsed legacyfile.Store: the root file-node-list walk that
// finds the file data store and every object space, the revision and
// object-group walks inside each object space, and the CompactId
// resolution that ties a local object declaration back to a global
// ExGuid.
package legacyobject

import "github.com/runbark/onestore/legacyfile"

// nodeCursor is a peek-based walk over a flattened FileNodeList: every
// parse_context-style "try_parse" helper in this package peeks the
// current node, decides whether it recognizes it, and only then
// advances. The root walk and every nested walk assert the cursor
// actually moved each iteration - an assembler that recognizes a node
// but forgets to consume it would otherwise loop forever.
type nodeCursor struct {
	nodes []legacyfile.FileNode
	index int
}

func newNodeCursor(nodes []legacyfile.FileNode) *nodeCursor {
	return &nodeCursor{nodes: nodes}
}

// Peek returns the current node without consuming it.
func (c *nodeCursor) Peek() (*legacyfile.FileNode, bool) {
	if c.index >= len(c.nodes) {
		return nil, false
	}
	return &c.nodes[c.index], true
}

// Next consumes and returns the current node.
func (c *nodeCursor) Next() (*legacyfile.FileNode, bool) {
	n, ok := c.Peek()
	if ok {
		c.index++
	}
	return n, ok
}

// Index is the cursor's current position, used by callers to assert
// forward progress across a dispatch loop.
func (c *nodeCursor) Index() int {
	return c.index
}
