package render

import "github.com/wcatz/chiclet-slicer/internal/slicer"

// NodeIndex produces auto-incrementing node ids for rendered tiles and maps
// them back to their items.
type NodeIndex struct {
	id    int
	items map[int]*slicer.Item
}

// NewNodeIndex creates an empty index.
func NewNodeIndex() *NodeIndex {
	return &NodeIndex{items: make(map[int]*slicer.Item)}
}

// Reset forgets every node and restarts the counter at 0.
func (n *NodeIndex) Reset() {
	n.id = 0
	n.items = make(map[int]*slicer.Item)
}

// Next returns the next node id and records it for it.
func (n *NodeIndex) Next(it *slicer.Item) int {
	n.id++
	n.items[n.id] = it
	return n.id
}

// Item returns the item rendered as node id.
func (n *NodeIndex) Item(id int) (*slicer.Item, bool) {
	it, ok := n.items[id]
	return it, ok
}

// Len returns the number of recorded nodes.
func (n *NodeIndex) Len() int {
	return len(n.items)
}
