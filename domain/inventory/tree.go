package inventory

import (
	"fmt"
	"strings"
)

// CategoryNode is one node of a per-sheet category tree. Parent and children
// are stored as path keys into the owning arena, not as pointers, so the tree
// has no ownership cycles.
type CategoryNode struct {
	// Code is the node's own code segment ("1", "A", "2"). Empty for root.
	Code string
	// Path is the full code path from root ("1.A.2" -> ["1","A","2"]).
	Path []string
	Name string
	// Row is the source data-band row index the node came from, -1 for root.
	Row      int
	Memo     bool
	ParentID string
	Children []string
}

// ID returns the node's arena key, the dotted path ("1.A.2"). Root is "".
func (n *CategoryNode) ID() string { return strings.Join(n.Path, ".") }

// Depth returns the node depth; root is 0.
func (n *CategoryNode) Depth() int { return len(n.Path) }

// CategoryTree is an arena of CategoryNodes indexed by dotted path. The root
// is a synthetic "Total" node with an empty ID.
type CategoryTree struct {
	nodes map[string]*CategoryNode
	order []string
}

// NewCategoryTree creates a tree holding only the synthetic root.
func NewCategoryTree(rootName string) *CategoryTree {
	if rootName == "" {
		rootName = "Total"
	}
	root := &CategoryNode{Name: rootName, Row: -1}
	return &CategoryTree{
		nodes: map[string]*CategoryNode{"": root},
		order: []string{""},
	}
}

// Root returns the synthetic root node.
func (t *CategoryTree) Root() *CategoryNode { return t.nodes[""] }

// Node looks up a node by dotted path key.
func (t *CategoryTree) Node(id string) (*CategoryNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of nodes including the root.
func (t *CategoryTree) Len() int { return len(t.nodes) }

// Walk visits every node in insertion order, root first.
func (t *CategoryTree) Walk(fn func(*CategoryNode)) {
	for _, id := range t.order {
		fn(t.nodes[id])
	}
}

// Add inserts a node under the parent identified by its path prefix. A node
// whose ID already exists replaces the previous occurrence (spreadsheet
// carry-over rows duplicate codes) and reports replaced=true so the caller
// can log it. The depth invariant depth(node) == depth(parent)+1 holds by
// construction: the parent is always path[:len-1].
func (t *CategoryTree) Add(node *CategoryNode) (replaced bool, err error) {
	if len(node.Path) == 0 {
		return false, fmt.Errorf("cannot add a second root node %q", node.Name)
	}
	parentID := strings.Join(node.Path[:len(node.Path)-1], ".")
	parent, ok := t.nodes[parentID]
	if !ok {
		return false, fmt.Errorf("node %s has no parent %q in arena", node.ID(), parentID)
	}
	node.ParentID = parentID

	id := node.ID()
	if _, exists := t.nodes[id]; exists {
		t.nodes[id] = node
		return true, nil
	}
	t.nodes[id] = node
	t.order = append(t.order, id)
	parent.Children = append(parent.Children, id)
	return false, nil
}

// Validate re-checks the depth invariant over the whole arena. It exists for
// tests and post-build assertions; Add alone cannot produce a violation.
func (t *CategoryTree) Validate() error {
	for id, n := range t.nodes {
		if id == "" {
			continue
		}
		parent, ok := t.nodes[n.ParentID]
		if !ok {
			return fmt.Errorf("node %s: parent %q missing", id, n.ParentID)
		}
		if n.Depth() != parent.Depth()+1 {
			return fmt.Errorf("node %s: depth %d != parent depth %d + 1", id, n.Depth(), parent.Depth())
		}
	}
	return nil
}
