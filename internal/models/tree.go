package models

import (
	"sort"
	"strings"
)

// LookupNode represents a row of a hierarchical lookup table
type LookupNode struct {
	Item     LookupItem
	Parent   *LookupNode   // Parent node (nil for root)
	Children []*LookupNode // Child nodes
}

// NewLookupNode creates a new tree node
func NewLookupNode(item LookupItem) *LookupNode {
	return &LookupNode{
		Item:     item,
		Children: make([]*LookupNode, 0),
	}
}

// IsRoot reports whether this is the virtual root holding top-level rows
func (n *LookupNode) IsRoot() bool {
	return n.Parent == nil && n.Item.ID == 0
}

// AddChild adds a child node to this node
func (n *LookupNode) AddChild(child *LookupNode) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// BuildLookupTree arranges rows under their parents.
// Rows whose parent is unknown, or whose parent link would close a cycle,
// are attached to the root.
func BuildLookupTree(items []LookupItem) *LookupNode {
	root := NewLookupNode(LookupItem{})

	nodes := make(map[int64]*LookupNode, len(items))
	for _, item := range items {
		if item.ID == 0 {
			continue
		}
		nodes[item.ID] = NewLookupNode(item)
	}

	for _, item := range items {
		node, ok := nodes[item.ID]
		if !ok || node.Parent != nil {
			continue
		}
		parent, ok := nodes[item.ParentID]
		if !ok || parent == node || node.IsAncestorOf(parent) {
			root.AddChild(node)
			continue
		}
		parent.AddChild(node)
	}

	root.sortChildren()
	return root
}

func (n *LookupNode) sortChildren() {
	sort.SliceStable(n.Children, func(i, j int) bool {
		return strings.ToLower(n.Children[i].Item.Name) < strings.ToLower(n.Children[j].Item.Name)
	})
	for _, child := range n.Children {
		child.sortChildren()
	}
}

// Flatten returns the rows in display order with Level set to their depth
// (top-level rows have level 0) and CompleteName filled from the path when
// the row has none. The root itself is skipped.
func (n *LookupNode) Flatten() []LookupItem {
	result := make([]LookupItem, 0)
	n.flattenHelper(-1, &result)
	return result
}

func (n *LookupNode) flattenHelper(depth int, result *[]LookupItem) {
	if !n.IsRoot() {
		item := n.Item
		item.Level = depth
		if item.CompleteName == "" {
			item.CompleteName = n.CompleteName()
		}
		*result = append(*result, item)
	}
	for _, child := range n.Children {
		child.flattenHelper(depth+1, result)
	}
}

// FindByID finds a node by ID in the tree (depth-first search)
func (n *LookupNode) FindByID(id int64) *LookupNode {
	if !n.IsRoot() && n.Item.ID == id {
		return n
	}

	for _, child := range n.Children {
		if found := child.FindByID(id); found != nil {
			return found
		}
	}

	return nil
}

// Descendants returns the node's id followed by the ids of every node below it
func (n *LookupNode) Descendants() []int64 {
	ids := make([]int64, 0)
	if !n.IsRoot() {
		ids = append(ids, n.Item.ID)
	}
	for _, child := range n.Children {
		ids = append(ids, child.Descendants()...)
	}
	return ids
}

// GetPath returns the names from the top-level row down to this node
func (n *LookupNode) GetPath() []string {
	path := make([]string, 0)
	for current := n; current != nil && !current.IsRoot(); current = current.Parent {
		path = append([]string{current.Item.Name}, path...)
	}
	return path
}

// CompleteName joins the path the way hierarchical tables store completename
func (n *LookupNode) CompleteName() string {
	return strings.Join(n.GetPath(), " > ")
}

// GetDepth returns the depth of this node in the tree (root = 0)
func (n *LookupNode) GetDepth() int {
	depth := 0
	for current := n.Parent; current != nil; current = current.Parent {
		depth++
	}
	return depth
}

// IsAncestorOf checks if this node is an ancestor of the given node
func (n *LookupNode) IsAncestorOf(other *LookupNode) bool {
	for current := other.Parent; current != nil; current = current.Parent {
		if current == n {
			return true
		}
	}
	return false
}
