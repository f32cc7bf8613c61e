package scene

import (
	"fmt"

	"github.com/spaghettifunk/on3d/engine/core"
	"github.com/spaghettifunk/on3d/engine/math"
)

/**
 * @brief A node of the live scene hierarchy. A node has at most one parent
 * and keeps its children in attach order.
 */
type Node struct {
	Name      string
	Transform math.Transform
	/** @brief Pack path of the mesh drawn at this node, empty for none. */
	MeshName string

	parent   *Node
	children []*Node
}

// NewNode creates a detached node with the identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: math.TransformCreate()}
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Attach moves child under n. Attaching n to itself or to one of its
// descendants would create a cycle and fails with core.ErrValidation.
func (n *Node) Attach(child *Node) error {
	if child == nil {
		return fmt.Errorf("%w: attach nil node to %q", core.ErrValidation, n.Name)
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return fmt.Errorf("%w: attaching %q under %q would create a cycle", core.ErrValidation, child.Name, n.Name)
		}
	}
	if child.parent != nil {
		child.parent.Detach(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// Detach removes child from n. It reports whether child was attached to n.
func (n *Node) Detach(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Clear detaches every child.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Walk visits n and its descendants depth first, parents before children.
// Returning false from fn skips the children of that node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		c.walk(fn, depth+1)
	}
}

// Find returns the first node named name in depth-first order.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}
