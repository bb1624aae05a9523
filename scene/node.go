package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
)

// Node is a transform in a parent/child hierarchy. Local pose is relative to
// the parent; a node without parent is in world space.
type Node struct {
	Name     string
	local    common.Pose
	parent   *Node
	children []*Node
}

func NewNode(name string, local common.Pose) *Node {
	if local.Rotation == (mgl64.Quat{}) {
		local.Rotation = mgl64.QuatIdent()
	}
	return &Node{Name: name, local: local}
}

// AddChild reparents child under n, keeping its local pose.
func (n *Node) AddChild(child *Node) {
	if n == nil || child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

func (n *Node) Local() common.Pose {
	if n == nil {
		return common.NewPose(mgl64.Vec3{})
	}
	return n.local
}

func (n *Node) SetLocal(p common.Pose) {
	if n == nil {
		return
	}
	n.local = p
}

// World resolves the node's pose through every ancestor.
func (n *Node) World() common.Pose {
	if n == nil {
		return common.NewPose(mgl64.Vec3{})
	}
	if n.parent == nil {
		return n.local
	}
	return n.parent.World().Mul(n.local)
}

// SetWorld writes a world pose by converting it into parent space.
func (n *Node) SetWorld(p common.Pose) {
	if n == nil {
		return
	}
	if n.parent == nil {
		n.local = p
		return
	}
	n.local = n.parent.World().Inverse().Mul(p)
}

func (n *Node) Position() mgl64.Vec3 {
	return n.World().Position
}

func (n *Node) SetPosition(pos mgl64.Vec3) {
	w := n.World()
	w.Position = pos
	n.SetWorld(w)
}

func (n *Node) SetRotation(rot mgl64.Quat) {
	w := n.World()
	w.Rotation = rot
	n.SetWorld(w)
}

// Walk visits n and its descendants depth first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil || fn == nil {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// IsUnder reports whether n is root or one of its descendants.
func (n *Node) IsUnder(root *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == root {
			return true
		}
	}
	return false
}

// Find returns the first descendant (or n) with the given name.
func (n *Node) Find(name string) *Node {
	var out *Node
	n.Walk(func(c *Node) {
		if out == nil && c.Name == name {
			out = c
		}
	})
	return out
}
