package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/common"
)

func TestNodeWorldFollowsParent(t *testing.T) {
	root := NewNode("root", common.Pose{Position: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatRotate(1.5707963267948966, common.Up)})
	arm := NewNode("arm", common.NewPose(mgl64.Vec3{0, 0, 2}))
	root.AddChild(arm)

	got := arm.Position()
	want := mgl64.Vec3{2, 1, 0}
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("arm world position = %v, want %v", got, want)
	}

	root.SetPosition(mgl64.Vec3{5, 1, 0})
	if got := arm.Position(); !got.ApproxEqualThreshold(mgl64.Vec3{7, 1, 0}, 1e-9) {
		t.Fatalf("arm did not follow root: %v", got)
	}
}

func TestNodeSetWorldKeepsWorldPose(t *testing.T) {
	root := NewNode("root", common.Pose{Position: mgl64.Vec3{3, 0, -1}, Rotation: mgl64.QuatRotate(0.4, common.Up)})
	child := NewNode("child", common.NewPose(mgl64.Vec3{}))
	root.AddChild(child)

	target := common.Pose{Position: mgl64.Vec3{-2, 4, 9}, Rotation: mgl64.QuatRotate(-1.1, common.WorldRight)}
	child.SetWorld(target)
	if got := child.World(); !got.ApproxEqual(target, 1e-9) {
		t.Fatalf("child world = %+v, want %+v", got, target)
	}
}

func TestNodeWalkAndFind(t *testing.T) {
	root := NewNode("root", common.Pose{})
	a := NewNode("a", common.Pose{})
	b := NewNode("b", common.Pose{})
	c := NewNode("c", common.Pose{})
	root.AddChild(a)
	a.AddChild(b)
	root.AddChild(c)

	var order []string
	root.Walk(func(n *Node) { order = append(order, n.Name) })
	want := []string{"root", "a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("walk order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("walk order = %v, want %v", order, want)
		}
	}
	if root.Find("b") != b {
		t.Fatalf("Find(b) failed")
	}
	if !b.IsUnder(root) || c.IsUnder(a) {
		t.Fatalf("IsUnder mismatch")
	}

	// reparent keeps a single parent
	c.AddChild(b)
	if len(a.Children()) != 0 || b.Parent() != c {
		t.Fatalf("reparent failed")
	}
}
