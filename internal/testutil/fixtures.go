package testutil

import "github.com/structview/structview/pkg/core"

// Steel is a structural steel material used across tests.
var Steel = core.Material{
	Name:          "Steel A36",
	E:             200e9,
	G:             77.2e9,
	Density:       7850,
	YieldStrength: 250e6,
}

// W8x31 is a wide-flange section used across tests.
var W8x31 = core.Section{
	Name: "W8x31",
	A:    5.87e-3,
	Ix:   1.1e-4,
	Iy:   3.71e-5,
	Sx:   2.75e-4,
	Sy:   1.24e-4,
	J:    5.36e-7,
}

// Concrete200 is a slab material used across tests.
var Concrete200 = core.PanelMaterial{
	Name:      "C30 200mm",
	E:         33e9,
	G:         13.75e9,
	Thickness: 0.2,
	Density:   2500,
}

// EmptyProject returns a project with all collections present and empty.
func EmptyProject() *core.Project {
	return &core.Project{
		Name:         "Empty",
		Nodes:        []core.Node{},
		Members:      []core.Member{},
		Panels:       []core.Panel{},
		Loads:        []core.Load{},
		LoadCases:    []core.LoadCase{},
		Combinations: []core.LoadCombination{},
	}
}

// Node returns a free, rigidly connected node at (x, y, z).
func Node(id string, x, y, z float64) core.Node {
	return core.Node{
		ID:             id,
		Position:       core.Vec3{X: x, Y: y, Z: z},
		Support:        core.Restraint{Kind: core.SupportFree},
		ConnectionType: core.ConnectionRigid,
		Tags:           []string{},
	}
}

// Member returns a steel member between two node IDs.
func Member(id, start, end string) core.Member {
	return core.Member{
		ID:        id,
		StartNode: start,
		EndNode:   end,
		Material:  Steel,
		Section:   W8x31,
		Tags:      []string{},
	}
}

// Panel returns a concrete panel over the given node IDs.
func Panel(id string, nodeIDs ...string) core.Panel {
	return core.Panel{
		ID:       id,
		NodeIDs:  nodeIDs,
		Material: Concrete200,
		Side:     core.SidePositive,
		Tags:     []string{},
	}
}

// PointLoad returns a downward point load on target under the given case.
func PointLoad(id, loadCase, target string) core.Load {
	return core.Load{
		ID:        id,
		Case:      loadCase,
		Type:      core.LoadPoint,
		Target:    target,
		Magnitude: -5000,
		Direction: core.Vec3{Y: -1},
	}
}

// MinimalProject returns a small, consistent model: two nodes, one member
// and one point load on the member under the "Dead" case.
func MinimalProject() *core.Project {
	fixed := Node("n1", 0, 0, 0)
	fixed.Support = core.Restraint{Kind: core.SupportFixed}

	return &core.Project{
		Name:         "Test",
		Nodes:        []core.Node{fixed, Node("n2", 5, 3, 0)},
		Members:      []core.Member{Member("m1", "n1", "n2")},
		Panels:       []core.Panel{},
		Loads:        []core.Load{PointLoad("L1", "Dead", "m1")},
		LoadCases:    []core.LoadCase{{Name: "Dead", Type: core.CaseDead}},
		Combinations: []core.LoadCombination{},
	}
}
