package core

// Vec3 is a point or direction in model space.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// ConnectionType describes how members framing into a node are joined.
type ConnectionType string

// Connection type constants.
const (
	ConnectionRigid     ConnectionType = "rigid"
	ConnectionPinned    ConnectionType = "pinned"
	ConnectionSemiRigid ConnectionType = "semi_rigid"
)

// ConnectionMethod describes the physical fastening at a node.
type ConnectionMethod string

// Connection method constants.
const (
	MethodWelded  ConnectionMethod = "welded"
	MethodBolted  ConnectionMethod = "bolted"
	MethodScrewed ConnectionMethod = "screwed"
	MethodNailed  ConnectionMethod = "nailed"
	MethodGlued   ConnectionMethod = "glued"
)

// Node is a point in the structural model with position and support conditions.
type Node struct {
	ID               string
	Position         Vec3
	Support          Support
	ConnectionType   ConnectionType
	ConnectionMethod *ConnectionMethod // nil when unspecified
	Tags             []string
}

// Material describes a linear elastic member material.
type Material struct {
	Name          string
	E             float64 // Young's modulus
	G             float64 // Shear modulus
	Density       float64
	YieldStrength float64
}

// Section describes member cross-section properties.
type Section struct {
	Name string
	A    float64
	Ix   float64
	Iy   float64
	Sx   float64
	Sy   float64
	J    float64
}

// EndRelease flags which degrees of freedom are released at one member end.
type EndRelease struct {
	Fx bool
	Fy bool
	Fz bool
	Mx bool
	My bool
	Mz bool
}

// EndReleases holds the releases at both member ends.
type EndReleases struct {
	Start EndRelease
	End   EndRelease
}

// Member is a line element connecting two nodes (beam, column, brace).
type Member struct {
	ID          string
	StartNode   string
	EndNode     string
	Material    Material
	Section     Section
	EndReleases EndReleases
	Tags        []string
}

// PanelMaterial describes a plate or shell material.
type PanelMaterial struct {
	Name      string
	E         float64
	G         float64
	Thickness float64
	Density   float64
}

// PanelSide selects which face of a panel is considered positive.
type PanelSide string

// Panel side constants.
const (
	SidePositive PanelSide = "positive"
	SideNegative PanelSide = "negative"
)

// Panel is a planar element bounded by three or more nodes (wall, slab).
type Panel struct {
	ID       string
	NodeIDs  []string
	Material PanelMaterial
	Side     PanelSide
	Tags     []string
}

// Project is the aggregate root of a structural model.
// Collections may be empty; a nil collection means the field was absent.
type Project struct {
	Name         string
	Nodes        []Node
	Members      []Member
	Panels       []Panel
	Loads        []Load
	LoadCases    []LoadCase
	Combinations []LoadCombination
}
