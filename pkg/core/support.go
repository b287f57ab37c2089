package core

// SupportType names a boundary condition variant.
type SupportType string

// Support type constants.
const (
	SupportFree    SupportType = "free"
	SupportPinned  SupportType = "pinned"
	SupportFixed   SupportType = "fixed"
	SupportRollerX SupportType = "roller_x"
	SupportRollerY SupportType = "roller_y"
	SupportRollerZ SupportType = "roller_z"
	SupportSpring  SupportType = "spring"
)

// SupportTypes lists every support variant in declaration order.
var SupportTypes = []SupportType{
	SupportFree, SupportPinned, SupportFixed,
	SupportRollerX, SupportRollerY, SupportRollerZ,
	SupportSpring,
}

// Valid reports whether t is a known support type.
func (t SupportType) Valid() bool {
	for _, s := range SupportTypes {
		if s == t {
			return true
		}
	}
	return false
}

// SpringStiffness holds translational and rotational spring constants.
type SpringStiffness struct {
	Kx  float64
	Ky  float64
	Kz  float64
	Krx float64
	Kry float64
	Krz float64
}

// Support is the boundary condition applied at a node.
// It is either a Restraint or a Spring.
type Support interface {
	Type() SupportType
	isSupport()
}

// Restraint is a rigid boundary condition: free, pinned, fixed or one of the rollers.
type Restraint struct {
	Kind SupportType
}

// Type implements Support.
func (r Restraint) Type() SupportType { return r.Kind }

func (Restraint) isSupport() {}

// Spring is an elastic support. Stiffness is nil when the model omitted it.
type Spring struct {
	Stiffness *SpringStiffness
}

// Type implements Support.
func (Spring) Type() SupportType { return SupportSpring }

func (Spring) isSupport() {}

// NewSupport builds the Support variant for t.
// Stiffness is only kept for the spring variant.
func NewSupport(t SupportType, stiffness *SpringStiffness) Support {
	if t == SupportSpring {
		return Spring{Stiffness: stiffness}
	}
	return Restraint{Kind: t}
}

// StiffnessOf returns the spring stiffness carried by s, if any.
func StiffnessOf(s Support) *SpringStiffness {
	if sp, ok := s.(Spring); ok {
		return sp.Stiffness
	}
	return nil
}
