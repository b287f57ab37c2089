package core

// LoadType names how a load is applied.
type LoadType string

// Load type constants.
const (
	LoadPoint       LoadType = "point"
	LoadDistributed LoadType = "distributed"
	LoadArea        LoadType = "area"
	LoadSelfWeight  LoadType = "self_weight"
)

// Valid reports whether t is a known load type.
func (t LoadType) Valid() bool {
	switch t {
	case LoadPoint, LoadDistributed, LoadArea, LoadSelfWeight:
		return true
	}
	return false
}

// Load is an action applied to a member or panel under a load case.
type Load struct {
	ID             string
	Case           string
	Type           LoadType
	Target         string // member or panel ID; ignored for self weight
	Magnitude      float64
	Direction      Vec3
	Position       *float64 // normalized position along a member, 0..1
	StartMagnitude *float64
	EndMagnitude   *float64
}

// LoadCaseType categorizes a load case.
type LoadCaseType string

// Load case type constants.
const (
	CaseDead    LoadCaseType = "dead"
	CaseLive    LoadCaseType = "live"
	CaseWind    LoadCaseType = "wind"
	CaseSnow    LoadCaseType = "snow"
	CaseSeismic LoadCaseType = "seismic"
	CaseOther   LoadCaseType = "other"
)

// Valid reports whether t is a known load case type.
func (t LoadCaseType) Valid() bool {
	switch t {
	case CaseDead, CaseLive, CaseWind, CaseSnow, CaseSeismic, CaseOther:
		return true
	}
	return false
}

// LoadCase is a named category of applied loading.
// Name is the key loads and combinations refer to.
type LoadCase struct {
	Name string
	Type LoadCaseType
}

// CombinationFactor scales one load case within a combination.
type CombinationFactor struct {
	Case   string
	Factor float64
}

// LoadCombination is a weighted sum of load cases.
type LoadCombination struct {
	Name    string
	Factors []CombinationFactor
}
