package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/structview/structview/pkg/core"
	"github.com/zclconf/go-cty/cty"
)

// HCL document shape:
//
//	name = "Portal frame"
//
//	node "n1" {
//	  position        = [0, 0, 0]
//	  connection_type = "rigid"
//	  support { type = "fixed" }
//	}
//
//	member "m1" {
//	  start_node = "n1"
//	  end_node   = "n2"
//	  material { ... }
//	  section  { ... }
//	}
//
//	load_case "Dead" { type = "dead" }
//
//	combination "ULS" {
//	  factor {
//	    case   = "Dead"
//	    factor = 1.35
//	  }
//	}
//
// Expressions may use the unit table, e.g. E = 200 * unit.GPa.

type hclDocument struct {
	Name         string           `hcl:"name"`
	Nodes        []hclNode        `hcl:"node,block"`
	Members      []hclMember      `hcl:"member,block"`
	Panels       []hclPanel       `hcl:"panel,block"`
	Loads        []hclLoad        `hcl:"load,block"`
	LoadCases    []hclLoadCase    `hcl:"load_case,block"`
	Combinations []hclCombination `hcl:"combination,block"`
}

type hclSpring struct {
	Kx  float64 `hcl:"kx"`
	Ky  float64 `hcl:"ky"`
	Kz  float64 `hcl:"kz"`
	Krx float64 `hcl:"krx"`
	Kry float64 `hcl:"kry"`
	Krz float64 `hcl:"krz"`
}

type hclSupport struct {
	Type            string     `hcl:"type"`
	SpringStiffness *hclSpring `hcl:"spring_stiffness,block"`
}

type hclNode struct {
	ID               string      `hcl:"id,label"`
	Position         []float64   `hcl:"position"`
	ConnectionType   string      `hcl:"connection_type"`
	ConnectionMethod *string     `hcl:"connection_method,optional"`
	Tags             []string    `hcl:"tags,optional"`
	Support          *hclSupport `hcl:"support,block"`
}

type hclMaterial struct {
	Name          string  `hcl:"name"`
	E             float64 `hcl:"E"`
	G             float64 `hcl:"G"`
	Density       float64 `hcl:"density"`
	YieldStrength float64 `hcl:"yield_strength"`
}

type hclSection struct {
	Name string  `hcl:"name"`
	A    float64 `hcl:"A"`
	Ix   float64 `hcl:"Ix"`
	Iy   float64 `hcl:"Iy"`
	Sx   float64 `hcl:"Sx"`
	Sy   float64 `hcl:"Sy"`
	J    float64 `hcl:"J"`
}

type hclRelease struct {
	Fx bool `hcl:"fx,optional"`
	Fy bool `hcl:"fy,optional"`
	Fz bool `hcl:"fz,optional"`
	Mx bool `hcl:"mx,optional"`
	My bool `hcl:"my,optional"`
	Mz bool `hcl:"mz,optional"`
}

type hclReleases struct {
	Start *hclRelease `hcl:"start,block"`
	End   *hclRelease `hcl:"end,block"`
}

type hclMember struct {
	ID          string       `hcl:"id,label"`
	StartNode   string       `hcl:"start_node"`
	EndNode     string       `hcl:"end_node"`
	Tags        []string     `hcl:"tags,optional"`
	Material    hclMaterial  `hcl:"material,block"`
	Section     hclSection   `hcl:"section,block"`
	EndReleases *hclReleases `hcl:"end_releases,block"`
}

type hclPanelMaterial struct {
	Name      string  `hcl:"name"`
	E         float64 `hcl:"E"`
	G         float64 `hcl:"G"`
	Thickness float64 `hcl:"thickness"`
	Density   float64 `hcl:"density"`
}

type hclPanel struct {
	ID       string           `hcl:"id,label"`
	NodeIDs  []string         `hcl:"node_ids"`
	Side     string           `hcl:"side"`
	Tags     []string         `hcl:"tags,optional"`
	Material hclPanelMaterial `hcl:"material,block"`
}

type hclLoad struct {
	ID             string    `hcl:"id,label"`
	Case           string    `hcl:"case"`
	Type           string    `hcl:"type"`
	Target         string    `hcl:"target,optional"`
	Magnitude      float64   `hcl:"magnitude"`
	Direction      []float64 `hcl:"direction"`
	Position       *float64  `hcl:"position,optional"`
	StartMagnitude *float64  `hcl:"start_magnitude,optional"`
	EndMagnitude   *float64  `hcl:"end_magnitude,optional"`
}

type hclLoadCase struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

type hclFactor struct {
	Case   string  `hcl:"case"`
	Factor float64 `hcl:"factor"`
}

type hclCombination struct {
	Name    string      `hcl:"name,label"`
	Factors []hclFactor `hcl:"factor,block"`
}

// unitScale lists the SI multipliers exposed to HCL expressions as unit.<name>.
var unitScale = map[string]float64{
	"mm":  1e-3,
	"cm":  1e-2,
	"m":   1,
	"N":   1,
	"kN":  1e3,
	"MN":  1e6,
	"Pa":  1,
	"kPa": 1e3,
	"MPa": 1e6,
	"GPa": 1e9,
}

func evalContext() *hcl.EvalContext {
	units := make(map[string]cty.Value, len(unitScale))
	for name, scale := range unitScale {
		units[name] = cty.NumberFloatVal(scale)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"unit": cty.ObjectVal(units),
		},
	}
}

// DecodeHCL parses an HCL model document. filename is used in diagnostics only.
func DecodeHCL(src []byte, filename string) (*core.Project, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL model %s: %s", filename, diags.Error())
	}

	var doc hclDocument
	diags = gohcl.DecodeBody(file.Body, evalContext(), &doc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL model %s: %s", filename, diags.Error())
	}

	return doc.toProject()
}

func vecFromList(v []float64) (core.Vec3, bool) {
	if len(v) != 3 {
		return core.Vec3{}, false
	}
	return core.Vec3{X: v[0], Y: v[1], Z: v[2]}, true
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *hclRelease) toCore() core.EndRelease {
	if r == nil {
		return core.EndRelease{}
	}
	return core.EndRelease{Fx: r.Fx, Fy: r.Fy, Fz: r.Fz, Mx: r.Mx, My: r.My, Mz: r.Mz}
}

// toProject converts the block document. Every collection is present in the
// result since HCL has no way to spell an explicitly empty block list.
func (d *hclDocument) toProject() (*core.Project, error) {
	p := &core.Project{
		Name:         d.Name,
		Nodes:        make([]core.Node, 0, len(d.Nodes)),
		Members:      make([]core.Member, 0, len(d.Members)),
		Panels:       make([]core.Panel, 0, len(d.Panels)),
		Loads:        make([]core.Load, 0, len(d.Loads)),
		LoadCases:    make([]core.LoadCase, 0, len(d.LoadCases)),
		Combinations: make([]core.LoadCombination, 0, len(d.Combinations)),
	}

	for _, n := range d.Nodes {
		pos, ok := vecFromList(n.Position)
		if !ok {
			return nil, fmt.Errorf("node %q: position must have exactly 3 components, got %d", n.ID, len(n.Position))
		}
		node := core.Node{
			ID:             n.ID,
			Position:       pos,
			ConnectionType: core.ConnectionType(n.ConnectionType),
			Tags:           emptyIfNil(n.Tags),
		}
		if s := n.Support; s != nil {
			var stiffness *core.SpringStiffness
			if k := s.SpringStiffness; k != nil {
				stiffness = &core.SpringStiffness{Kx: k.Kx, Ky: k.Ky, Kz: k.Kz, Krx: k.Krx, Kry: k.Kry, Krz: k.Krz}
			}
			node.Support = core.NewSupport(core.SupportType(s.Type), stiffness)
		}
		if n.ConnectionMethod != nil {
			m := core.ConnectionMethod(*n.ConnectionMethod)
			node.ConnectionMethod = &m
		}
		p.Nodes = append(p.Nodes, node)
	}

	for _, m := range d.Members {
		member := core.Member{
			ID:        m.ID,
			StartNode: m.StartNode,
			EndNode:   m.EndNode,
			Material:  core.Material(m.Material),
			Section:   core.Section(m.Section),
			Tags:      emptyIfNil(m.Tags),
		}
		if m.EndReleases != nil {
			member.EndReleases = core.EndReleases{
				Start: m.EndReleases.Start.toCore(),
				End:   m.EndReleases.End.toCore(),
			}
		}
		p.Members = append(p.Members, member)
	}

	for _, pn := range d.Panels {
		p.Panels = append(p.Panels, core.Panel{
			ID:       pn.ID,
			NodeIDs:  emptyIfNil(pn.NodeIDs),
			Material: core.PanelMaterial(pn.Material),
			Side:     core.PanelSide(pn.Side),
			Tags:     emptyIfNil(pn.Tags),
		})
	}

	for _, l := range d.Loads {
		dir, ok := vecFromList(l.Direction)
		if !ok {
			return nil, fmt.Errorf("load %q: direction must have exactly 3 components, got %d", l.ID, len(l.Direction))
		}
		p.Loads = append(p.Loads, core.Load{
			ID:             l.ID,
			Case:           l.Case,
			Type:           core.LoadType(l.Type),
			Target:         l.Target,
			Magnitude:      l.Magnitude,
			Direction:      dir,
			Position:       l.Position,
			StartMagnitude: l.StartMagnitude,
			EndMagnitude:   l.EndMagnitude,
		})
	}

	for _, lc := range d.LoadCases {
		p.LoadCases = append(p.LoadCases, core.LoadCase{Name: lc.Name, Type: core.LoadCaseType(lc.Type)})
	}

	for _, c := range d.Combinations {
		combo := core.LoadCombination{Name: c.Name, Factors: make([]core.CombinationFactor, 0, len(c.Factors))}
		for _, f := range c.Factors {
			combo.Factors = append(combo.Factors, core.CombinationFactor{Case: f.Case, Factor: f.Factor})
		}
		p.Combinations = append(p.Combinations, combo)
	}

	return p, nil
}
