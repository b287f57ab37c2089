package loader

import "github.com/structview/structview/pkg/core"

// The *Doc types mirror the wire document. Field tags are shared by the
// JSON, YAML (through mapstructure) and msgpack decoders.

type vec3Doc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type springDoc struct {
	Kx  float64 `json:"kx"`
	Ky  float64 `json:"ky"`
	Kz  float64 `json:"kz"`
	Krx float64 `json:"krx"`
	Kry float64 `json:"kry"`
	Krz float64 `json:"krz"`
}

type supportDoc struct {
	Type            string     `json:"type"`
	SpringStiffness *springDoc `json:"spring_stiffness,omitempty"`
}

type nodeDoc struct {
	ID               string      `json:"id"`
	Position         vec3Doc     `json:"position"`
	Support          *supportDoc `json:"support"`
	ConnectionType   string      `json:"connection_type"`
	ConnectionMethod *string     `json:"connection_method,omitempty"`
	Tags             []string    `json:"tags"`
}

type materialDoc struct {
	Name          string  `json:"name"`
	E             float64 `json:"E"`
	G             float64 `json:"G"`
	Density       float64 `json:"density"`
	YieldStrength float64 `json:"yield_strength"`
}

type sectionDoc struct {
	Name string  `json:"name"`
	A    float64 `json:"A"`
	Ix   float64 `json:"Ix"`
	Iy   float64 `json:"Iy"`
	Sx   float64 `json:"Sx"`
	Sy   float64 `json:"Sy"`
	J    float64 `json:"J"`
}

type releaseDoc struct {
	Fx bool `json:"fx"`
	Fy bool `json:"fy"`
	Fz bool `json:"fz"`
	Mx bool `json:"mx"`
	My bool `json:"my"`
	Mz bool `json:"mz"`
}

type releasesDoc struct {
	Start releaseDoc `json:"start"`
	End   releaseDoc `json:"end"`
}

type memberDoc struct {
	ID          string      `json:"id"`
	StartNode   string      `json:"start_node"`
	EndNode     string      `json:"end_node"`
	Material    materialDoc `json:"material"`
	Section     sectionDoc  `json:"section"`
	EndReleases releasesDoc `json:"end_releases"`
	Tags        []string    `json:"tags"`
}

type panelMaterialDoc struct {
	Name      string  `json:"name"`
	E         float64 `json:"E"`
	G         float64 `json:"G"`
	Thickness float64 `json:"thickness"`
	Density   float64 `json:"density"`
}

type panelDoc struct {
	ID       string           `json:"id"`
	NodeIDs  []string         `json:"node_ids"`
	Material panelMaterialDoc `json:"material"`
	Side     string           `json:"side"`
	Tags     []string         `json:"tags"`
}

type loadDoc struct {
	ID             string   `json:"id"`
	Case           string   `json:"case"`
	Type           string   `json:"type"`
	Target         string   `json:"target"`
	Magnitude      float64  `json:"magnitude"`
	Direction      vec3Doc  `json:"direction"`
	Position       *float64 `json:"position,omitempty"`
	StartMagnitude *float64 `json:"start_magnitude,omitempty"`
	EndMagnitude   *float64 `json:"end_magnitude,omitempty"`
}

type loadCaseDoc struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type factorDoc struct {
	Case   string  `json:"case"`
	Factor float64 `json:"factor"`
}

type combinationDoc struct {
	Name    string      `json:"name"`
	Factors []factorDoc `json:"factors"`
}

type projectDoc struct {
	Name         string           `json:"name"`
	Nodes        []nodeDoc        `json:"nodes"`
	Members      []memberDoc      `json:"members"`
	Panels       []panelDoc       `json:"panels"`
	Loads        []loadDoc        `json:"loads"`
	LoadCases    []loadCaseDoc    `json:"load_cases"`
	Combinations []combinationDoc `json:"combinations"`
}

func (v vec3Doc) toCore() core.Vec3 { return core.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func vecDoc(v core.Vec3) vec3Doc { return vec3Doc{X: v.X, Y: v.Y, Z: v.Z} }

func (r releaseDoc) toCore() core.EndRelease {
	return core.EndRelease{Fx: r.Fx, Fy: r.Fy, Fz: r.Fz, Mx: r.Mx, My: r.My, Mz: r.Mz}
}

func (s *supportDoc) toCore() core.Support {
	if s == nil {
		return nil
	}
	var stiffness *core.SpringStiffness
	if k := s.SpringStiffness; k != nil {
		stiffness = &core.SpringStiffness{Kx: k.Kx, Ky: k.Ky, Kz: k.Kz, Krx: k.Krx, Kry: k.Kry, Krz: k.Krz}
	}
	return core.NewSupport(core.SupportType(s.Type), stiffness)
}

// toProject converts the document into the domain model. A collection
// missing from the document stays nil so schema checks can report it.
func (d *projectDoc) toProject() *core.Project {
	p := &core.Project{Name: d.Name}

	if d.Nodes != nil {
		p.Nodes = make([]core.Node, 0, len(d.Nodes))
	}
	for _, n := range d.Nodes {
		node := core.Node{
			ID:             n.ID,
			Position:       n.Position.toCore(),
			Support:        n.Support.toCore(),
			ConnectionType: core.ConnectionType(n.ConnectionType),
			Tags:           n.Tags,
		}
		if n.ConnectionMethod != nil {
			m := core.ConnectionMethod(*n.ConnectionMethod)
			node.ConnectionMethod = &m
		}
		p.Nodes = append(p.Nodes, node)
	}

	if d.Members != nil {
		p.Members = make([]core.Member, 0, len(d.Members))
	}
	for _, m := range d.Members {
		p.Members = append(p.Members, core.Member{
			ID:        m.ID,
			StartNode: m.StartNode,
			EndNode:   m.EndNode,
			Material: core.Material{
				Name:          m.Material.Name,
				E:             m.Material.E,
				G:             m.Material.G,
				Density:       m.Material.Density,
				YieldStrength: m.Material.YieldStrength,
			},
			Section: core.Section(m.Section),
			EndReleases: core.EndReleases{
				Start: m.EndReleases.Start.toCore(),
				End:   m.EndReleases.End.toCore(),
			},
			Tags: m.Tags,
		})
	}

	if d.Panels != nil {
		p.Panels = make([]core.Panel, 0, len(d.Panels))
	}
	for _, pn := range d.Panels {
		p.Panels = append(p.Panels, core.Panel{
			ID:       pn.ID,
			NodeIDs:  pn.NodeIDs,
			Material: core.PanelMaterial(pn.Material),
			Side:     core.PanelSide(pn.Side),
			Tags:     pn.Tags,
		})
	}

	if d.Loads != nil {
		p.Loads = make([]core.Load, 0, len(d.Loads))
	}
	for _, l := range d.Loads {
		p.Loads = append(p.Loads, core.Load{
			ID:             l.ID,
			Case:           l.Case,
			Type:           core.LoadType(l.Type),
			Target:         l.Target,
			Magnitude:      l.Magnitude,
			Direction:      l.Direction.toCore(),
			Position:       l.Position,
			StartMagnitude: l.StartMagnitude,
			EndMagnitude:   l.EndMagnitude,
		})
	}

	if d.LoadCases != nil {
		p.LoadCases = make([]core.LoadCase, 0, len(d.LoadCases))
	}
	for _, lc := range d.LoadCases {
		p.LoadCases = append(p.LoadCases, core.LoadCase{Name: lc.Name, Type: core.LoadCaseType(lc.Type)})
	}

	if d.Combinations != nil {
		p.Combinations = make([]core.LoadCombination, 0, len(d.Combinations))
	}
	for _, c := range d.Combinations {
		combo := core.LoadCombination{Name: c.Name}
		if c.Factors != nil {
			combo.Factors = make([]core.CombinationFactor, 0, len(c.Factors))
		}
		for _, f := range c.Factors {
			combo.Factors = append(combo.Factors, core.CombinationFactor{Case: f.Case, Factor: f.Factor})
		}
		p.Combinations = append(p.Combinations, combo)
	}

	return p
}

// fromProject is the inverse of toProject.
func fromProject(p *core.Project) *projectDoc {
	if p == nil {
		return &projectDoc{}
	}
	d := &projectDoc{Name: p.Name}

	if p.Nodes != nil {
		d.Nodes = make([]nodeDoc, 0, len(p.Nodes))
	}
	for _, n := range p.Nodes {
		nd := nodeDoc{
			ID:             n.ID,
			Position:       vecDoc(n.Position),
			ConnectionType: string(n.ConnectionType),
			Tags:           n.Tags,
		}
		if n.Support != nil {
			nd.Support = &supportDoc{Type: string(n.Support.Type())}
			if k := core.StiffnessOf(n.Support); k != nil {
				nd.Support.SpringStiffness = &springDoc{Kx: k.Kx, Ky: k.Ky, Kz: k.Kz, Krx: k.Krx, Kry: k.Kry, Krz: k.Krz}
			}
		}
		if n.ConnectionMethod != nil {
			m := string(*n.ConnectionMethod)
			nd.ConnectionMethod = &m
		}
		d.Nodes = append(d.Nodes, nd)
	}

	if p.Members != nil {
		d.Members = make([]memberDoc, 0, len(p.Members))
	}
	for _, m := range p.Members {
		d.Members = append(d.Members, memberDoc{
			ID:        m.ID,
			StartNode: m.StartNode,
			EndNode:   m.EndNode,
			Material: materialDoc{
				Name:          m.Material.Name,
				E:             m.Material.E,
				G:             m.Material.G,
				Density:       m.Material.Density,
				YieldStrength: m.Material.YieldStrength,
			},
			Section: sectionDoc(m.Section),
			EndReleases: releasesDoc{
				Start: releaseDoc(m.EndReleases.Start),
				End:   releaseDoc(m.EndReleases.End),
			},
			Tags: m.Tags,
		})
	}

	if p.Panels != nil {
		d.Panels = make([]panelDoc, 0, len(p.Panels))
	}
	for _, pn := range p.Panels {
		d.Panels = append(d.Panels, panelDoc{
			ID:       pn.ID,
			NodeIDs:  pn.NodeIDs,
			Material: panelMaterialDoc(pn.Material),
			Side:     string(pn.Side),
			Tags:     pn.Tags,
		})
	}

	if p.Loads != nil {
		d.Loads = make([]loadDoc, 0, len(p.Loads))
	}
	for _, l := range p.Loads {
		d.Loads = append(d.Loads, loadDoc{
			ID:             l.ID,
			Case:           l.Case,
			Type:           string(l.Type),
			Target:         l.Target,
			Magnitude:      l.Magnitude,
			Direction:      vecDoc(l.Direction),
			Position:       l.Position,
			StartMagnitude: l.StartMagnitude,
			EndMagnitude:   l.EndMagnitude,
		})
	}

	if p.LoadCases != nil {
		d.LoadCases = make([]loadCaseDoc, 0, len(p.LoadCases))
	}
	for _, lc := range p.LoadCases {
		d.LoadCases = append(d.LoadCases, loadCaseDoc{Name: lc.Name, Type: string(lc.Type)})
	}

	if p.Combinations != nil {
		d.Combinations = make([]combinationDoc, 0, len(p.Combinations))
	}
	for _, c := range p.Combinations {
		cd := combinationDoc{Name: c.Name}
		if c.Factors != nil {
			cd.Factors = make([]factorDoc, 0, len(c.Factors))
		}
		for _, f := range c.Factors {
			cd.Factors = append(cd.Factors, factorDoc{Case: f.Case, Factor: f.Factor})
		}
		d.Combinations = append(d.Combinations, cd)
	}

	return d
}
