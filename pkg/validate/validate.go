package validate

import (
	"fmt"

	"github.com/structview/structview/pkg/core"
)

// idSet is a set of entity identifiers.
type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// add inserts id and reports whether it was already present.
func (s idSet) add(id string) bool {
	if _, ok := s[id]; ok {
		return true
	}
	s[id] = struct{}{}
	return false
}

// checker carries the identifier sets built up across passes.
type checker struct {
	diags []core.Diagnostic

	nodeIDs   idSet
	memberIDs idSet
	panelIDs  idSet
	caseNames idSet
}

func (c *checker) report(path, format string, args ...any) {
	c.diags = append(c.diags, core.Diagnostic{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate returns every referential or configuration inconsistency in p.
// An empty result means the model's cross-references are consistent.
func Validate(p *core.Project) []core.Diagnostic {
	if p == nil {
		return nil
	}

	c := &checker{
		nodeIDs:   make(idSet, len(p.Nodes)),
		memberIDs: make(idSet, len(p.Members)),
		panelIDs:  make(idSet, len(p.Panels)),
		caseNames: make(idSet, len(p.LoadCases)),
	}

	c.checkNodes(p.Nodes)
	c.checkMembers(p.Members)
	c.checkPanels(p.Panels)
	c.checkLoads(p.Loads, p.LoadCases)
	c.checkCombinations(p.Combinations)

	return c.diags
}

func (c *checker) checkNodes(nodes []core.Node) {
	for _, n := range nodes {
		if c.nodeIDs.add(n.ID) {
			c.report("nodes", `Duplicate node ID: "%s"`, n.ID)
		}

		if n.Support != nil && n.Support.Type() == core.SupportSpring && core.StiffnessOf(n.Support) == nil {
			c.report("nodes."+n.ID+".support",
				`Node "%s" has spring support but no spring_stiffness`, n.ID)
		}
	}
}

func (c *checker) checkMembers(members []core.Member) {
	for _, m := range members {
		if c.memberIDs.add(m.ID) {
			c.report("members", `Duplicate member ID: "%s"`, m.ID)
		}

		if !c.nodeIDs.has(m.StartNode) {
			c.report("members."+m.ID+".start_node",
				`Member "%s" references non-existent start_node "%s"`, m.ID, m.StartNode)
		}
		if !c.nodeIDs.has(m.EndNode) {
			c.report("members."+m.ID+".end_node",
				`Member "%s" references non-existent end_node "%s"`, m.ID, m.EndNode)
		}
		// Independent of the reference checks above.
		if m.StartNode == m.EndNode {
			c.report("members."+m.ID,
				`Member "%s" has identical start and end nodes`, m.ID)
		}
	}
}

func (c *checker) checkPanels(panels []core.Panel) {
	for _, p := range panels {
		if c.panelIDs.add(p.ID) {
			c.report("panels", `Duplicate panel ID: "%s"`, p.ID)
		}

		for _, nid := range p.NodeIDs {
			if !c.nodeIDs.has(nid) {
				c.report("panels."+p.ID+".node_ids",
					`Panel "%s" references non-existent node "%s"`, p.ID, nid)
			}
		}
	}
}

func (c *checker) checkLoads(loads []core.Load, cases []core.LoadCase) {
	targets := make(idSet, len(c.memberIDs)+len(c.panelIDs))
	for id := range c.memberIDs {
		targets[id] = struct{}{}
	}
	for id := range c.panelIDs {
		targets[id] = struct{}{}
	}
	for _, lc := range cases {
		c.caseNames.add(lc.Name)
	}

	loadIDs := make(idSet, len(loads))
	for _, l := range loads {
		if loadIDs.add(l.ID) {
			c.report("loads", `Duplicate load ID: "%s"`, l.ID)
		}

		if l.Type != core.LoadSelfWeight && !targets.has(l.Target) {
			c.report("loads."+l.ID+".target",
				`Load "%s" references non-existent target "%s"`, l.ID, l.Target)
		}

		if !c.caseNames.has(l.Case) {
			c.report("loads."+l.ID+".case",
				`Load "%s" references non-existent load case "%s"`, l.ID, l.Case)
		}
	}
}

func (c *checker) checkCombinations(combos []core.LoadCombination) {
	for _, combo := range combos {
		for _, f := range combo.Factors {
			if !c.caseNames.has(f.Case) {
				c.report("combinations."+combo.Name+".factors",
					`Combination "%s" references non-existent load case "%s"`, combo.Name, f.Case)
			}
		}
	}
}
