// Package schema enforces field-level constraints on a structural model.
//
// It runs before the cross-reference validator and guarantees that each
// entity is individually well formed: identifiers are non-empty, enum fields
// hold known values, material and section properties are positive, and
// numbers are finite. Every violation is reported; Check does not stop at the
// first one.
package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/structview/structview/pkg/core"
)

// FieldError is a single field-level violation.
// Path uses dotted index form, e.g. "nodes.0.id".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Errors is the list of violations found by Check.
type Errors []FieldError

// Error implements error.
func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "schema: no errors"
	case 1:
		return fmt.Sprintf("schema: %s: %s", e[0].Path, e[0].Message)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "schema: %d errors", len(e))
	for _, fe := range e {
		fmt.Fprintf(&b, "\n  %s: %s", fe.Path, fe.Message)
	}
	return b.String()
}

// Diagnostics converts the violations to diagnostics.
func (e Errors) Diagnostics() []core.Diagnostic {
	out := make([]core.Diagnostic, len(e))
	for i, fe := range e {
		out[i] = core.Diagnostic{Path: fe.Path, Message: fe.Message}
	}
	return out
}

// Check returns nil if p satisfies every field constraint, or an Errors
// value listing each violation in declaration order.
func Check(p *core.Project) error {
	if p == nil {
		return Errors{{Path: "", Message: "project is required"}}
	}

	c := &checker{}
	c.nonEmpty("name", p.Name)

	c.required("nodes", p.Nodes == nil)
	for i, n := range p.Nodes {
		c.node(at("nodes", i), n)
	}
	c.required("members", p.Members == nil)
	for i, m := range p.Members {
		c.member(at("members", i), m)
	}
	c.required("panels", p.Panels == nil)
	for i, pn := range p.Panels {
		c.panel(at("panels", i), pn)
	}
	c.required("loads", p.Loads == nil)
	for i, l := range p.Loads {
		c.load(at("loads", i), l)
	}
	c.required("load_cases", p.LoadCases == nil)
	for i, lc := range p.LoadCases {
		path := at("load_cases", i)
		c.nonEmpty(path+".name", lc.Name)
		if !lc.Type.Valid() {
			c.enum(path+".type", string(lc.Type), "dead", "live", "wind", "snow", "seismic", "other")
		}
	}
	c.required("combinations", p.Combinations == nil)
	for i, combo := range p.Combinations {
		c.combination(at("combinations", i), combo)
	}

	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

type checker struct {
	errs Errors
}

func at(path string, i int) string {
	return path + "." + strconv.Itoa(i)
}

func (c *checker) add(path, format string, args ...any) {
	c.errs = append(c.errs, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) required(path string, missing bool) {
	if missing {
		c.add(path, "field required")
	}
}

func (c *checker) nonEmpty(path, s string) {
	if s == "" {
		c.add(path, "must be a non-empty string")
	}
}

func (c *checker) enum(path, got string, allowed ...string) {
	c.add(path, "invalid value %q, expected one of: %s", got, strings.Join(allowed, ", "))
}

func (c *checker) finite(path string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		c.add(path, "must be a finite number")
		return false
	}
	return true
}

func (c *checker) positive(path string, v float64) {
	if c.finite(path, v) && v <= 0 {
		c.add(path, "must be greater than 0")
	}
}

func (c *checker) nonNegative(path string, v float64) {
	if c.finite(path, v) && v < 0 {
		c.add(path, "must be greater than or equal to 0")
	}
}

func (c *checker) vec3(path string, v core.Vec3) {
	c.finite(path+".x", v.X)
	c.finite(path+".y", v.Y)
	c.finite(path+".z", v.Z)
}

func (c *checker) tags(path string, tags []string) {
	c.required(path, tags == nil)
}

func (c *checker) node(path string, n core.Node) {
	c.nonEmpty(path+".id", n.ID)
	c.vec3(path+".position", n.Position)

	switch s := n.Support.(type) {
	case nil:
		c.add(path+".support", "field required")
	case core.Restraint:
		if !s.Kind.Valid() || s.Kind == core.SupportSpring {
			c.enum(path+".support.type", string(s.Kind),
				"free", "pinned", "fixed", "roller_x", "roller_y", "roller_z", "spring")
		}
	case core.Spring:
		if k := s.Stiffness; k != nil {
			sp := path + ".support.spring_stiffness"
			c.nonNegative(sp+".kx", k.Kx)
			c.nonNegative(sp+".ky", k.Ky)
			c.nonNegative(sp+".kz", k.Kz)
			c.nonNegative(sp+".krx", k.Krx)
			c.nonNegative(sp+".kry", k.Kry)
			c.nonNegative(sp+".krz", k.Krz)
		}
	}

	switch n.ConnectionType {
	case core.ConnectionRigid, core.ConnectionPinned, core.ConnectionSemiRigid:
	default:
		c.enum(path+".connection_type", string(n.ConnectionType), "rigid", "pinned", "semi_rigid")
	}

	if m := n.ConnectionMethod; m != nil {
		switch *m {
		case core.MethodWelded, core.MethodBolted, core.MethodScrewed, core.MethodNailed, core.MethodGlued:
		default:
			c.enum(path+".connection_method", string(*m), "welded", "bolted", "screwed", "nailed", "glued")
		}
	}

	c.tags(path+".tags", n.Tags)
}

func (c *checker) member(path string, m core.Member) {
	c.nonEmpty(path+".id", m.ID)
	c.nonEmpty(path+".start_node", m.StartNode)
	c.nonEmpty(path+".end_node", m.EndNode)

	mat := path + ".material"
	c.nonEmpty(mat+".name", m.Material.Name)
	c.positive(mat+".E", m.Material.E)
	c.positive(mat+".G", m.Material.G)
	c.positive(mat+".density", m.Material.Density)
	c.positive(mat+".yield_strength", m.Material.YieldStrength)

	sec := path + ".section"
	c.nonEmpty(sec+".name", m.Section.Name)
	c.positive(sec+".A", m.Section.A)
	c.positive(sec+".Ix", m.Section.Ix)
	c.positive(sec+".Iy", m.Section.Iy)
	c.positive(sec+".Sx", m.Section.Sx)
	c.positive(sec+".Sy", m.Section.Sy)
	c.positive(sec+".J", m.Section.J)

	c.tags(path+".tags", m.Tags)
}

func (c *checker) panel(path string, p core.Panel) {
	c.nonEmpty(path+".id", p.ID)

	if len(p.NodeIDs) < 3 {
		c.add(path+".node_ids", "must contain at least 3 items")
	}
	for i, nid := range p.NodeIDs {
		c.nonEmpty(at(path+".node_ids", i), nid)
	}

	mat := path + ".material"
	c.nonEmpty(mat+".name", p.Material.Name)
	c.positive(mat+".E", p.Material.E)
	c.positive(mat+".G", p.Material.G)
	c.positive(mat+".thickness", p.Material.Thickness)
	c.positive(mat+".density", p.Material.Density)

	if p.Side != core.SidePositive && p.Side != core.SideNegative {
		c.enum(path+".side", string(p.Side), "positive", "negative")
	}

	c.tags(path+".tags", p.Tags)
}

func (c *checker) load(path string, l core.Load) {
	c.nonEmpty(path+".id", l.ID)
	c.nonEmpty(path+".case", l.Case)
	if !l.Type.Valid() {
		c.enum(path+".type", string(l.Type), "point", "distributed", "area", "self_weight")
	}
	c.nonEmpty(path+".target", l.Target)
	c.finite(path+".magnitude", l.Magnitude)
	c.vec3(path+".direction", l.Direction)

	if l.Position != nil {
		if c.finite(path+".position", *l.Position) && (*l.Position < 0 || *l.Position > 1) {
			c.add(path+".position", "must be between 0 and 1")
		}
	}
	if l.StartMagnitude != nil {
		c.finite(path+".start_magnitude", *l.StartMagnitude)
	}
	if l.EndMagnitude != nil {
		c.finite(path+".end_magnitude", *l.EndMagnitude)
	}
}

func (c *checker) combination(path string, combo core.LoadCombination) {
	c.nonEmpty(path+".name", combo.Name)
	if len(combo.Factors) < 1 {
		c.add(path+".factors", "must contain at least 1 item")
	}
	for i, f := range combo.Factors {
		fp := at(path+".factors", i)
		c.nonEmpty(fp+".case", f.Case)
		c.finite(fp+".factor", f.Factor)
	}
}
