package opc

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const nsPackageRels = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationship is a typed edge from a part (or the package) to another part
// or to an external resource.
type Relationship struct {
	ID       string
	Type     string
	Target   string // as written: relative part reference or URI
	External bool
}

// Relationships is the relationship table of one source part.
type Relationships struct {
	pkg    *Package
	source string // owning part name, "" for the package
	items  []*Relationship
}

func newRelationships(pkg *Package, source string) *Relationships {
	return &Relationships{pkg: pkg, source: source}
}

func parseRelationships(pkg *Package, source string, data []byte) (*Relationships, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	rels := newRelationships(pkg, source)
	root := doc.Root()
	if root == nil {
		return rels, nil
	}
	for _, el := range root.SelectElements("Relationship") {
		rels.items = append(rels.items, &Relationship{
			ID:       el.SelectAttrValue("Id", ""),
			Type:     el.SelectAttrValue("Type", ""),
			Target:   el.SelectAttrValue("Target", ""),
			External: el.SelectAttrValue("TargetMode", "") == "External",
		})
	}
	return rels, nil
}

func (r *Relationships) marshal() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsPackageRels)
	for _, rel := range r.items {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", rel.ID)
		el.CreateAttr("Type", rel.Type)
		el.CreateAttr("Target", rel.Target)
		if rel.External {
			el.CreateAttr("TargetMode", "External")
		}
	}
	return doc.WriteToBytes()
}

func (r *Relationships) cloneInto(pkg *Package) *Relationships {
	c := newRelationships(pkg, r.source)
	for _, rel := range r.items {
		cp := *rel
		c.items = append(c.items, &cp)
	}
	return c
}

// Source returns the owning part name ("" for package relationships).
func (r *Relationships) Source() string {
	return r.source
}

// Len returns the number of relationships.
func (r *Relationships) Len() int {
	return len(r.items)
}

// All returns the relationships in document order.
func (r *Relationships) All() []*Relationship {
	return append([]*Relationship(nil), r.items...)
}

// Get returns the relationship with the given id.
func (r *Relationships) Get(id string) (*Relationship, bool) {
	for _, rel := range r.items {
		if rel.ID == id {
			return rel, true
		}
	}
	return nil, false
}

// ByType returns all relationships of the given type.
func (r *Relationships) ByType(relType string) []*Relationship {
	var out []*Relationship
	for _, rel := range r.items {
		if rel.Type == relType {
			out = append(out, rel)
		}
	}
	return out
}

// TargetName resolves an internal relationship target to a part name.
func (r *Relationships) TargetName(rel *Relationship) string {
	return ResolveTarget(r.source, rel.Target)
}

// TargetPart returns the part an internal relationship points at.
func (r *Relationships) TargetPart(id string) (*Part, error) {
	rel, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("relationship %s not found in %s", id, r.describe())
	}
	if rel.External {
		return nil, fmt.Errorf("relationship %s in %s is external (%s)", id, r.describe(), rel.Target)
	}
	name := r.TargetName(rel)
	part := r.pkg.Part(name)
	if part == nil {
		return nil, fmt.Errorf("relationship %s in %s targets missing part %s", id, r.describe(), name)
	}
	return part, nil
}

// AddInternal relates the source part to target and returns the relationship
// id. An existing relationship of the same type to the same part is reused.
func (r *Relationships) AddInternal(relType string, target *Part) string {
	for _, rel := range r.items {
		if !rel.External && rel.Type == relType && r.TargetName(rel) == target.name {
			return rel.ID
		}
	}
	rel := &Relationship{
		ID:     r.nextID(),
		Type:   relType,
		Target: RelativeTarget(r.source, target.name),
	}
	r.items = append(r.items, rel)
	return rel.ID
}

// AddExternal relates the source part to an external URI and returns the new
// relationship id. An identical external relationship is reused.
func (r *Relationships) AddExternal(relType, uri string) string {
	for _, rel := range r.items {
		if rel.External && rel.Type == relType && rel.Target == uri {
			return rel.ID
		}
	}
	rel := &Relationship{
		ID:       r.nextID(),
		Type:     relType,
		Target:   uri,
		External: true,
	}
	r.items = append(r.items, rel)
	return rel.ID
}

// Remove deletes the relationship with the given id.
func (r *Relationships) Remove(id string) {
	for i, rel := range r.items {
		if rel.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return
		}
	}
}

// nextID returns "rIdN" where N is one greater than the largest numeric
// suffix in use.
func (r *Relationships) nextID() string {
	max := 0
	for _, rel := range r.items {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > max {
			max = n
		}
	}
	return "rId" + strconv.Itoa(max+1)
}

func (r *Relationships) describe() string {
	if r.source == "" {
		return "package"
	}
	return r.source
}

// ResolveTarget turns a relationship target written relative to source into
// an absolute part name without a leading slash.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	base := path.Dir(source)
	if source == "" {
		base = ""
	}
	return strings.TrimPrefix(path.Clean(path.Join("/", base, target)), "/")
}

// RelativeTarget computes the relationship target for part name "to" as seen
// from part "from", e.g. ("ppt/slides/slide1.xml", "ppt/media/image1.png")
// gives "../media/image1.png".
func RelativeTarget(from, to string) string {
	if from == "" {
		return to
	}
	fromDir := strings.Split(path.Dir(from), "/")
	toParts := strings.Split(to, "/")
	toDir, toBase := toParts[:len(toParts)-1], toParts[len(toParts)-1]

	common := 0
	for common < len(fromDir) && common < len(toDir) && fromDir[common] == toDir[common] {
		common++
	}

	var out []string
	for i := common; i < len(fromDir); i++ {
		out = append(out, "..")
	}
	out = append(out, toDir[common:]...)
	out = append(out, toBase)
	return strings.Join(out, "/")
}
