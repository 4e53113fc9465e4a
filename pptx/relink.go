package pptx

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/tsawler/slidekit/opc"
)

// relinkTypes lists the relationship types carried over when a slide is
// duplicated. Diagram parts, layouts, notes and embedded packages are left
// behind so large binary parts are not duplicated by accident.
var relinkTypes = map[string]bool{
	RelTypeHyperlink: true,
	RelTypeOLEObject: true,
	RelTypeImage:     true,
}

// Relink registers the source slide's hyperlink, OLE object and image
// relationships on dst and returns the mapping from source relationship ids
// to the ids valid on dst. Internal targets are shared within one package and
// copied into dst's package when the slides live in different documents.
// Speaker notes are copied as text.
func Relink(src, dst *Slide) (map[string]string, error) {
	mapping := make(map[string]string)
	srcRels := src.part.Relationships()
	dstRels := dst.part.Relationships()

	for _, rel := range srcRels.All() {
		if !relinkTypes[rel.Type] {
			continue
		}
		if rel.External {
			mapping[rel.ID] = dstRels.AddExternal(rel.Type, rel.Target)
			continue
		}
		target, err := srcRels.TargetPart(rel.ID)
		if err != nil {
			return nil, fmt.Errorf("relinking %s: %w", src.Name(), err)
		}
		target, err = importPart(dst.part.Package(), target)
		if err != nil {
			return nil, fmt.Errorf("relinking %s: %w", src.Name(), err)
		}
		mapping[rel.ID] = dstRels.AddInternal(rel.Type, target)
	}

	if notes := src.Notes(); notes != "" {
		if err := dst.SetNotes(notes); err != nil {
			return nil, fmt.Errorf("copying notes of %s: %w", src.Name(), err)
		}
	}
	return mapping, nil
}

// importPart returns part itself when it already belongs to pkg, otherwise a
// copy of it inside pkg. An identical part under the same name is reused.
func importPart(pkg *opc.Package, part *opc.Part) (*opc.Part, error) {
	if part.Package() == pkg {
		return part, nil
	}
	data, err := part.Data()
	if err != nil {
		return nil, err
	}
	name := part.Name()
	if existing := pkg.Part(name); existing != nil {
		if have, err := existing.Data(); err == nil && bytes.Equal(have, data) {
			return existing, nil
		}
		name = pkg.NextPartName(namePattern(name))
	}
	return pkg.AddPart(name, part.ContentType(), append([]byte(nil), data...))
}

// namePattern turns "ppt/embeddings/oleObject3.bin" into
// "ppt/embeddings/oleObject%d.bin".
func namePattern(name string) string {
	dir, base := path.Split(name)
	ext := path.Ext(base)
	stem := strings.TrimRight(strings.TrimSuffix(base, ext), "0123456789")
	return dir + strings.ReplaceAll(stem, "%", "%%") + "%d" + ext
}
