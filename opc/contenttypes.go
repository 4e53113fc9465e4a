package opc

import (
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

const nsContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"

// ContentTypes is the [Content_Types].xml registry: defaults keyed by file
// extension and overrides keyed by part name.
type ContentTypes struct {
	defaults  map[string]string
	overrides map[string]string
}

func parseContentTypes(data []byte) (*ContentTypes, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	ct := &ContentTypes{
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
	}
	root := doc.Root()
	if root == nil {
		return ct, nil
	}
	for _, el := range root.SelectElements("Default") {
		ext := strings.ToLower(el.SelectAttrValue("Extension", ""))
		ct.defaults[ext] = el.SelectAttrValue("ContentType", "")
	}
	for _, el := range root.SelectElements("Override") {
		name := strings.TrimPrefix(el.SelectAttrValue("PartName", ""), "/")
		ct.overrides[name] = el.SelectAttrValue("ContentType", "")
	}
	return ct, nil
}

// Lookup returns the content type for a part name, override first.
func (c *ContentTypes) Lookup(name string) string {
	if ct, ok := c.overrides[name]; ok {
		return ct
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	return c.defaults[ext]
}

// HasDefault reports whether a default is registered for ext.
func (c *ContentTypes) HasDefault(ext string) bool {
	_, ok := c.defaults[strings.ToLower(ext)]
	return ok
}

// SetDefault registers a content type for every part with extension ext.
func (c *ContentTypes) SetDefault(ext, contentType string) {
	c.defaults[strings.ToLower(ext)] = contentType
}

// SetOverride registers a content type for a single part.
func (c *ContentTypes) SetOverride(name, contentType string) {
	c.overrides[strings.TrimPrefix(name, "/")] = contentType
}

// RemoveOverride drops the override for a part.
func (c *ContentTypes) RemoveOverride(name string) {
	delete(c.overrides, strings.TrimPrefix(name, "/"))
}

// forParts returns a copy restricted to overrides of the given parts.
func (c *ContentTypes) forParts(names []string) *ContentTypes {
	out := &ContentTypes{
		defaults:  make(map[string]string, len(c.defaults)),
		overrides: make(map[string]string),
	}
	for ext, ct := range c.defaults {
		out.defaults[ext] = ct
	}
	for _, name := range names {
		if ct, ok := c.overrides[name]; ok {
			out.overrides[name] = ct
		}
	}
	return out
}

func (c *ContentTypes) clone() *ContentTypes {
	out := &ContentTypes{
		defaults:  make(map[string]string, len(c.defaults)),
		overrides: make(map[string]string, len(c.overrides)),
	}
	for k, v := range c.defaults {
		out.defaults[k] = v
	}
	for k, v := range c.overrides {
		out.overrides[k] = v
	}
	return out
}

func (c *ContentTypes) marshal() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("Types")
	root.CreateAttr("xmlns", nsContentTypes)

	exts := make([]string, 0, len(c.defaults))
	for ext := range c.defaults {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		el := root.CreateElement("Default")
		el.CreateAttr("Extension", ext)
		el.CreateAttr("ContentType", c.defaults[ext])
	}

	names := make([]string, 0, len(c.overrides))
	for name := range c.overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		el := root.CreateElement("Override")
		el.CreateAttr("PartName", "/"+name)
		el.CreateAttr("ContentType", c.overrides[name])
	}
	return doc.WriteToBytes()
}
