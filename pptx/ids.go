package pptx

import "github.com/beevik/etree"

// firstShapeID is the lowest id handed to a shape; 1 belongs to the shape
// tree's own non-visual properties.
const firstShapeID = 2

// NextShapeID returns the identifier for the next shape inserted on the slide:
// one more than the largest id among shapes whose names do not carry the
// placeholder marker, or 2 when there are none. Ids held by placeholder-named
// shapes are skipped so the result never collides with an existing shape.
func NextShapeID(s *Slide) int {
	return NewIDAllocator(s).Next()
}

// IDAllocator hands out increasing, unused shape identifiers for one slide.
// Create it after the slide's current shapes are in place; ids assigned
// through it are tracked, ids added to the slide by other means are not.
type IDAllocator struct {
	next int
	used map[int]bool
}

// NewIDAllocator scans the slide's shape tree, groups and both branches of
// markup-compatibility blocks included.
func NewIDAllocator(s *Slide) *IDAllocator {
	a := &IDAllocator{used: make(map[int]bool)}
	max := 0
	shapes := s.AllShapes()
	for _, block := range alternateBlocks(s.tree()) {
		shapes = append(shapes, branchShapes(block)...)
	}
	for _, sh := range shapes {
		id := sh.ID()
		a.used[id] = true
		if isPlaceholderName(sh.Name()) {
			continue
		}
		if id > max {
			max = id
		}
	}
	a.used[1] = true
	a.next = max + 1
	if a.next < firstShapeID {
		a.next = firstShapeID
	}
	return a
}

// Next returns a fresh identifier and marks it used.
func (a *IDAllocator) Next() int {
	for a.used[a.next] {
		a.next++
	}
	id := a.next
	a.used[id] = true
	a.next++
	return id
}

// renumber assigns fresh ids to sh and every nested shape, returning the
// old-to-new mapping so connector endpoints can follow.
func (a *IDAllocator) renumber(sh *Shape) map[int]int {
	mapping := make(map[int]int)
	for _, s := range flatten([]*Shape{sh}) {
		old := s.ID()
		id := a.Next()
		s.SetID(id)
		mapping[old] = id
	}
	return mapping
}

// renumberBlock gives the shapes of a markup-compatibility block fresh ids.
// A shape repeated across branches keeps one id in all of them.
func (a *IDAllocator) renumberBlock(block *etree.Element) map[int]int {
	mapping := make(map[int]int)
	for _, s := range branchShapes(block) {
		old := s.ID()
		id, ok := mapping[old]
		if !ok {
			id = a.Next()
			mapping[old] = id
		}
		s.SetID(id)
	}
	return mapping
}
