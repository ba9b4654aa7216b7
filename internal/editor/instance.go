package editor

import (
	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/geom"
)

// Instance is the editable point sequence of one annotation for the current
// target. Fixed endpoints, once spliced in, occupy the first and/or last
// slot and are pinned: they cannot be popped or dragged, only repositioned
// when the dependency they track moves.
type Instance struct {
	name   string
	kind   config.Kind
	points []geom.Point
	dirty  bool

	fixedHead *geom.Point
	fixedTail *geom.Point
}

// Name returns the annotation name this instance belongs to.
func (in *Instance) Name() string { return in.name }

// Kind returns the annotation kind.
func (in *Instance) Kind() config.Kind { return in.kind }

// Points returns a copy of the stored (open) point sequence.
func (in *Instance) Points() []geom.Point { return geom.ClonePoints(in.points) }

// Len returns the number of stored points, pins included.
func (in *Instance) Len() int { return len(in.points) }

// Dirty reports whether the instance has unsaved mutations.
func (in *Instance) Dirty() bool { return in.dirty }

// setFixed installs or repositions the pinned endpoints. An already-drawn
// sequence has its pin slots rewritten in place so it keeps tracking the
// dependency.
func (in *Instance) setFixed(head, tail *geom.Point) {
	in.fixedHead = cloneOpt(head)
	in.fixedTail = cloneOpt(tail)
	if len(in.points) == 0 {
		return
	}
	if in.fixedHead != nil {
		if in.points[0] != *in.fixedHead {
			in.points[0] = *in.fixedHead
			in.dirty = true
		}
	}
	if in.fixedTail != nil && len(in.points) > 1 {
		if in.points[len(in.points)-1] != *in.fixedTail {
			in.points[len(in.points)-1] = *in.fixedTail
			in.dirty = true
		}
	}
}

// pinned reports whether the point at index is a fixed endpoint slot.
func (in *Instance) pinned(index int) bool {
	if in.fixedHead != nil && index == 0 {
		return true
	}
	if in.fixedTail != nil && index == len(in.points)-1 && len(in.points) > 1 {
		return true
	}
	return false
}

// core returns the user-drawn points with the pin slots stripped.
func (in *Instance) core() []geom.Point {
	pts := in.points
	if in.fixedHead != nil && len(pts) > 0 {
		pts = pts[1:]
	}
	if in.fixedTail != nil && len(pts) > 0 {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// assemble rebuilds the stored sequence from core points plus pins. An empty
// core yields an empty sequence: pins only exist alongside drawn points.
func (in *Instance) assemble(core []geom.Point) {
	if len(core) == 0 {
		in.points = nil
		return
	}
	out := make([]geom.Point, 0, len(core)+2)
	if in.fixedHead != nil {
		out = append(out, *in.fixedHead)
	}
	out = append(out, core...)
	if in.fixedTail != nil {
		out = append(out, *in.fixedTail)
	}
	in.points = out
}

// push adds a point at the given end. A point-kind instance holds exactly
// one coordinate, so pushing replaces it.
func (in *Instance) push(p geom.Point, at End) {
	if in.kind == config.KindPoint {
		in.points = []geom.Point{p}
		in.dirty = true
		return
	}
	core := geom.ClonePoints(in.core())
	if at == Head {
		core = append([]geom.Point{p}, core...)
	} else {
		core = append(core, p)
	}
	in.assemble(core)
	in.dirty = true
}

// pop removes the point at the given end, skipping over a pin slot. When at
// most one user-drawn point remains the whole sequence is cleared, pins
// included. It reports whether anything was removed.
func (in *Instance) pop(at End) bool {
	core := in.core()
	if len(core) == 0 {
		return false
	}
	if len(core) == 1 {
		in.points = nil
		in.dirty = true
		return true
	}
	rest := geom.ClonePoints(core)
	if at == Head {
		rest = rest[1:]
	} else {
		rest = rest[:len(rest)-1]
	}
	in.assemble(rest)
	in.dirty = true
	return true
}

func cloneOpt(p *geom.Point) *geom.Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Closed returns the boundary form of a point sequence: the first point
// appended at the end so the polyline closes. Empty and already-closed
// sequences pass through unchanged, so applying Closed twice is the same as
// applying it once.
func Closed(pts []geom.Point) []geom.Point {
	out := geom.ClonePoints(pts)
	if len(out) == 0 {
		return out
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		return out
	}
	return append(out, out[0])
}
