// Package editor implements the interactive point-editing state machine for
// annotation instances. One editor manages the instances loaded for the
// current target; at most one instance is selected (foreground) at a time.
//
// Stored point sequences are always the open polylines the user drew. A
// boundary's implicit closure is applied only when a consumer asks for it,
// via Closed.
package editor

import (
	"fmt"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/geom"
)

// State is the editing state of the selected instance.
type State int

const (
	// Idle means no instance is selected.
	Idle State = iota
	// SelectedIdle means an instance is selected with no pointer
	// interaction in progress.
	SelectedIdle
	// Placing means the selected instance is accepting new points.
	Placing
	// Dragging means an existing point is being relocated.
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SelectedIdle:
		return "selected-idle"
	case Placing:
		return "placing"
	case Dragging:
		return "dragging"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// End names an end of the point sequence; new points are pushed and popped
// at the cursor end.
type End int

const (
	Tail End = iota
	Head
)

func (e End) String() string {
	if e == Head {
		return "head"
	}
	return "tail"
}

// Editor is the state machine over the instances of the current target.
type Editor struct {
	instances map[string]*Instance
	selected  string
	state     State
	cursor    End
	dragIndex int
}

// New creates an empty editor.
func New() *Editor {
	return &Editor{
		instances: make(map[string]*Instance),
		state:     Idle,
	}
}

// Reset drops all instances and selection, preparing the editor for a new
// target.
func (e *Editor) Reset() {
	e.instances = make(map[string]*Instance)
	e.selected = ""
	e.state = Idle
	e.cursor = Tail
}

// Load installs (or replaces) the instance for an annotation with the given
// persisted points. Loading clears the dirty flag.
func (e *Editor) Load(name string, kind config.Kind, points []geom.Point) {
	e.instances[name] = &Instance{
		name:   name,
		kind:   kind,
		points: geom.ClonePoints(points),
	}
}

// Instance returns the named instance.
func (e *Editor) Instance(name string) (*Instance, bool) {
	inst, ok := e.instances[name]
	return inst, ok
}

// PointSets returns a snapshot of every instance's point sequence by name.
func (e *Editor) PointSets() map[string][]geom.Point {
	out := make(map[string][]geom.Point, len(e.instances))
	for name, inst := range e.instances {
		out[name] = inst.Points()
	}
	return out
}

// Dirty reports whether any instance has unsaved mutations.
func (e *Editor) Dirty() bool {
	for _, inst := range e.instances {
		if inst.dirty {
			return true
		}
	}
	return false
}

// ClearDirty marks every instance clean, typically after a save.
func (e *Editor) ClearDirty() {
	for _, inst := range e.instances {
		inst.dirty = false
	}
}

// State returns the current editing state.
func (e *Editor) State() State { return e.state }

// Selected returns the name of the selected instance, if any.
func (e *Editor) Selected() (string, bool) {
	return e.selected, e.selected != ""
}

// Cursor returns the end at which points are currently pushed and popped.
func (e *Editor) Cursor() End { return e.cursor }

// ToggleCursor flips the cursor between head and tail and returns the new
// position.
func (e *Editor) ToggleCursor() End {
	if e.cursor == Tail {
		e.cursor = Head
	} else {
		e.cursor = Tail
	}
	return e.cursor
}

// Select makes the named instance the foreground. Any previously selected
// instance returns to the background. Selecting resets the cursor to the
// tail.
func (e *Editor) Select(name string) error {
	if _, ok := e.instances[name]; !ok {
		return fmt.Errorf("unknown annotation instance %q", name)
	}
	e.selected = name
	e.state = SelectedIdle
	e.cursor = Tail
	e.dragIndex = -1
	return nil
}

// Deselect returns the editor to the idle state.
func (e *Editor) Deselect() {
	e.selected = ""
	e.state = Idle
}

func (e *Editor) selectedInstance() (*Instance, error) {
	if e.selected == "" {
		return nil, fmt.Errorf("no annotation selected")
	}
	return e.instances[e.selected], nil
}

// AddPoint pushes a coordinate onto the selected instance at the cursor
// end. For a point-kind instance the coordinate replaces any existing one;
// this is expected usage, not an error. Fixed endpoints are spliced in on
// the first push and stay pinned afterwards.
func (e *Editor) AddPoint(p geom.Point) error {
	inst, err := e.selectedInstance()
	if err != nil {
		return err
	}
	if e.state == Dragging {
		return fmt.Errorf("cannot add a point while dragging")
	}
	inst.push(p, e.cursor)
	e.state = Placing
	return nil
}

// RemoveLastPoint pops the coordinate at the cursor end of the selected
// instance. It reports false, without error, when there is nothing to pop.
func (e *Editor) RemoveLastPoint() bool {
	inst, err := e.selectedInstance()
	if err != nil || e.state == Dragging {
		return false
	}
	return inst.pop(e.cursor)
}

// BeginDrag captures an existing point of the selected instance for
// relocation. Pinned fixed endpoints cannot be dragged.
func (e *Editor) BeginDrag(index int) error {
	inst, err := e.selectedInstance()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(inst.points) {
		return fmt.Errorf("point index %d out of range [0, %d)", index, len(inst.points))
	}
	if inst.pinned(index) {
		return fmt.Errorf("point %d is a fixed endpoint and cannot be moved", index)
	}
	e.state = Dragging
	e.dragIndex = index
	return nil
}

// MovePoint relocates the captured point. It requires an active drag.
func (e *Editor) MovePoint(p geom.Point) error {
	if e.state != Dragging {
		return fmt.Errorf("no drag in progress")
	}
	inst, err := e.selectedInstance()
	if err != nil {
		return err
	}
	inst.points[e.dragIndex] = p
	inst.dirty = true
	return nil
}

// EndDrag releases the captured point and returns to selected-idle.
func (e *Editor) EndDrag() {
	if e.state == Dragging {
		e.state = SelectedIdle
		e.dragIndex = -1
	}
}

// SetFixedEndpoints pins the instance's head and/or tail to externally
// resolved coordinates. Already-drawn pinned points are repositioned so the
// stored sequence tracks the dependency's current endpoints.
func (e *Editor) SetFixedEndpoints(name string, head, tail *geom.Point) error {
	inst, ok := e.instances[name]
	if !ok {
		return fmt.Errorf("unknown annotation instance %q", name)
	}
	inst.setFixed(head, tail)
	return nil
}
