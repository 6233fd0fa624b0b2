package scene

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-memory Host. It stands in for a live scene in tests and
// drives the CLI against scene files.
type Memory struct {
	mu        sync.RWMutex
	objects   []*Object
	materials []*Material
}

var _ Host = (*Memory)(nil)

// NewMemory builds a Memory scene from a decoded scene file, validating ids
// and material references.
func NewMemory(f File) (*Memory, error) {
	m := &Memory{}
	seenMat := make(map[MaterialID]bool, len(f.Materials))
	for i := range f.Materials {
		mat := f.Materials[i].Clone()
		if mat.ID == "" {
			return nil, fmt.Errorf("material %d: %w", i, ErrEmptyName)
		}
		if seenMat[mat.ID] {
			return nil, fmt.Errorf("material %s: %w", mat.ID, ErrDuplicateID)
		}
		seenMat[mat.ID] = true
		m.materials = append(m.materials, mat)
	}

	seenObj := make(map[ObjectID]bool, len(f.Objects))
	for i := range f.Objects {
		obj := f.Objects[i].Clone()
		if obj.ID == "" {
			return nil, fmt.Errorf("object %d: %w", i, ErrEmptyName)
		}
		if seenObj[obj.ID] {
			return nil, fmt.Errorf("object %s: %w", obj.ID, ErrDuplicateID)
		}
		seenObj[obj.ID] = true
		for _, ref := range obj.Materials {
			if !seenMat[ref] {
				return nil, fmt.Errorf("object %s slot %s: %w", obj.ID, ref, ErrUnknownMaterial)
			}
		}
		m.objects = append(m.objects, obj)
	}
	return m, nil
}

// Snapshot returns the current scene as a File.
func (m *Memory) Snapshot() File {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f := File{
		Objects:   make([]Object, len(m.objects)),
		Materials: make([]Material, len(m.materials)),
	}
	for i, o := range m.objects {
		f.Objects[i] = *o.Clone()
	}
	for i, mat := range m.materials {
		f.Materials[i] = *mat.Clone()
	}
	return f
}

// Objects implements Host.
func (m *Memory) Objects() ([]ObjectID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]ObjectID, len(m.objects))
	for i, o := range m.objects {
		ids[i] = o.ID
	}
	return ids, nil
}

// Object implements Host.
func (m *Memory) Object(id ObjectID) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o := m.object(id)
	if o == nil {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	return o.Clone(), nil
}

// Material implements Host.
func (m *Memory) Material(id MaterialID) (*Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mat := m.material(id)
	if mat == nil {
		return nil, fmt.Errorf("%w: %s", ErrMaterialNotFound, id)
	}
	return mat.Clone(), nil
}

// RenameObject implements Host.
func (m *Memory) RenameObject(id ObjectID, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.object(id)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	o.Name = name
	return nil
}

// RenameMaterial implements Host.
func (m *Memory) RenameMaterial(id MaterialID, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	mat := m.material(id)
	if mat == nil {
		return fmt.Errorf("%w: %s", ErrMaterialNotFound, id)
	}
	mat.Name = name
	return nil
}

// ReplaceShader implements Host.
func (m *Memory) ReplaceShader(id MaterialID, surface *Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mat := m.material(id)
	if mat == nil {
		return fmt.Errorf("%w: %s", ErrMaterialNotFound, id)
	}
	mat.Surface = surface.Clone()
	return nil
}

// ApplyModifier implements Host. Counts are updated with a coarse estimate
// of the modifier's effect.
func (m *Memory) ApplyModifier(id ObjectID, modifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.object(id)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	idx := slices.IndexFunc(o.Modifiers, func(mod Modifier) bool {
		return mod.Name == modifier
	})
	if idx < 0 {
		return fmt.Errorf("%w: %s on %s", ErrModifierNotFound, modifier, id)
	}

	mod := o.Modifiers[idx]
	switch mod.Kind {
	case ModSubdivision, ModMultires:
		f := math.Pow(4, mod.Param(ParamLevels, 1))
		o.Polygons = scaleCount(o.Polygons, f)
		o.Vertices = scaleCount(o.Vertices, f)
	case ModDecimate:
		r := mod.Param(ParamRatio, 0.5)
		o.Polygons = scaleCount(o.Polygons, r)
		o.Vertices = scaleCount(o.Vertices, r)
	case ModMirror:
		o.Polygons *= 2
		o.Vertices *= 2
	case ModArray:
		n := mod.Param(ParamCount, 2)
		o.Polygons = scaleCount(o.Polygons, n)
		o.Vertices = scaleCount(o.Vertices, n)
	case ModTriangulate:
		o.Polygons *= 2
	}
	o.Modifiers = slices.Delete(o.Modifiers, idx, idx+1)
	return nil
}

// UnwrapUV implements Host.
func (m *Memory) UnwrapUV(id ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.object(id)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if o.Polygons == 0 {
		return fmt.Errorf("unwrap %s: %w", id, ErrEmptyMesh)
	}
	if o.UVChannels == 0 {
		o.UVChannels = 1
	}
	return nil
}

// Decimate implements Host.
func (m *Memory) Decimate(id ObjectID, ratio float64) error {
	if ratio <= 0 || ratio > 1 || math.IsNaN(ratio) {
		return fmt.Errorf("%w: %g", ErrInvalidRatio, ratio)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.object(id)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if o.Polygons == 0 {
		return fmt.Errorf("decimate %s: %w", id, ErrEmptyMesh)
	}
	o.Polygons = max(1, scaleCount(o.Polygons, ratio))
	o.Vertices = max(3, scaleCount(o.Vertices, ratio))
	return nil
}

func (m *Memory) object(id ObjectID) *Object {
	for _, o := range m.objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (m *Memory) material(id MaterialID) *Material {
	for _, mat := range m.materials {
		if mat.ID == id {
			return mat
		}
	}
	return nil
}

func scaleCount(n int, f float64) int {
	return int(math.Round(float64(n) * f))
}
