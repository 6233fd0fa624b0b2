// Package scene defines the host scene-graph collaborator: the narrow
// interface the readiness engine uses to enumerate, read and mutate objects
// and materials, plus an in-memory implementation backed by a YAML file.
package scene

import (
	"errors"
	"fmt"
	"slices"
)

// Host errors.
var (
	ErrObjectNotFound   = errors.New("object not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrModifierNotFound = errors.New("modifier not found")
	ErrInvalidRatio     = errors.New("decimation ratio must be in (0, 1]")
	ErrEmptyMesh        = errors.New("mesh has no polygons")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrUnknownMaterial  = errors.New("unknown material reference")
)

// ObjectID is a stable reference to a host mesh object.
type ObjectID string

// MaterialID is a stable reference to a host material.
type MaterialID string

// Host is the scene-graph collaborator. Reads return snapshots the caller
// owns; nothing returned aliases host state. Implementations serialize
// mutations; reads may be reentrant.
type Host interface {
	// Objects enumerates mesh objects in scene order.
	Objects() ([]ObjectID, error)
	// Object returns a snapshot of a mesh object and its modifier stack.
	Object(id ObjectID) (*Object, error)
	// Material returns a snapshot of a material and its shader graph.
	Material(id MaterialID) (*Material, error)

	RenameObject(id ObjectID, name string) error
	RenameMaterial(id MaterialID, name string) error
	// ReplaceShader connects surface to the material output, replacing the
	// current surface node.
	ReplaceShader(id MaterialID, surface *Node) error
	// ApplyModifier bakes the named modifier into the base geometry and
	// removes it from the stack.
	ApplyModifier(id ObjectID, modifier string) error
	// UnwrapUV runs the host's UV unwrap, producing at least one UV channel.
	UnwrapUV(id ObjectID) error
	// Decimate runs the host's decimation with the given face ratio.
	Decimate(id ObjectID, ratio float64) error
}

// ModifierKind names a host modifier type.
type ModifierKind string

// Modifier kinds the analyzer knows about.
const (
	ModSubdivision    ModifierKind = "subdivision"
	ModMultires       ModifierKind = "multires"
	ModDecimate       ModifierKind = "decimate"
	ModBoolean        ModifierKind = "boolean"
	ModMirror         ModifierKind = "mirror"
	ModArray          ModifierKind = "array"
	ModSolidify       ModifierKind = "solidify"
	ModBevel          ModifierKind = "bevel"
	ModRemesh         ModifierKind = "remesh"
	ModTriangulate    ModifierKind = "triangulate"
	ModWeld           ModifierKind = "weld"
	ModScrew          ModifierKind = "screw"
	ModSkin           ModifierKind = "skin"
	ModBuild          ModifierKind = "build"
	ModMask           ModifierKind = "mask"
	ModWireframe      ModifierKind = "wireframe"
	ModArmature       ModifierKind = "armature"
	ModSmooth         ModifierKind = "smooth"
	ModDisplace       ModifierKind = "displace"
	ModWeightedNormal ModifierKind = "weighted_normal"
	ModUVProject      ModifierKind = "uv_project"
	ModDataTransfer   ModifierKind = "data_transfer"
	ModShrinkwrap     ModifierKind = "shrinkwrap"
	ModLattice        ModifierKind = "lattice"
	ModCast           ModifierKind = "cast"
	ModWave           ModifierKind = "wave"
	ModVertexWeight   ModifierKind = "vertex_weight"
	ModHook           ModifierKind = "hook"
	ModNormalEdit     ModifierKind = "normal_edit"
)

// Modifier is one entry of an object's unapplied modifier stack.
type Modifier struct {
	Name   string             `yaml:"name"`
	Kind   ModifierKind       `yaml:"kind"`
	Params map[string]float64 `yaml:"params,omitempty"` // levels, ratio, count
}

// Param returns the named parameter or def when unset.
func (m Modifier) Param(name string, def float64) float64 {
	if v, ok := m.Params[name]; ok {
		return v
	}
	return def
}

// Object is a snapshot of a host mesh object.
type Object struct {
	ID         ObjectID     `yaml:"id"`
	Name       string       `yaml:"name"`
	Polygons   int          `yaml:"polygons"`
	Vertices   int          `yaml:"vertices"`
	UVChannels int          `yaml:"uv_channels"`
	Modifiers  []Modifier   `yaml:"modifiers,omitempty"`
	Materials  []MaterialID `yaml:"materials,omitempty"`
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	c.Modifiers = make([]Modifier, len(o.Modifiers))
	for i, m := range o.Modifiers {
		c.Modifiers[i] = Modifier{Name: m.Name, Kind: m.Kind, Params: cloneParams(m.Params)}
	}
	c.Materials = slices.Clone(o.Materials)
	return &c
}

// Material is a snapshot of a host material.
type Material struct {
	ID   MaterialID `yaml:"id"`
	Name string     `yaml:"name"`
	// UIElement marks materials authored for UI surfaces.
	UIElement bool `yaml:"ui_element,omitempty"`
	// Surface is the node linked to the material output, nil when the
	// output is disconnected.
	Surface *Node `yaml:"surface,omitempty"`
}

// Clone returns a deep copy of the material.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	c.Surface = m.Surface.Clone()
	return &c
}

func (o *Object) String() string {
	return fmt.Sprintf("%s(%s)", o.Name, o.ID)
}

func (m *Material) String() string {
	return fmt.Sprintf("%s(%s)", m.Name, m.ID)
}
