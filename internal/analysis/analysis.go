// Package analysis builds the per-pass records the readiness workflow
// reasons about: classified materials and summarized meshes.
package analysis

import (
	"github.com/Faultbox/assetprep/internal/scene"
	"github.com/Faultbox/assetprep/internal/shading"
	"github.com/Faultbox/assetprep/pkg/naming"
)

// MaterialRecord is the classification of one material. It is rebuilt on
// every analysis pass and never edited by hand.
type MaterialRecord struct {
	ID      scene.MaterialID `yaml:"id"`
	RawName string           `yaml:"raw_name"`
	Kind    shading.Kind     `yaml:"kind"`
	Flags   shading.Flags    `yaml:"flags"`
	// RecommendedName is derived and only becomes the material's name once
	// the ApplyName remediation runs.
	RecommendedName string `yaml:"recommended_name"`
	// NameFallback is set when the raw name sanitized to nothing and the
	// recommendation was built from a default label.
	NameFallback bool `yaml:"name_fallback,omitempty"`
}

// ModifierRecord describes one unapplied modifier.
type ModifierRecord struct {
	Name              string             `yaml:"name"`
	Kind              scene.ModifierKind `yaml:"kind"`
	GeometryAffecting bool               `yaml:"geometry_affecting"`
}

// MeshRecord summarizes a mesh object's committed geometry.
type MeshRecord struct {
	ID               scene.ObjectID     `yaml:"id"`
	Name             string             `yaml:"name"`
	PolyCount        int                `yaml:"poly_count"`
	VertCount        int                `yaml:"vert_count"`
	UVChannelCount   int                `yaml:"uv_channel_count"`
	PendingModifiers []ModifierRecord   `yaml:"pending_modifiers,omitempty"`
	Materials        []scene.MaterialID `yaml:"materials,omitempty"`
}

// AnalyzeMaterial classifies mat and derives its recommended name. When the
// raw name sanitizes to nothing, the recommendation is built from
// naming.Fallback(fallbackPrefix, index).
func AnalyzeMaterial(mat *scene.Material, index int, fallbackPrefix string) MaterialRecord {
	kind, flags := shading.Classify(mat)
	rec := MaterialRecord{
		ID:      mat.ID,
		RawName: mat.Name,
		Kind:    kind,
		Flags:   flags,
	}

	name, err := shading.Recommend(kind, flags, mat.Name)
	if err != nil {
		rec.NameFallback = true
		// fallback labels always sanitize
		name, _ = shading.Recommend(kind, flags, naming.Fallback(fallbackPrefix, index))
	}
	rec.RecommendedName = name
	return rec
}

// AnalyzeMesh summarizes obj. Only geometry-affecting modifiers are reported
// as pending; counts are clamped at zero.
func AnalyzeMesh(obj *scene.Object) MeshRecord {
	rec := MeshRecord{
		ID:             obj.ID,
		Name:           obj.Name,
		PolyCount:      max(0, obj.Polygons),
		VertCount:      max(0, obj.Vertices),
		UVChannelCount: max(0, obj.UVChannels),
		Materials:      append([]scene.MaterialID(nil), obj.Materials...),
	}
	for _, mod := range obj.Modifiers {
		if !IsGeometryAffecting(mod.Kind) {
			continue
		}
		rec.PendingModifiers = append(rec.PendingModifiers, ModifierRecord{
			Name:              mod.Name,
			Kind:              mod.Kind,
			GeometryAffecting: true,
		})
	}
	return rec
}

// nonGeometry lists modifier kinds known to leave vertex and polygon counts
// unchanged.
var nonGeometry = map[scene.ModifierKind]bool{
	scene.ModArmature:       true,
	scene.ModSmooth:         true,
	scene.ModDisplace:       true,
	scene.ModWeightedNormal: true,
	scene.ModUVProject:      true,
	scene.ModDataTransfer:   true,
	scene.ModShrinkwrap:     true,
	scene.ModLattice:        true,
	scene.ModCast:           true,
	scene.ModWave:           true,
	scene.ModVertexWeight:   true,
	scene.ModHook:           true,
	scene.ModNormalEdit:     true,
}

// IsGeometryAffecting reports whether applying a modifier of kind can change
// vertex or polygon counts. Unknown kinds are assumed to.
func IsGeometryAffecting(kind scene.ModifierKind) bool {
	return !nonGeometry[kind]
}
