// Package shading classifies materials against the target platform's closed
// taxonomy of supported shading types and derives their canonical names.
package shading

import (
	"fmt"

	"github.com/Faultbox/assetprep/internal/scene"
)

// Kind is a material's shading classification.
type Kind int

// Shading kinds. VertexColor and UIOptimized are carried as suffix flags on
// top of a base kind; the classifier never returns them.
const (
	KindUnclassified Kind = iota
	KindBasePBR
	KindMetalPBR
	KindTransparent
	KindUnlit
	KindBlend
	KindMasked
	KindVertexColor
	KindUIOptimized
	KindGlassBSDF
	KindEmpty
)

var kindNames = map[Kind]string{
	KindUnclassified: "Unclassified",
	KindBasePBR:      "BasePBR",
	KindMetalPBR:     "MetalPBR",
	KindTransparent:  "Transparent",
	KindUnlit:        "Unlit",
	KindBlend:        "Blend",
	KindMasked:       "Masked",
	KindVertexColor:  "VertexColor",
	KindUIOptimized:  "UIOptimized",
	KindGlassBSDF:    "GlassBSDF",
	KindEmpty:        "Empty",
}

// String returns the kind's taxonomy name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown shading kind %q", text)
}

// Exportable reports whether materials of this kind can be exported as-is.
func (k Kind) Exportable() bool {
	switch k {
	case KindGlassBSDF, KindEmpty, KindUnclassified:
		return false
	}
	return true
}

// Flags are the auxiliary attributes found while inspecting a shader graph.
type Flags struct {
	HasVertexColor      bool            `yaml:"has_vertex_color"`
	ModifiesVertexColor bool            `yaml:"modifies_vertex_color"`
	UIContext           bool            `yaml:"ui_context"`
	AlphaMode           scene.AlphaMode `yaml:"alpha_mode"`
	MetallicPath        bool            `yaml:"metallic_path"`
}
