package shading

import (
	"strings"

	"github.com/Faultbox/assetprep/internal/scene"
	"github.com/Faultbox/assetprep/pkg/naming"
)

// SuffixVertexColorModify replaces the VertexColor suffix when the material
// modifies vertex colour rather than only reading it.
const SuffixVertexColorModify = "_VXM"

// suffixes maps each kind to its base suffix token. Kinds missing here have
// no suffix.
var suffixes = map[Kind]string{
	KindBasePBR:     "_PBR",
	KindMetalPBR:    "_MetalPBR",
	KindTransparent: "_Transparent",
	KindUnlit:       "_Unlit",
	KindBlend:       "_Blend",
	KindMasked:      "_Masked",
	KindVertexColor: "_VXC",
	KindUIOptimized: "_UIO",
}

// Suffix returns the kind's base suffix token, or "" when it has none.
func (k Kind) Suffix() string {
	return suffixes[k]
}

// Tokens returns every suffix token the recommender can emit.
func Tokens() []string {
	tokens := make([]string, 0, len(suffixes)+1)
	for _, s := range suffixes {
		tokens = append(tokens, s)
	}
	return append(tokens, SuffixVertexColorModify)
}

// Suffix composes the full suffix for a kind and its flags, in the order
// base, vertex colour, UI.
func Suffix(kind Kind, flags Flags) string {
	base := kind.Suffix()
	if base == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(base)
	if flags.HasVertexColor {
		if flags.ModifiesVertexColor {
			b.WriteString(SuffixVertexColorModify)
		} else {
			b.WriteString(KindVertexColor.Suffix())
		}
	}
	if flags.UIContext {
		b.WriteString(KindUIOptimized.Suffix())
	}
	return b.String()
}

// Recommend returns the compliant name for a material: the sanitized current
// name with any previously applied suffix tokens replaced by the composed
// suffix. Recommend(k, f, Recommend(k, f, n)) equals Recommend(k, f, n).
// Kinds without a suffix only get the name sanitized.
func Recommend(kind Kind, flags Flags, current string) (string, error) {
	name, err := naming.Sanitize(current)
	if err != nil {
		return "", err
	}

	suffix := Suffix(kind, flags)
	if suffix == "" {
		return name, nil
	}
	return naming.TrimSuffixes(name, Tokens()) + suffix, nil
}

// DefaultGlassAlpha is the opacity given to converted glass materials.
const DefaultGlassAlpha = 0.25

// ConvertGlass builds a standard PBR surface that approximates a glass
// transmission surface: an alpha-blended principled node carrying over the
// glass roughness, IOR and colour input.
func ConvertGlass(glass *scene.Node) *scene.Node {
	pbr := &scene.Node{
		Type:      scene.NodePrincipled,
		Name:      "Principled BSDF",
		AlphaMode: scene.AlphaBlend,
		Params: map[string]float64{
			scene.ParamMetallic:  0,
			scene.ParamRoughness: glass.Param(scene.ParamRoughness, 0),
			scene.ParamAlpha:     DefaultGlassAlpha,
			scene.ParamIOR:       glass.Param(scene.ParamIOR, 1.45),
		},
	}
	if color := glass.Input(scene.SocketColor); color != nil {
		pbr.Inputs = map[string]*scene.Node{
			scene.SocketBaseColor: color.Clone(),
		}
	}
	return pbr
}
