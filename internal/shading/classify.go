package shading

import "github.com/Faultbox/assetprep/internal/scene"

// colorSockets are the inputs inspected for vertex-colour usage.
var colorSockets = []string{scene.SocketBaseColor, scene.SocketAlpha, scene.SocketColor}

// Classify inspects the material's shader graph, never its name, and returns
// its shading kind and suffix flags. Graphs it cannot resolve classify as
// KindUnclassified; Classify never fails.
func Classify(mat *scene.Material) (Kind, Flags) {
	if mat == nil {
		return KindEmpty, Flags{}
	}

	flags := Flags{UIContext: mat.UIElement}
	surface := mat.Surface
	if surface == nil {
		return KindEmpty, flags
	}
	flags.AlphaMode = surface.Blend()

	if surface.Type == scene.NodeGlass {
		return KindGlassBSDF, flags
	}
	if !resolvable(surface) {
		return KindUnclassified, flags
	}

	flags.HasVertexColor, flags.ModifiesVertexColor = vertexColorUsage(surface)
	flags.MetallicPath = surface.Type == scene.NodePrincipled && metallic(surface)

	switch flags.AlphaMode {
	case scene.AlphaClip, scene.AlphaHashed:
		return KindMasked, flags
	case scene.AlphaBlend:
		if surface.Type == scene.NodePrincipled {
			return KindTransparent, flags
		}
		return KindBlend, flags
	case scene.AlphaOpaque:
	default:
		return KindUnclassified, flags
	}

	switch {
	case surface.Type == scene.NodeTransparent:
		return KindBlend, flags
	case unlit(surface):
		return KindUnlit, flags
	case flags.MetallicPath:
		return KindMetalPBR, flags
	}
	return KindBasePBR, flags
}

// resolvable reports whether every node reachable from the surface belongs
// to the known node set and the root is a surface shader.
func resolvable(surface *scene.Node) bool {
	if !surface.Type.IsSurface() {
		return false
	}
	ok := true
	surface.Walk(func(n *scene.Node) bool {
		if !n.Type.IsKnown() {
			ok = false
		}
		return ok
	})
	return ok
}

// vertexColorUsage reports whether a vertex-colour node feeds a colour or
// alpha input, and whether it passes through a processing node on the way.
func vertexColorUsage(surface *scene.Node) (has, modifies bool) {
	var visit func(n *scene.Node, processed bool)
	visit = func(n *scene.Node, processed bool) {
		if n == nil {
			return
		}
		if n.Type == scene.NodeVertexColor {
			has = true
			modifies = modifies || processed
			return
		}
		processed = processed || n.Type.IsProcessing()
		for _, in := range n.Inputs {
			visit(in, processed)
		}
	}
	for _, socket := range colorSockets {
		visit(surface.Input(socket), false)
	}
	return has, modifies
}

func metallic(surface *scene.Node) bool {
	if surface.Input(scene.SocketMetallic) != nil {
		return true
	}
	return surface.Param(scene.ParamMetallic, 0) > 0
}

// unlit reports an emission-only surface with no lit contribution.
func unlit(surface *scene.Node) bool {
	switch surface.Type {
	case scene.NodeEmission:
		return true
	case scene.NodePrincipled:
		return surface.Param(scene.ParamEmissionStrength, 0) > 0 &&
			surface.Param(scene.ParamBaseWeight, 1) == 0
	}
	return false
}
