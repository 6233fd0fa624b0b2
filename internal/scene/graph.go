package scene

import "maps"

// NodeType names a shader graph node type.
type NodeType string

// Surface shader node types.
const (
	NodePrincipled  NodeType = "principled_bsdf"
	NodeGlass       NodeType = "glass_bsdf"
	NodeEmission    NodeType = "emission"
	NodeTransparent NodeType = "transparent_bsdf"
)

// Input node types.
const (
	NodeImageTexture  NodeType = "image_texture"
	NodeVertexColor   NodeType = "vertex_color"
	NodeMix           NodeType = "mix"
	NodeMath          NodeType = "math"
	NodeHueSaturation NodeType = "hue_saturation"
	NodeValue         NodeType = "value"
	NodeRGB           NodeType = "rgb"
	NodeUVMap         NodeType = "uv_map"
	NodeNormalMap     NodeType = "normal_map"
)

// IsSurface reports whether t can be linked to a material output.
func (t NodeType) IsSurface() bool {
	switch t {
	case NodePrincipled, NodeGlass, NodeEmission, NodeTransparent:
		return true
	}
	return false
}

// IsKnown reports whether t belongs to the closed set of node types the
// classifier understands.
func (t NodeType) IsKnown() bool {
	if t.IsSurface() {
		return true
	}
	switch t {
	case NodeImageTexture, NodeVertexColor, NodeMix, NodeMath,
		NodeHueSaturation, NodeValue, NodeRGB, NodeUVMap, NodeNormalMap:
		return true
	}
	return false
}

// IsProcessing reports whether t transforms the values passing through it.
func (t NodeType) IsProcessing() bool {
	switch t {
	case NodeMix, NodeMath, NodeHueSaturation:
		return true
	}
	return false
}

// AlphaMode is a material's blend method.
type AlphaMode string

// Blend methods.
const (
	AlphaOpaque AlphaMode = "opaque"
	AlphaBlend  AlphaMode = "blend"
	AlphaClip   AlphaMode = "clip"
	AlphaHashed AlphaMode = "hashed"
)

// Socket names.
const (
	SocketBaseColor = "base_color"
	SocketAlpha     = "alpha"
	SocketMetallic  = "metallic"
	SocketRoughness = "roughness"
	SocketNormal    = "normal"
	SocketColor     = "color"
	SocketStrength  = "strength"
	SocketFactor    = "fac"
	SocketA         = "a"
	SocketB         = "b"
)

// Parameter names.
const (
	ParamMetallic         = "metallic"
	ParamRoughness        = "roughness"
	ParamAlpha            = "alpha"
	ParamBaseWeight       = "base_weight"
	ParamEmissionStrength = "emission_strength"
	ParamStrength         = "strength"
	ParamIOR              = "ior"
	ParamLevels           = "levels"
	ParamRatio            = "ratio"
	ParamCount            = "count"
)

// Node is a shader graph node with its upstream links keyed by input socket.
type Node struct {
	Type      NodeType           `yaml:"type"`
	Name      string             `yaml:"name,omitempty"`
	AlphaMode AlphaMode          `yaml:"alpha_mode,omitempty"`
	Params    map[string]float64 `yaml:"params,omitempty"`
	Inputs    map[string]*Node   `yaml:"inputs,omitempty"`
}

// Param returns the named parameter or def when unset.
func (n *Node) Param(name string, def float64) float64 {
	if n == nil {
		return def
	}
	if v, ok := n.Params[name]; ok {
		return v
	}
	return def
}

// Input returns the node linked to socket, or nil.
func (n *Node) Input(socket string) *Node {
	if n == nil {
		return nil
	}
	return n.Inputs[socket]
}

// Blend returns the node's alpha mode, defaulting to opaque.
func (n *Node) Blend() AlphaMode {
	if n == nil || n.AlphaMode == "" {
		return AlphaOpaque
	}
	return n.AlphaMode
}

// Walk calls fn for n and every upstream node, depth first. Returning false
// from fn stops descent below that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, in := range n.Inputs {
		in.Walk(fn)
	}
}

// Clone returns a deep copy of the subgraph rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:      n.Type,
		Name:      n.Name,
		AlphaMode: n.AlphaMode,
		Params:    cloneParams(n.Params),
	}
	if n.Inputs != nil {
		c.Inputs = make(map[string]*Node, len(n.Inputs))
		for socket, in := range n.Inputs {
			c.Inputs[socket] = in.Clone()
		}
	}
	return c
}

func cloneParams(p map[string]float64) map[string]float64 {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}
