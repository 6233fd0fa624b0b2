package shading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/assetprep/internal/scene"
	"github.com/Faultbox/assetprep/pkg/naming"
)

func principled(params map[string]float64) *scene.Node {
	return &scene.Node{Type: scene.NodePrincipled, Params: params}
}

func TestClassify(t *testing.T) {
	texture := &scene.Node{Type: scene.NodeImageTexture}

	tests := []struct {
		name string
		mat  *scene.Material
		want Kind
	}{
		{
			name: "disconnected output",
			mat:  &scene.Material{Name: "Empty"},
			want: KindEmpty,
		},
		{
			name: "glass",
			mat:  &scene.Material{Surface: &scene.Node{Type: scene.NodeGlass}},
			want: KindGlassBSDF,
		},
		{
			name: "default principled",
			mat:  &scene.Material{Surface: principled(nil)},
			want: KindBasePBR,
		},
		{
			name: "metallic value",
			mat:  &scene.Material{Surface: principled(map[string]float64{scene.ParamMetallic: 0.8})},
			want: KindMetalPBR,
		},
		{
			name: "metallic texture",
			mat: &scene.Material{Surface: &scene.Node{
				Type:   scene.NodePrincipled,
				Inputs: map[string]*scene.Node{scene.SocketMetallic: texture},
			}},
			want: KindMetalPBR,
		},
		{
			name: "alpha blend principled",
			mat: &scene.Material{Surface: &scene.Node{
				Type:      scene.NodePrincipled,
				AlphaMode: scene.AlphaBlend,
				Params:    map[string]float64{scene.ParamMetallic: 1},
			}},
			want: KindTransparent,
		},
		{
			name: "alpha blend simplified",
			mat: &scene.Material{Surface: &scene.Node{
				Type:      scene.NodeTransparent,
				AlphaMode: scene.AlphaBlend,
			}},
			want: KindBlend,
		},
		{
			name: "transparent node opaque mode",
			mat:  &scene.Material{Surface: &scene.Node{Type: scene.NodeTransparent}},
			want: KindBlend,
		},
		{
			name: "alpha clip",
			mat: &scene.Material{Surface: &scene.Node{
				Type:      scene.NodePrincipled,
				AlphaMode: scene.AlphaClip,
			}},
			want: KindMasked,
		},
		{
			name: "alpha hashed",
			mat: &scene.Material{Surface: &scene.Node{
				Type:      scene.NodePrincipled,
				AlphaMode: scene.AlphaHashed,
			}},
			want: KindMasked,
		},
		{
			name: "emission node",
			mat:  &scene.Material{Surface: &scene.Node{Type: scene.NodeEmission}},
			want: KindUnlit,
		},
		{
			name: "principled emission only",
			mat: &scene.Material{Surface: principled(map[string]float64{
				scene.ParamEmissionStrength: 2,
				scene.ParamBaseWeight:       0,
			})},
			want: KindUnlit,
		},
		{
			name: "principled emission with lit base",
			mat: &scene.Material{Surface: principled(map[string]float64{
				scene.ParamEmissionStrength: 2,
			})},
			want: KindBasePBR,
		},
		{
			name: "custom surface node",
			mat:  &scene.Material{Surface: &scene.Node{Type: "toon_bsdf"}},
			want: KindUnclassified,
		},
		{
			name: "custom upstream node",
			mat: &scene.Material{Surface: &scene.Node{
				Type: scene.NodePrincipled,
				Inputs: map[string]*scene.Node{
					scene.SocketBaseColor: {Type: "node_group"},
				},
			}},
			want: KindUnclassified,
		},
		{
			name: "non-surface root",
			mat:  &scene.Material{Surface: texture},
			want: KindUnclassified,
		},
		{
			name: "unknown alpha mode",
			mat: &scene.Material{Surface: &scene.Node{
				Type:      scene.NodePrincipled,
				AlphaMode: "dithered",
			}},
			want: KindUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Classify(tt.mat)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyFlags(t *testing.T) {
	vc := &scene.Node{Type: scene.NodeVertexColor}

	t.Run("direct vertex colour", func(t *testing.T) {
		mat := &scene.Material{Surface: &scene.Node{
			Type:   scene.NodePrincipled,
			Inputs: map[string]*scene.Node{scene.SocketBaseColor: vc},
		}}
		kind, flags := Classify(mat)
		assert.Equal(t, KindBasePBR, kind)
		assert.True(t, flags.HasVertexColor)
		assert.False(t, flags.ModifiesVertexColor)
	})

	t.Run("processed vertex colour", func(t *testing.T) {
		mat := &scene.Material{Surface: &scene.Node{
			Type: scene.NodePrincipled,
			Inputs: map[string]*scene.Node{
				scene.SocketBaseColor: {
					Type:   scene.NodeMix,
					Inputs: map[string]*scene.Node{scene.SocketA: vc},
				},
			},
		}}
		_, flags := Classify(mat)
		assert.True(t, flags.HasVertexColor)
		assert.True(t, flags.ModifiesVertexColor)
	})

	t.Run("vertex colour on other socket ignored", func(t *testing.T) {
		mat := &scene.Material{Surface: &scene.Node{
			Type:   scene.NodePrincipled,
			Inputs: map[string]*scene.Node{scene.SocketRoughness: vc},
		}}
		_, flags := Classify(mat)
		assert.False(t, flags.HasVertexColor)
	})

	t.Run("ui context and alpha mode", func(t *testing.T) {
		mat := &scene.Material{
			UIElement: true,
			Surface:   &scene.Node{Type: scene.NodeEmission, AlphaMode: scene.AlphaBlend},
		}
		kind, flags := Classify(mat)
		assert.Equal(t, KindBlend, kind)
		assert.True(t, flags.UIContext)
		assert.Equal(t, scene.AlphaBlend, flags.AlphaMode)
	})

	t.Run("metallic path", func(t *testing.T) {
		_, flags := Classify(&scene.Material{Surface: principled(map[string]float64{scene.ParamMetallic: 1})})
		assert.True(t, flags.MetallicPath)
	})
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		kind  Kind
		flags Flags
		want  string
	}{
		{KindBasePBR, Flags{}, "_PBR"},
		{KindMetalPBR, Flags{}, "_MetalPBR"},
		{KindTransparent, Flags{}, "_Transparent"},
		{KindUnlit, Flags{}, "_Unlit"},
		{KindBlend, Flags{}, "_Blend"},
		{KindMasked, Flags{}, "_Masked"},
		{KindMasked, Flags{HasVertexColor: true}, "_Masked_VXC"},
		{KindBlend, Flags{HasVertexColor: true, ModifiesVertexColor: true}, "_Blend_VXM"},
		{KindBlend, Flags{HasVertexColor: true, UIContext: true}, "_Blend_VXC_UIO"},
		{KindUnlit, Flags{UIContext: true}, "_Unlit_UIO"},
		{KindGlassBSDF, Flags{HasVertexColor: true}, ""},
		{KindEmpty, Flags{}, ""},
		{KindUnclassified, Flags{UIContext: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Suffix(tt.kind, tt.flags))
		})
	}
}

func TestMetalPlateScenario(t *testing.T) {
	mat := &scene.Material{
		Name:    "Metal*Plate.01",
		Surface: principled(map[string]float64{scene.ParamMetallic: 1, scene.ParamRoughness: 0.3}),
	}

	sanitized, err := naming.Sanitize(mat.Name)
	require.NoError(t, err)
	assert.Equal(t, "MetalPlate01", sanitized)

	kind, flags := Classify(mat)
	assert.Equal(t, KindMetalPBR, kind)

	name, err := Recommend(kind, flags, mat.Name)
	require.NoError(t, err)
	assert.Equal(t, "MetalPlate01_MetalPBR", name)
}

func TestUnlitClipVertexColorScenario(t *testing.T) {
	mat := &scene.Material{
		Name: "Leaves",
		Surface: &scene.Node{
			Type:      scene.NodeEmission,
			AlphaMode: scene.AlphaClip,
			Inputs: map[string]*scene.Node{
				scene.SocketColor: {Type: scene.NodeVertexColor},
			},
		},
	}

	kind, flags := Classify(mat)
	assert.Equal(t, KindMasked, kind)
	assert.True(t, flags.HasVertexColor)

	once, err := Recommend(kind, flags, mat.Name)
	require.NoError(t, err)
	assert.Equal(t, "Leaves_Masked_VXC", once)

	twice, err := Recommend(kind, flags, once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestRecommendIdempotent(t *testing.T) {
	names := []string{"Wood", "Metal*Plate.01", "Brick_PBR", "Sign_Unlit_UIO", "A b c", "PBR",
		"e.\u0301", "Cafe-\u0301", "e\x00\u0301"}
	flagSets := []Flags{{}, {HasVertexColor: true}, {HasVertexColor: true, ModifiesVertexColor: true, UIContext: true}}

	for kind := range kindNames {
		for _, flags := range flagSets {
			for _, n := range names {
				once, err := Recommend(kind, flags, n)
				require.NoError(t, err)
				twice, err := Recommend(kind, flags, once)
				require.NoError(t, err)
				assert.Equal(t, once, twice, "kind %s name %q", kind, n)
			}
		}
	}
}

func TestRecommendReplacesStaleSuffix(t *testing.T) {
	name, err := Recommend(KindMetalPBR, Flags{}, "Plate_PBR_VXC")
	require.NoError(t, err)
	assert.Equal(t, "Plate_MetalPBR", name)
}

func TestRecommendInvalidName(t *testing.T) {
	_, err := Recommend(KindBasePBR, Flags{}, "...")
	assert.ErrorIs(t, err, naming.ErrInvalidName)
}

func TestConvertGlass(t *testing.T) {
	glass := &scene.Material{Surface: &scene.Node{
		Type:   scene.NodeGlass,
		Params: map[string]float64{scene.ParamRoughness: 0.05, scene.ParamIOR: 1.5},
		Inputs: map[string]*scene.Node{
			scene.SocketColor: {Type: scene.NodeImageTexture},
		},
	}}
	kind, _ := Classify(glass)
	require.Equal(t, KindGlassBSDF, kind)

	converted := &scene.Material{Surface: ConvertGlass(glass.Surface)}
	kind, _ = Classify(converted)
	assert.Equal(t, KindTransparent, kind)
	assert.Equal(t, 0.05, converted.Surface.Param(scene.ParamRoughness, -1))
	assert.Equal(t, 1.5, converted.Surface.Param(scene.ParamIOR, -1))
	assert.NotNil(t, converted.Surface.Input(scene.SocketBaseColor))
}

func TestKindText(t *testing.T) {
	for kind := range kindNames {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, kind, back)
	}

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("Toon")))
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestExportable(t *testing.T) {
	assert.True(t, KindBasePBR.Exportable())
	assert.True(t, KindMasked.Exportable())
	assert.False(t, KindGlassBSDF.Exportable())
	assert.False(t, KindEmpty.Exportable())
	assert.False(t, KindUnclassified.Exportable())
}
