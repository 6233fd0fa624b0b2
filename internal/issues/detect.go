package issues

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Faultbox/assetprep/internal/analysis"
	"github.com/Faultbox/assetprep/internal/shading"
	"github.com/Faultbox/assetprep/pkg/naming"
)

// Rules are the configurable parts of the export rule set. Zero values
// disable the corresponding advisory rule.
type Rules struct {
	// PolygonBudget is the per-object polygon limit.
	PolygonBudget int `yaml:"polygon_budget"`
	// MaxUVChannels is the number of UV channels the platform imports.
	MaxUVChannels int `yaml:"max_uv_channels"`
	// RequireSuffix flags classified materials whose name differs from the
	// recommended one.
	RequireSuffix bool `yaml:"require_suffix"`
}

// MaterialSubject returns the subject for a material record.
func MaterialSubject(rec analysis.MaterialRecord) Subject {
	return Subject{Type: SubjectMaterial, ID: string(rec.ID), Name: rec.RawName}
}

// ObjectSubject returns the subject for a mesh record.
func ObjectSubject(rec analysis.MeshRecord) Subject {
	return Subject{Type: SubjectObject, ID: string(rec.ID), Name: rec.Name}
}

// Detect evaluates every rule against every record and returns the issues
// ordered by priority: blocking before advisory, then mesh records before
// materials in the order given, then rule order.
func Detect(materials []analysis.MaterialRecord, meshes []analysis.MeshRecord, rules Rules) []Issue {
	var out []Issue
	for _, rec := range meshes {
		out = append(out, detectMesh(rec, rules)...)
	}
	for _, rec := range materials {
		out = append(out, detectMaterial(rec, rules)...)
	}
	Sort(out)
	return out
}

// Sort orders issues by severity, keeping the relative order otherwise.
func Sort(list []Issue) {
	slices.SortStableFunc(list, func(a, b Issue) int {
		return int(a.Severity) - int(b.Severity)
	})
}

func detectMesh(rec analysis.MeshRecord, rules Rules) []Issue {
	subject := ObjectSubject(rec)
	var out []Issue

	if detail, bad := badName(rec.Name); bad {
		out = append(out, New(InvalidCharactersInName, subject, ActionApplyName, detail))
	}
	if rec.UVChannelCount == 0 {
		out = append(out, New(MissingUVChannel, subject, ActionUnwrapUV, "mesh has no UV channel"))
	}
	if len(rec.PendingModifiers) > 0 {
		names := make([]string, len(rec.PendingModifiers))
		for i, m := range rec.PendingModifiers {
			names[i] = fmt.Sprintf("%s (%s)", m.Name, m.Kind)
		}
		issue := New(PendingGeometryModifier, subject, ActionApplyModifier,
			"unapplied: "+strings.Join(names, ", "))
		issue.Modifier = rec.PendingModifiers[0].Name
		out = append(out, issue)
	}
	if rules.PolygonBudget > 0 && rec.PolyCount > rules.PolygonBudget {
		out = append(out, New(PolygonBudgetExceeded, subject, ActionDecimate,
			fmt.Sprintf("%d polygons, budget %d", rec.PolyCount, rules.PolygonBudget)))
	}
	if rules.MaxUVChannels > 0 && rec.UVChannelCount > rules.MaxUVChannels {
		out = append(out, New(ExcessUVChannels, subject, ActionNone,
			fmt.Sprintf("%d UV channels, only %d imported", rec.UVChannelCount, rules.MaxUVChannels)))
	}
	return out
}

func detectMaterial(rec analysis.MaterialRecord, rules Rules) []Issue {
	subject := MaterialSubject(rec)
	var out []Issue

	if detail, bad := badName(rec.RawName); bad {
		out = append(out, New(InvalidCharactersInName, subject, ActionApplyName, detail))
	}
	switch rec.Kind {
	case shading.KindUnclassified:
		out = append(out, New(UnclassifiedShader, subject, ActionNone,
			"shader graph uses node types outside the supported set"))
	case shading.KindGlassBSDF:
		out = append(out, New(GlassBSDFUnsupported, subject, ActionConvertShader,
			"glass transmission shader must be converted to a PBR shader"))
	case shading.KindEmpty:
		out = append(out, New(EmptyMaterialSlot, subject, ActionNone,
			"material output has no connected shader"))
	}
	if rules.RequireSuffix && rec.Kind.Exportable() &&
		!naming.ContainsDisallowed(rec.RawName) && rec.RawName != rec.RecommendedName {
		out = append(out, New(SuffixMismatch, subject, ActionApplyName,
			fmt.Sprintf("expected %q", rec.RecommendedName)))
	}
	return out
}

// badName reports names the import pipeline rejects: names carrying
// disallowed characters and names that sanitize to nothing.
func badName(name string) (string, bool) {
	if found := naming.DisallowedIn(name); len(found) > 0 {
		return fmt.Sprintf("name %q contains %q", name, string(found)), true
	}
	if _, err := naming.Sanitize(name); err != nil {
		return fmt.Sprintf("name %q is empty after sanitization", name), true
	}
	return "", false
}
