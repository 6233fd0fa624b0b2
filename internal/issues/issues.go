// Package issues cross-references analysis records against the export rules
// and produces the prioritized list of blocking and advisory issues.
package issues

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// Severity says whether an issue gates export.
type Severity int

const (
	// Blocking issues prevent export readiness.
	Blocking Severity = iota
	// Advisory issues are informational.
	Advisory
)

func (s Severity) String() string {
	switch s {
	case Blocking:
		return "Blocking"
	case Advisory:
		return "Advisory"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind is the cause of an issue. Each kind has exactly one severity.
type Kind int

const (
	InvalidCharactersInName Kind = iota
	UnclassifiedShader
	GlassBSDFUnsupported
	EmptyMaterialSlot
	MissingUVChannel
	SubjectUnreadable
	RemediationFailed
	PendingGeometryModifier
	PolygonBudgetExceeded
	ExcessUVChannels
	SuffixMismatch
)

type kindInfo struct {
	name     string
	severity Severity
}

var kinds = map[Kind]kindInfo{
	InvalidCharactersInName: {"InvalidCharactersInName", Blocking},
	UnclassifiedShader:      {"UnclassifiedShader", Blocking},
	GlassBSDFUnsupported:    {"GlassBSDFUnsupported", Blocking},
	EmptyMaterialSlot:       {"EmptyMaterialSlot", Blocking},
	MissingUVChannel:        {"MissingUVChannel", Blocking},
	SubjectUnreadable:       {"SubjectUnreadable", Blocking},
	RemediationFailed:       {"RemediationFailed", Blocking},
	PendingGeometryModifier: {"PendingGeometryModifier", Advisory},
	PolygonBudgetExceeded:   {"PolygonBudgetExceeded", Advisory},
	ExcessUVChannels:        {"ExcessUVChannels", Advisory},
	SuffixMismatch:          {"SuffixMismatch", Advisory},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code returns the snake_case report code, e.g. "missing_uv_channel".
func (k Kind) Code() string {
	return strcase.ToSnake(k.String())
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.Code()), nil
}

// Severity returns the fixed severity of the kind.
func (k Kind) Severity() Severity {
	if info, ok := kinds[k]; ok {
		return info.severity
	}
	return Blocking
}

// SubjectType says what an issue refers to.
type SubjectType int

const (
	SubjectObject SubjectType = iota
	SubjectMaterial
)

func (t SubjectType) String() string {
	if t == SubjectMaterial {
		return "material"
	}
	return "object"
}

// MarshalText implements encoding.TextMarshaler.
func (t SubjectType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Subject references a material or mesh record by id.
type Subject struct {
	Type SubjectType `yaml:"type"`
	ID   string      `yaml:"id"`
	Name string      `yaml:"name"`
}

func (s Subject) String() string {
	return fmt.Sprintf("%s %s (%s)", s.Type, s.Name, s.ID)
}

// Same reports whether both subjects reference the same record.
func (s Subject) Same(o Subject) bool {
	return s.Type == o.Type && s.ID == o.ID
}

// Action is a remediation the workflow can run against a subject.
type Action int

const (
	ActionNone Action = iota
	ActionApplyName
	ActionConvertShader
	ActionApplyModifier
	ActionUnwrapUV
	ActionDecimate
)

var actionNames = map[Action]string{
	ActionNone:          "none",
	ActionApplyName:     "apply_name",
	ActionConvertShader: "convert_shader",
	ActionApplyModifier: "apply_modifier",
	ActionUnwrapUV:      "unwrap_uv",
	ActionDecimate:      "decimate",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAction parses an action name as printed by String.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// Issue is one detected problem. Issues are recomputed on every pass and
// never edited in place.
type Issue struct {
	Severity Severity `yaml:"severity"`
	Kind     Kind     `yaml:"kind"`
	Subject  Subject  `yaml:"subject"`
	Detail   string   `yaml:"detail,omitempty"`
	// Remedy is the suggested remediation, ActionNone when the user must
	// intervene manually.
	Remedy Action `yaml:"remedy"`
	// Modifier names the modifier an ActionApplyModifier remedy targets.
	Modifier string `yaml:"modifier,omitempty"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("[%s] %s: %s", i.Severity, i.Kind, i.Subject)
	if i.Detail != "" {
		s += ": " + i.Detail
	}
	return s
}

// New returns an issue of kind with the kind's fixed severity.
func New(kind Kind, subject Subject, remedy Action, detail string) Issue {
	return Issue{
		Severity: kind.Severity(),
		Kind:     kind,
		Subject:  subject,
		Detail:   detail,
		Remedy:   remedy,
	}
}
