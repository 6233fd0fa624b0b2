// Package workflow implements the readiness workflow: a per-session state
// machine that gates batch export on the absence of blocking issues and
// runs the remediation actions that clear them.
package workflow

import (
	"fmt"
	"slices"
)

// Stage is a workflow state.
type Stage int

const (
	Analysis Stage = iota
	Preparation
	ExportReady
	Exporting
	Exported
	Failed
)

var stageNames = [...]string{
	Analysis:    "Analysis",
	Preparation: "Preparation",
	ExportReady: "ExportReady",
	Exporting:   "Exporting",
	Exported:    "Exported",
	Failed:      "Failed",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s ends an export attempt.
func (s Stage) Terminal() bool {
	return s == Exported || s == Failed
}

// transitions lists the legal stage changes. Re-entering Analysis is always
// possible except while an export is in flight.
var transitions = map[Stage][]Stage{
	Analysis:    {Analysis, Preparation},
	Preparation: {Analysis, Preparation, ExportReady},
	ExportReady: {Analysis, Preparation, Exporting},
	Exporting:   {Exported, Failed},
	Exported:    {Analysis},
	Failed:      {Analysis},
}

// CanTransition reports whether the machine may move from s to next.
func (s Stage) CanTransition(next Stage) bool {
	return slices.Contains(transitions[s], next)
}
