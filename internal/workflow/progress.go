package workflow

import "github.com/Faultbox/assetprep/internal/issues"

// EventType is the kind of a progress event.
type EventType string

const (
	EventAnalysisCompleted  EventType = "analysis_completed"
	EventRemediationApplied EventType = "remediation_applied"
	EventRemediationFailed  EventType = "remediation_failed"
	EventStageChanged       EventType = "stage_changed"
	EventObjectExported     EventType = "object_exported"
	EventExportCompleted    EventType = "export_completed"
)

// Event is a progress notification from a workflow session.
type Event struct {
	Type     EventType
	Stage    Stage
	Previous Stage
	Action   issues.Action
	Subject  issues.Subject
	Blocking int
	Advisory int
	Exported int
	Failed   int
	Err      error
}

// ProgressReporter receives workflow progress events. Calls happen on the
// goroutine driving the workflow, with the session lock held.
type ProgressReporter interface {
	ReportProgress(event Event)
}

// ReporterFunc adapts a function to ProgressReporter.
type ReporterFunc func(Event)

// ReportProgress implements ProgressReporter.
func (f ReporterFunc) ReportProgress(e Event) { f(e) }

func (w *Workflow) report(e Event) {
	if w.opts.Reporter == nil {
		return
	}
	if e.Type != EventStageChanged {
		e.Stage = w.stage
	}
	w.opts.Reporter.ReportProgress(e)
}
