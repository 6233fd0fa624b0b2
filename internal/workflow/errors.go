package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/assetprep/internal/export"
	"github.com/Faultbox/assetprep/internal/issues"
)

// Workflow errors.
var (
	ErrTransitionRefused = errors.New("transition refused")
	ErrWrongStage        = errors.New("operation not allowed in current stage")
	ErrNotAnalyzed       = errors.New("no analysis has run")
	ErrRemediationFailed = errors.New("remediation failed")
	ErrNotApplicable     = errors.New("remediation not applicable")
	ErrUnknownSubject    = errors.New("subject not in current analysis")
	ErrExportFailed      = errors.New("export failed")
)

// TransitionRefusedError is returned when a guarded transition is refused.
// The stage is left unchanged.
type TransitionRefusedError struct {
	From, To Stage
	// Blocking holds the issues that keep the guard closed.
	Blocking []issues.Issue
	Reason   string
}

func (e *TransitionRefusedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot advance from %s to %s", e.From, e.To)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Blocking) > 0 {
		fmt.Fprintf(&b, ": %d blocking issue(s)", len(e.Blocking))
		for _, i := range e.Blocking {
			b.WriteString("\n  ")
			b.WriteString(i.String())
		}
	}
	return b.String()
}

// Is reports whether target is ErrTransitionRefused.
func (e *TransitionRefusedError) Is(target error) bool {
	return target == ErrTransitionRefused
}

// StageError is returned when an operation is called in a stage that does
// not allow it.
type StageError struct {
	Op    string
	Stage Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: not allowed in stage %s", e.Op, e.Stage)
}

// Is reports whether target is ErrWrongStage.
func (e *StageError) Is(target error) bool {
	return target == ErrWrongStage
}

// RemediationError reports a remediation that could not be applied. When the
// host rejected the mutation it matches ErrRemediationFailed and a blocking
// RemediationFailed issue is retained for the subject.
type RemediationError struct {
	Action  issues.Action
	Subject issues.Subject
	Err     error
}

func (e *RemediationError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Action, e.Subject, e.Err)
}

func (e *RemediationError) Unwrap() error { return e.Err }

// ExportError lists the objects that failed in an export batch.
type ExportError struct {
	Failed []export.ObjectResult
	Total  int
}

func (e *ExportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "export failed for %d of %d object(s)", len(e.Failed), e.Total)
	for _, r := range e.Failed {
		b.WriteString("\n  ")
		b.WriteString(r.Error)
	}
	return b.String()
}

// Is reports whether target is ErrExportFailed.
func (e *ExportError) Is(target error) bool {
	return target == ErrExportFailed
}
