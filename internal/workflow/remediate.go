package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/assetprep/internal/analysis"
	"github.com/Faultbox/assetprep/internal/issues"
	"github.com/Faultbox/assetprep/internal/shading"
	"github.com/Faultbox/assetprep/pkg/naming"
)

// Remediation is a request to fix one subject.
type Remediation struct {
	Action issues.Action
	Target issues.Subject
	// Modifier names the modifier for ActionApplyModifier. Empty means the
	// first pending geometry-affecting modifier.
	Modifier string
	// Ratio is the face ratio for ActionDecimate. Zero derives the ratio
	// from the polygon budget.
	Ratio float64
}

// ForIssue returns the suggested remediation of an issue.
func ForIssue(i issues.Issue) Remediation {
	return Remediation{Action: i.Remedy, Target: i.Subject, Modifier: i.Modifier}
}

// ApplyRemediation runs r against the host, re-analyzes the affected subject
// and moves the session to Preparation. It is allowed from Analysis,
// Preparation and ExportReady.
//
// When the host rejects the mutation a blocking RemediationFailed issue is
// retained for the subject until a later remediation of it succeeds or
// analysis is re-run, and the returned error matches ErrRemediationFailed.
// Requests that do not fit the subject match ErrNotApplicable or
// ErrUnknownSubject and leave the session unchanged.
func (w *Workflow) ApplyRemediation(ctx context.Context, r Remediation) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.apply(ctx, r)
}

// AutoRemediate applies the suggested remedy of every blocking issue that
// has one, in priority order, re-evaluating issues after each step. With
// includeAdvisory it also applies advisory remedies such as pending
// modifiers and decimation. Each issue is attempted at most once. It returns
// the number of remediations applied and the joined failures.
func (w *Workflow) AutoRemediate(ctx context.Context, includeAdvisory bool) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	type key struct {
		subject  issues.Subject
		kind     issues.Kind
		modifier string
	}
	attempted := make(map[key]bool)
	applied := 0
	var errs []error

	for {
		if err := ctx.Err(); err != nil {
			return applied, errors.Join(append(errs, err)...)
		}

		idx := slices.IndexFunc(w.issues, func(i issues.Issue) bool {
			if i.Remedy == issues.ActionNone {
				return false
			}
			if i.Severity != issues.Blocking && !includeAdvisory {
				return false
			}
			k := key{issues.Subject{Type: i.Subject.Type, ID: i.Subject.ID}, i.Kind, i.Modifier}
			return !attempted[k]
		})
		if idx < 0 {
			break
		}

		next := w.issues[idx]
		attempted[key{issues.Subject{Type: next.Subject.Type, ID: next.Subject.ID}, next.Kind, next.Modifier}] = true
		if err := w.apply(ctx, ForIssue(next)); err != nil {
			errs = append(errs, err)
			continue
		}
		applied++
	}
	return applied, errors.Join(errs...)
}

func (w *Workflow) apply(ctx context.Context, r Remediation) error {
	switch w.stage {
	case Analysis, Preparation, ExportReady:
	default:
		return &StageError{Op: r.Action.String(), Stage: w.stage}
	}
	if !w.analyzed {
		return ErrNotAnalyzed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	switch r.Target.Type {
	case issues.SubjectMaterial:
		err = w.remediateMaterial(r)
	default:
		err = w.remediateObject(r)
	}

	var hostErr *hostError
	switch {
	case errors.As(err, &hostErr):
		w.retainFailure(r, hostErr.err)
		w.refresh(r.Target)
		w.recompute()
		w.setStage(Preparation)
		w.log.Warn("remediation failed",
			zap.Stringer("action", r.Action),
			zap.String("subject", r.Target.ID),
			zap.Error(hostErr.err))
		rerr := &RemediationError{Action: r.Action, Subject: r.Target,
			Err: fmt.Errorf("%w: %w", ErrRemediationFailed, hostErr.err)}
		w.report(Event{Type: EventRemediationFailed, Action: r.Action, Subject: r.Target, Err: rerr})
		return rerr
	case err != nil:
		return &RemediationError{Action: r.Action, Subject: r.Target, Err: err}
	}

	w.clearFailures(r.Target)
	w.refresh(r.Target)
	w.recompute()
	w.setStage(Preparation)

	blocking, advisory := issues.Counts(w.issues)
	w.log.Info("remediation applied",
		zap.Stringer("action", r.Action),
		zap.String("subject", r.Target.ID),
		zap.Int("blocking", blocking))
	w.report(Event{Type: EventRemediationApplied, Action: r.Action, Subject: r.Target,
		Blocking: blocking, Advisory: advisory})
	return nil
}

// hostError marks an error returned by a host mutation.
type hostError struct{ err error }

func (e *hostError) Error() string { return e.err.Error() }

func fromHost(err error) error {
	if err == nil {
		return nil
	}
	return &hostError{err: err}
}

func (w *Workflow) remediateMaterial(r Remediation) error {
	idx := slices.IndexFunc(w.materials, func(m analysis.MaterialRecord) bool {
		return string(m.ID) == r.Target.ID
	})
	if idx < 0 {
		return fmt.Errorf("%w: material %s", ErrUnknownSubject, r.Target.ID)
	}
	rec := w.materials[idx]

	switch r.Action {
	case issues.ActionApplyName:
		if rec.RawName == rec.RecommendedName {
			return nil
		}
		return fromHost(w.host.RenameMaterial(rec.ID, rec.RecommendedName))

	case issues.ActionConvertShader:
		mat, err := w.host.Material(rec.ID)
		if err != nil {
			return fromHost(err)
		}
		if kind, _ := shading.Classify(mat); kind != shading.KindGlassBSDF {
			return fmt.Errorf("%w: material %s is %s, not GlassBSDF", ErrNotApplicable, rec.ID, kind)
		}
		return fromHost(w.host.ReplaceShader(rec.ID, shading.ConvertGlass(mat.Surface)))
	}
	return fmt.Errorf("%w: %s on a material", ErrNotApplicable, r.Action)
}

func (w *Workflow) remediateObject(r Remediation) error {
	idx := slices.IndexFunc(w.meshes, func(m analysis.MeshRecord) bool {
		return string(m.ID) == r.Target.ID
	})
	if idx < 0 {
		return fmt.Errorf("%w: object %s", ErrUnknownSubject, r.Target.ID)
	}
	rec := w.meshes[idx]

	switch r.Action {
	case issues.ActionApplyName:
		name, err := naming.Sanitize(rec.Name)
		if err != nil {
			name = naming.Fallback(w.opts.ObjectPrefix, idx+1)
		}
		if name == rec.Name {
			return nil
		}
		return fromHost(w.host.RenameObject(rec.ID, name))

	case issues.ActionApplyModifier:
		if len(rec.PendingModifiers) == 0 {
			return fmt.Errorf("%w: object %s has no pending modifier", ErrNotApplicable, rec.ID)
		}
		mod := r.Modifier
		if mod == "" {
			mod = rec.PendingModifiers[0].Name
		}
		return fromHost(w.host.ApplyModifier(rec.ID, mod))

	case issues.ActionUnwrapUV:
		return fromHost(w.host.UnwrapUV(rec.ID))

	case issues.ActionDecimate:
		ratio := r.Ratio
		if ratio == 0 {
			budget := w.opts.Rules.PolygonBudget
			if budget <= 0 || rec.PolyCount <= budget {
				return fmt.Errorf("%w: object %s is within the polygon budget", ErrNotApplicable, rec.ID)
			}
			ratio = float64(budget) / float64(rec.PolyCount)
		}
		return fromHost(w.host.Decimate(rec.ID, ratio))
	}
	return fmt.Errorf("%w: %s on an object", ErrNotApplicable, r.Action)
}

// refresh re-reads one subject from the host and rebuilds its record in
// place. A subject that can no longer be read is replaced by an unreadable
// issue.
func (w *Workflow) refresh(subject issues.Subject) {
	w.unread = slices.DeleteFunc(w.unread, func(i issues.Issue) bool {
		return i.Subject.Same(subject)
	})

	switch subject.Type {
	case issues.SubjectMaterial:
		idx := slices.IndexFunc(w.materials, func(m analysis.MaterialRecord) bool {
			return string(m.ID) == subject.ID
		})
		if idx < 0 {
			return
		}
		id := w.materials[idx].ID
		mat, err := w.host.Material(id)
		if err != nil {
			w.materials = slices.Delete(w.materials, idx, idx+1)
			w.unread = append(w.unread, unreadable(analysis.ReadError{Material: id, Err: err}))
			return
		}
		w.materials[idx] = analysis.AnalyzeMaterial(mat, idx+1, w.opts.MaterialPrefix)

	default:
		idx := slices.IndexFunc(w.meshes, func(m analysis.MeshRecord) bool {
			return string(m.ID) == subject.ID
		})
		if idx < 0 {
			return
		}
		id := w.meshes[idx].ID
		obj, err := w.host.Object(id)
		if err != nil {
			w.meshes = slices.Delete(w.meshes, idx, idx+1)
			w.unread = append(w.unread, unreadable(analysis.ReadError{Object: id, Err: err}))
			return
		}
		w.meshes[idx] = analysis.AnalyzeMesh(obj)
	}
}

func (w *Workflow) retainFailure(r Remediation, err error) {
	subject := r.Target
	subject.Name = w.subjectName(subject)
	i := issues.New(issues.RemediationFailed, subject, issues.ActionNone,
		fmt.Sprintf("%s: %v", r.Action, err))
	w.failures = append(w.failures, i)
}

func (w *Workflow) clearFailures(subject issues.Subject) {
	w.failures = slices.DeleteFunc(w.failures, func(i issues.Issue) bool {
		return i.Subject.Same(subject)
	})
}

func (w *Workflow) subjectName(subject issues.Subject) string {
	if subject.Type == issues.SubjectMaterial {
		for _, m := range w.materials {
			if string(m.ID) == subject.ID {
				return m.RawName
			}
		}
	} else {
		for _, m := range w.meshes {
			if string(m.ID) == subject.ID {
				return m.Name
			}
		}
	}
	if subject.Name != "" {
		return subject.Name
	}
	return subject.ID
}
