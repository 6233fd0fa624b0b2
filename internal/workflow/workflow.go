package workflow

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/assetprep/internal/analysis"
	"github.com/Faultbox/assetprep/internal/export"
	"github.com/Faultbox/assetprep/internal/issues"
	"github.com/Faultbox/assetprep/internal/scene"
)

// Options configures a workflow session.
type Options struct {
	Rules issues.Rules
	// Workers bounds concurrent host reads during analysis.
	Workers int
	// MaterialPrefix labels materials whose names sanitize to nothing.
	MaterialPrefix string
	// ObjectPrefix labels objects whose names sanitize to nothing.
	ObjectPrefix string
	Logger       *zap.Logger
	Reporter     ProgressReporter
}

// Workflow is one readiness session over a host scene. All methods are safe
// for concurrent use; operations are serialized.
type Workflow struct {
	mu sync.Mutex

	id          uuid.UUID
	host        scene.Host
	coordinator *export.Coordinator
	opts        Options
	log         *zap.Logger

	stage     Stage
	analyzed  bool
	selection []scene.ObjectID
	materials []analysis.MaterialRecord
	meshes    []analysis.MeshRecord
	unread    []issues.Issue
	failures  []issues.Issue
	issues    []issues.Issue

	exportOpts export.Options
	results    []export.ObjectResult
}

// New returns a session in the Analysis stage. No analysis has run yet.
func New(host scene.Host, coordinator *export.Coordinator, opts Options) *Workflow {
	if opts.MaterialPrefix == "" {
		opts.MaterialPrefix = "Material"
	}
	if opts.ObjectPrefix == "" {
		opts.ObjectPrefix = "Object"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	return &Workflow{
		id:          id,
		host:        host,
		coordinator: coordinator,
		opts:        opts,
		log:         log.With(zap.String("session", id.String())),
		stage:       Analysis,
	}
}

// ID returns the session id.
func (w *Workflow) ID() uuid.UUID { return w.id }

// Stage returns the current stage.
func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Issues returns the current issue list in priority order.
func (w *Workflow) Issues() []issues.Issue {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.issues)
}

// Materials returns the current material records.
func (w *Workflow) Materials() []analysis.MaterialRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.materials)
}

// Meshes returns the current mesh records.
func (w *Workflow) Meshes() []analysis.MeshRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.meshes)
}

// Selection returns the objects the last analysis covered.
func (w *Workflow) Selection() []scene.ObjectID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.selection)
}

// Results returns the per-object results of the last export.
func (w *Workflow) Results() []export.ObjectResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.results)
}

// Report is a point-in-time summary of a session.
type Report struct {
	Session   string                    `yaml:"session"`
	Stage     Stage                     `yaml:"stage"`
	Blocking  int                       `yaml:"blocking"`
	Advisory  int                       `yaml:"advisory"`
	Issues    []issues.Issue            `yaml:"issues"`
	Materials []analysis.MaterialRecord `yaml:"materials"`
	Meshes    []analysis.MeshRecord     `yaml:"meshes"`
	Results   []export.ObjectResult     `yaml:"results,omitempty"`
}

// Report returns a consistent snapshot of the session state.
func (w *Workflow) Report() Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	blocking, advisory := issues.Counts(w.issues)
	return Report{
		Session:   w.id.String(),
		Stage:     w.stage,
		Blocking:  blocking,
		Advisory:  advisory,
		Issues:    slices.Clone(w.issues),
		Materials: slices.Clone(w.materials),
		Meshes:    slices.Clone(w.meshes),
		Results:   slices.Clone(w.results),
	}
}

// RunAnalysis scans the selection, rebuilding every record and issue, and
// moves the session to Analysis. An empty selection covers every object in
// the scene. Remediation failures retained from earlier passes are dropped.
func (w *Workflow) RunAnalysis(ctx context.Context, selection []scene.ObjectID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.stage.CanTransition(Analysis) {
		return &StageError{Op: "analyze", Stage: w.stage}
	}

	if len(selection) == 0 {
		all, err := w.host.Objects()
		if err != nil {
			return err
		}
		selection = all
	}
	selection = slices.Clone(selection)

	res, err := analysis.Scan(ctx, w.host, selection, analysis.ScanOptions{
		Workers:        w.opts.Workers,
		FallbackPrefix: w.opts.MaterialPrefix,
	})
	if err != nil {
		return err
	}

	w.selection = selection
	w.materials = res.Materials
	w.meshes = res.Meshes
	w.unread = nil
	for _, re := range res.ReadErrors {
		w.unread = append(w.unread, unreadable(re))
	}
	w.failures = nil
	w.results = nil
	w.analyzed = true
	w.recompute()
	w.setStage(Analysis)

	blocking, advisory := issues.Counts(w.issues)
	w.log.Info("analysis completed",
		zap.Int("objects", len(w.meshes)),
		zap.Int("materials", len(w.materials)),
		zap.Int("blocking", blocking),
		zap.Int("advisory", advisory))
	w.report(Event{Type: EventAnalysisCompleted, Blocking: blocking, Advisory: advisory})
	return nil
}

// Advance moves Analysis to Preparation, and Preparation to ExportReady when
// no blocking issue remains. Any other transition is refused; export starts
// through ExportNow.
func (w *Workflow) Advance() (Stage, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.analyzed {
		return w.stage, ErrNotAnalyzed
	}

	switch w.stage {
	case Analysis:
		w.setStage(Preparation)
	case Preparation:
		if blocking := issues.Filter(w.issues, issues.Blocking); len(blocking) > 0 {
			w.log.Info("advance refused", zap.Int("blocking", len(blocking)))
			return w.stage, &TransitionRefusedError{From: Preparation, To: ExportReady, Blocking: blocking}
		}
		w.setStage(ExportReady)
	case ExportReady:
		return w.stage, &TransitionRefusedError{From: ExportReady, To: Exporting, Reason: "export starts with an explicit export request"}
	default:
		return w.stage, &TransitionRefusedError{From: w.stage, To: Analysis, Reason: "re-run analysis to start over"}
	}
	return w.stage, nil
}

// ExportNow freezes the selection and options, exports every selected object
// and settles in Exported or Failed. It is only allowed from ExportReady. A
// batch with any failed object returns the full results together with an
// *ExportError.
func (w *Workflow) ExportNow(ctx context.Context, opts export.Options) ([]export.ObjectResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != ExportReady {
		return nil, &StageError{Op: "export", Stage: w.stage}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if blocking := issues.Filter(w.issues, issues.Blocking); len(blocking) > 0 {
		return nil, &TransitionRefusedError{From: ExportReady, To: Exporting, Blocking: blocking}
	}

	selection := slices.Clone(w.selection)
	w.exportOpts = opts
	w.setStage(Exporting)
	w.log.Info("export started",
		zap.Int("objects", len(selection)),
		zap.String("destination", opts.Destination),
		zap.String("format", opts.Format))

	results := w.coordinator.ExportAll(ctx, selection, w.exportOpts)
	w.results = results

	var failed []export.ObjectResult
	for _, r := range results {
		e := Event{Type: EventObjectExported, Exported: 1,
			Subject: issues.Subject{Type: issues.SubjectObject, ID: string(r.Object), Name: r.Name}}
		if !r.OK() {
			failed = append(failed, r)
			e.Exported, e.Failed, e.Err = 0, 1, r.Err
		}
		w.report(e)
	}
	if len(failed) > 0 {
		w.setStage(Failed)
	} else {
		w.setStage(Exported)
	}
	w.log.Info("export finished",
		zap.Int("exported", len(results)-len(failed)),
		zap.Int("failed", len(failed)))
	w.report(Event{Type: EventExportCompleted, Exported: len(results) - len(failed), Failed: len(failed)})

	if len(failed) > 0 {
		return slices.Clone(results), &ExportError{Failed: failed, Total: len(results)}
	}
	return slices.Clone(results), nil
}

func (w *Workflow) setStage(next Stage) {
	prev := w.stage
	w.stage = next
	if prev == next {
		return
	}
	w.log.Debug("stage changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	w.report(Event{Type: EventStageChanged, Stage: next, Previous: prev})
}

// recompute rebuilds the issue list from the current records plus the
// issues that do not come from rule evaluation.
func (w *Workflow) recompute() {
	list := issues.Detect(w.materials, w.meshes, w.opts.Rules)
	list = append(list, w.unread...)
	list = append(list, w.failures...)
	issues.Sort(list)
	w.issues = list
}

func unreadable(re analysis.ReadError) issues.Issue {
	subject := issues.Subject{Type: issues.SubjectObject, ID: string(re.Object), Name: string(re.Object)}
	if re.Material != "" {
		subject = issues.Subject{Type: issues.SubjectMaterial, ID: string(re.Material), Name: string(re.Material)}
	}
	return issues.New(issues.SubjectUnreadable, subject, issues.ActionNone, re.Err.Error())
}
