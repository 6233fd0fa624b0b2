package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/assetprep/internal/config"
	"github.com/Faultbox/assetprep/internal/export"
	"github.com/Faultbox/assetprep/internal/logger"
	"github.com/Faultbox/assetprep/internal/scene"
	"github.com/Faultbox/assetprep/internal/workflow"
)

// common holds the flags every scene command accepts.
type common struct {
	config.Flags
	selection string
	report    string
}

func newFlagSet(name string, c *common) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	c.Bind(fs)
	fs.StringVar(&c.selection, "select", "", "Comma-separated object ids (default all)")
	fs.StringVar(&c.report, "report", "table", "Report format: table or yaml")
	return fs
}

func (c *common) objects() []scene.ObjectID {
	var ids []scene.ObjectID
	for _, s := range strings.Split(c.selection, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, scene.ObjectID(s))
		}
	}
	return ids
}

// session is a loaded scene with its workflow.
type session struct {
	cfg  *config.Config
	path string
	host *scene.Memory
	wf   *workflow.Workflow
}

// setup loads the config and initializes logging.
func setup(c *common) (*config.Config, error) {
	cfg, err := config.Load(&c.Flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File(), true); err != nil {
		return nil, err
	}
	return cfg, nil
}

func open(cfg *config.Config, path string) (*session, error) {
	host, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, path: path, host: host, wf: newWorkflow(cfg, host)}, nil
}

func newWorkflow(cfg *config.Config, host scene.Host) *workflow.Workflow {
	ser := &export.DescriptorWriter{Host: host}
	coord := export.NewCoordinator(host, ser, logger.Named("export"))
	return workflow.New(host, coord, workflow.Options{
		Rules:          cfg.Rules,
		Workers:        cfg.Analysis.Workers,
		MaterialPrefix: cfg.Naming.FallbackPrefix,
		ObjectPrefix:   cfg.Naming.ObjectPrefix,
		Logger:         logger.Named("workflow"),
		Reporter:       workflow.ReporterFunc(logProgress),
	})
}

func logProgress(e workflow.Event) {
	fields := []zap.Field{zap.String("event", string(e.Type)), zap.Stringer("stage", e.Stage)}
	if e.Subject.ID != "" {
		fields = append(fields, zap.String("subject", e.Subject.ID))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	logger.Debug("progress", fields...)
}

func sceneArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("%w: assetprep %s [options] <scene.yaml>", errUsage, fs.Name())
	}
	return fs.Arg(0), nil
}

func cmdAnalyze(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	fs := newFlagSet("analyze", &c)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	path, err := sceneArg(fs)
	if err != nil {
		return err
	}

	cfg, err := setup(&c)
	if err != nil {
		return err
	}
	s, err := open(cfg, path)
	if err != nil {
		return err
	}
	if err := s.wf.RunAnalysis(ctx, c.objects()); err != nil {
		return err
	}

	rep := s.wf.Report()
	if err := printReport(stdout, rep, c.report); err != nil {
		return err
	}
	if rep.Blocking > 0 {
		return errBlocking
	}
	return nil
}

func cmdFix(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	fs := newFlagSet("fix", &c)
	advisory := fs.Bool("advisory", false, "Also apply advisory remedies (modifiers, decimation)")
	out := fs.String("w", "", "Write the fixed scene here (default overwrite input)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	path, err := sceneArg(fs)
	if err != nil {
		return err
	}

	cfg, err := setup(&c)
	if err != nil {
		return err
	}
	s, err := open(cfg, path)
	if err != nil {
		return err
	}
	if err := s.wf.RunAnalysis(ctx, c.objects()); err != nil {
		return err
	}

	if err := s.fix(ctx, *advisory || cfg.Analysis.AutoAdvisory); err != nil {
		return err
	}
	if *out == "" {
		*out = path
	}
	if err := s.host.SaveTo(*out); err != nil {
		return err
	}
	logger.Info("scene saved", zap.String("path", *out))

	rep := s.wf.Report()
	if err := printReport(stdout, rep, c.report); err != nil {
		return err
	}
	if rep.Blocking > 0 {
		return errBlocking
	}
	return nil
}

// fix auto-remediates. Failed remedies are logged and stay visible as
// RemediationFailed issues.
func (s *session) fix(ctx context.Context, advisory bool) error {
	applied, err := s.wf.AutoRemediate(ctx, advisory)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		logger.Warn("some remedies failed", zap.Error(err))
	}
	logger.Info("remedies applied", zap.Int("count", applied))
	return nil
}

func cmdExport(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	fs := newFlagSet("export", &c)
	fix := fs.Bool("fix", false, "Apply suggested remedies first and save the scene")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	path, err := sceneArg(fs)
	if err != nil {
		return err
	}

	cfg, err := setup(&c)
	if err != nil {
		return err
	}
	s, err := open(cfg, path)
	if err != nil {
		return err
	}
	if err := s.wf.RunAnalysis(ctx, c.objects()); err != nil {
		return err
	}
	if *fix {
		if err := s.fix(ctx, cfg.Analysis.AutoAdvisory); err != nil {
			return err
		}
		if err := s.host.SaveTo(path); err != nil {
			return err
		}
	}

	for s.wf.Stage() != workflow.ExportReady {
		if _, err := s.wf.Advance(); err != nil {
			var refused *workflow.TransitionRefusedError
			if errors.As(err, &refused) {
				printIssues(stdout, refused.Blocking)
				return errBlocking
			}
			return err
		}
	}

	results, err := s.wf.ExportNow(ctx, cfg.Export)
	printResults(stdout, results)
	var failed *workflow.ExportError
	if errors.As(err, &failed) {
		return fmt.Errorf("%d of %d object(s) failed", len(failed.Failed), failed.Total)
	}
	return err
}

func cmdConfig(args []string, stdout io.Writer) error {
	var f config.Flags
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	f.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	cfg, err := config.Load(&f)
	if err != nil {
		return err
	}

	var path string
	if fs.NArg() > 0 {
		path = fs.Arg(0)
		err = cfg.SaveTo(path)
	} else {
		path, err = cfg.Save()
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Config written to %s\n", path)
	return nil
}

