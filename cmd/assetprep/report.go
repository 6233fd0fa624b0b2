package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/assetprep/internal/export"
	"github.com/Faultbox/assetprep/internal/issues"
	"github.com/Faultbox/assetprep/internal/workflow"
)

func printReport(w io.Writer, rep workflow.Report, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		printTable(w, rep)
		return nil
	default:
		return fmt.Errorf("%w: unknown report format %q", errUsage, format)
	}
}

func printTable(w io.Writer, rep workflow.Report) {
	fmt.Fprintf(w, "Session:  %s\n", rep.Session)
	fmt.Fprintf(w, "Stage:    %s\n", rep.Stage)
	fmt.Fprintf(w, "Issues:   %d blocking, %d advisory\n", rep.Blocking, rep.Advisory)

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATERIAL\tKIND\tRECOMMENDED")
	for _, m := range rep.Materials {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.RawName, m.Kind, m.RecommendedName)
	}
	tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECT\tPOLYS\tVERTS\tUV\tPENDING")
	for _, m := range rep.Meshes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", m.Name, m.PolyCount, m.VertCount, m.UVChannelCount, len(m.PendingModifiers))
	}
	tw.Flush()

	if len(rep.Issues) > 0 {
		fmt.Fprintln(w)
		printIssues(w, rep.Issues)
	}
	if len(rep.Results) > 0 {
		fmt.Fprintln(w)
		printResults(w, rep.Results)
	}
}

func printIssues(w io.Writer, list []issues.Issue) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tCODE\tSUBJECT\tREMEDY\tDETAIL")
	for _, i := range list {
		remedy := "-"
		if i.Remedy != issues.ActionNone {
			remedy = i.Remedy.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\n",
			i.Severity, i.Kind.Code(), i.Subject.Type, i.Subject.Name, remedy, i.Detail)
	}
	tw.Flush()
}

func printResults(w io.Writer, results []export.ObjectResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECT\tSTATUS\tOUTPUT")
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(tw, "%s\tok\t%s\n", r.Name, r.Path)
		} else {
			fmt.Fprintf(tw, "%s\tfailed\t%s\n", r.Name, r.Error)
		}
	}
	tw.Flush()
}
