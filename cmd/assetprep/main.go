// assetprep checks scene files for export readiness, fixes what it can and
// batch exports the objects once nothing blocks.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/assetprep/internal/logger"
)

var (
	errUsage    = errors.New("usage")
	errBlocking = errors.New("blocking issues remain")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command := args[0]
	args = args[1:]

	var err error
	switch command {
	case "analyze", "check":
		err = cmdAnalyze(ctx, args, stdout)
	case "fix":
		err = cmdFix(ctx, args, stdout)
	case "export":
		err = cmdExport(ctx, args, stdout)
	case "watch":
		err = cmdWatch(ctx, args, stdout)
	case "config":
		err = cmdConfig(args, stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		return 1
	case errors.Is(err, errBlocking):
		return 2
	default:
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `assetprep - scene asset export readiness

Usage:
  assetprep <command> [options] <scene.yaml>

Commands:
  analyze <scene.yaml>     Classify materials, summarize meshes, list issues
  fix <scene.yaml>         Apply suggested remedies and save the scene
  export <scene.yaml>      Export every object once no blocking issue remains
  watch <scene.yaml>       Re-analyze whenever the scene file changes
  config [path]            Write the effective config as YAML

Common options:
  -config <file>   Config file (default ./assetprep.yaml or user config dir)
  -debug           Debug logging
  -log <file>      Also log to a rotated file
  -workers <n>     Concurrent scene reads
  -budget <n>      Per-object polygon budget
  -select <ids>    Comma-separated object ids (default all)
  -report <fmt>    Report format: table or yaml

Exit status is 2 when blocking issues remain.

Examples:
  assetprep analyze level.yaml
  assetprep fix -advisory -w fixed.yaml level.yaml
  assetprep export -fix -out build/fbx level.yaml`)
}
