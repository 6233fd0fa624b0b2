package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/assetprep/internal/scene"
)

// ReadError is a host read that failed for one subject during a scan. Scans
// never abort on a single bad subject.
type ReadError struct {
	Object   scene.ObjectID
	Material scene.MaterialID
	Err      error
}

func (e ReadError) Error() string {
	if e.Material != "" {
		return fmt.Sprintf("reading material %s: %v", e.Material, e.Err)
	}
	return fmt.Sprintf("reading object %s: %v", e.Object, e.Err)
}

func (e ReadError) Unwrap() error { return e.Err }

// Result is the output of one analysis pass, in scene order.
type Result struct {
	Meshes     []MeshRecord
	Materials  []MaterialRecord
	ReadErrors []ReadError
}

// ScanOptions tunes a scan.
type ScanOptions struct {
	// Workers bounds concurrent host reads. Values below 2 scan serially.
	Workers        int
	FallbackPrefix string
}

// Scan reads every selected object and each material referenced by them,
// then analyzes them. Materials are analyzed once each, in order of first
// reference. Reads run concurrently when opts.Workers > 1, so the host must
// allow reentrant reads in that case.
func Scan(ctx context.Context, host scene.Host, selection []scene.ObjectID, opts ScanOptions) (*Result, error) {
	res := &Result{}

	objects := make([]*scene.Object, len(selection))
	objErrs := make([]error, len(selection))
	if err := forEach(ctx, len(selection), opts.Workers, func(i int) {
		objects[i], objErrs[i] = host.Object(selection[i])
	}); err != nil {
		return nil, err
	}

	var matIDs []scene.MaterialID
	seen := make(map[scene.MaterialID]bool)
	for i, obj := range objects {
		if objErrs[i] != nil {
			res.ReadErrors = append(res.ReadErrors, ReadError{Object: selection[i], Err: objErrs[i]})
			continue
		}
		res.Meshes = append(res.Meshes, AnalyzeMesh(obj))
		for _, id := range obj.Materials {
			if !seen[id] {
				seen[id] = true
				matIDs = append(matIDs, id)
			}
		}
	}

	records := make([]MaterialRecord, len(matIDs))
	matErrs := make([]error, len(matIDs))
	if err := forEach(ctx, len(matIDs), opts.Workers, func(i int) {
		mat, err := host.Material(matIDs[i])
		if err != nil {
			matErrs[i] = err
			return
		}
		records[i] = AnalyzeMaterial(mat, i+1, opts.FallbackPrefix)
	}); err != nil {
		return nil, err
	}
	for i, rec := range records {
		if matErrs[i] != nil {
			res.ReadErrors = append(res.ReadErrors, ReadError{Material: matIDs[i], Err: matErrs[i]})
			continue
		}
		res.Materials = append(res.Materials, rec)
	}
	return res, nil
}

// forEach runs fn for 0..n-1, concurrently when workers > 1. Each call must
// write only its own index. Only context cancellation fails the whole run.
func forEach(ctx context.Context, n, workers int, fn func(i int)) error {
	if workers < 2 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	return g.Wait()
}
