package export

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/assetprep/internal/scene"
)

// ErrSerialization is matched by every per-object export failure.
var ErrSerialization = errors.New("serialization failed")

// Serializer is the external exporter for one object. It returns the path
// written. A long call is treated as synchronous; cancellation belongs to
// the serializer's host via ctx.
type Serializer interface {
	Serialize(ctx context.Context, obj *scene.Object, opts Options) (string, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(ctx context.Context, obj *scene.Object, opts Options) (string, error)

// Serialize implements Serializer.
func (f SerializerFunc) Serialize(ctx context.Context, obj *scene.Object, opts Options) (string, error) {
	return f(ctx, obj, opts)
}

// SerializationError is the failure of one object in a batch.
type SerializationError struct {
	Object scene.ObjectID
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("exporting %s: %v", e.Object, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSerialization.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// ObjectResult is the outcome for one object of a batch.
type ObjectResult struct {
	Object scene.ObjectID `yaml:"object"`
	Name   string         `yaml:"name"`
	Path   string         `yaml:"path,omitempty"`
	Err    error          `yaml:"-"`
	Error  string         `yaml:"error,omitempty"`
}

// OK reports whether the object exported successfully.
func (r ObjectResult) OK() bool {
	return r.Err == nil
}

// Failed reports whether any result is a failure.
func Failed(results []ObjectResult) bool {
	for _, r := range results {
		if !r.OK() {
			return true
		}
	}
	return false
}

// Coordinator exports object sets one object at a time.
type Coordinator struct {
	host       scene.Host
	serializer Serializer
	log        *zap.Logger
}

// NewCoordinator creates a coordinator. A nil logger disables logging.
func NewCoordinator(host scene.Host, serializer Serializer, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{host: host, serializer: serializer, log: log}
}

// ExportAll serializes every object in selection with opts and returns one
// result per object, in selection order. A failing object never stops the
// rest of the batch. Once ctx is done, remaining objects fail with the
// context error.
func (c *Coordinator) ExportAll(ctx context.Context, selection []scene.ObjectID, opts Options) []ObjectResult {
	results := make([]ObjectResult, len(selection))
	for i, id := range selection {
		results[i] = c.exportOne(ctx, id, opts)
		if results[i].OK() {
			c.log.Info("exported object",
				zap.String("object", string(id)),
				zap.String("path", results[i].Path))
		} else {
			c.log.Warn("export failed",
				zap.String("object", string(id)),
				zap.Error(results[i].Err))
		}
	}
	return results
}

func (c *Coordinator) exportOne(ctx context.Context, id scene.ObjectID, opts Options) (res ObjectResult) {
	res.Object = id
	fail := func(err error) ObjectResult {
		res.Err = &SerializationError{Object: id, Err: err}
		res.Error = res.Err.Error()
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	obj, err := c.host.Object(id)
	if err != nil {
		return fail(err)
	}
	res.Name = obj.Name

	defer func() {
		if r := recover(); r != nil {
			res = fail(fmt.Errorf("serializer panic: %v", r))
		}
	}()
	path, err := c.serializer.Serialize(ctx, obj, opts)
	if err != nil {
		return fail(err)
	}
	res.Path = path
	return res
}
