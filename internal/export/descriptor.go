package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/assetprep/internal/scene"
	"github.com/Faultbox/assetprep/pkg/naming"
)

// ErrPathTaken is returned when an object's descriptor path is already held
// by another object of the same writer.
var ErrPathTaken = errors.New("descriptor path taken")

// Descriptor is the hand-off record DescriptorWriter emits per object: what
// the format serializer receives for one object of a batch.
type Descriptor struct {
	Object     scene.ObjectID `yaml:"object"`
	Name       string         `yaml:"name"`
	Polygons   int            `yaml:"polygons"`
	Vertices   int            `yaml:"vertices"`
	UVChannels int            `yaml:"uv_channels"`
	Materials  []string       `yaml:"materials"`
	Options    Options        `yaml:"options"`
}

// DescriptorWriter is a Serializer that writes a YAML descriptor per object
// into the destination directory instead of a binary model file. The CLI
// uses it when no format exporter is attached.
//
// Files are named after the object. A path is claimed by the first object
// written to it; another object whose name sanitizes to the same file gets
// its id appended instead.
type DescriptorWriter struct {
	Host scene.Host

	mu      sync.Mutex
	claimed map[string]scene.ObjectID
}

// Serialize implements Serializer.
func (w *DescriptorWriter) Serialize(ctx context.Context, obj *scene.Object, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d := Descriptor{
		Object:     obj.ID,
		Name:       obj.Name,
		Polygons:   obj.Polygons,
		Vertices:   obj.Vertices,
		UVChannels: obj.UVChannels,
		Options:    opts,
	}
	for _, id := range obj.Materials {
		mat, err := w.Host.Material(id)
		if err != nil {
			return "", fmt.Errorf("resolving material %s: %w", id, err)
		}
		d.Materials = append(d.Materials, mat.Name)
	}

	path, err := w.claim(obj, opts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(opts.Destination, 0755); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (w *DescriptorWriter) claim(obj *scene.Object, opts Options) (string, error) {
	name, err := naming.Sanitize(obj.Name)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.claimed == nil {
		w.claimed = make(map[string]scene.ObjectID)
	}

	path := filepath.Join(opts.Destination, fmt.Sprintf("%s.%s.yaml", name, opts.Format))
	if owner, ok := w.claimed[path]; ok && owner != obj.ID {
		id := naming.MustSanitize(string(obj.ID), "object")
		path = filepath.Join(opts.Destination, fmt.Sprintf("%s_%s.%s.yaml", name, id, opts.Format))
		if owner, ok := w.claimed[path]; ok && owner != obj.ID {
			return "", fmt.Errorf("%w: %s already written for object %s", ErrPathTaken, path, owner)
		}
	}
	w.claimed[path] = obj.ID
	return path, nil
}
