// Package export drives batch export of a prepared object set through the
// external serializer.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid export options")

// Options is the fixed configuration surface handed to the serializer for
// every object of a batch.
type Options struct {
	Destination    string  `yaml:"destination"`
	Format         string  `yaml:"format"`
	BatchMode      string  `yaml:"batch_mode"`
	Scale          float64 `yaml:"scale"`
	AxisForward    string  `yaml:"axis_forward"`
	AxisUp         string  `yaml:"axis_up"`
	EmbedTextures  bool    `yaml:"embed_textures"`
	ApplyModifiers bool    `yaml:"apply_modifiers"`
	MeshSmoothType string  `yaml:"mesh_smooth_type"`
}

// Batch modes.
const (
	BatchObject = "object"
)

// Mesh smoothing export modes.
const (
	SmoothOff  = "off"
	SmoothFace = "face"
	SmoothEdge = "edge"
)

// DefaultOptions returns the platform's recommended FBX settings.
func DefaultOptions() Options {
	return Options{
		Destination:    "export",
		Format:         "fbx",
		BatchMode:      BatchObject,
		Scale:          1.0,
		AxisForward:    "-Z",
		AxisUp:         "Y",
		EmbedTextures:  true,
		ApplyModifiers: false,
		MeshSmoothType: SmoothFace,
	}
}

var axes = map[string]bool{"X": true, "Y": true, "Z": true, "-X": true, "-Y": true, "-Z": true}

// Validate checks the options before a batch starts.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Destination) == "" {
		return fmt.Errorf("%w: destination is empty", ErrInvalidOptions)
	}
	if o.Format == "" {
		return fmt.Errorf("%w: format is empty", ErrInvalidOptions)
	}
	if o.BatchMode != BatchObject {
		return fmt.Errorf("%w: unsupported batch mode %q", ErrInvalidOptions, o.BatchMode)
	}
	if o.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %g", ErrInvalidOptions, o.Scale)
	}
	if !axes[o.AxisForward] || !axes[o.AxisUp] {
		return fmt.Errorf("%w: bad axes forward=%q up=%q", ErrInvalidOptions, o.AxisForward, o.AxisUp)
	}
	if strings.TrimPrefix(o.AxisForward, "-") == strings.TrimPrefix(o.AxisUp, "-") {
		return fmt.Errorf("%w: forward and up share axis %s", ErrInvalidOptions, o.AxisUp)
	}
	switch o.MeshSmoothType {
	case SmoothOff, SmoothFace, SmoothEdge:
	default:
		return fmt.Errorf("%w: mesh smooth type %q", ErrInvalidOptions, o.MeshSmoothType)
	}
	return nil
}
