package device

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Requirements is the minimum capability set an adapter must offer.
type Requirements struct {
	PowerPreference      gputypes.PowerPreference
	RequiredFeatures     gputypes.Features
	RequiredLimits       Limits
	ForceFallbackAdapter bool
	Label                string
}

// Limits is a floor table. A zero field is unconstrained.
type Limits struct {
	MaxTextureDimension2D       uint32
	MaxTextureArrayLayers       uint32
	MaxBindGroups               uint32
	MaxColorAttachments         uint32
	MaxVertexBuffers            uint32
	MaxVertexAttributes         uint32
	MaxBufferSize               uint64
	MaxUniformBufferBindingSize uint64
	MaxStorageBufferBindingSize uint64
}

// RequirementError lists what an adapter failed to provide.
type RequirementError struct {
	MissingFeatures []gputypes.Feature
	Limits          []LimitShortfall
}

// LimitShortfall is one limit below its floor.
type LimitShortfall struct {
	Name string
	Have uint64
	Want uint64
}

func (e *RequirementError) Error() string {
	var parts []string
	for _, f := range e.MissingFeatures {
		parts = append(parts, "missing feature "+f.String())
	}
	for _, l := range e.Limits {
		parts = append(parts, fmt.Sprintf("%s %d < %d", l.Name, l.Have, l.Want))
	}
	return "device: requirements not met: " + strings.Join(parts, ", ")
}

// check verifies features and limits against the requirements.
func (r Requirements) check(have gputypes.Features, limits gputypes.Limits) error {
	var e RequirementError
	for bit := range 64 {
		f := gputypes.Feature(uint64(1) << bit)
		if gputypes.Features(f)&r.RequiredFeatures != 0 && !have.Contains(f) {
			e.MissingFeatures = append(e.MissingFeatures, f)
		}
	}

	floor := func(name string, haveV, want uint64) {
		if want != 0 && haveV < want {
			e.Limits = append(e.Limits, LimitShortfall{Name: name, Have: haveV, Want: want})
		}
	}
	l := r.RequiredLimits
	floor("MaxTextureDimension2D", uint64(limits.MaxTextureDimension2D), uint64(l.MaxTextureDimension2D))
	floor("MaxTextureArrayLayers", uint64(limits.MaxTextureArrayLayers), uint64(l.MaxTextureArrayLayers))
	floor("MaxBindGroups", uint64(limits.MaxBindGroups), uint64(l.MaxBindGroups))
	floor("MaxColorAttachments", uint64(limits.MaxColorAttachments), uint64(l.MaxColorAttachments))
	floor("MaxVertexBuffers", uint64(limits.MaxVertexBuffers), uint64(l.MaxVertexBuffers))
	floor("MaxVertexAttributes", uint64(limits.MaxVertexAttributes), uint64(l.MaxVertexAttributes))
	floor("MaxBufferSize", limits.MaxBufferSize, l.MaxBufferSize)
	floor("MaxUniformBufferBindingSize", limits.MaxUniformBufferBindingSize, l.MaxUniformBufferBindingSize)
	floor("MaxStorageBufferBindingSize", limits.MaxStorageBufferBindingSize, l.MaxStorageBufferBindingSize)

	if len(e.MissingFeatures) == 0 && len(e.Limits) == 0 {
		return nil
	}
	return &e
}

// IsRequirementError reports whether err carries a *RequirementError.
func IsRequirementError(err error) bool {
	var re *RequirementError
	return errors.As(err, &re)
}

// Option configures Initialize.
type Option func(*options)

type options struct {
	log     *slog.Logger
	surface gpucore.Surface
}

// WithLogger sets the logger used by the Context.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithCompatibleSurface restricts adapter selection to adapters that can
// present to s.
func WithCompatibleSurface(s gpucore.Surface) Option {
	return func(o *options) {
		o.surface = s
	}
}
