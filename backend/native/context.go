// Package native implements the glyph gpu interfaces on top of gogpu/wgpu's
// hardware abstraction layer. Hosts already holding a hal device and queue,
// or a gpucontext.DeviceProvider backed by one, can hand them to glyph
// through this package.
package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyph/gpu"
)

// Adapter errors.
var (
	// ErrNilDevice is returned when constructing a Context without a device.
	ErrNilDevice = errors.New("native: device is nil")

	// ErrNilQueue is returned when constructing a Context without a queue.
	ErrNilQueue = errors.New("native: queue is nil")

	// ErrUnsupportedProvider is returned when a DeviceProvider does not
	// carry hal-backed device handles.
	ErrUnsupportedProvider = errors.New("native: provider does not expose hal handles")
)

// Options tunes the context beyond its hal handles.
type Options struct {
	// Limits overrides the device limits reported to glyph.
	// Nil uses gputypes.DefaultLimits().
	Limits *gputypes.Limits
}

// Context implements gpu.Context over a hal device and queue.
// hal devices are WebGPU class, so the reported API version selects the
// modern pipeline tier.
type Context struct {
	device  device
	queue   queue
	limits  gputypes.Limits
	version gpu.APIVersion
}

var _ gpu.Context = (*Context)(nil)

// New wraps a hal device and queue. opts may be nil.
func New(dev hal.Device, q hal.Queue, opts *Options) (*Context, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if q == nil {
		return nil, ErrNilQueue
	}

	limits := gputypes.DefaultLimits()
	if opts != nil && opts.Limits != nil {
		limits = *opts.Limits
	}

	return &Context{
		device:  device{hal: dev},
		queue:   queue{hal: q},
		limits:  limits,
		version: gpu.APIVersion{Major: 3},
	}, nil
}

// FromProvider wraps the hal handles carried by a gpucontext.DeviceProvider.
// The provider's device and queue must be hal-backed; integration layers
// built on other backends cannot drive this adapter.
func FromProvider(p gpucontext.DeviceProvider, opts *Options) (*Context, error) {
	if p == nil {
		return nil, ErrNilDevice
	}

	dev, ok := p.Device().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: device is %T", ErrUnsupportedProvider, p.Device())
	}
	q, ok := p.Queue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: queue is %T", ErrUnsupportedProvider, p.Queue())
	}
	return New(dev, q, opts)
}

// Device implements gpu.Context.
func (c *Context) Device() gpu.Device { return &c.device }

// Queue implements gpu.Context.
func (c *Context) Queue() gpu.Queue { return &c.queue }

// APIVersion implements gpu.Context.
func (c *Context) APIVersion() gpu.APIVersion { return c.version }

// Limits implements gpu.Context.
func (c *Context) Limits() gputypes.Limits { return c.limits }

// Resource wrappers pairing the opaque glyph handles with hal objects.
type (
	texture struct {
		gpu.ResourceBase
		hal hal.Texture
	}
	textureView struct {
		gpu.ResourceBase
		hal hal.TextureView
	}
	buffer struct {
		gpu.ResourceBase
		hal hal.Buffer
	}
	shaderModule struct {
		gpu.ResourceBase
		hal hal.ShaderModule
	}
	sampler struct {
		gpu.ResourceBase
		hal hal.Sampler
	}
	bindGroupLayout struct {
		gpu.ResourceBase
		hal hal.BindGroupLayout
	}
	pipelineLayout struct {
		gpu.ResourceBase
		hal hal.PipelineLayout
	}
	bindGroup struct {
		gpu.ResourceBase
		hal hal.BindGroup
	}
	renderPipeline struct {
		gpu.ResourceBase
		hal hal.RenderPipeline
	}
)
