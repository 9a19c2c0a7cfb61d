package native

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fons"
	"github.com/gogpu/fons/gpucore"
)

// ErrNilHALDevice is returned when creating a texture without a hal device.
var ErrNilHALDevice = errors.New("native: HAL device is nil")

// halTexture is a live texture and its upload bookkeeping.
type halTexture struct {
	tex    hal.Texture
	desc   gpucore.TextureDesc
	writes int
}

// Stats is a snapshot of HALDevice resource counters.
type Stats struct {
	// Live is the number of textures currently allocated.
	Live int

	// Creates, Destroys and Writes count operations since creation.
	Creates  int
	Destroys int
	Writes   int
}

// HALDevice implements gpucore.Device using gogpu/wgpu/hal directly.
//
// HALDevice is safe for concurrent use from multiple goroutines.
type HALDevice struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	// nextID starts at 1; gpucore.InvalidID is never issued.
	nextID   gpucore.TextureID
	textures map[gpucore.TextureID]*halTexture

	stats Stats
}

var _ gpucore.Device = (*HALDevice)(nil)

// NewHALDevice creates a HALDevice wrapping the given device and queue.
func NewHALDevice(device hal.Device, queue hal.Queue) *HALDevice {
	return &HALDevice{
		device:   device,
		queue:    queue,
		nextID:   1,
		textures: make(map[gpucore.TextureID]*halTexture),
	}
}

// convertFormat maps a gpucore format to the hal format.
func convertFormat(f gpucore.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gpucore.TextureFormatR8Unorm:
		return gputypes.TextureFormatR8Unorm
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// CreateTexture creates a sampled 2D texture that accepts queue uploads.
func (d *HALDevice) CreateTexture(desc gpucore.TextureDesc) (gpucore.TextureID, error) {
	if err := desc.Validate(); err != nil {
		return gpucore.InvalidID, err
	}
	if d.device == nil {
		return gpucore.InvalidID, ErrNilHALDevice
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1}, //nolint:gosec // validated positive
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        convertFormat(desc.PixelFormat()),
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: failed to create %dx%d texture: %w", desc.Width, desc.Height, err)
	}

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.textures[id] = &halTexture{tex: tex, desc: desc}
	d.stats.Creates++
	d.stats.Live = len(d.textures)
	d.mu.Unlock()

	fons.Logger().Debug("native: texture created", "id", uint64(id),
		"width", desc.Width, "height", desc.Height, "format", desc.PixelFormat().String(),
		"usage", desc.Usage.String())
	return id, nil
}

// DestroyTexture releases a texture. Unknown IDs are ignored.
func (d *HALDevice) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	t, ok := d.textures[id]
	if ok {
		delete(d.textures, id)
		d.stats.Destroys++
		d.stats.Live = len(d.textures)
	}
	d.mu.Unlock()

	if ok {
		d.device.DestroyTexture(t.tex)
		fons.Logger().Debug("native: texture destroyed", "id", uint64(id))
	}
}

// WriteTexture replaces the full content of a texture. data must hold
// exactly width*height pixels in the texture format. Immutable textures
// accept a single write.
func (d *HALDevice) WriteTexture(id gpucore.TextureID, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", gpucore.ErrUnknownTexture, uint64(id))
	}
	if len(data) != t.desc.ByteSize() {
		return fmt.Errorf("%w: got %d bytes, want %d", gpucore.ErrDataSize, len(data), t.desc.ByteSize())
	}
	if t.desc.Usage == gpucore.UsageImmutable && t.writes > 0 {
		return fmt.Errorf("%w: %d", gpucore.ErrImmutable, uint64(id))
	}

	//nolint:gosec // dimensions were validated positive at creation
	w, h := uint32(t.desc.Width), uint32(t.desc.Height)
	bpp := uint32(t.desc.PixelFormat().BytesPerPixel())

	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * bpp,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	t.writes++
	d.stats.Writes++
	return nil
}

// Stats returns the current resource counters.
func (d *HALDevice) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Close destroys every live texture. The hal device itself is owned by the
// caller and stays open.
func (d *HALDevice) Close() {
	d.mu.Lock()
	textures := d.textures
	d.textures = make(map[gpucore.TextureID]*halTexture)
	d.stats.Destroys += len(textures)
	d.stats.Live = 0
	d.mu.Unlock()

	for _, t := range textures {
		d.device.DestroyTexture(t.tex)
	}
}
