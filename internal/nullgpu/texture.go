package nullgpu

import (
	"math/bits"

	"github.com/gogpu/gputypes"
	"github.com/stealthrocket/dawnwire/internal/wire"
)

type Texture struct {
	resource
	label   string
	desc    wire.TextureDescriptor
	invalid bool
}

func (t *Texture) IsValid() bool { return !t.invalid }

func (d *Device) createTexture(desc *wire.TextureDescriptor) (*Texture, error) {
	t := &Texture{resource: resource{d}, label: desc.Label, desc: *desc, invalid: true}
	t.desc.ViewFormats = append([]gputypes.TextureFormat(nil), desc.ViewFormats...)
	d.created()
	if err := d.check(); err != nil {
		return t, err
	}

	size := desc.Size
	var limit uint32
	switch desc.Dimension {
	case gputypes.TextureDimension1D:
		limit = d.limits.MaxTextureDimension1D
		if size.Height != 1 || size.DepthOrArrayLayers != 1 {
			return t, d.validation("1D texture %q must have a height and depth of 1", desc.Label)
		}
	case gputypes.TextureDimension2D:
		limit = d.limits.MaxTextureDimension2D
	case gputypes.TextureDimension3D:
		limit = d.limits.MaxTextureDimension3D
	default:
		return t, d.validation("texture %q has an invalid dimension %d", desc.Label, desc.Dimension)
	}

	switch {
	case desc.Usage == gputypes.TextureUsageNone:
		return t, d.validation("texture %q has no usage", desc.Label)
	case desc.Usage.ContainsUnknownBits():
		return t, d.validation("texture %q has unknown usage bits %#x", desc.Label, uint64(desc.Usage))
	case desc.Format == gputypes.TextureFormatUndefined || desc.Format.String() == "Unknown":
		return t, d.validation("texture %q has an invalid format %d", desc.Label, desc.Format)
	case size.Width == 0 || size.Height == 0 || size.DepthOrArrayLayers == 0:
		return t, d.validation("texture %q has an empty size", desc.Label)
	case size.Width > limit || size.Height > limit:
		return t, d.validation("texture %q size %dx%d exceeds the %s limit of %d", desc.Label, size.Width, size.Height, desc.Dimension, limit)
	case desc.Dimension == gputypes.TextureDimension3D && size.DepthOrArrayLayers > limit:
		return t, d.validation("texture %q depth %d exceeds the limit of %d", desc.Label, size.DepthOrArrayLayers, limit)
	case desc.MipLevelCount == 0 || desc.MipLevelCount > maxMipLevels(desc.Dimension, size):
		return t, d.validation("texture %q has an invalid mip level count %d", desc.Label, desc.MipLevelCount)
	case desc.SampleCount != 1 && desc.SampleCount != 4:
		return t, d.validation("texture %q has an invalid sample count %d", desc.Label, desc.SampleCount)
	case desc.SampleCount == 4 && (desc.Dimension != gputypes.TextureDimension2D || desc.MipLevelCount != 1):
		return t, d.validation("multisampled texture %q must be 2D with a single mip level", desc.Label)
	case desc.Format.IsDepthStencil() && desc.Dimension != gputypes.TextureDimension2D:
		return t, d.validation("depth stencil texture %q must be 2D", desc.Label)
	}
	t.invalid = false
	return t, nil
}

func maxMipLevels(dim gputypes.TextureDimension, size gputypes.Extent3D) uint32 {
	m := max(size.Width, size.Height)
	if dim == gputypes.TextureDimension3D {
		m = max(m, size.DepthOrArrayLayers)
	}
	if dim == gputypes.TextureDimension1D {
		m = size.Width
	}
	return uint32(bits.Len32(m))
}
