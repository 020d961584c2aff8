package client

import (
	"github.com/stealthrocket/dawnwire/internal/wire"
)

// object is the state shared by every proxy.
type object struct {
	client *Client
	typ    wire.ObjectType
	handle wire.ObjectHandle
	refs   int
	// reserved is true while the server has not confirmed the creation of
	// an asynchronously created object.
	reserved bool
	// unsent is true when the command creating the object could not be
	// serialized, the server does not know about it.
	unsent bool
}

// proxy is implemented by all the client side objects.
type proxy interface {
	base() *object
}

// Handle returns the wire handle of the object.
func (o *object) Handle() wire.ObjectHandle { return o.handle }

// AddRef adds a reference to the object.
func (o *object) AddRef() { o.refs++ }

// Release drops a reference to the object. When the last reference is
// released the server is told to destroy its own object and the id is
// recycled.
func (o *object) Release() {
	if o.refs <= 0 {
		return
	}
	if o.refs--; o.refs > 0 {
		return
	}
	o.client.destroy(o)
}

// releaser is implemented by proxies holding state which must be cleaned up
// when they are destroyed.
type releaser interface {
	released()
}

type Texture struct{ object }

func (t *Texture) base() *object {
	if t == nil {
		return nil
	}
	return &t.object
}

type ShaderModule struct{ object }

func (m *ShaderModule) base() *object {
	if m == nil {
		return nil
	}
	return &m.object
}

type BindGroupLayout struct{ object }

func (l *BindGroupLayout) base() *object {
	if l == nil {
		return nil
	}
	return &l.object
}

type PipelineLayout struct{ object }

func (l *PipelineLayout) base() *object {
	if l == nil {
		return nil
	}
	return &l.object
}

type ComputePipeline struct{ object }

func (p *ComputePipeline) base() *object {
	if p == nil {
		return nil
	}
	return &p.object
}

type RenderPipeline struct{ object }

func (p *RenderPipeline) base() *object {
	if p == nil {
		return nil
	}
	return &p.object
}

type CommandBuffer struct{ object }

func (b *CommandBuffer) base() *object {
	if b == nil {
		return nil
	}
	return &b.object
}
