// Package nullgpu is a GPU backend which validates API usage like a real
// WebGPU implementation would, and keeps buffer contents in memory, but never
// executes any shader.
//
// It serves as the backend of servers used for testing and for replaying
// wire traces. Asynchronous operations complete when the device is ticked.
package nullgpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/stealthrocket/dawnwire/internal/wire"
	"github.com/stealthrocket/dawnwire/internal/wire/server"
)

var (
	// ErrValidation is wrapped by the errors returned for invalid calls.
	ErrValidation = errors.New("validation error")
	// ErrDeviceLost is returned by calls made after the device was lost.
	ErrDeviceLost = errors.New("device lost")
)

// Limits are the resource limits enforced by a device.
type Limits struct {
	MaxBufferSize                   uint64
	MaxTextureDimension1D           uint32
	MaxTextureDimension2D           uint32
	MaxTextureDimension3D           uint32
	MaxBindGroups                   int
	MaxBindingsPerBindGroup         uint32
	MinUniformBufferOffsetAlignment uint64
}

// DefaultLimits are the limits WebGPU guarantees to every application.
var DefaultLimits = Limits{
	MaxBufferSize:                   256 << 20,
	MaxTextureDimension1D:           8192,
	MaxTextureDimension2D:           8192,
	MaxTextureDimension3D:           2048,
	MaxBindGroups:                   4,
	MaxBindingsPerBindGroup:         1000,
	MinUniformBufferOffsetAlignment: 256,
}

type errorScope struct {
	filter  wire.ErrorFilter
	errType wire.ErrorType
	message string
}

// Device is the root object of the backend.
type Device struct {
	limits    Limits
	callbacks server.DeviceCallbacks
	queue     *Queue
	scopes    []errorScope
	// pending holds the completions of asynchronous operations, run in order
	// on the next tick.
	pending []func()
	lost    bool
	live    int
}

// NewDevice creates a device enforcing the given limits.
func NewDevice(limits Limits) *Device {
	d := &Device{limits: limits}
	d.queue = &Queue{device: d}
	return d
}

// Limits returns the limits of the device.
func (d *Device) Limits() Limits { return d.limits }

// IsLost reports whether the device was lost.
func (d *Device) IsLost() bool { return d.lost }

// Live returns the number of objects created and not released yet.
func (d *Device) Live() int { return d.live }

// Pending returns the number of asynchronous operations waiting for a tick.
func (d *Device) Pending() int { return len(d.pending) }

func (d *Device) schedule(fn func()) { d.pending = append(d.pending, fn) }

// Tick runs the completions of the asynchronous operations started so far.
// Completions scheduled while ticking run on the next tick.
func (d *Device) Tick() {
	pending := d.pending
	d.pending = nil
	for _, fn := range pending {
		fn()
	}
	if n := len(pending); n > 0 {
		d.log(wire.LoggingTypeVerbose, fmt.Sprintf("completed %d asynchronous operations", n))
	}
}

// Destroy loses the device. Asynchronous operations still pending complete
// right away, with a failure.
func (d *Device) Destroy() {
	d.lose(wire.DeviceLostReasonDestroyed, "device was destroyed")
	d.Tick()
}

func (d *Device) lose(reason wire.DeviceLostReason, message string) {
	if d.lost {
		return
	}
	d.lost = true
	d.scopes = nil
	wire.Logger().Info("device lost", slog.Any("reason", reason), slog.String("message", message))
	if fn := d.callbacks.Lost; fn != nil {
		fn(reason, message)
	}
}

func (d *Device) log(t wire.LoggingType, message string) {
	if fn := d.callbacks.Logging; fn != nil {
		fn(t, message)
	}
}

// report raises an error on the device. The innermost error scope matching
// the type captures it if it has not captured one yet; errors no scope
// captures are uncaptured errors.
func (d *Device) report(t wire.ErrorType, message string) {
	if d.lost {
		return
	}
	for i := len(d.scopes) - 1; i >= 0; i-- {
		s := &d.scopes[i]
		if !s.filter.Matches(t) {
			continue
		}
		if s.errType == wire.ErrorTypeNoError {
			s.errType, s.message = t, message
		}
		return
	}
	if fn := d.callbacks.UncapturedError; fn != nil {
		fn(t, message)
	}
}

// validation reports a validation error and returns it.
func (d *Device) validation(format string, args ...any) error {
	err := fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
	d.report(wire.ErrorTypeValidation, err.Error())
	return err
}

// check returns the error of a creation made on a lost device, where objects
// are invalid but no error is reported.
func (d *Device) check() error {
	if d.lost {
		return ErrDeviceLost
	}
	return nil
}

func (d *Device) pushErrorScope(filter wire.ErrorFilter) {
	if d.lost {
		return
	}
	d.scopes = append(d.scopes, errorScope{filter: filter})
}

func (d *Device) popErrorScope(done func(server.PopErrorScopeResult)) {
	if d.lost {
		done(server.PopErrorScopeResult{Status: wire.PopErrorScopeStatusSuccess})
		return
	}
	n := len(d.scopes)
	if n == 0 {
		done(server.PopErrorScopeResult{
			Status:  wire.PopErrorScopeStatusEmptyStack,
			Message: "no error scope to pop",
		})
		return
	}
	s := d.scopes[n-1]
	d.scopes = d.scopes[:n-1]
	done(server.PopErrorScopeResult{
		Status:  wire.PopErrorScopeStatusSuccess,
		Type:    s.errType,
		Message: s.message,
	})
}

func (d *Device) injectError(t wire.ErrorType, message string) {
	switch t {
	case wire.ErrorTypeValidation, wire.ErrorTypeOutOfMemory, wire.ErrorTypeInternal:
		d.report(t, message)
	default:
		d.validation("cannot inject an error of type %s", t)
	}
}

// resource is embedded in the objects created by a device.
type resource struct{ device *Device }

func (r *resource) owner() *Device { return r.device }

func (d *Device) created() { d.live++ }

func (d *Device) released() { d.live-- }
