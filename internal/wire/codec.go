package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Alignment is the alignment of every command and of every variable
	// length member within a command.
	Alignment = 8

	// HeaderSize is the size of the {size, id} header of each command.
	HeaderSize = 8
)

// Align rounds n up to the wire alignment.
func Align(n int) int {
	return (n + (Alignment - 1)) &^ (Alignment - 1)
}

var zeros [Alignment]byte

func appendU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func readU32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, b, io.ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(b), b[4:], nil
}

func appendU64(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

func readU64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, b, io.ErrShortBuffer
	}
	return binary.LittleEndian.Uint64(b), b[8:], nil
}

func appendHandle(b []byte, h ObjectHandle) []byte {
	b = appendU32(b, h.ID)
	return appendU32(b, h.Generation)
}

func readHandle(b []byte) (h ObjectHandle, _ []byte, err error) {
	if h.ID, b, err = readU32(b); err != nil {
		return
	}
	h.Generation, b, err = readU32(b)
	return h, b, err
}

func appendHeader(b []byte, size int, id uint32) []byte {
	b = appendU32(b, uint32(size))
	return appendU32(b, id)
}

// NextCommand splits the command at the front of b from the bytes following
// it. It returns ErrShortCommand if b does not hold a complete command yet,
// and ErrMalformedCommand if the header is invalid.
func NextCommand(b []byte) (id uint32, cmd, rest []byte, err error) {
	if len(b) < HeaderSize {
		return 0, nil, b, ErrShortCommand
	}
	size := binary.LittleEndian.Uint32(b[0:])
	id = binary.LittleEndian.Uint32(b[4:])
	if size < HeaderSize || size%Alignment != 0 {
		return id, nil, b, fmt.Errorf("%w: invalid command size %d", ErrMalformedCommand, size)
	}
	if uint64(size) > uint64(len(b)) {
		return id, nil, b, ErrShortCommand
	}
	return id, b[:size], b[size:], nil
}

// PeekCommandSize returns the size of the command at the front of b, or zero
// if b does not hold a full header.
func PeekCommandSize(b []byte) int {
	if len(b) < HeaderSize {
		return 0
	}
	return int(binary.LittleEndian.Uint32(b))
}

// walker visits the members of a command in wire order. The sizer, encoder
// and decoder implementations let RequiredSize, Serialize and Deserialize
// share a single description of each command.
//
// Members are visited in two phases: the fixed fields of a struct first, then
// the variable length members scheduled with trailing, see walkStruct.
type walker interface {
	decoding() bool
	ok() bool
	fail(err error)

	u32(*uint32)
	u64(*uint64)
	f64(*float64)
	boolean(*bool)
	handle(*ObjectHandle)
	object(t ObjectType, v *Object)
	optionalObject(t ObjectType, v *Object)
	str(*string)
	data(*[]byte)
	optionalData(*[]byte)

	// count visits the length of an array whose elements occupy at least
	// four bytes each on the wire.
	count(n int) int
	// present visits the discriminator of an optional member.
	present(p bool) bool

	trailing(fn func(walker))
	swap(items []func(walker)) []func(walker)
	pad()
	remaining() int
	skip(n int)
}

// walkStruct visits the fixed members of a struct, aligns, and then visits
// the variable length members it scheduled, in order.
func walkStruct(w walker, fn func(walker)) {
	saved := w.swap(nil)
	fn(w)
	w.pad()
	items := w.swap(saved)
	for _, item := range items {
		if !w.ok() {
			return
		}
		item(w)
	}
}

type phase struct {
	items []func(walker)
}

func (p *phase) trailing(fn func(walker)) { p.items = append(p.items, fn) }

func (p *phase) swap(items []func(walker)) []func(walker) {
	prev := p.items
	p.items = items
	return prev
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// enum visits an enumeration, encoded on 32 bits.
func enum[T integer](w walker, v *T) {
	x := uint32(*v)
	w.u32(&x)
	*v = T(x)
}

// flags visits a bit set, encoded on 64 bits.
func flags[T integer](w walker, v *T) {
	x := uint64(*v)
	w.u64(&x)
	*v = T(x)
}

// slice visits an array of structs. The fixed parts of the elements are laid
// out back to back in the trailing data of the parent, followed by the
// variable length members of every element.
func slice[T any](w walker, s *[]T, elem func(*T, walker)) {
	n := w.count(len(*s))
	if !w.ok() {
		return
	}
	w.trailing(func(w walker) {
		if w.decoding() {
			if n == 0 {
				*s = nil
				return
			}
			*s = make([]T, n)
		}
		items := *s
		walkStruct(w, func(w walker) {
			for i := range items {
				elem(&items[i], w)
			}
		})
	})
}

// optional visits a struct pointer which may be nil. Present structs are laid
// out in the trailing data of the parent.
func optional[T any](w walker, p **T, fn func(*T, walker)) {
	if !w.present(*p != nil) {
		if w.decoding() {
			*p = nil
		}
		return
	}
	w.trailing(func(w walker) {
		if w.decoding() {
			*p = new(T)
		}
		v := *p
		walkStruct(w, func(w walker) { fn(v, w) })
	})
}

func objects(w walker, t ObjectType, s *[]Object) {
	slice(w, s, func(v *Object, w walker) { w.object(t, v) })
}

func words(w walker, s *[]uint32) {
	slice(w, s, func(v *uint32, w walker) { w.u32(v) })
}

// sizer computes the size of a command.
type sizer struct {
	phase
	n int
}

func (s *sizer) decoding() bool                     { return false }
func (s *sizer) ok() bool                           { return true }
func (s *sizer) fail(error)                         {}
func (s *sizer) u32(*uint32)                        { s.n += 4 }
func (s *sizer) u64(*uint64)                        { s.n += 8 }
func (s *sizer) f64(*float64)                       { s.n += 8 }
func (s *sizer) boolean(*bool)                      { s.n += 4 }
func (s *sizer) handle(*ObjectHandle)               { s.n += 8 }
func (s *sizer) object(ObjectType, *Object)         { s.n += 8 }
func (s *sizer) optionalObject(ObjectType, *Object) { s.n += 8 }
func (s *sizer) pad()                               { s.n = Align(s.n) }
func (s *sizer) remaining() int                     { return 0 }
func (s *sizer) skip(n int)                         { s.n += n }

func (s *sizer) count(n int) int {
	s.n += 4
	return n
}

func (s *sizer) present(p bool) bool {
	s.n += 4
	return p
}

func (s *sizer) payload(n int) {
	s.n += n
	s.pad()
}

func (s *sizer) str(v *string) {
	s.n += 4
	length := len(*v)
	s.trailing(func(walker) { s.payload(length) })
}

func (s *sizer) data(v *[]byte) {
	s.n += 4
	length := len(*v)
	s.trailing(func(walker) { s.payload(length) })
}

func (s *sizer) optionalData(v *[]byte) {
	s.n += 8
	if *v != nil {
		length := len(*v)
		s.trailing(func(walker) { s.payload(length) })
	}
}

// encoder serializes a command in place.
type encoder struct {
	phase
	buf []byte
	ids ObjectIDProvider
	err error
}

func (e *encoder) decoding() bool { return false }
func (e *encoder) ok() bool       { return e.err == nil }

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) u32(v *uint32) { e.buf = appendU32(e.buf, *v) }
func (e *encoder) u64(v *uint64) { e.buf = appendU64(e.buf, *v) }

func (e *encoder) f64(v *float64) {
	e.buf = appendU64(e.buf, math.Float64bits(*v))
}

func (e *encoder) boolean(v *bool) {
	var x uint32
	if *v {
		x = 1
	}
	e.buf = appendU32(e.buf, x)
}

func (e *encoder) handle(v *ObjectHandle) { e.buf = appendHandle(e.buf, *v) }

func (e *encoder) object(t ObjectType, v *Object) {
	h, err := e.ids.GetID(t, *v)
	if err != nil {
		e.fail(err)
	}
	e.buf = appendHandle(e.buf, h)
}

func (e *encoder) optionalObject(t ObjectType, v *Object) {
	h, err := e.ids.GetOptionalID(t, *v)
	if err != nil {
		e.fail(err)
	}
	e.buf = appendHandle(e.buf, h)
}

func (e *encoder) str(v *string) {
	s := *v
	e.buf = appendU32(e.buf, uint32(len(s)))
	e.trailing(func(walker) { e.raw([]byte(s)) })
}

func (e *encoder) data(v *[]byte) {
	b := *v
	e.buf = appendU32(e.buf, uint32(len(b)))
	e.trailing(func(walker) { e.raw(b) })
}

func (e *encoder) optionalData(v *[]byte) {
	b := *v
	p := b != nil
	e.boolean(&p)
	e.buf = appendU32(e.buf, uint32(len(b)))
	if p {
		e.trailing(func(walker) { e.raw(b) })
	}
}

func (e *encoder) raw(b []byte) {
	e.buf = append(e.buf, b...)
	e.pad()
}

func (e *encoder) count(n int) int {
	e.buf = appendU32(e.buf, uint32(n))
	return n
}

func (e *encoder) present(p bool) bool {
	e.boolean(&p)
	return p
}

func (e *encoder) pad() {
	e.buf = append(e.buf, zeros[:Align(len(e.buf))-len(e.buf)]...)
}

func (e *encoder) remaining() int { return 0 }

func (e *encoder) skip(n int) {
	for ; n > len(zeros); n -= len(zeros) {
		e.buf = append(e.buf, zeros[:]...)
	}
	e.buf = append(e.buf, zeros[:n]...)
}

// decoder deserializes a command. Once an error occurred, every subsequent
// visit is a no-op.
type decoder struct {
	phase
	cmd         []byte
	buf         []byte
	alloc       Allocator
	ids         ObjectIDResolver
	err         error
	errorObject bool
}

func (d *decoder) decoding() bool { return true }
func (d *decoder) ok() bool       { return d.err == nil }

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) u32(v *uint32) {
	if d.err == nil {
		*v, d.buf, d.err = readU32(d.buf)
	}
}

func (d *decoder) u64(v *uint64) {
	if d.err == nil {
		*v, d.buf, d.err = readU64(d.buf)
	}
}

func (d *decoder) f64(v *float64) {
	var x uint64
	d.u64(&x)
	*v = math.Float64frombits(x)
}

func (d *decoder) boolean(v *bool) {
	var x uint32
	d.u32(&x)
	if x > 1 {
		d.fail(fmt.Errorf("%w: invalid boolean value %d", ErrMalformedCommand, x))
	}
	*v = x == 1
}

func (d *decoder) handle(v *ObjectHandle) {
	if d.err == nil {
		*v, d.buf, d.err = readHandle(d.buf)
	}
}

func (d *decoder) object(t ObjectType, v *Object) {
	d.resolve(t, v, d.ids.GetFromID)
}

func (d *decoder) optionalObject(t ObjectType, v *Object) {
	d.resolve(t, v, d.ids.GetOptionalFromID)
}

func (d *decoder) resolve(t ObjectType, v *Object, get func(ObjectType, ObjectHandle) (Object, Result)) {
	var h ObjectHandle
	if d.handle(&h); d.err != nil {
		return
	}
	obj, res := get(t, h)
	switch res {
	case Success:
	case ErrorObject:
		d.errorObject = true
	default:
		d.fail(fmt.Errorf("%w: %s %s", ErrUnknownObject, t, h))
		return
	}
	*v = obj
}

// take consumes n bytes of trailing data, with their padding.
func (d *decoder) take(n uint32) []byte {
	if d.err != nil {
		return nil
	}
	if uint64(n) > uint64(len(d.buf)) {
		d.fail(fmt.Errorf("%w: %d bytes payload in %d bytes", io.ErrShortBuffer, n, len(d.buf)))
		return nil
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	d.pad()
	return b
}

func (d *decoder) str(v *string) {
	var n uint32
	if d.u32(&n); d.err != nil {
		return
	}
	d.trailing(func(walker) {
		if b := d.take(n); d.err == nil {
			*v = string(b)
		}
	})
}

func (d *decoder) data(v *[]byte) {
	var n uint32
	if d.u32(&n); d.err != nil {
		return
	}
	if n == 0 {
		*v = nil
		return
	}
	d.trailing(func(walker) { d.copyData(v, n) })
}

func (d *decoder) optionalData(v *[]byte) {
	var p bool
	var n uint32
	d.boolean(&p)
	d.u32(&n)
	switch {
	case d.err != nil:
	case !p && n != 0:
		d.fail(fmt.Errorf("%w: absent payload with length %d", ErrMalformedCommand, n))
	case !p:
		*v = nil
	case n == 0:
		*v = []byte{}
	default:
		d.trailing(func(walker) { d.copyData(v, n) })
	}
}

func (d *decoder) copyData(v *[]byte, n uint32) {
	b := d.take(n)
	if d.err != nil {
		return
	}
	out := d.alloc.Alloc(int(n))
	copy(out, b)
	*v = out
}

func (d *decoder) count(int) int {
	var n uint32
	if d.u32(&n); d.err != nil {
		return 0
	}
	if uint64(n)*4 > uint64(len(d.buf)) {
		d.fail(fmt.Errorf("%w: array of %d elements in %d bytes", io.ErrShortBuffer, n, len(d.buf)))
		return 0
	}
	return int(n)
}

func (d *decoder) present(bool) bool {
	var p bool
	d.boolean(&p)
	return p && d.err == nil
}

func (d *decoder) pad() {
	if d.err != nil {
		return
	}
	off := len(d.cmd) - len(d.buf)
	d.skip(Align(off) - off)
}

func (d *decoder) remaining() int { return len(d.buf) }

func (d *decoder) skip(n int) {
	if d.err != nil {
		return
	}
	if n < 0 || n > len(d.buf) {
		d.fail(fmt.Errorf("%w: cannot skip %d bytes", io.ErrShortBuffer, n))
		return
	}
	d.buf = d.buf[n:]
}

// walkable is implemented by every command and struct type.
type walkable interface {
	walk(walker)
}

type command interface {
	walkable
	ID() uint32
}

func requiredSize(c command) int {
	s := &sizer{n: HeaderSize}
	walkStruct(s, c.walk)
	return s.n
}

func serialize(c command, buf []byte, ids ObjectIDProvider) error {
	e := &encoder{buf: buf[:0:len(buf)], ids: ids}
	e.buf = appendHeader(e.buf, len(buf), c.ID())
	walkStruct(e, c.walk)
	if e.err != nil {
		return e.err
	}
	if len(e.buf) != len(buf) {
		return fmt.Errorf("%w: %s wrote %d bytes in a buffer of %d bytes",
			ErrSizeMismatch, CommandName(c.ID()), len(e.buf), len(buf))
	}
	return nil
}

// deserialize decodes buf into a fresh command value and only assigns it to c
// when decoding succeeded, so a failed decode never leaves c half updated.
func deserialize[T any, P interface {
	*T
	command
}](c P, buf []byte, alloc Allocator, ids ObjectIDResolver) ([]byte, error) {
	id, cmd, rest, err := NextCommand(buf)
	if err != nil {
		if errors.Is(err, ErrShortCommand) {
			err = fmt.Errorf("%w: %v", io.ErrShortBuffer, err)
		}
		return buf, err
	}
	if id != c.ID() {
		return buf, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedCmd, CommandName(id), CommandName(c.ID()))
	}
	var tmp T
	d := &decoder{cmd: cmd, buf: cmd[HeaderSize:], alloc: alloc, ids: ids}
	walkStruct(d, P(&tmp).walk)
	if d.err != nil {
		return buf, d.err
	}
	if len(d.buf) != 0 {
		return buf, fmt.Errorf("%w: %d unread bytes after %s", ErrSizeMismatch, len(d.buf), CommandName(id))
	}
	*c = tmp
	if d.errorObject {
		return rest, ErrErrorObject
	}
	return rest, nil
}
