package wire

import "fmt"

// SlotState is the state of an entry of an ObjectTable.
type SlotState uint8

const (
	SlotFree SlotState = iota
	// SlotReserved is an id handed out for an object whose creation has not
	// completed yet. References to reserved ids do not resolve.
	SlotReserved
	SlotAllocated
	// SlotError is a tombstone for an object whose creation failed. It still
	// resolves, to ErrorObject.
	SlotError
)

func (s SlotState) String() string {
	switch s {
	case SlotFree:
		return "free"
	case SlotReserved:
		return "reserved"
	case SlotAllocated:
		return "allocated"
	case SlotError:
		return "error"
	default:
		return fmt.Sprintf("SlotState(%d)", uint8(s))
	}
}

// DefaultMaxIDGap bounds how far ahead of the table end a peer may allocate
// ids on a server side table.
const DefaultMaxIDGap = 1024

type slot[T any] struct {
	value      T
	generation uint32
	state      SlotState
	used       bool
}

// ObjectTable maps object ids to values of type T.
//
// Client side tables pick ids themselves with Allocate and Reserve, recycling
// freed ids through a free list and bumping their generation on every reuse.
// Server side tables are filled with AllocateAt and ReserveAt, using the
// handles chosen by the client, and validate that every handle is fresh.
//
// Id 0 is never handed out: it is the null reference.
//
// Tables are not safe for concurrent use.
type ObjectTable[T any] struct {
	slots    []slot[T]
	free     []uint32
	maxIDGap int
	recycle  bool
	live     int
}

// NewObjectTable returns a table handing out its own ids.
func NewObjectTable[T any]() *ObjectTable[T] {
	return &ObjectTable[T]{slots: make([]slot[T], 1), recycle: true}
}

// NewKnownObjects returns a table whose ids are chosen by the peer, which may
// allocate at most maxIDGap ids past the current end of the table.
func NewKnownObjects[T any](maxIDGap int) *ObjectTable[T] {
	if maxIDGap <= 0 {
		maxIDGap = DefaultMaxIDGap
	}
	return &ObjectTable[T]{slots: make([]slot[T], 1), maxIDGap: maxIDGap}
}

// Len returns the number of ids in use, reserved and error slots included.
func (t *ObjectTable[T]) Len() int { return t.live }

// Reserve picks an id for an object that does not exist yet.
func (t *ObjectTable[T]) Reserve() ObjectHandle {
	var id uint32
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		id = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{})
	}
	s := &t.slots[id]
	s.state, s.used = SlotReserved, true
	t.live++
	return ObjectHandle{ID: id, Generation: s.generation}
}

// Allocate picks an id for v.
func (t *ObjectTable[T]) Allocate(v T) ObjectHandle {
	h := t.Reserve()
	t.slots[h.ID].value = v
	t.slots[h.ID].state = SlotAllocated
	return h
}

// ReserveAt reserves the slot designated by h, which must be free and carry a
// generation newer than any previous use of the slot.
func (t *ObjectTable[T]) ReserveAt(h ObjectHandle) error {
	if h.IsNull() {
		return ErrNullObject
	}
	if int(h.ID) >= len(t.slots) {
		if t.maxIDGap > 0 && int(h.ID) > len(t.slots)+t.maxIDGap {
			return fmt.Errorf("%w: %s is too far past the %d known ids", ErrIDOutOfRange, h, len(t.slots))
		}
		t.slots = append(t.slots, make([]slot[T], int(h.ID)+1-len(t.slots))...)
	}
	s := &t.slots[h.ID]
	if s.state != SlotFree {
		return fmt.Errorf("%w: %s is %s", ErrObjectExists, h, s.state)
	}
	if s.used && h.Generation <= s.generation {
		return fmt.Errorf("%w: %s reuses generation %d", ErrStaleGeneration, h, s.generation)
	}
	s.generation, s.state, s.used = h.Generation, SlotReserved, true
	t.live++
	return nil
}

// AllocateAt stores v in the slot designated by h, with the same constraints
// as ReserveAt.
func (t *ObjectTable[T]) AllocateAt(h ObjectHandle, v T) error {
	if err := t.ReserveAt(h); err != nil {
		return err
	}
	t.slots[h.ID].value = v
	t.slots[h.ID].state = SlotAllocated
	return nil
}

// FillReservation attaches v to a reserved id, making it resolvable.
func (t *ObjectTable[T]) FillReservation(id uint32, v T) error {
	s, err := t.slotAt(id)
	if err != nil {
		return err
	}
	if s.state != SlotReserved {
		return fmt.Errorf("%w: id %d is %s, not reserved", ErrUnknownObject, id, s.state)
	}
	s.value, s.state = v, SlotAllocated
	return nil
}

// MarkError turns a reserved or allocated slot into an error tombstone
// holding v.
func (t *ObjectTable[T]) MarkError(id uint32, v T) error {
	s, err := t.slotAt(id)
	if err != nil {
		return err
	}
	if s.state != SlotReserved && s.state != SlotAllocated {
		return fmt.Errorf("%w: id %d is %s", ErrUnknownObject, id, s.state)
	}
	s.value, s.state = v, SlotError
	return nil
}

// Free releases the slot. On client side tables the id is recycled with the
// next generation.
func (t *ObjectTable[T]) Free(id uint32) error {
	s, err := t.slotAt(id)
	if err != nil {
		return err
	}
	if s.state == SlotFree {
		return fmt.Errorf("%w: id %d is already free", ErrUnknownObject, id)
	}
	var zero T
	s.value, s.state = zero, SlotFree
	t.live--
	if t.recycle {
		s.generation++
		t.free = append(t.free, id)
	}
	return nil
}

func (t *ObjectTable[T]) slotAt(id uint32) (*slot[T], error) {
	if id == 0 {
		return nil, ErrNullObject
	}
	if int(id) >= len(t.slots) {
		return nil, fmt.Errorf("%w: id %d", ErrIDOutOfRange, id)
	}
	return &t.slots[id], nil
}

// Get resolves h. The value is returned along with ErrErrorObject for error
// tombstones; any other error means h is invalid.
func (t *ObjectTable[T]) Get(h ObjectHandle) (T, error) {
	var zero T
	s, err := t.slotAt(h.ID)
	if err != nil {
		return zero, err
	}
	switch {
	case s.state == SlotFree:
		return zero, fmt.Errorf("%w: %s is free", ErrUnknownObject, h)
	case s.generation != h.Generation:
		return zero, fmt.Errorf("%w: %s, current generation is %d", ErrStaleGeneration, h, s.generation)
	case s.state == SlotReserved:
		return zero, fmt.Errorf("%w: %s", ErrReservedObject, h)
	case s.state == SlotError:
		return s.value, ErrErrorObject
	default:
		return s.value, nil
	}
}

// GetFromID resolves h to Success, ErrorObject or FatalError.
func (t *ObjectTable[T]) GetFromID(h ObjectHandle) (T, Result) {
	v, err := t.Get(h)
	return v, ResultOf(err)
}

// State returns the state of the slot at id and its current handle.
func (t *ObjectTable[T]) State(id uint32) (ObjectHandle, SlotState) {
	if id == 0 || int(id) >= len(t.slots) {
		return ObjectHandle{ID: id}, SlotFree
	}
	s := &t.slots[id]
	return ObjectHandle{ID: id, Generation: s.generation}, s.state
}

// Range calls fn for every slot in use, in id order, until fn returns false.
func (t *ObjectTable[T]) Range(fn func(ObjectHandle, T, SlotState) bool) {
	for id := 1; id < len(t.slots); id++ {
		s := &t.slots[id]
		if s.state == SlotFree {
			continue
		}
		if !fn(ObjectHandle{ID: uint32(id), Generation: s.generation}, s.value, s.state) {
			return
		}
	}
}
