package client

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Future is the result of an asynchronous call. It completes exactly once:
// with the peer's answer, or with an InstanceDropped status when the client
// disconnects first.
//
// Futures are completed from the goroutine driving the client, see Client.
type Future[R any] struct {
	done     bool
	result   R
	handlers []func(R)
}

func completed[R any](r R) *Future[R] {
	return &Future[R]{done: true, result: r}
}

// Done reports whether the future has completed.
func (f *Future[R]) Done() bool { return f.done }

// Result returns the result of the future, which is the zero value of R
// until Done returns true.
func (f *Future[R]) Result() R { return f.result }

// OnComplete registers fn to be called with the result. fn is called
// immediately if the future has already completed.
func (f *Future[R]) OnComplete(fn func(R)) {
	if f.done {
		fn(f.result)
		return
	}
	f.handlers = append(f.handlers, fn)
}

func (f *Future[R]) complete(r R) bool {
	if f.done {
		return false
	}
	f.done, f.result = true, r
	handlers := f.handlers
	f.handlers = nil
	for _, fn := range handlers {
		fn(r)
	}
	return true
}

// tracker holds the requests of one kind waiting for a completion from the
// server, keyed by request serial.
type tracker[R any] struct {
	pending   map[uint64]R
	cancelled map[uint64]struct{}
}

func (t *tracker[R]) add(serial uint64, r R) {
	if t.pending == nil {
		t.pending = make(map[uint64]R)
	}
	t.pending[serial] = r
}

// take removes the request with the given serial. The second return value
// is false if there was none; cancelled then reports whether the serial was
// cancelled locally, in which case a late completion is expected.
func (t *tracker[R]) take(serial uint64) (r R, ok, cancelled bool) {
	if r, ok = t.pending[serial]; ok {
		delete(t.pending, serial)
		return r, true, false
	}
	if _, cancelled = t.cancelled[serial]; cancelled {
		delete(t.cancelled, serial)
	}
	return r, false, cancelled
}

// cancel removes a request that was completed locally and remembers its
// serial so the completion the server still sends is dropped.
func (t *tracker[R]) cancel(serial uint64) (r R, ok bool) {
	if r, ok = t.pending[serial]; ok {
		delete(t.pending, serial)
		if t.cancelled == nil {
			t.cancelled = make(map[uint64]struct{})
		}
		t.cancelled[serial] = struct{}{}
	}
	return r, ok
}

// drain removes every pending request and returns them in serial order.
func (t *tracker[R]) drain() []R {
	serials := maps.Keys(t.pending)
	slices.Sort(serials)
	requests := make([]R, len(serials))
	for i, serial := range serials {
		requests[i] = t.pending[serial]
	}
	t.pending, t.cancelled = nil, nil
	return requests
}

func (t *tracker[R]) len() int { return len(t.pending) }
