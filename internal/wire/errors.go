package wire

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrErrorObject is reported when a command references an error object.
	// It is not fatal, the command is still forwarded to the backend.
	ErrErrorObject = errors.New("wire: reference to an error object")

	ErrNullObject      = errors.New("wire: null object reference")
	ErrUnknownObject   = errors.New("wire: reference to an unknown object")
	ErrStaleGeneration = errors.New("wire: reference to a stale object generation")
	ErrReservedObject  = errors.New("wire: reference to an object that is still reserved")
	ErrObjectExists    = errors.New("wire: object id already in use")
	ErrIDOutOfRange    = errors.New("wire: object id out of range")

	// ErrShortCommand is returned by command handlers when the input ends in
	// the middle of a command. It is not fatal: the caller is expected to call
	// again with the rest of the command appended.
	ErrShortCommand = errors.New("wire: not enough data to decode the next command")

	ErrUnknownCommand   = errors.New("wire: unknown command")
	ErrUnexpectedCmd    = errors.New("wire: unexpected command id")
	ErrMalformedCommand = errors.New("wire: malformed command")
	ErrSizeMismatch     = errors.New("wire: command size mismatch")
	ErrCommandTooLarge  = errors.New("wire: command exceeds the maximum allocation size")

	// ErrDisconnected is returned by serializers once the connection has been
	// torn down.
	ErrDisconnected = errors.New("wire: disconnected")
)

// ProtocolError is a fatal error raised while decoding or dispatching a
// command. A connection that observed a ProtocolError cannot be used anymore.
type ProtocolError struct {
	Command uint32
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wire: protocol error in %s: %v", CommandName(e.Command), e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ResultOf maps an error to the Result it represents.
func ResultOf(err error) Result {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrErrorObject):
		return ErrorObject
	default:
		return FatalError
	}
}

// IsShortBuffer reports whether err indicates truncated input.
func IsShortBuffer(err error) bool {
	return errors.Is(err, io.ErrShortBuffer) || errors.Is(err, ErrShortCommand)
}
