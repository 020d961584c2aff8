package wire

import "fmt"

// CommandSerializer is the sending half of a connection.
//
// GetCmdSpace returns a region of exactly size bytes that the caller
// serializes a command into, in place. Regions are handed to the peer in the
// order they were obtained, the next time Flush is called (or earlier if the
// serializer runs out of space).
type CommandSerializer interface {
	GetCmdSpace(size int) ([]byte, error)
	Flush() error
	// MaximumAllocationSize is the largest size GetCmdSpace accepts.
	MaximumAllocationSize() int
}

// CommandHandler is the receiving half of a connection.
//
// HandleCommands processes the commands at the front of b and returns the
// number of bytes consumed. When b ends in the middle of a command, the
// complete commands before it are processed and ErrShortCommand is returned;
// the caller must present the remaining bytes again once more data arrived.
// Any other error is fatal.
type CommandHandler interface {
	HandleCommands(b []byte) (int, error)
}

// CommandHandlerFunc adapts a function to the CommandHandler interface.
type CommandHandlerFunc func([]byte) (int, error)

func (f CommandHandlerFunc) HandleCommands(b []byte) (int, error) { return f(b) }

// NoopSerializer is the serializer of a disconnected client: every
// allocation fails with ErrDisconnected and flushing does nothing.
type NoopSerializer struct{}

func (NoopSerializer) GetCmdSpace(int) ([]byte, error) { return nil, ErrDisconnected }
func (NoopSerializer) Flush() error                    { return nil }
func (NoopSerializer) MaximumAllocationSize() int      { return 0 }

// SerializeTo serializes cmd into space obtained from s.
//
// Object references are translated before any space is requested, so a
// command referencing an object the provider refuses never leaves a partial
// command in the stream.
func SerializeTo(s CommandSerializer, cmd Command, ids ObjectIDProvider) error {
	size, err := checkCommand(cmd, ids)
	if err != nil {
		return err
	}
	if limit := s.MaximumAllocationSize(); limit > 0 && size > limit {
		return fmt.Errorf("%w: %s needs %d bytes, the limit is %d",
			ErrCommandTooLarge, CommandName(cmd.ID()), size, limit)
	}
	buf, err := s.GetCmdSpace(size)
	if err != nil {
		return err
	}
	return cmd.Serialize(buf, ids)
}

// checker computes the size of a command and verifies that every object it
// references can be translated.
type checker struct {
	sizer
	ids ObjectIDProvider
	err error
}

func (c *checker) ok() bool { return c.err == nil }

func (c *checker) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *checker) object(t ObjectType, v *Object) {
	c.sizer.object(t, v)
	if _, err := c.ids.GetID(t, *v); err != nil {
		c.fail(err)
	}
}

func (c *checker) optionalObject(t ObjectType, v *Object) {
	c.sizer.optionalObject(t, v)
	if _, err := c.ids.GetOptionalID(t, *v); err != nil {
		c.fail(err)
	}
}

func checkCommand(cmd Command, ids ObjectIDProvider) (int, error) {
	c, ok := cmd.(command)
	if !ok {
		return cmd.RequiredSize(), nil
	}
	k := &checker{sizer: sizer{n: HeaderSize}, ids: ids}
	walkStruct(k, c.walk)
	return k.n, k.err
}
