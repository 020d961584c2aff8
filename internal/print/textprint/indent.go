package textprint

import (
	"bytes"
	"io"
)

// Indent returns a writer inserting prefix at the start of every line written
// to w.
func Indent(w io.Writer, prefix string) io.Writer {
	return &indenter{output: w, prefix: []byte(prefix), start: true}
}

type indenter struct {
	output io.Writer
	prefix []byte
	start  bool
}

func (in *indenter) Write(b []byte) (int, error) {
	written := 0
	for len(b) > 0 {
		if in.start {
			if _, err := in.output.Write(in.prefix); err != nil {
				return written, err
			}
			in.start = false
		}
		line := b
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			line, in.start = b[:i+1], true
		}
		n, err := in.output.Write(line)
		written += n
		if err != nil {
			return written, err
		}
		b = b[len(line):]
	}
	return written, nil
}
