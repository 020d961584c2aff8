package textprint

import (
	"io"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/stealthrocket/dawnwire/internal/stream"
)

type TableOption[T any] func(*tableWriter[T])

// Header enables or disables the line of column names (enabled by default).
func Header[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.header = enable }
}

// List restricts the table to its first column, one value per line.
func List[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.list = enable }
}

// OrderBy sorts the rows with f before printing them.
func OrderBy[T any](f func(T, T) int) TableOption[T] {
	return func(t *tableWriter[T]) { t.orderBy = f }
}

// NewTableWriter returns a writer printing values of the struct type T (or a
// pointer to it) as a table. The text tag of a field names its column, and a
// field tagged text:"-" is not printed.
//
// Rows are buffered so the columns can be aligned, the table is printed when
// the writer is closed.
func NewTableWriter[T any](w io.Writer, opts ...TableOption[T]) stream.WriteCloser[T] {
	t := &tableWriter[T]{output: w, header: true}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type column struct {
	name   string
	index  []int
	encode encodeFunc
}

type tableWriter[T any] struct {
	output  io.Writer
	rows    []T
	header  bool
	list    bool
	orderBy func(T, T) int
}

func (t *tableWriter[T]) Write(values []T) (int, error) {
	t.rows = append(t.rows, values...)
	return len(values), nil
}

func (t *tableWriter[T]) Close() error {
	rowType := reflect.TypeOf((*T)(nil)).Elem()
	pointer := rowType.Kind() == reflect.Pointer
	if pointer {
		rowType = rowType.Elem()
	}

	columns := columnsOf(rowType)
	if t.list && len(columns) > 1 {
		columns = columns[:1]
	}
	if t.orderBy != nil {
		slices.SortStableFunc(t.rows, t.orderBy)
	}

	tw := tabwriter.NewWriter(t.output, 0, 4, 2, ' ', 0)
	if t.header {
		names := make([]string, len(columns))
		for i, c := range columns {
			names[i] = c.name
		}
		if _, err := io.WriteString(tw, strings.Join(names, "\t")+"\n"); err != nil {
			return err
		}
	}

	for i := range t.rows {
		row := reflect.ValueOf(&t.rows[i]).Elem()
		if pointer {
			row = row.Elem()
		}
		for j, c := range columns {
			if j != 0 {
				if _, err := io.WriteString(tw, "\t"); err != nil {
					return err
				}
			}
			if err := c.encode(tw, row.FieldByIndex(c.index)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(tw, "\n"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func columnsOf(t reflect.Type) []column {
	var columns []column
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("text"); ok {
			name, _, _ = strings.Cut(tag, ",")
		}
		if name == "-" {
			continue
		}
		columns = append(columns, column{
			name:   name,
			index:  f.Index,
			encode: encoderOf(f.Type),
		})
	}
	return columns
}
