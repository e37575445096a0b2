package actionbuf

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Writer appends values to a buffer. The first encoding error sticks and
// turns every later call into a no-op; check it with Err.
type Writer struct {
	buf bytes.Buffer
	enc *msgpack.Encoder
	err error
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	w := &Writer{}
	w.enc = msgpack.NewEncoder(&w.buf)
	return w
}

// String appends a string.
func (w *Writer) String(s string) {
	if w.err == nil {
		w.err = w.enc.EncodeString(s)
	}
}

// Int appends an integer.
func (w *Writer) Int(n int) {
	if w.err == nil {
		w.err = w.enc.EncodeInt(int64(n))
	}
}

// Field appends a string or integer field.
func (w *Writer) Field(v any) {
	switch v := v.(type) {
	case string:
		w.String(v)
	case int:
		w.Int(v)
	case int64:
		w.Int(int(v))
	default:
		if w.err == nil {
			w.err = fmt.Errorf("unsupported field type %T", v)
		}
	}
}

// Section appends a complete section.
func (w *Writer) Section(s Section) {
	w.String(s.Operation)
	w.String(s.Description)
	w.String(s.Template)
	w.Int(len(s.Items))
	for _, it := range s.Items {
		w.Int(it.Action)
		w.Int(it.Cost)
		w.Node(it.Node)
	}
}

// Node appends a node and its children.
func (w *Writer) Node(n Node) {
	w.Int(len(n.Fields))
	for _, f := range n.Fields {
		w.Field(f)
	}
	w.Int(len(n.Children))
	for _, c := range n.Children {
		w.Node(c)
	}
}

// Err returns the first encoding error.
func (w *Writer) Err() error { return w.err }

// Bytes returns the encoded buffer.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the encoded size in bytes.
func (w *Writer) Len() int { return w.buf.Len() }
