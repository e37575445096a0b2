package actionbuf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Reader reads values back from a buffer.
type Reader struct {
	dec *msgpack.Decoder
}

// NewReader returns a reader over b.
func NewReader(b []byte) *Reader {
	return &Reader{dec: msgpack.NewDecoder(bytes.NewReader(b))}
}

// More reports whether another value follows.
func (r *Reader) More() bool {
	_, err := r.dec.PeekCode()
	return err == nil
}

// String reads a string. Reading any other type is an error.
func (r *Reader) String() (string, error) {
	c, err := r.dec.PeekCode()
	if err != nil {
		return "", unexpectedEOF(err)
	}
	if !msgpcode.IsString(c) {
		return "", fmt.Errorf("expected string, found msgpack code 0x%02x", c)
	}
	return r.dec.DecodeString()
}

// Int reads an integer. Reading any other type is an error.
func (r *Reader) Int() (int, error) {
	c, err := r.dec.PeekCode()
	if err != nil {
		return 0, unexpectedEOF(err)
	}
	if msgpcode.IsString(c) {
		return 0, fmt.Errorf("expected integer, found string")
	}
	n, err := r.dec.DecodeInt64()
	return int(n), err
}

// Field reads a string or integer.
func (r *Reader) Field() (any, error) {
	c, err := r.dec.PeekCode()
	if err != nil {
		return nil, unexpectedEOF(err)
	}
	if msgpcode.IsString(c) {
		return r.dec.DecodeString()
	}
	n, err := r.dec.DecodeInt64()
	return int(n), err
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Section reads a complete section.
func (r *Reader) Section() (Section, error) {
	var s Section
	var err error
	if s.Operation, err = r.String(); err != nil {
		return s, fmt.Errorf("section operation: %w", err)
	}
	if s.Description, err = r.String(); err != nil {
		return s, fmt.Errorf("section '%s' description: %w", s.Operation, err)
	}
	if s.Template, err = r.String(); err != nil {
		return s, fmt.Errorf("section '%s' template: %w", s.Operation, err)
	}
	count, err := r.Int()
	if err != nil {
		return s, fmt.Errorf("section '%s' item count: %w", s.Operation, err)
	}
	for i := range count {
		var it Item
		if it.Action, err = r.Int(); err != nil {
			return s, fmt.Errorf("section '%s' item %d: %w", s.Operation, i, err)
		}
		if it.Cost, err = r.Int(); err != nil {
			return s, fmt.Errorf("section '%s' item %d: %w", s.Operation, i, err)
		}
		if it.Node, err = r.Node(); err != nil {
			return s, fmt.Errorf("section '%s' item %d: %w", s.Operation, i, err)
		}
		s.Items = append(s.Items, it)
	}
	return s, nil
}

// Node reads a node and its children.
func (r *Reader) Node() (Node, error) {
	var n Node
	fields, err := r.Int()
	if err != nil {
		return n, err
	}
	for range fields {
		f, err := r.Field()
		if err != nil {
			return n, err
		}
		n.Fields = append(n.Fields, f)
	}
	children, err := r.Int()
	if err != nil {
		return n, err
	}
	for range children {
		c, err := r.Node()
		if err != nil {
			return n, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

// Decode parses a whole buffer into its sections.
func Decode(b []byte) ([]Section, error) {
	r := NewReader(b)
	var out []Section
	for r.More() {
		s, err := r.Section()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
