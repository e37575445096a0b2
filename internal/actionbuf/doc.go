// Package actionbuf is the wire codec of the action buffers handed to the
// executor.
//
// A buffer is a flat stream of msgpack-encoded strings and integers. It is
// made of sections:
//
//	section = operation, description, template, itemCount, item*
//	item    = action, cost, node
//	node    = fieldCount, field*, childCount, node*
//
// Fields are strings or integers. Every count is written even when it is
// zero, so a reader never has to guess whether a part is present.
package actionbuf
