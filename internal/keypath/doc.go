// internal/keypath/doc.go

/*
Package keypath provides a structured representation for addressing a node
inside an assembly's ownership chain, based on the canonical format
`component[.interface[.method]]`.

Role assignments use key paths to name the component, interface or method
they bind to an application role, e.g. `calc.ICalc.Add`.

This package enforces the path schema and centralizes all formatting and
parsing logic.
*/
package keypath
