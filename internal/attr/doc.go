// Package attr defines the read-only attribute tree that every generation
// stage consumes. A description of a road network, whatever its on-disk
// format, is presented to the engine as a tree of named nodes carrying typed
// attributes.
//
// Concrete implementations live in separate packages (hcl_adapter for HCL
// files, xml_adapter for the XML input format). Element is an in-memory
// implementation used by the adapters and by tests.
//
// Lookups never panic: a missing attribute is reported as ErrMissing and a
// value that cannot be read as the requested type as ErrInvalid, both wrapped
// with the path of the offending node.
package attr
