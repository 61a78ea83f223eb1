// Package opendrive serializes a finished road network as an OpenDRIVE 1.5
// document.
//
// Elevation polynomials are written with the road's propagated elevation
// offset added to their constant term. Roads of connecting-road segments use
// their junction field only as a grouping id and are written with
// junction="-1"; only roads that a junction connection names are written as
// junction members. The output is not validated against the schema.
package opendrive
