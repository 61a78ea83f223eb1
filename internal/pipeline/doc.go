/*
Package pipeline drives one generation run from an attribute tree to a
validated road network.

The run is a strict sequence of stages over a single *roadnet.Network:

 1. Segments: every road and connectingRoad segment is built.
 2. Junctions: every tjunction and junction segment is synthesized. This runs
    after all plain roads exist so declared connections can refer to them.
 3. Linking: the links declaration connects segments and moves them into
    place around the reference segment.
 4. Elevation: key points are cleaned, completed from neighbours and blended
    into polynomials.
 5. Propagation: elevation offsets spread from the reference road.
 6. Validation: the finished network is checked before it is handed to an
    exporter.

The first failing stage aborts the run. Its error is wrapped with the stage
name and still matches the roadnet sentinels with errors.Is.
*/
package pipeline
