/*
Package junction synthesizes T-junctions.

A junction declaration names a main road, one or two access roads and the
point where they meet. Synthesis runs in four phases:

 1. Legs: the declared roads are built at full length so their widths can be
    measured, and every declared offset is raised to the safety floor of four
    times the largest half-width among the other legs.

 2. Stubs: three approach roads are cut from the legs, starting at their
    offsets from the meeting point and leading away from the junction.

 3. Ordering: the stubs are arranged canonically by the counter-clockwise
    angle of their outward headings relative to the first stub.

 4. Connections: declared single lane links are replayed, or a connecting
    road is generated for every ordered pair of stubs following the
    right-of-way table.
*/
package junction
