/*
Package roadnet is the in-memory road model produced by the generator and
consumed by the exporters.

A Network exclusively owns every Road, Junction and Controller. Entries refer
to each other by integer id only; the network keeps an id→index map so any
stage can resolve an id in constant time. A *Road handed out by Network.Road
is valid only until the next AddRoad, because appending may move the backing
array. Stages therefore pass ids across boundaries, never pointers.

Lifecycle of the model during one run:

 1. Segment and junction construction append roads and junctions. Nothing
    is removed afterwards.

 2. Linking amends predecessor/successor links and moves whole segments into
    the shared reference frame.

 3. Elevation synthesis appends polynomials to roads whose key points are
    final, and the linker propagates elevation offsets in place.

 4. Validate checks the guarantees the exporters rely on: unique and
    resolvable ids, contiguous geometry and lane sections that cover every
    road completely.
*/
package roadnet
