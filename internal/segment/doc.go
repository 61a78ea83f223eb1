/*
Package segment turns declared road segments into concrete roads.

A road declaration carries a reference line (a sequence of line, arc and
spiral commands), a lane layout, and optional objects and signals. Building a
road happens in three steps:

 1. Declaration: the reference line, lanes, objects and signals are read from
    the attribute tree and validated.

 2. Placement: the declared reference line is laid out from the origin and
    rigidly moved onto a tie pose. The requested interval is then extracted,
    possibly reversed and capped in length. Lane polynomials are re-expanded
    so the extracted road starts at s = 0.

 3. Registration: the road receives network-unique signal ids and is
    appended to the network.

The junction synthesizer reuses steps 1 and 2 to cut its legs from the
declared main and access roads.
*/
package segment
