/*
Package linker joins segments into one network and carries the elevation
reference across it.

Connect reads the declared segment links, sets the road links on both sides
and moves every segment reachable from the reference segment so that linked
road ends meet. Propagate then walks the road link graph breadth-first from
the reference road and assigns each reached road its elevation offset.
*/
package linker
