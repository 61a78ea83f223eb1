// Package linkgraph holds the road link graph used by the network linker.
// Nodes are road ids; an edge leaves a road through one of its ends and
// enters the linked road at the recorded contact point.
package linkgraph
