// Package engine generates the value of a model.
//
// The walk is depth-first. Every node first consults the directive set:
// an ignore directive leaves the node out, a set or supply directive
// provides the value directly and a generate directive replaces the default
// generator. Nodes without a directive get their generator from the
// registry. Containers, structs and constructed types are assembled from
// their children once those are done. Cyclic and depth-limited nodes are
// never generated.
//
// After the walk, selectors that matched no node and interface nodes that
// could not be resolved are reported as diagnostics. In strict mode they
// fail the request, in lenient mode they are logged.
package engine
