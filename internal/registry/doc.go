// Package registry tracks which objects exist on the external scene, under
// what identity, and whether they are system-seeded (Default) or user-added
// (Custom).
//
// Each of the four resource kinds gets its own store; ids are unique within a
// kind across both provenance classes. Every mutation goes through the scene
// adapter first and the bookkeeping commits only when the scene call
// succeeded, so a stored handle always corresponds to a live scene object.
// Bulk operations (batch removes, scoped clears) are best-effort: one failed
// id never aborts the rest.
package registry
