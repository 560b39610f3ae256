// Package resolve inverts per-criterion technique specifications into a
// per-technique index of associations.
//
// Resolution pipeline:
//  1. Specifications are validated by package association.
//  2. For each criterion present in the active criteria set (success
//     criteria only), each association type is traversed depth-first.
//  3. One Record is emitted per technique id encountered, carrying the
//     sibling ids of its conjunction ("with") and its usage parent, by id
//     or, when the parent has no id, by a generated description.
//  4. Records are deduplicated per technique and ordered by the numeric
//     hierarchical number of their criterion.
package resolve
